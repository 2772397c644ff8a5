package i18n

// Transform derives a Turkish rendering from English text.
type Transform func(string) string

// Resolver resolves Text and List values, applying its Transform to derived values.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	transform Transform
}

// NewResolver creates a Resolver. A nil transform leaves derived text in English.
func NewResolver(t Transform) *Resolver {
	return &Resolver{transform: t}
}

// Text resolves a bilingual string for locale l.
func (r *Resolver) Text(v Text, l Locale) string {
	return Resolve(v, l, func(s string) bool { return s != "" }, r.derive)
}

// OptionalText resolves v when it is set and returns nil otherwise.
func (r *Resolver) OptionalText(v *Text, l Locale) *string {
	if v == nil {
		return nil
	}
	s := r.Text(*v, l)
	if s == "" {
		return nil
	}
	return &s
}

// List resolves a bilingual list for locale l. The result never aliases v.
func (r *Resolver) List(v List, l Locale) []string {
	out := Resolve(v, l, func(s []string) bool { return len(s) > 0 }, r.deriveEach)
	return append([]string(nil), out...)
}

func (r *Resolver) derive(s string) string {
	if r == nil || r.transform == nil {
		return s
	}
	return r.transform(s)
}

func (r *Resolver) deriveEach(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = r.derive(s)
	}
	return out
}
