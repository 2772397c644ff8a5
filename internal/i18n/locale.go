// Package i18n resolves bilingual catalog text for the active locale.
package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a display language supported by the catalog.
type Locale string

const (
	// EN is English, the fallback locale.
	EN Locale = "en"
	// TR is Turkish.
	TR Locale = "tr"
)

// supported is ordered the same way as the matcher tags.
var supported = []Locale{EN, TR}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Turkish})

// ParseLocale maps a language tag such as "tr", "TR" or "tr-TR" to a Locale.
// It reports false for anything that is not English or Turkish.
func ParseLocale(s string) (Locale, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EN, false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return EN, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return EN, true
	case "tr":
		return TR, true
	}
	return EN, false
}

// Negotiate picks the best supported locale for an Accept-Language header.
// An empty or unparsable header yields EN.
func Negotiate(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return EN
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supported) {
		return EN
	}
	return supported[idx]
}

type ctxKey struct{}

// WithLocale returns a copy of ctx carrying the active locale.
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the active locale stored in ctx, or EN when none is set.
func FromContext(ctx context.Context) Locale {
	if l, ok := ctx.Value(ctxKey{}).(Locale); ok && l != "" {
		return l
	}
	return EN
}
