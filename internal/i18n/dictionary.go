package i18n

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Dictionary is a rule-based English to Turkish term substitution.
//
// Terms match case-insensitively anywhere in the input, longest term first.
// The output is approximate: words without an entry stay in English.
type Dictionary struct {
	pattern *regexp.Regexp
	terms   map[string]string
}

// NewDictionary compiles a dictionary from English keys to Turkish values.
func NewDictionary(entries map[string]string) *Dictionary {
	d := &Dictionary{terms: make(map[string]string, len(entries))}
	keys := make([]string, 0, len(entries))
	for en, tr := range entries {
		k := strings.ToLower(strings.TrimSpace(en))
		if k == "" {
			continue
		}
		if _, dup := d.terms[k]; !dup {
			keys = append(keys, k)
		}
		d.terms[k] = tr
	}
	if len(keys) == 0 {
		return d
	}

	// RE2 alternation is leftmost-first, so longer terms must come first.
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	d.pattern = regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	return d
}

// LoadDictionary decodes a JSON object of English to Turkish terms.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	var entries map[string]string
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}
	return NewDictionary(entries), nil
}

// Len returns the number of distinct terms.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.terms)
}

// Translate substitutes every known term in s. It never fails.
func (d *Dictionary) Translate(s string) string {
	if d == nil || d.pattern == nil || s == "" {
		return s
	}
	return d.pattern.ReplaceAllStringFunc(s, func(match string) string {
		tr, ok := d.terms[strings.ToLower(match)]
		if !ok {
			return match
		}
		return d.matchCase(match, tr)
	})
}

// matchCase carries the capitalisation of the English match over to tr.
func (d *Dictionary) matchCase(match, tr string) string {
	first, _ := utf8.DecodeRuneInString(match)
	if !unicode.IsUpper(first) || tr == "" {
		return tr
	}
	// Casers are stateful; one per call keeps Translate safe for concurrent use.
	upper := cases.Upper(language.Turkish)
	if utf8.RuneCountInString(match) > 1 && isAllUpper(match) {
		return upper.String(tr)
	}
	head, size := utf8.DecodeRuneInString(tr)
	return upper.String(string(head)) + tr[size:]
}

func isAllUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
