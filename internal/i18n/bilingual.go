package i18n

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Form tags how a Bilingual value holds its Turkish rendering.
type Form uint8

const (
	// FormNative values carry both locales; TR may be absent.
	FormNative Form = iota
	// FormDerived values carry English only; Turkish is produced by a transform.
	FormDerived
)

// Bilingual holds a value in English and Turkish.
type Bilingual[T any] struct {
	Form Form
	EN   T
	// TR is only read for FormNative values.
	TR T
}

// Text is a bilingual string.
type Text = Bilingual[string]

// List is a bilingual list of strings, resolved element-wise.
type List = Bilingual[[]string]

// Native builds a value that carries both locales.
func Native[T any](en, tr T) Bilingual[T] {
	return Bilingual[T]{Form: FormNative, EN: en, TR: tr}
}

// Derived builds an English-only value whose Turkish form is derived on demand.
func Derived[T any](en T) Bilingual[T] {
	return Bilingual[T]{Form: FormDerived, EN: en}
}

// Resolve returns the value for locale l.
//
// Native values return their l entry, or EN when present reports it absent.
// Derived values return EN for English and derive(EN) for Turkish.
// Any locale other than TR resolves to EN.
func Resolve[T any](v Bilingual[T], l Locale, present func(T) bool, derive func(T) T) T {
	if l != TR {
		return v.EN
	}
	if v.Form == FormDerived {
		if derive == nil {
			return v.EN
		}
		return derive(v.EN)
	}
	if present(v.TR) {
		return v.TR
	}
	return v.EN
}

type localePair[T any] struct {
	EN T `json:"en"`
	TR T `json:"tr"`
}

// UnmarshalJSON decodes {"en":..,"tr":..} as a native value and a bare
// string or array as a derived one.
func (v *Bilingual[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Bilingual[T]{}
		return nil
	}
	if data[0] == '{' {
		var p localePair[T]
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode bilingual object: %w", err)
		}
		*v = Native(p.EN, p.TR)
		return nil
	}
	var base T
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("decode bilingual value: %w", err)
	}
	*v = Derived(base)
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (v Bilingual[T]) MarshalJSON() ([]byte, error) {
	if v.Form == FormDerived {
		return json.Marshal(v.EN)
	}
	return json.Marshal(localePair[T]{EN: v.EN, TR: v.TR})
}

// Scan reads a JSON or JSONB column.
func (v *Bilingual[T]) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = Bilingual[T]{}
		return nil
	case []byte:
		return v.UnmarshalJSON(s)
	case string:
		return v.UnmarshalJSON([]byte(s))
	default:
		return fmt.Errorf("scan bilingual: unsupported source %T", src)
	}
}

// Value encodes the value for a JSONB column.
func (v Bilingual[T]) Value() (driver.Value, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}
