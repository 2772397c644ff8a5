// Package validation checks request input with go-playground/validator and
// converts failures into a single Error type.
package validation

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every Error.
var ErrInvalid = errors.New("validation failed")

// catalogID is the key format of brand, model, fault and step ids.
var catalogID = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Error lists the offending fields by their JSON name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e *Error) Unwrap() error { return ErrInvalid }

// Validator wraps validator.Validate with the catalogid tag and JSON field names.
type Validator struct {
	v *validator.Validate
}

// New creates a validator. It is safe for concurrent use.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("catalogid", func(fl validator.FieldLevel) bool {
		return IsCatalogID(fl.Field().String())
	})

	return &Validator{v: v}
}

// IsCatalogID reports whether s is a well-formed catalog key such as "baymak-e03".
func IsCatalogID(s string) bool {
	return catalogID.MatchString(s)
}

// Validate checks s and returns an *Error listing every failed field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = friendlyMessage(e)
	}
	return &Error{Fields: fields}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "catalogid":
		return "must be lower-case letters and digits separated by single hyphens"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
