// Package dataset embeds the static fault catalog and the English to Turkish
// term dictionary. The static catalog is what public reads fall back to when
// the database is unreachable.
package dataset

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/atinyakov/FaultKeeper/internal/i18n"
	"github.com/atinyakov/FaultKeeper/internal/models"
)

//go:embed data/catalog.json data/dictionary.json
var files embed.FS

// Catalog is a complete set of catalog records.
type Catalog struct {
	Brands []models.BrandRecord `json:"brands"`
	Models []models.ModelRecord `json:"models"`
	Faults []models.FaultRecord `json:"faults"`
	Steps  []models.StepRecord  `json:"steps"`
}

// Load decodes and validates the embedded catalog.
func Load() (*Catalog, error) {
	data, err := files.ReadFile("data/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("dataset: read embedded catalog: %w", err)
	}
	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoad is like Load but panics on error. The embedded file is part of the
// binary, so a failure is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Decode reads a catalog, rejecting unknown fields.
func Decode(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var c Catalog
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: decode catalog: %w", err)
	}
	return &c, nil
}

// Dictionary returns the embedded term dictionary.
func Dictionary() (*i18n.Dictionary, error) {
	data, err := files.ReadFile("data/dictionary.json")
	if err != nil {
		return nil, fmt.Errorf("dataset: read embedded dictionary: %w", err)
	}
	d, err := i18n.LoadDictionary(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return d, nil
}

// Validate checks identity uniqueness and references between records.
func (c *Catalog) Validate() error {
	var errs []error

	brands := make(map[string]bool, len(c.Brands))
	for _, b := range c.Brands {
		if b.ID == "" || brands[b.ID] {
			errs = append(errs, fmt.Errorf("brand %q: empty or duplicate id", b.ID))
		}
		brands[b.ID] = true
	}

	modelBrand := make(map[string]string, len(c.Models))
	for _, m := range c.Models {
		if _, dup := modelBrand[m.ID]; m.ID == "" || dup {
			errs = append(errs, fmt.Errorf("model %q: empty or duplicate id", m.ID))
		}
		if !brands[m.BrandID] {
			errs = append(errs, fmt.Errorf("model %q: unknown brand %q", m.ID, m.BrandID))
		}
		if m.Years != nil && m.Years.End < m.Years.Start {
			errs = append(errs, fmt.Errorf("model %q: year range ends before it starts", m.ID))
		}
		modelBrand[m.ID] = m.BrandID
	}

	faults := make(map[string]bool, len(c.Faults))
	codes := make(map[[2]string]string, len(c.Faults))
	for _, f := range c.Faults {
		if f.ID == "" || faults[f.ID] {
			errs = append(errs, fmt.Errorf("fault %q: empty or duplicate id", f.ID))
		}
		faults[f.ID] = true
		key := [2]string{f.BrandID, f.Code}
		if first, dup := codes[key]; dup {
			errs = append(errs, fmt.Errorf("fault %q: code %q already used by %q for brand %q", f.ID, f.Code, first, f.BrandID))
		} else {
			codes[key] = f.ID
		}
		if !brands[f.BrandID] {
			errs = append(errs, fmt.Errorf("fault %q: unknown brand %q", f.ID, f.BrandID))
		}
		if f.ModelID != nil && modelBrand[*f.ModelID] != f.BrandID {
			errs = append(errs, fmt.Errorf("fault %q: model %q does not belong to brand %q", f.ID, *f.ModelID, f.BrandID))
		}
		if !f.Severity.Valid() {
			errs = append(errs, fmt.Errorf("fault %q: invalid severity %q", f.ID, f.Severity))
		}
	}

	steps := make(map[string]bool, len(c.Steps))
	for _, s := range c.Steps {
		if s.ID == "" || steps[s.ID] {
			errs = append(errs, fmt.Errorf("step %q: empty or duplicate id", s.ID))
		}
		steps[s.ID] = true
		if !faults[s.FaultID] {
			errs = append(errs, fmt.Errorf("step %q: unknown fault %q", s.ID, s.FaultID))
		}
		if s.Order < 1 {
			errs = append(errs, fmt.Errorf("step %q: order must be 1-based", s.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("dataset: invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}
