// Package models defines catalog records, their locale-resolved entities,
// and the per-user favorites and access state.
package models

import (
	"time"

	"github.com/atinyakov/FaultKeeper/internal/i18n"
)

// Severity grades how serious a fault is.
type Severity string

const (
	// SeverityInfo marks faults that need no immediate action.
	SeverityInfo Severity = "info"
	// SeverityWarning marks faults that degrade operation.
	SeverityWarning Severity = "warning"
	// SeverityCritical marks faults that stop the appliance or are unsafe.
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// YearRange is an inclusive production period. End equal to Start means a single year.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// BrandRecord is a brand as stored. Brand names are locale-invariant.
type BrandRecord struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Country *string  `json:"country,omitempty"`
}

// ModelRecord is a boiler model as stored.
type ModelRecord struct {
	ID      string     `json:"id"`
	BrandID string     `json:"brandId"`
	Name    string     `json:"name"`
	Years   *YearRange `json:"years,omitempty"`
}

// FaultRecord is a fault code as stored, with bilingual text.
type FaultRecord struct {
	ID           string     `json:"id"`
	BrandID      string     `json:"brandId"`
	ModelID      *string    `json:"modelId,omitempty"`
	Code         string     `json:"code"`
	Title        i18n.Text  `json:"title"`
	Severity     Severity   `json:"severity"`
	Summary      i18n.Text  `json:"summary"`
	Causes       i18n.List  `json:"causes"`
	SafetyNotice *i18n.Text `json:"safetyNotice,omitempty"`
	LastVerified *time.Time `json:"lastVerified,omitempty"`
}

// StepRecord is a resolution step as stored, with bilingual text.
type StepRecord struct {
	ID                   string    `json:"id"`
	FaultID              string    `json:"faultId"`
	Order                int       `json:"order"`
	Instruction          i18n.Text `json:"instruction"`
	EstimatedMinutes     *int      `json:"estimatedMinutes,omitempty"`
	RequiresProfessional bool      `json:"requiresProfessional"`
	Tools                i18n.List `json:"tools"`
	ImageRef             *string   `json:"imageRef,omitempty"`
}

// Brand is a locale-resolved brand.
type Brand struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Country *string  `json:"country,omitempty"`
}

// BoilerModel is a locale-resolved boiler model.
type BoilerModel struct {
	ID      string     `json:"id"`
	BrandID string     `json:"brandId"`
	Name    string     `json:"name"`
	Years   *YearRange `json:"years,omitempty"`
}

// FaultCode is a fault code resolved to one locale.
// A nil ModelID means the fault applies to every model of the brand.
type FaultCode struct {
	ID           string     `json:"id"`
	BrandID      string     `json:"brandId"`
	ModelID      *string    `json:"modelId,omitempty"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	Severity     Severity   `json:"severity"`
	Summary      string     `json:"summary"`
	Causes       []string   `json:"causes"`
	SafetyNotice *string    `json:"safetyNotice,omitempty"`
	LastVerified *time.Time `json:"lastVerified,omitempty"`
}

// AppliesToModel reports whether the fault is relevant for modelID.
func (f FaultCode) AppliesToModel(modelID string) bool {
	return f.ModelID == nil || *f.ModelID == modelID
}

// ResolutionStep is a resolution step resolved to one locale.
type ResolutionStep struct {
	ID                   string   `json:"id"`
	FaultID              string   `json:"faultId"`
	Order                int      `json:"order"`
	Instruction          string   `json:"instruction"`
	EstimatedMinutes     *int     `json:"estimatedMinutes,omitempty"`
	RequiresProfessional bool     `json:"requiresProfessional"`
	Tools                []string `json:"tools"`
	ImageRef             *string  `json:"imageRef,omitempty"`
}
