// Package search ranks fault codes against a free-text query and structural
// brand/model filters.
package search

import (
	"slices"
	"strings"

	"github.com/atinyakov/FaultKeeper/internal/models"
)

// Filters narrows and scores a search. Empty fields are not applied.
type Filters struct {
	Q       string `json:"q" validate:"max=100"`
	BrandID string `json:"brandId" validate:"omitempty,catalogid"`
	ModelID string `json:"modelId" validate:"omitempty,catalogid"`
}

// Query is the normalized form of Filters seen by rules.
type Query struct {
	Text    string
	BrandID string
	ModelID string
}

// Rule adds Weight to a candidate's score when Match holds.
type Rule struct {
	Name   string
	Weight int
	Match  func(f models.FaultCode, q Query) bool
}

// Result is a ranked fault code.
type Result struct {
	Fault models.FaultCode `json:"fault"`
	Score int              `json:"score"`
}

// Rule weights.
const (
	WeightBrand   = 10
	WeightCode    = 8
	WeightTitle   = 4
	WeightSummary = 2
)

// DefaultRules is the relevancy rule list in evaluation order.
var DefaultRules = []Rule{
	{
		Name:   "brand",
		Weight: WeightBrand,
		Match: func(f models.FaultCode, q Query) bool {
			return q.BrandID != "" && f.BrandID == q.BrandID
		},
	},
	{
		Name:   "code",
		Weight: WeightCode,
		Match: func(f models.FaultCode, q Query) bool {
			return Normalize(f.Code) == q.Text
		},
	},
	{
		Name:   "title",
		Weight: WeightTitle,
		Match: func(f models.FaultCode, q Query) bool {
			return strings.Contains(Normalize(f.Title), q.Text)
		},
	},
	{
		Name:   "summary",
		Weight: WeightSummary,
		Match: func(f models.FaultCode, q Query) bool {
			return strings.Contains(Normalize(f.Summary), q.Text)
		},
	},
}

// Engine scores candidates with an ordered rule list. It holds no mutable
// state and may be shared.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over rules, or DefaultRules when none are given.
func NewEngine(rules ...Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Engine{rules: slices.Clone(rules)}
}

// Normalize lower-cases and trims s. Diacritics are kept, so "vaillánt"
// does not match "vaillant".
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Score sums the weights of every rule that matches f.
func (e *Engine) Score(f models.FaultCode, q Query) int {
	score := 0
	for _, r := range e.rules {
		if r.Match(f, q) {
			score += r.Weight
		}
	}
	return score
}

// Rank applies the structural filters, then scores and sorts the remaining
// candidates by descending score. Ties keep candidate order. Without a query
// the filtered candidates are returned in their original order with score 0.
func (e *Engine) Rank(candidates []models.FaultCode, filters Filters) []Result {
	q := Query{
		Text:    Normalize(filters.Q),
		BrandID: filters.BrandID,
		ModelID: filters.ModelID,
	}

	results := make([]Result, 0, len(candidates))
	for _, f := range candidates {
		if !structuralMatch(f, q) {
			continue
		}
		if q.Text == "" {
			results = append(results, Result{Fault: f})
			continue
		}
		if score := e.Score(f, q); score > 0 {
			results = append(results, Result{Fault: f, Score: score})
		}
	}
	if q.Text == "" {
		return results
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return b.Score - a.Score
	})
	return results
}

func structuralMatch(f models.FaultCode, q Query) bool {
	if q.BrandID != "" && f.BrandID != q.BrandID {
		return false
	}
	if q.ModelID != "" && !f.AppliesToModel(q.ModelID) {
		return false
	}
	return true
}

// Faults strips scores from results.
func Faults(results []Result) []models.FaultCode {
	out := make([]models.FaultCode, len(results))
	for i, r := range results {
		out[i] = r.Fault
	}
	return out
}
