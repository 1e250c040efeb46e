package analytics

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	LabelTreesSaved      = "trees saved (est.)"
	LabelKWhSaved        = "kWh saved (est.)"
	LabelToxicPrevented  = "kg toxic prevented (est.)"
	LabelPiecesCollected = "pcs collected"
)

// ImpactEstimate is the environmental equivalent shown next to a material.
// Numeric estimates carry Value; the piece-count fallback only carries Display.
type ImpactEstimate struct {
	Label   string
	Value   float64
	Display string
	Numeric bool
}

// MarshalJSON emits {"label", "value"} where value is a number for numeric
// estimates and the formatted string for the piece-count fallback.
func (e ImpactEstimate) MarshalJSON() ([]byte, error) {
	var value any = e.Display
	if e.Numeric {
		value = e.Value
	}
	return json.Marshal(struct {
		Label string `json:"label"`
		Value any    `json:"value"`
	}{Label: e.Label, Value: value})
}

// ImpactRule pairs a name predicate with the estimate it produces.
type ImpactRule struct {
	Name    string
	Matches func(lowerName string) bool
	Compute func(collected int64) ImpactEstimate
}

// DefaultImpactRules is evaluated top to bottom; the first matching rule wins.
// The last rule matches everything.
var DefaultImpactRules = []ImpactRule{
	{
		Name:    "plastic",
		Matches: containsAny("plastic"),
		Compute: scaled(LabelTreesSaved, decimal.RequireFromString("0.006"), 2),
	},
	{
		Name:    "paper",
		Matches: containsAny("paper", "cardboard"),
		Compute: scaled(LabelTreesSaved, decimal.RequireFromString("0.01"), 2),
	},
	{
		Name:    "metal",
		Matches: containsAny("aluminum", "metal"),
		Compute: scaled(LabelKWhSaved, decimal.RequireFromString("0.2"), 1),
	},
	{
		Name:    "battery",
		Matches: containsAny("battery"),
		Compute: scaled(LabelToxicPrevented, decimal.RequireFromString("0.05"), 2),
	},
	{
		Name:    "pieces",
		Matches: func(string) bool { return true },
		Compute: func(collected int64) ImpactEstimate {
			return ImpactEstimate{Label: LabelPiecesCollected, Display: FormatNumber(collected)}
		},
	},
}

// ComputeImpact evaluates DefaultImpactRules for a material.
func ComputeImpact(name string, collected int64) *ImpactEstimate {
	return ComputeImpactWith(DefaultImpactRules, name, collected)
}

// ComputeImpactWith returns nil when collected <= 0 or no rule matches.
// Matching is a case-insensitive substring test on the material name.
func ComputeImpactWith(rules []ImpactRule, name string, collected int64) *ImpactEstimate {
	if collected <= 0 {
		return nil
	}

	key := strings.ToLower(name)
	for _, rule := range rules {
		if rule.Matches(key) {
			est := rule.Compute(collected)
			return &est
		}
	}
	return nil
}

func containsAny(keywords ...string) func(string) bool {
	return func(lowerName string) bool {
		for _, kw := range keywords {
			if strings.Contains(lowerName, kw) {
				return true
			}
		}
		return false
	}
}

// Divisions in the table (÷100, ÷5) are expressed as exact decimal factors.
func scaled(label string, factor decimal.Decimal, dp int32) func(int64) ImpactEstimate {
	return func(collected int64) ImpactEstimate {
		v := RoundTo(decimal.NewFromInt(collected).Mul(factor), dp)
		f, _ := v.Float64()
		return ImpactEstimate{
			Label:   label,
			Value:   f,
			Display: FormatDecimal(v),
			Numeric: true,
		}
	}
}
