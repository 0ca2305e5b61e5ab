package core

import "strings"

// Classification maps free-text category labels to cash-flow groups via
// substring keyword matching. The match is deliberately case-sensitive: the
// source vocabulary is user-editable and the keyword lists are maintained in
// the same casing as the category labels. Passed into the aggregator as
// configuration so the policy stays swappable and testable.
type Classification struct {
	// FinancingKeywords mark categories excluded from operating cash flow
	// (loans, leases, arrears).
	FinancingKeywords []string
	// CapExKeywords mark expense categories counted as capital expenditure.
	CapExKeywords []string
}

// DefaultClassification returns the keyword lists the dashboard ships with.
func DefaultClassification() Classification {
	return Classification{
		FinancingKeywords: []string{
			"Financiamiento",
			"Préstamo",
			"Leasing",
			"Arrendamiento",
			"Mora",
		},
		CapExKeywords: []string{
			"Equipo",
			"Equipamiento",
			"Maquinaria",
		},
	}
}

// IsFinancing reports whether the category belongs to a financing/lease
// group and is therefore excluded from operating cash flow.
func (c Classification) IsFinancing(category string) bool {
	return matchAny(category, c.FinancingKeywords)
}

// IsCapEx reports whether the expense category counts as CapEx.
func (c Classification) IsCapEx(category string) bool {
	return matchAny(category, c.CapExKeywords)
}

func matchAny(category string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(category, kw) {
			return true
		}
	}
	return false
}
