package core

import "fmt"

const (
	PeriodMonth    PeriodKind = "month"
	PeriodQuarter  PeriodKind = "quarter"
	PeriodSemester PeriodKind = "semester"
	PeriodYear     PeriodKind = "year"
	PeriodAll      PeriodKind = "all"

	// YearAll disables the year check entirely, independent of the kind.
	YearAll = 0
)

type PeriodKind string

// Period selects a reporting window: a month, quarter or semester of a given
// year, a whole year, or everything. Year may be the YearAll wildcard.
type Period struct {
	Kind  PeriodKind `json:"kind"`
	Value int        `json:"value"`
	Year  int        `json:"year"`
}

func (k PeriodKind) Valid() bool {
	switch k {
	case PeriodMonth, PeriodQuarter, PeriodSemester, PeriodYear, PeriodAll:
		return true
	}
	return false
}

func (p Period) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("invalid period kind %q", p.Kind)
	}
	switch p.Kind {
	case PeriodMonth:
		if p.Value < 1 || p.Value > 12 {
			return fmt.Errorf("invalid month %d", p.Value)
		}
	case PeriodQuarter:
		if p.Value < 1 || p.Value > 4 {
			return fmt.Errorf("invalid quarter %d", p.Value)
		}
	case PeriodSemester:
		if p.Value != 1 && p.Value != 2 {
			return fmt.Errorf("invalid semester %d", p.Value)
		}
	}
	return nil
}

// Contains reports whether d falls inside the period. A zero date belongs to
// no period at all, not even "all".
func (p Period) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	if p.Kind == PeriodAll {
		return true
	}
	if p.Year != YearAll && d.Year() != p.Year {
		return false
	}
	switch p.Kind {
	case PeriodMonth:
		return d.Month() == p.Value
	case PeriodQuarter:
		return (d.Month()-1)/3+1 == p.Value
	case PeriodSemester:
		if d.Month() <= 6 {
			return p.Value == 1
		}
		return p.Value == 2
	case PeriodYear:
		return true
	}
	return false
}

// Previous returns the period immediately before this one, rolling over the
// year boundary where needed (January -> December of the prior year,
// Q1 -> Q4 of the prior year). For "all" the period is its own predecessor.
func (p Period) Previous() Period {
	prev := p
	switch p.Kind {
	case PeriodMonth:
		prev.Value--
		if prev.Value < 1 {
			prev.Value = 12
			prev.Year = prevYear(p.Year)
		}
	case PeriodQuarter:
		prev.Value--
		if prev.Value < 1 {
			prev.Value = 4
			prev.Year = prevYear(p.Year)
		}
	case PeriodSemester:
		prev.Value--
		if prev.Value < 1 {
			prev.Value = 2
			prev.Year = prevYear(p.Year)
		}
	case PeriodYear:
		prev.Year = prevYear(p.Year)
	}
	return prev
}

func prevYear(year int) int {
	if year == YearAll {
		return YearAll
	}
	return year - 1
}

// Filter returns the records whose date falls inside the period.
func (p Period) Filter(records []Transaction) []Transaction {
	out := make([]Transaction, 0, len(records))
	for _, r := range records {
		if p.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}
