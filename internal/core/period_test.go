package core

import "testing"

func TestPeriodContains(t *testing.T) {
	d := NewDate(2026, 5, 15)

	tests := []struct {
		name   string
		period Period
		want   bool
	}{
		{"matching month", Period{Kind: PeriodMonth, Value: 5, Year: 2026}, true},
		{"wrong month", Period{Kind: PeriodMonth, Value: 6, Year: 2026}, false},
		{"wrong year", Period{Kind: PeriodMonth, Value: 5, Year: 2025}, false},
		{"month with year wildcard", Period{Kind: PeriodMonth, Value: 5, Year: YearAll}, true},
		{"matching quarter", Period{Kind: PeriodQuarter, Value: 2, Year: 2026}, true},
		{"wrong quarter", Period{Kind: PeriodQuarter, Value: 1, Year: 2026}, false},
		{"first semester", Period{Kind: PeriodSemester, Value: 1, Year: 2026}, true},
		{"second semester", Period{Kind: PeriodSemester, Value: 2, Year: 2026}, false},
		{"year", Period{Kind: PeriodYear, Year: 2026}, true},
		{"other year", Period{Kind: PeriodYear, Year: 2025}, false},
		{"all ignores year", Period{Kind: PeriodAll, Year: 1999}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.period.Contains(d)
			if got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", d.ISO(), got, tt.want)
			}
			// Re-evaluation with the same arguments is idempotent.
			if again := tt.period.Contains(d); again != got {
				t.Errorf("Contains not idempotent: first %v, second %v", got, again)
			}
		})
	}
}

func TestPeriodContains_ExactlyOneSubPeriod(t *testing.T) {
	// For any date and a fixed year, exactly one month, quarter and semester
	// contains it.
	dates := []Date{
		NewDate(2026, 1, 1),
		NewDate(2026, 3, 31),
		NewDate(2026, 6, 30),
		NewDate(2026, 7, 1),
		NewDate(2026, 12, 31),
	}
	for _, d := range dates {
		countMonths := 0
		for m := 1; m <= 12; m++ {
			if (Period{Kind: PeriodMonth, Value: m, Year: 2026}).Contains(d) {
				countMonths++
			}
		}
		countQuarters := 0
		for q := 1; q <= 4; q++ {
			if (Period{Kind: PeriodQuarter, Value: q, Year: 2026}).Contains(d) {
				countQuarters++
			}
		}
		countSemesters := 0
		for s := 1; s <= 2; s++ {
			if (Period{Kind: PeriodSemester, Value: s, Year: 2026}).Contains(d) {
				countSemesters++
			}
		}
		if countMonths != 1 || countQuarters != 1 || countSemesters != 1 {
			t.Errorf("date %s: months=%d quarters=%d semesters=%d, want 1/1/1",
				d.ISO(), countMonths, countQuarters, countSemesters)
		}
	}
}

func TestPeriodContains_ZeroDate(t *testing.T) {
	var zero Date
	kinds := []Period{
		{Kind: PeriodMonth, Value: 1, Year: 2026},
		{Kind: PeriodQuarter, Value: 1, Year: 2026},
		{Kind: PeriodSemester, Value: 1, Year: 2026},
		{Kind: PeriodYear, Year: 2026},
		{Kind: PeriodAll},
	}
	for _, p := range kinds {
		if p.Contains(zero) {
			t.Errorf("zero date must be in no period, but %s/%d contains it", p.Kind, p.Value)
		}
	}
}

func TestPeriodPrevious_YearRollover(t *testing.T) {
	tests := []struct {
		name      string
		period    Period
		wantValue int
		wantYear  int
	}{
		{"january to december", Period{Kind: PeriodMonth, Value: 1, Year: 2026}, 12, 2025},
		{"mid-year month", Period{Kind: PeriodMonth, Value: 7, Year: 2026}, 6, 2026},
		{"q1 to q4", Period{Kind: PeriodQuarter, Value: 1, Year: 2026}, 4, 2025},
		{"q3 to q2", Period{Kind: PeriodQuarter, Value: 3, Year: 2026}, 2, 2026},
		{"s1 to s2", Period{Kind: PeriodSemester, Value: 1, Year: 2026}, 2, 2025},
		{"year", Period{Kind: PeriodYear, Year: 2026}, 0, 2025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.period.Previous()
			if prev.Value != tt.wantValue || prev.Year != tt.wantYear {
				t.Errorf("Previous() = (%d, %d), want (%d, %d)",
					prev.Year, prev.Value, tt.wantYear, tt.wantValue)
			}
		})
	}
}

func TestPeriodPrevious_KeepsYearWildcard(t *testing.T) {
	prev := Period{Kind: PeriodMonth, Value: 1, Year: YearAll}.Previous()
	if prev.Value != 12 || prev.Year != YearAll {
		t.Errorf("Previous() = (%d, %d), want (YearAll, 12)", prev.Year, prev.Value)
	}
}

func TestPeriodValidate(t *testing.T) {
	valid := []Period{
		{Kind: PeriodMonth, Value: 12, Year: 2026},
		{Kind: PeriodQuarter, Value: 4},
		{Kind: PeriodSemester, Value: 2},
		{Kind: PeriodYear, Year: YearAll},
		{Kind: PeriodAll},
	}
	for _, p := range valid {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%s/%d) = %v, want nil", p.Kind, p.Value, err)
		}
	}
	invalid := []Period{
		{Kind: "week", Value: 1},
		{Kind: PeriodMonth, Value: 0},
		{Kind: PeriodMonth, Value: 13},
		{Kind: PeriodQuarter, Value: 5},
		{Kind: PeriodSemester, Value: 3},
	}
	for _, p := range invalid {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%s/%d) = nil, want error", p.Kind, p.Value)
		}
	}
}
