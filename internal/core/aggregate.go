package core

import (
	"sort"
	"time"
)

// The central business rule of every aggregation: only paid records enter
// income/expense/profit totals. Pending and partial records participate only
// in the CXC/CXP (receivables/payables) aggregates and the aging report.

type (
	// MonthlyBucket accumulates paid income and expense for one YYYY-MM key.
	// Acumulado and FCF are filled in by the cash-flow stage.
	MonthlyBucket struct {
		Month        string `json:"month"`
		Ingresos     Money  `json:"ingresos"`
		Egresos      Money  `json:"egresos"`
		Acumulado    Money  `json:"acumulado"`
		FCF          Money  `json:"fcf"`
		IsProjection bool   `json:"isProjection"`
	}

	CategoryAmount struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
		Count  int    `json:"count"`
	}

	// ProjectSummary groups by the truncated project key.
	ProjectSummary struct {
		Key      string  `json:"key"`
		Ingresos Money   `json:"ingresos"`
		Egresos  Money   `json:"egresos"`
		Margin   Money   `json:"margin"`
		ROI      float64 `json:"roi"`
	}

	// AgingLine is one days-overdue range of outstanding pending balances.
	AgingLine struct {
		Bucket string `json:"bucket"`
		Amount Money  `json:"amount"`
		Count  int    `json:"count"`
	}

	// PeriodTotals are the paid-only totals for one reporting period.
	PeriodTotals struct {
		Ingresos Money `json:"ingresos"`
		Egresos  Money `json:"egresos"`
	}

	// Ratios are derived entirely from already-aggregated totals. Every
	// ratio that would divide by zero income resolves to 0, never NaN.
	Ratios struct {
		GrossMargin         float64 `json:"grossMargin"`
		ExpenseRatio        float64 `json:"expenseRatio"`
		Liquidity           float64 `json:"liquidity"`
		DaysReceivable      float64 `json:"daysReceivable"`
		DaysPayable         float64 `json:"daysPayable"`
		CashConversionCycle float64 `json:"cashConversionCycle"`
	}
)

// LiquidityCapped is the sentinel liquidity ratio when there are receivables
// but no payables at all.
const LiquidityCapped = 999

// Neto is the bucket's income minus expense.
func (b MonthlyBucket) Neto() Money {
	return Money{Cents: b.Ingresos.Cents - b.Egresos.Cents}
}

// Net is the period profit: ingresos minus egresos.
func (t PeriodTotals) Net() Money {
	return Money{Cents: t.Ingresos.Cents - t.Egresos.Cents}
}

// MonthlyBuckets folds paid records into per-month income/expense sums,
// sorted ascending by month key. Records with a zero date are skipped.
func MonthlyBuckets(records []Transaction) []MonthlyBucket {
	byMonth := map[string]*MonthlyBucket{}
	for _, r := range records {
		if r.Status != StatusPaid || r.Date.IsZero() {
			continue
		}
		key := r.Date.MonthKey()
		b, ok := byMonth[key]
		if !ok {
			b = &MonthlyBucket{Month: key}
			byMonth[key] = b
		}
		if r.Type == Income {
			b.Ingresos.Cents += r.Amount.Cents
		} else {
			b.Egresos.Cents += r.Amount.Cents
		}
	}
	out := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	// YYYY-MM keys sort chronologically as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Totals sums paid income and expense over the given records.
func Totals(records []Transaction) PeriodTotals {
	var t PeriodTotals
	for _, r := range records {
		if r.Status != StatusPaid {
			continue
		}
		if r.Type == Income {
			t.Ingresos.Cents += r.Amount.Cents
		} else {
			t.Egresos.Cents += r.Amount.Cents
		}
	}
	return t
}

// CategoryTotals sums paid amounts per category for one transaction type,
// sorted by amount descending.
func CategoryTotals(records []Transaction, tt TransactionType) []CategoryAmount {
	sums := map[string]*CategoryAmount{}
	for _, r := range records {
		if r.Status != StatusPaid || r.Type != tt {
			continue
		}
		ca, ok := sums[r.Category]
		if !ok {
			ca = &CategoryAmount{Name: r.Category}
			sums[r.Category] = ca
		}
		ca.Amount.Cents += r.Amount.Cents
		ca.Count++
	}
	out := make([]CategoryAmount, 0, len(sums))
	for _, ca := range sums {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CostCenterTotals sums paid expense per cost center, sorted by amount
// descending. Cost centers apply to expenses only.
func CostCenterTotals(records []Transaction) []CategoryAmount {
	sums := map[string]*CategoryAmount{}
	for _, r := range records {
		if r.Status != StatusPaid || r.Type != Expense {
			continue
		}
		cc := r.CostCenter
		if cc == "" {
			cc = CostCenterUnassigned
		}
		ca, ok := sums[cc]
		if !ok {
			ca = &CategoryAmount{Name: cc}
			sums[cc] = ca
		}
		ca.Amount.Cents += r.Amount.Cents
		ca.Count++
	}
	out := make([]CategoryAmount, 0, len(sums))
	for _, ca := range sums {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ProjectSummaries groups paid records by ProjectGroupKey and derives margin
// and ROI per project. ROI is 0 when a project has no income.
func ProjectSummaries(records []Transaction) []ProjectSummary {
	sums := map[string]*ProjectSummary{}
	order := []string{}
	for _, r := range records {
		if r.Status != StatusPaid {
			continue
		}
		key := ProjectGroupKey(r.Project)
		if key == "" {
			continue
		}
		ps, ok := sums[key]
		if !ok {
			ps = &ProjectSummary{Key: key}
			sums[key] = ps
			order = append(order, key)
		}
		if r.Type == Income {
			ps.Ingresos.Cents += r.Amount.Cents
		} else {
			ps.Egresos.Cents += r.Amount.Cents
		}
	}
	out := make([]ProjectSummary, 0, len(order))
	for _, key := range order {
		ps := sums[key]
		ps.Margin.Cents = ps.Ingresos.Cents - ps.Egresos.Cents
		if ps.Ingresos.Cents > 0 {
			ps.ROI = float64(ps.Margin.Cents) / float64(ps.Ingresos.Cents) * 100
		}
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// agingBucketFor classifies an integer days-overdue value. Upper bounds are
// inclusive (30/60/90). Records not yet due land in the first bucket.
func agingBucketFor(daysOverdue int) string {
	switch {
	case daysOverdue <= 30:
		return "0-30"
	case daysOverdue <= 60:
		return "31-60"
	case daysOverdue <= 90:
		return "61-90"
	default:
		return "90+"
	}
}

// AgingBuckets partitions the outstanding balance of pending records of the
// given type into days-overdue ranges. Only pending-status records are
// eligible; now is injected so the report is clock-independent.
func AgingBuckets(records []Transaction, tt TransactionType, now time.Time) []AgingLine {
	lines := []AgingLine{
		{Bucket: "0-30"},
		{Bucket: "31-60"},
		{Bucket: "61-90"},
		{Bucket: "90+"},
	}
	index := map[string]int{"0-30": 0, "31-60": 1, "61-90": 2, "90+": 3}
	today := DateOf(now)
	for _, r := range records {
		if r.Status != StatusPending || r.Type != tt || r.Date.IsZero() {
			continue
		}
		daysOverdue := int(today.Sub(r.Date.Time).Hours() / 24)
		i := index[agingBucketFor(daysOverdue)]
		lines[i].Amount.Cents += r.Amount.Cents
		lines[i].Count++
	}
	return lines
}

// PendingTotal sums the remaining balance of pending and partial records of
// the given type: CXC for income, CXP for expense. A partial record
// contributes amount minus paidAmount, never the gross amount.
func PendingTotal(records []Transaction, tt TransactionType) Money {
	var total Money
	for _, r := range records {
		if r.Type != tt {
			continue
		}
		total.Cents += r.Remaining().Cents
	}
	return total
}

// ComputeRatios derives the executive-summary ratios from period totals and
// the outstanding CXC/CXP balances.
func ComputeRatios(totals PeriodTotals, cxc, cxp Money) Ratios {
	var r Ratios
	if totals.Ingresos.Cents > 0 {
		r.GrossMargin = float64(totals.Net().Cents) / float64(totals.Ingresos.Cents) * 100
		r.ExpenseRatio = float64(totals.Egresos.Cents) / float64(totals.Ingresos.Cents) * 100
		r.DaysReceivable = float64(cxc.Cents) / (float64(totals.Ingresos.Cents) / 30)
	}
	if totals.Egresos.Cents > 0 {
		r.DaysPayable = float64(cxp.Cents) / (float64(totals.Egresos.Cents) / 30)
	}
	switch {
	case cxp.Cents == 0 && cxc.Cents > 0:
		r.Liquidity = LiquidityCapped
	case cxp.Cents == 0:
		r.Liquidity = 1
	default:
		r.Liquidity = float64(cxc.Cents) / float64(cxp.Cents)
	}
	r.CashConversionCycle = r.DaysReceivable - r.DaysPayable
	return r
}
