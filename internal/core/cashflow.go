package core

import "time"

// ProjectionMonths is the fixed number of synthetic future buckets the
// projection stage emits.
const ProjectionMonths = 3

// RunwayUnbounded is the sentinel runway when the burn rate is zero. It is
// returned instead of +Inf so the value never leaks into arithmetic.
const RunwayUnbounded = float64(-1)

// Reconcile anchors the running cumulative balance to a known external
// checkpoint. The offset is chosen so the bucket for anchorMonth ends at
// exactly anchorBalance; every bucket then carries the corrected Acumulado.
// Without an anchor (hasAnchor false) the walk is a plain cumulative sum
// starting from zero, so a failed anchor fetch never blocks the dashboard.
// Buckets must already be sorted ascending by month, as MonthlyBuckets
// returns them.
func Reconcile(buckets []MonthlyBucket, anchorMonth string, anchorBalance Money, hasAnchor bool) []MonthlyBucket {
	out := make([]MonthlyBucket, len(buckets))
	copy(out, buckets)

	var offset int64
	if hasAnchor {
		var through int64
		for _, b := range out {
			if b.Month <= anchorMonth {
				through += b.Neto().Cents
			}
		}
		offset = anchorBalance.Cents - through
	}

	accumulated := offset
	for i := range out {
		accumulated += out[i].Neto().Cents
		out[i].Acumulado = Money{Cents: accumulated}
	}
	return out
}

// WithFreeCashFlow fills each bucket's FCF: operating cash flow (paid income
// minus paid expense, excluding financing/lease categories) minus CapEx
// (expense in equipment-tagged categories). Category membership uses the
// classification table's case-sensitive substring matching.
func WithFreeCashFlow(buckets []MonthlyBucket, records []Transaction, cls Classification) []MonthlyBucket {
	type flows struct {
		opIncome  int64
		opExpense int64
		capex     int64
	}
	byMonth := map[string]*flows{}
	for _, r := range records {
		if r.Status != StatusPaid || r.Date.IsZero() {
			continue
		}
		f, ok := byMonth[r.Date.MonthKey()]
		if !ok {
			f = &flows{}
			byMonth[r.Date.MonthKey()] = f
		}
		if r.Type == Income {
			f.opIncome += r.Amount.Cents
			continue
		}
		switch {
		case cls.IsFinancing(r.Category):
			// Financing outflows are not operating cash flow.
		case cls.IsCapEx(r.Category):
			f.capex += r.Amount.Cents
		default:
			f.opExpense += r.Amount.Cents
		}
	}
	out := make([]MonthlyBucket, len(buckets))
	copy(out, buckets)
	for i := range out {
		if f, ok := byMonth[out[i].Month]; ok {
			out[i].FCF = Money{Cents: f.opIncome - f.opExpense - f.capex}
		}
	}
	return out
}

// Project extrapolates exactly ProjectionMonths future buckets from the
// trailing average of the last three actual months. Each synthetic bucket is
// flagged IsProjection so presentation can render it distinctly and so it is
// excluded from any actual aggregate. Returns nil for an empty series.
func Project(buckets []MonthlyBucket) []MonthlyBucket {
	actuals := make([]MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		if !b.IsProjection {
			actuals = append(actuals, b)
		}
	}
	if len(actuals) == 0 {
		return nil
	}

	window := actuals
	if len(window) > 3 {
		window = window[len(window)-3:]
	}
	var sumIncome, sumExpense int64
	for _, b := range window {
		sumIncome += b.Ingresos.Cents
		sumExpense += b.Egresos.Cents
	}
	avgIncome := sumIncome / int64(len(window))
	avgExpense := sumExpense / int64(len(window))

	last := actuals[len(actuals)-1]
	accumulated := last.Acumulado.Cents
	month := last.Month
	out := make([]MonthlyBucket, 0, ProjectionMonths)
	for i := 0; i < ProjectionMonths; i++ {
		month = nextMonthKey(month)
		accumulated += avgIncome - avgExpense
		out = append(out, MonthlyBucket{
			Month:        month,
			Ingresos:     Money{Cents: avgIncome},
			Egresos:      Money{Cents: avgExpense},
			Acumulado:    Money{Cents: accumulated},
			IsProjection: true,
		})
	}
	return out
}

// BurnRate is the average monthly expense of the trailing three actual
// months with data.
func BurnRate(buckets []MonthlyBucket) Money {
	actuals := make([]MonthlyBucket, 0, len(buckets))
	for _, b := range buckets {
		if !b.IsProjection {
			actuals = append(actuals, b)
		}
	}
	if len(actuals) == 0 {
		return Money{}
	}
	window := actuals
	if len(window) > 3 {
		window = window[len(window)-3:]
	}
	var sum int64
	for _, b := range window {
		sum += b.Egresos.Cents
	}
	return Money{Cents: sum / int64(len(window))}
}

// Runway is the number of months the balance lasts at the given burn rate,
// clamped to >= 0. A zero burn rate yields RunwayUnbounded.
func Runway(balance, burnRate Money) float64 {
	if burnRate.Cents <= 0 {
		return RunwayUnbounded
	}
	months := float64(balance.Cents) / float64(burnRate.Cents)
	if months < 0 {
		return 0
	}
	return months
}

func nextMonthKey(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 1, 0).Format("2006-01")
}
