package core

import "testing"

func TestReconcile_AnchoredBalance(t *testing.T) {
	// Buckets netting 100 then 200 with an anchor of 500 at the second
	// month: 2025-12 must land exactly on 500 and 2025-11 on 300.
	buckets := []MonthlyBucket{
		{Month: "2025-11", Ingresos: Money{Cents: 10000}},
		{Month: "2025-12", Ingresos: Money{Cents: 20000}},
	}
	out := Reconcile(buckets, "2025-12", Money{Cents: 50000}, true)
	if out[1].Acumulado.Cents != 50000 {
		t.Errorf("acumulado(2025-12) = %d, want 50000", out[1].Acumulado.Cents)
	}
	if out[0].Acumulado.Cents != 30000 {
		t.Errorf("acumulado(2025-11) = %d, want 30000", out[0].Acumulado.Cents)
	}
}

func TestReconcile_NoAnchorFallsBackToZero(t *testing.T) {
	buckets := []MonthlyBucket{
		{Month: "2026-01", Ingresos: Money{Cents: 10000}, Egresos: Money{Cents: 4000}},
		{Month: "2026-02", Egresos: Money{Cents: 1000}},
	}
	out := Reconcile(buckets, "", Money{}, false)
	if out[0].Acumulado.Cents != 6000 {
		t.Errorf("acumulado(2026-01) = %d, want 6000", out[0].Acumulado.Cents)
	}
	if out[1].Acumulado.Cents != 5000 {
		t.Errorf("acumulado(2026-02) = %d, want 5000", out[1].Acumulado.Cents)
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	buckets := []MonthlyBucket{{Month: "2026-01", Ingresos: Money{Cents: 100}}}
	_ = Reconcile(buckets, "2026-01", Money{Cents: 999}, true)
	if buckets[0].Acumulado.Cents != 0 {
		t.Errorf("input slice was mutated: acumulado = %d", buckets[0].Acumulado.Cents)
	}
}

func TestWithFreeCashFlow(t *testing.T) {
	cls := Classification{
		FinancingKeywords: []string{"Leasing"},
		CapExKeywords:     []string{"Equipo"},
	}
	records := []Transaction{
		paidTxn("1", Income, NewDate(2026, 1, 5), 100000),
		paidTxn("2", Expense, NewDate(2026, 1, 6), 30000),
		paidTxn("3", Expense, NewDate(2026, 1, 7), 20000),
		paidTxn("4", Expense, NewDate(2026, 1, 8), 15000),
	}
	records[1].Category = "Gastos Operativos"
	records[2].Category = "Leasing Vehicular" // financing: excluded from operating flow
	records[3].Category = "Equipo de Cómputo" // capex

	buckets := WithFreeCashFlow(MonthlyBuckets(records), records, cls)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	// FCF = 100000 - 30000 (operating) - 15000 (capex) = 55000; leasing excluded.
	if buckets[0].FCF.Cents != 55000 {
		t.Errorf("FCF = %d, want 55000", buckets[0].FCF.Cents)
	}
}

func TestClassification_CaseSensitiveSubstring(t *testing.T) {
	cls := DefaultClassification()
	if !cls.IsCapEx("Equipo de oficina") {
		t.Error("substring match on Equipo should classify as capex")
	}
	if cls.IsCapEx("equipo de oficina") {
		t.Error("match must be case-sensitive: lowercase must not classify")
	}
	if !cls.IsFinancing("Pago Leasing auto") {
		t.Error("Leasing should classify as financing")
	}
}

func TestProject_EmitsExactlyThreeBuckets(t *testing.T) {
	series := [][]MonthlyBucket{
		{{Month: "2026-01", Ingresos: Money{Cents: 1000}, Acumulado: Money{Cents: 1000}}},
		{
			{Month: "2026-01", Ingresos: Money{Cents: 3000}, Egresos: Money{Cents: 1000}},
			{Month: "2026-02", Ingresos: Money{Cents: 6000}, Egresos: Money{Cents: 2000}},
			{Month: "2026-03", Ingresos: Money{Cents: 9000}, Egresos: Money{Cents: 3000}, Acumulado: Money{Cents: 12000}},
		},
	}
	for _, buckets := range series {
		projected := Project(buckets)
		if len(projected) != ProjectionMonths {
			t.Fatalf("got %d projected buckets, want %d", len(projected), ProjectionMonths)
		}
		for _, b := range projected {
			if !b.IsProjection {
				t.Errorf("bucket %s missing IsProjection flag", b.Month)
			}
		}
	}
}

func TestProject_TrailingAverage(t *testing.T) {
	buckets := []MonthlyBucket{
		{Month: "2026-01", Ingresos: Money{Cents: 3000}, Egresos: Money{Cents: 1500}},
		{Month: "2026-02", Ingresos: Money{Cents: 6000}, Egresos: Money{Cents: 1500}},
		{Month: "2026-03", Ingresos: Money{Cents: 9000}, Egresos: Money{Cents: 1500}, Acumulado: Money{Cents: 10000}},
	}
	projected := Project(buckets)
	// avg income 6000, avg expense 1500 -> each month advances by 4500.
	if projected[0].Month != "2026-04" {
		t.Errorf("first projected month = %s, want 2026-04", projected[0].Month)
	}
	if projected[0].Acumulado.Cents != 14500 {
		t.Errorf("acumulado(+1) = %d, want 14500", projected[0].Acumulado.Cents)
	}
	if projected[2].Acumulado.Cents != 23500 {
		t.Errorf("acumulado(+3) = %d, want 23500", projected[2].Acumulado.Cents)
	}
}

func TestProject_YearRollover(t *testing.T) {
	buckets := []MonthlyBucket{{Month: "2025-12", Ingresos: Money{Cents: 1000}}}
	projected := Project(buckets)
	if projected[0].Month != "2026-01" {
		t.Errorf("first projected month = %s, want 2026-01", projected[0].Month)
	}
}

func TestProject_EmptySeries(t *testing.T) {
	if got := Project(nil); got != nil {
		t.Errorf("Project(nil) = %v, want nil", got)
	}
}

func TestProject_IgnoresExistingProjections(t *testing.T) {
	buckets := []MonthlyBucket{
		{Month: "2026-01", Ingresos: Money{Cents: 1000}},
		{Month: "2026-02", Ingresos: Money{Cents: 99999}, IsProjection: true},
	}
	projected := Project(buckets)
	if projected[0].Ingresos.Cents != 1000 {
		t.Errorf("projection averaged a projected bucket: %d", projected[0].Ingresos.Cents)
	}
}

func TestBurnRate(t *testing.T) {
	buckets := []MonthlyBucket{
		{Month: "2026-01", Egresos: Money{Cents: 1000}},
		{Month: "2026-02", Egresos: Money{Cents: 2000}},
		{Month: "2026-03", Egresos: Money{Cents: 3000}},
		{Month: "2026-04", Egresos: Money{Cents: 4000}},
	}
	// Trailing three months: (2000+3000+4000)/3.
	if burn := BurnRate(buckets); burn.Cents != 3000 {
		t.Errorf("burn rate = %d, want 3000", burn.Cents)
	}
	if burn := BurnRate(nil); burn.Cents != 0 {
		t.Errorf("burn rate of empty series = %d, want 0", burn.Cents)
	}
}

func TestRunway(t *testing.T) {
	if r := Runway(Money{Cents: 9000}, Money{Cents: 3000}); r != 3 {
		t.Errorf("runway = %v, want 3", r)
	}
	if r := Runway(Money{Cents: -5000}, Money{Cents: 1000}); r != 0 {
		t.Errorf("negative balance runway = %v, want 0", r)
	}
	if r := Runway(Money{Cents: 9000}, Money{}); r != RunwayUnbounded {
		t.Errorf("zero-burn runway = %v, want sentinel %v", r, RunwayUnbounded)
	}
}
