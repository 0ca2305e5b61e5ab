package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/core"
	"finanzas/internal/localkv"
	"finanzas/internal/log"
)

// DashboardSummary is the payload behind the main dashboard view.
type DashboardSummary struct {
	Period         core.Period           `json:"period"`
	Totals         core.PeriodTotals     `json:"totals"`
	Net            core.Money            `json:"net"`
	PreviousTotals core.PeriodTotals     `json:"previousTotals"`
	CuentasCobrar  core.Money            `json:"cuentasPorCobrar"`
	CuentasPagar   core.Money            `json:"cuentasPorPagar"`
	Ratios         core.Ratios           `json:"ratios"`
	IncomeByCat    []core.CategoryAmount `json:"incomeByCategory"`
	ExpenseByCat   []core.CategoryAmount `json:"expenseByCategory"`
	RecordCount    int                   `json:"recordCount"`
	Degraded       bool                  `json:"degraded"`
}

// CashFlowReport is the monthly series with reconciliation and projections.
type CashFlowReport struct {
	Buckets  []core.MonthlyBucket `json:"buckets"`
	BurnRate core.Money           `json:"burnRate"`
	Runway   float64              `json:"runwayMonths"`
	Anchored bool                 `json:"anchored"`
	Degraded bool                 `json:"degraded"`
}

// AgingReport buckets outstanding balances by days overdue.
type AgingReport struct {
	Type     core.TransactionType `json:"type"`
	Lines    []core.AgingLine     `json:"lines"`
	Total    core.Money           `json:"total"`
	Degraded bool                 `json:"degraded"`
}

// ProjectReport summarizes profitability per project group.
type ProjectReport struct {
	Projects []core.ProjectSummary `json:"projects"`
	Degraded bool                  `json:"degraded"`
}

// CostCenterReport breaks paid expenses down by cost center.
type CostCenterReport struct {
	Centers  []core.CategoryAmount `json:"centers"`
	Degraded bool                  `json:"degraded"`
}

// DashboardService computes read-side aggregates over the merged live and
// historical record sets. Results are memoized per snapshot version, so a
// mutation invalidates every cached view at once.
type DashboardService struct {
	hub        *SnapshotHub
	historical *HistoricalCache
	kv         *localkv.Store
	cls        core.Classification
	cache      *cache.LRUCache[any]
	logger     *log.Logger
	now        func() time.Time
}

func NewDashboardService(hub *SnapshotHub, historical *HistoricalCache, kv *localkv.Store, logger *log.Logger) *DashboardService {
	return &DashboardService{
		hub:        hub,
		historical: historical,
		kv:         kv,
		cls:        core.DefaultClassification(),
		cache:      cache.NewLRUCache[any](128, 5*time.Minute),
		logger:     logger.WithComponent(log.ComponentDashboard),
		now:        time.Now,
	}
}

// records merges live and historical transactions.
func (s *DashboardService) records(ctx context.Context) ([]core.Transaction, bool) {
	live := s.hub.Records()
	historical, degraded := s.historical.Records(ctx)
	return append(live, historical...), degraded
}

func (s *DashboardService) cacheKey(view string, period core.Period) string {
	return fmt.Sprintf("%s|v%d|%s|%d|%d", view, s.hub.Version(), period.Kind, period.Value, period.Year)
}

// Summary computes the dashboard totals for a period.
func (s *DashboardService) Summary(ctx context.Context, period core.Period) (DashboardSummary, error) {
	if err := period.Validate(); err != nil {
		return DashboardSummary{}, err
	}

	key := s.cacheKey("summary", period)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(DashboardSummary), nil
	}

	all, degraded := s.records(ctx)
	filtered := period.Filter(all)
	previous := period.Previous().Filter(all)

	totals := core.Totals(filtered)
	cxc := core.PendingTotal(filtered, core.Income)
	cxp := core.PendingTotal(filtered, core.Expense)

	summary := DashboardSummary{
		Period:         period,
		Totals:         totals,
		Net:            totals.Net(),
		PreviousTotals: core.Totals(previous),
		CuentasCobrar:  cxc,
		CuentasPagar:   cxp,
		Ratios:         core.ComputeRatios(totals, cxc, cxp),
		IncomeByCat:    core.CategoryTotals(filtered, core.Income),
		ExpenseByCat:   core.CategoryTotals(filtered, core.Expense),
		RecordCount:    len(filtered),
		Degraded:       degraded,
	}

	s.cache.Set(key, summary)
	return summary, nil
}

// CashFlow builds the monthly series for a period: actuals reconciled to the
// bank anchor, free cash flow, and three projected months.
func (s *DashboardService) CashFlow(ctx context.Context, period core.Period) (CashFlowReport, error) {
	if err := period.Validate(); err != nil {
		return CashFlowReport{}, err
	}

	key := s.cacheKey("cashflow", period)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(CashFlowReport), nil
	}

	all, degraded := s.records(ctx)
	filtered := period.Filter(all)

	buckets := core.WithFreeCashFlow(core.MonthlyBuckets(filtered), filtered, s.cls)

	anchor, hasAnchor := s.anchor()
	anchorMonth := ""
	if hasAnchor {
		anchorMonth = anchor.BalanceDate.MonthKey()
	}
	buckets = core.Reconcile(buckets, anchorMonth, anchor.Balance, hasAnchor)

	projected := core.Project(buckets)
	burn := core.BurnRate(buckets)

	balance := core.Money{}
	if len(buckets) > 0 {
		balance = buckets[len(buckets)-1].Acumulado
	}

	report := CashFlowReport{
		Buckets:  append(buckets, projected...),
		BurnRate: burn,
		Runway:   core.Runway(balance, burn),
		Anchored: hasAnchor,
		Degraded: degraded,
	}

	s.cache.Set(key, report)
	return report, nil
}

// Aging buckets outstanding balances for one side of the ledger. Receivables
// come from pending income, payables from pending expenses.
func (s *DashboardService) Aging(ctx context.Context, tt core.TransactionType) (AgingReport, error) {
	if !tt.Valid() {
		return AgingReport{}, core.ErrInvalidType
	}

	key := fmt.Sprintf("aging|v%d|%s", s.hub.Version(), tt)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(AgingReport), nil
	}

	all, degraded := s.records(ctx)
	report := AgingReport{
		Type:     tt,
		Lines:    core.AgingBuckets(all, tt, s.now()),
		Total:    core.PendingTotal(all, tt),
		Degraded: degraded,
	}

	s.cache.Set(key, report)
	return report, nil
}

// Projects summarizes profitability per project group for a period.
func (s *DashboardService) Projects(ctx context.Context, period core.Period) (ProjectReport, error) {
	if err := period.Validate(); err != nil {
		return ProjectReport{}, err
	}

	key := s.cacheKey("projects", period)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(ProjectReport), nil
	}

	all, degraded := s.records(ctx)
	report := ProjectReport{
		Projects: core.ProjectSummaries(period.Filter(all)),
		Degraded: degraded,
	}

	s.cache.Set(key, report)
	return report, nil
}

// CostCenters breaks down paid expenses by cost center for a period.
func (s *DashboardService) CostCenters(ctx context.Context, period core.Period) (CostCenterReport, error) {
	if err := period.Validate(); err != nil {
		return CostCenterReport{}, err
	}

	key := s.cacheKey("costcenters", period)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(CostCenterReport), nil
	}

	all, degraded := s.records(ctx)
	report := CostCenterReport{
		Centers:  core.CostCenterTotals(period.Filter(all)),
		Degraded: degraded,
	}

	s.cache.Set(key, report)
	return report, nil
}

// Anchor returns the operator-entered bank balance snapshot.
func (s *DashboardService) Anchor() (core.BankAccountSnapshot, bool) {
	return s.anchor()
}

// SetAnchor stores a new bank balance snapshot and drops memoized views that
// depend on it.
func (s *DashboardService) SetAnchor(snapshot core.BankAccountSnapshot) error {
	// The balance itself may be zero or negative; only the date is required.
	if err := snapshot.BalanceDate.Validate(); err != nil {
		return err
	}
	if err := s.kv.Set(localkv.KeyReconciliationAnchor, snapshot); err != nil {
		return fmt.Errorf("store anchor: %w", err)
	}
	s.cache.Purge()
	return nil
}

func (s *DashboardService) anchor() (core.BankAccountSnapshot, bool) {
	var snapshot core.BankAccountSnapshot
	err := s.kv.Get(localkv.KeyReconciliationAnchor, &snapshot)
	if errors.Is(err, localkv.ErrKeyNotFound) {
		return core.BankAccountSnapshot{}, false
	}
	if err != nil {
		s.logger.Error("failed to load reconciliation anchor", log.FieldError, err)
		return core.BankAccountSnapshot{}, false
	}
	return snapshot, true
}
