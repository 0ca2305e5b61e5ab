package http

import (
	"encoding/json"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/export"
	"finanzas/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r)
	summary, err := s.dashboard.Summary(r.Context(), period)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r)
	report, err := s.dashboard.CashFlow(r.Context(), period)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAgingReport(w http.ResponseWriter, r *http.Request) {
	// Receivables by default; ?type=expense gives payables.
	tt := core.Income
	if v := r.URL.Query().Get("type"); v != "" {
		tt = core.TransactionType(v)
	}
	report, err := s.dashboard.Aging(r.Context(), tt)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleProjectReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.dashboard.Projects(r.Context(), parsePeriod(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleCostCenterReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.dashboard.CostCenters(r.Context(), parsePeriod(r))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetAnchor(w http.ResponseWriter, _ *http.Request) {
	anchor, ok := s.dashboard.Anchor()
	if !ok {
		respondError(w, http.StatusNotFound, "no reconciliation anchor set")
		return
	}
	respondJSON(w, http.StatusOK, anchor)
}

type setAnchorRequest struct {
	BankName        string `json:"bankName"`
	BalanceCents    int64  `json:"balanceCents"`
	BalanceDate     string `json:"balanceDate"`
	CreditLineLimit int64  `json:"creditLineLimitCents"`
}

func (s *Server) handleSetAnchor(w http.ResponseWriter, r *http.Request) {
	var req setAnchorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := parseDate(req.BalanceDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "balanceDate must be YYYY-MM-DD")
		return
	}

	snapshot := core.BankAccountSnapshot{
		BankName:        sanitizeInput(req.BankName),
		Balance:         core.Money{Cents: req.BalanceCents},
		BalanceDate:     date,
		CreditLineLimit: core.Money{Cents: req.CreditLineLimit},
	}
	if err := s.dashboard.SetAnchor(snapshot); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	records := s.transactions.List(r.Context())

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.WriteCSV(w, records); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed", log.FieldError, err)
	}
}
