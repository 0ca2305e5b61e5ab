package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type createTransactionRequest struct {
	Date               string `json:"date"`
	Type               string `json:"type"`
	Amount             string `json:"amount"`
	Status             string `json:"status"`
	PaidAmount         string `json:"paidAmount"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	Project            string `json:"project"`
	CostCenter         string `json:"costCenter"`
	IsRecurring        bool   `json:"isRecurring"`
	RecurringFrequency string `json:"recurringFrequency"`
	RecurringEndDate   string `json:"recurringEndDate"`
	Author             string `json:"author"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	cents, err := core.ParseLocaleAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount: "+req.Amount)
		return
	}

	status := core.Status(req.Status)
	if req.Status == "" {
		status = core.StatusPending
	}

	tx := core.Transaction{
		Date:               date,
		Type:               core.TransactionType(req.Type),
		Amount:             core.Money{Cents: cents},
		Status:             status,
		Description:        sanitizeInput(req.Description),
		Category:           sanitizeInput(req.Category),
		Project:            sanitizeInput(req.Project),
		CostCenter:         sanitizeInput(req.CostCenter),
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: sanitizeInput(req.RecurringFrequency),
	}

	if req.PaidAmount != "" {
		paidCents, err := core.ParseLocaleAmount(req.PaidAmount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid paidAmount: "+req.PaidAmount)
			return
		}
		tx.PaidAmount = core.Money{Cents: paidCents}
	}
	if req.RecurringEndDate != "" {
		endDate, err := parseDate(req.RecurringEndDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "recurringEndDate must be YYYY-MM-DD")
			return
		}
		tx.RecurringEndDate = endDate
	}

	created, err := s.transactions.Create(r.Context(), tx, sanitizeInput(req.Author))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	records := s.transactions.List(r.Context())
	period := parsePeriod(r)
	// Without query parameters the full live set is returned.
	if r.URL.Query().Has("period") || r.URL.Query().Has("year") || r.URL.Query().Has("value") {
		if err := period.Validate(); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		records = period.Filter(records)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": records,
		"count":        len(records),
	})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

type updateTransactionRequest struct {
	Date        *string `json:"date"`
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Project     *string `json:"project"`
	CostCenter  *string `json:"costCenter"`
	Author      string  `json:"author"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var fields storage.UpdateFields
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		fields.Date = &date
	}
	if req.Amount != nil {
		cents, err := core.ParseLocaleAmount(*req.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid amount: "+*req.Amount)
			return
		}
		fields.Amount = &core.Money{Cents: cents}
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		fields.Description = &desc
	}
	if req.Category != nil {
		cat := sanitizeInput(*req.Category)
		fields.Category = &cat
	}
	if req.Project != nil {
		project := sanitizeInput(*req.Project)
		fields.Project = &project
	}
	if req.CostCenter != nil {
		cc := sanitizeInput(*req.CostCenter)
		fields.CostCenter = &cc
	}

	updated, err := s.transactions.Update(r.Context(), r.PathValue("id"), fields, sanitizeInput(req.Author))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type authorRequest struct {
	Author string `json:"author"`
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	var req authorRequest
	json.NewDecoder(r.Body).Decode(&req) // body is optional

	toggled, err := s.transactions.ToggleStatus(r.Context(), r.PathValue("id"), sanitizeInput(req.Author))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toggled)
}

type paymentRequest struct {
	Amount string `json:"amount"`
	Author string `json:"author"`
}

func (s *Server) handleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseLocaleAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount: "+req.Amount)
		return
	}

	after, err := s.transactions.RegisterPayment(r.Context(), r.PathValue("id"), core.Money{Cents: cents}, sanitizeInput(req.Author))
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, after)
}

type noteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	after, err := s.transactions.AddNote(r.Context(), r.PathValue("id"), core.Note{
		Text:   sanitizeInput(req.Text),
		Author: sanitizeInput(req.Author),
		Kind:   core.NoteComment,
	})
	if err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, after)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		s.respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) respondStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, storage.ErrOverpayment):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusBadRequest, err.Error())
	}
}
