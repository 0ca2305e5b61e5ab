package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/core"
)

// parsePeriod extracts the reporting period from query parameters. Defaults
// to the current month when nothing is provided.
func parsePeriod(r *http.Request) core.Period {
	now := time.Now()
	period := core.Period{
		Kind:  core.PeriodMonth,
		Value: int(now.Month()),
		Year:  now.Year(),
	}

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("period")); v != "" {
		period.Kind = core.PeriodKind(v)
		if period.Kind != core.PeriodMonth {
			period.Value = 0
		}
	}
	if v := strings.TrimSpace(q.Get("value")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			period.Value = n
		}
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			period.Year = y
		}
	}
	if period.Kind == core.PeriodAll {
		period.Year = core.YearAll
		period.Value = 0
	}
	return period
}

// parseDate parses a date string in YYYY-MM-DD format.
func parseDate(dateStr string) (core.Date, error) {
	parsedTime, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(parsedTime), nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
