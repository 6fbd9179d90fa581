package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/rm-finance/internal/analytics"
	"github.com/rocjay1/rm-finance/internal/budget"
	"github.com/rocjay1/rm-finance/internal/category"
	"github.com/rocjay1/rm-finance/internal/clock"
	"github.com/rocjay1/rm-finance/internal/goal"
	"github.com/rocjay1/rm-finance/internal/importer"
	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/metrics"
	"github.com/rocjay1/rm-finance/internal/models"
)

// principalHeader carries the signed-in user's object ID when the Functions
// host runs behind App Service authentication.
const principalHeader = "X-MS-CLIENT-PRINCIPAL-ID"

// ImportSettings locates the import pipeline's storage.
type ImportSettings struct {
	Container string
	Queue     string
}

// NotifySettings says whose data the nightly trigger checks and where the
// mail goes.
type NotifySettings struct {
	OwnerID   string
	UserEmail string
}

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Store      DataStore
	Ledger     *ledger.Ledger
	Budgets    *budget.Service
	Goals      *goal.Service
	Categories *category.Service
	Analytics  *analytics.Service
	Importer   *importer.Importer
	Metrics    *metrics.Metrics
	Clock      clock.Clock

	Blob  BlobClient
	Queue QueueClient
	Email EmailClient

	Import ImportSettings
	Notify NotifySettings
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a core error to its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, status, "Internal error")
		return
	}
	slog.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	WriteError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrWriteConflict),
		errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInvalidType),
		errors.Is(err, models.ErrInvalidPeriod),
		errors.Is(err, models.ErrMissingField),
		errors.Is(err, category.ErrCycle),
		errors.Is(err, category.ErrUnknownParent):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// owner returns the caller's owner ID, falling back to the configured
// single-user owner for local runs.
func (d *Dependencies) owner(r *http.Request) string {
	if id := r.Header.Get(principalHeader); id != "" {
		return id
	}
	return d.Notify.OwnerID
}

// requireOwner writes a 401 and returns false when no owner is known.
func (d *Dependencies) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := d.owner(r)
	if id == "" {
		WriteError(w, http.StatusUnauthorized, "Missing caller identity")
		return "", false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		slog.Warn("invalid request body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// date is a calendar date in request and response bodies.
type date struct{ time.Time }

func (d *date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := models.ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// queryPeriod reads start_date and end_date from the query string. Missing
// values default to the first of the current month and today.
func (d *Dependencies) queryPeriod(r *http.Request) (analytics.Period, error) {
	today := clock.Today(d.Clock)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := today

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			return analytics.Period{}, fmt.Errorf("%w: start_date %q", models.ErrInvalidPeriod, s)
		}
		start = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := models.ParseDate(s)
		if err != nil {
			return analytics.Period{}, fmt.Errorf("%w: end_date %q", models.ErrInvalidPeriod, s)
		}
		end = t
	}
	return analytics.NewPeriod(start, end)
}
