package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocjay1/rm-finance/internal/category"
	"github.com/rocjay1/rm-finance/internal/ledger"
	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call serves one request through the full route table.
func call(t *testing.T, deps *Dependencies, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	deps.Routes().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("account x: %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", ledger.ErrWriteConflict), http.StatusConflict},
		{fmt.Errorf("save: %w: %w", ledger.ErrWriteConflict, models.ErrNotFound), http.StatusConflict},
		{fmt.Errorf("transaction t1: %w", models.ErrAlreadyExists), http.StatusConflict},
		{models.ErrInvalidAmount, http.StatusBadRequest},
		{models.ErrInvalidType, http.StatusBadRequest},
		{models.ErrInvalidPeriod, http.StatusBadRequest},
		{models.ErrMissingField, http.StatusBadRequest},
		{category.ErrCycle, http.StatusBadRequest},
		{category.ErrUnknownParent, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteServiceError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)

	writeServiceError(w, r, errors.New("connection string leaked"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "leaked")
	assert.Contains(t, w.Body.String(), "Internal error")
}

func TestOwner_PrincipalHeaderWins(t *testing.T) {
	deps, _ := newTestDeps(t)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	req.Header.Set(principalHeader, "someone-else")
	w := httptest.NewRecorder()
	deps.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestOwner_MissingIdentity(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Notify.OwnerID = ""

	w := call(t, deps, http.MethodGet, "/api/accounts", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQueryPeriod(t *testing.T) {
	deps, _ := newTestDeps(t)

	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	p, err := deps.queryPeriod(r)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", p.Start.Format(models.DateLayout))
	assert.Equal(t, "2026-06-15", p.End.Format(models.DateLayout))

	r = httptest.NewRequest(http.MethodGet, "/x?start_date=2026-05-01&end_date=2026-05-31", nil)
	p, err = deps.queryPeriod(r)
	require.NoError(t, err)
	assert.Equal(t, 31, p.Days())

	r = httptest.NewRequest(http.MethodGet, "/x?start_date=2026-05-31&end_date=2026-05-01", nil)
	_, err = deps.queryPeriod(r)
	assert.ErrorIs(t, err, models.ErrInvalidPeriod)

	r = httptest.NewRequest(http.MethodGet, "/x?start_date=May", nil)
	_, err = deps.queryPeriod(r)
	assert.ErrorIs(t, err, models.ErrInvalidPeriod)
}
