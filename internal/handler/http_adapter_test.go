package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocjay1/rm-finance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerEnvelope(t *testing.T, method, url string, headers map[string][]string, body string) *http.Request {
	t.Helper()
	var env TriggerRequest
	env.Data.Req.Method = method
	env.Data.Req.URL = url
	env.Data.Req.Headers = headers
	env.Data.Req.Body = body
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewReader(raw))
}

func TestHTTPTrigger_WrapsResponse(t *testing.T) {
	deps, _ := newTestDeps(t)
	req := triggerEnvelope(t, http.MethodGet, "http://localhost:7071/api/accounts",
		map[string][]string{principalHeader: {testOwner}}, "")

	w := httptest.NewRecorder()
	deps.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Outputs.Res.StatusCode)
	assert.Equal(t, "application/json", resp.Outputs.Res.Headers["Content-Type"])

	var accounts []models.Account
	require.NoError(t, json.Unmarshal([]byte(resp.Outputs.Res.Body), &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Name)
}

func TestHTTPTrigger_DecodesBase64Body(t *testing.T) {
	deps, _ := newTestDeps(t)
	body := base64.StdEncoding.EncodeToString([]byte(`{"name":"Wallet","type":"CASH"}`))
	req := triggerEnvelope(t, http.MethodPost, "http://localhost:7071/api/accounts", nil, body)

	w := httptest.NewRecorder()
	HTTPTrigger(deps.Routes())(w, req)

	var resp TriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusCreated, resp.Outputs.Res.StatusCode, resp.Outputs.Res.Body)
	assert.Contains(t, resp.Outputs.Res.Body, "Wallet")
}

func TestHTTPTrigger_QueryFromEnvelope(t *testing.T) {
	deps, _ := newTestDeps(t)
	var env TriggerRequest
	env.Data.Req.Method = http.MethodGet
	env.Data.Req.URL = "http://localhost:7071/api/dashboard/trends"
	env.Data.Req.Query = map[string]string{"months": "2"}
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	HTTPTrigger(deps.Routes())(w, httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewReader(raw)))

	var resp TriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, http.StatusOK, resp.Outputs.Res.StatusCode)
	var trends []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Outputs.Res.Body), &trends))
	assert.Len(t, trends, 2)
}

func TestHTTPTrigger_InvalidEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	HTTPTrigger(http.NotFoundHandler())(w, httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
