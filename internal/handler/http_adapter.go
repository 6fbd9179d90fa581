package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
)

// TriggerRequest is the envelope the Functions host posts when an HTTP
// trigger is not forwarded directly.
type TriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// TriggerResponse is the envelope the host expects back.
type TriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// HTTPTrigger unwraps a host envelope into a plain request, serves it with
// next and wraps the recorded response.
func HTTPTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq TriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}
		reqData := invokeReq.Data.Req

		target, err := url.Parse(reqData.URL)
		if err != nil {
			slog.Error("invalid URL in HTTP trigger request", "url", reqData.URL, "error", err)
			http.Error(w, "Invalid request URL", http.StatusBadRequest)
			return
		}
		if len(reqData.Query) > 0 {
			q := target.Query()
			for k, v := range reqData.Query {
				if !q.Has(k) {
					q.Set(k, v)
				}
			}
			target.RawQuery = q.Encode()
		}

		innerReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, target.String(), triggerBody(reqData.Body, reqData.IsBase64Encoded))
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, values := range reqData.Headers {
			for _, v := range values {
				innerReq.Header.Add(k, v)
			}
		}
		slog.Debug("serving wrapped HTTP request", "method", innerReq.Method, "path", innerReq.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, innerReq)

		res := recorder.Result()
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		headers := make(map[string]string, len(res.Header))
		for k, v := range res.Header {
			headers[k] = v[0]
		}

		var out TriggerResponse
		out.Outputs.Res.StatusCode = res.StatusCode
		out.Outputs.Res.Headers = headers
		out.Outputs.Res.Body = string(body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}

// triggerBody returns the request body. Some hosts send base64 without
// setting the flag, so decoding is attempted either way and the raw text is
// used when it fails.
func triggerBody(body string, encoded bool) io.Reader {
	if body == "" {
		return http.NoBody
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return bytes.NewReader(decoded)
	} else if encoded {
		slog.Warn("body flagged as base64 but failed to decode", "error", err)
	}
	return bytes.NewReader([]byte(body))
}
