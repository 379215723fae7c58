package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestRequestLog_AssignsID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	h := RequestLog(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/employees", nil))

	if seen == "" || rr.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("context id %q, header id %q", seen, rr.Header().Get(RequestIDHeader))
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %s", len(lines), buf.String())
	}
	var access map[string]interface{}
	if err := json.Unmarshal(lines[1], &access); err != nil {
		t.Fatal(err)
	}
	if access["request_id"] != seen || access["status"] != float64(http.StatusCreated) || access["path"] != "/employees" {
		t.Errorf("access line = %v", access)
	}
}

func TestRequestLog_KeepsCallerID(t *testing.T) {
	h := RequestLog(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("%s = %q, want abc-123", RequestIDHeader, got)
	}
}
