package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/umardevX/ems-console/internal/employee"
	"github.com/umardevX/ems-console/internal/server/auth"
	"github.com/umardevX/ems-console/internal/server/database"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

type testServer struct {
	handler http.Handler
	store   *database.MemoryStore
	audit   *auth.InMemoryAuditLogger
	limiter *auth.RateLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store:   database.NewMemoryStore(),
		audit:   auth.NewInMemoryAuditLogger(),
		limiter: auth.NewRateLimiter(time.Hour, time.Hour, 1000),
	}
	t.Cleanup(ts.limiter.Stop)

	ts.handler = NewRouter(Deps{
		Store:          ts.store,
		Auth:           auth.NewAuthService([]byte(testSecret), time.Hour),
		RateLimiter:    ts.limiter,
		Audit:          ts.audit,
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   4096,
		Version:        "0.2.0",
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.10:5000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// signUpAndIn registers ana and returns a bearer token
func (ts *testServer) signUpAndIn(t *testing.T) string {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/signup", "", SignUpRequest{Username: "ana", Email: "ana@example.com", Password: "Passw0rd!"})
	if rr.Code != http.StatusOK {
		t.Fatalf("signup status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodPost, "/signin", "", SignInRequest{Email: "ana@example.com", Password: "Passw0rd!"})
	if rr.Code != http.StatusOK {
		t.Fatalf("signin status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp SignInResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" {
		t.Fatal("signin returned an empty token")
	}
	return resp.Token
}

func validEmployee() employee.Employee {
	return employee.Employee{
		FirstName:   "Ana",
		LastName:    "Silva",
		Email:       "ana.silva@example.com",
		DateOfBirth: "1990-04-12",
		HireDate:    "2021-09-01",
		Position:    "Engineer",
		IsActive:    true,
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var h HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if h != (HealthResponse{Status: "healthy", Service: ServiceName, Version: "0.2.0"}) {
		t.Errorf("health = %+v", h)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id on every response")
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUpAndIn(t)

	claims, err := auth.NewAuthService([]byte(testSecret), time.Hour).ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Email != "ana@example.com" || claims.Username != "ana" {
		t.Errorf("claims = %+v", claims)
	}

	u, err := ts.store.UserByEmail(context.Background(), "ana@example.com")
	if err != nil || u.LastLoginAt == nil {
		t.Errorf("sign-in not recorded: %+v, %v", u, err)
	}

	var events []auth.AuditEvent
	for _, l := range ts.audit.GetLogs() {
		events = append(events, l.EventType)
	}
	if len(events) != 2 || events[0] != auth.AuditSignUp || events[1] != auth.AuditSignInSuccess {
		t.Errorf("audit events = %v", events)
	}
}

func TestSignUp_Rejects(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndIn(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"duplicate email", SignUpRequest{Username: "other", Email: "ANA@example.com", Password: "Passw0rd!"}, http.StatusConflict},
		{"weak password", SignUpRequest{Username: "bia", Email: "bia@example.com", Password: "password"}, http.StatusBadRequest},
		{"missing username", SignUpRequest{Email: "bia@example.com", Password: "Passw0rd!"}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/signup", "", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestSignUp_ReportsFields(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodPost, "/signup", "", SignUpRequest{Username: "bia", Email: "bia", Password: "Passw0rd!"})

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Fields["email"] != "Email is invalid" {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.signUpAndIn(t)

	for _, req := range []SignInRequest{
		{Email: "ana@example.com", Password: "Wrong!pass"},
		{Email: "nobody@example.com", Password: "Passw0rd!"},
	} {
		rr := ts.do(t, http.MethodPost, "/signin", "", req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", req.Email, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Invalid credentials") {
			t.Errorf("%s: body = %s", req.Email, rr.Body.String())
		}
	}

	logs := ts.audit.GetLogs()
	if last := logs[len(logs)-1]; last.EventType != auth.AuditSignInFailure {
		t.Errorf("last audit event = %s", last.EventType)
	}
}

func TestSignIn_RateLimited(t *testing.T) {
	ts := newTestServer(t)
	for i := 0; i < AuthRateLimit; i++ {
		ts.do(t, http.MethodPost, "/signin", "", SignInRequest{Email: "x@example.com", Password: "nope"})
	}
	rr := ts.do(t, http.MethodPost, "/signin", "", SignInRequest{Email: "x@example.com", Password: "nope"})
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
}

func TestEmployees_RequireToken(t *testing.T) {
	ts := newTestServer(t)
	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/employees"},
		{http.MethodPost, "/employees"},
		{http.MethodPut, "/employees/1"},
		{http.MethodDelete, "/employees/1"},
	} {
		if rr := ts.do(t, c.method, c.path, "", nil); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", c.method, c.path, rr.Code)
		}
		if rr := ts.do(t, c.method, c.path, "forged.token.value", nil); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: status = %d, want 401", c.method, c.path, rr.Code)
		}
	}
}

func TestEmployees_CRUD(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUpAndIn(t)

	rr := ts.do(t, http.MethodGet, "/employees", token, nil)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty list: %d %s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodPost, "/employees", token, validEmployee())
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	var created employee.Employee
	_ = json.Unmarshal(rr.Body.Bytes(), &created)
	if created.EmployeeID != 1 || created.FirstName != "Ana" {
		t.Errorf("created = %+v", created)
	}

	change := validEmployee()
	change.Department = "Finance"
	rr = ts.do(t, http.MethodPut, "/employees/1", token, change)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = ts.do(t, http.MethodGet, "/employees", token, nil)
	var list []employee.Employee
	_ = json.Unmarshal(rr.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Department != "Finance" {
		t.Errorf("list after update = %+v", list)
	}

	if rr = ts.do(t, http.MethodPut, "/employees/42", token, change); rr.Code != http.StatusNotFound {
		t.Errorf("update unknown: status = %d, want 404", rr.Code)
	}
	if rr = ts.do(t, http.MethodPut, "/employees/abc", token, change); rr.Code != http.StatusBadRequest {
		t.Errorf("update bad id: status = %d, want 400", rr.Code)
	}

	if rr = ts.do(t, http.MethodDelete, "/employees/1", token, nil); rr.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rr.Code)
	}
	if rr = ts.do(t, http.MethodDelete, "/employees/1", token, nil); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}

	var employeeEvents int
	for _, l := range ts.audit.GetLogs() {
		if l.TargetType == "employee" {
			employeeEvents++
			if l.ActorID == nil {
				t.Errorf("%s has no actor", l.EventType)
			}
		}
	}
	if employeeEvents != 3 {
		t.Errorf("employee audit events = %d, want 3", employeeEvents)
	}
}

func TestEmployees_Validation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUpAndIn(t)

	bad := validEmployee()
	bad.FirstName = " "
	bad.HireDate = "2021-13-01"

	rr := ts.do(t, http.MethodPost, "/employees", token, bad)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body.Fields["firstName"] == "" || body.Fields["hireDate"] == "" || len(body.Fields) != 2 {
		t.Errorf("fields = %v", body.Fields)
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signUpAndIn(t)

	big := validEmployee()
	big.Position = strings.Repeat("x", 5000)
	if rr := ts.do(t, http.MethodPost, "/employees", token, big); rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rr.Code)
	}
}
