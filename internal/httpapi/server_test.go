package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spigell/skillbridge-assistant/internal/jobs"
	"github.com/spigell/skillbridge-assistant/internal/metrics"
	"github.com/spigell/skillbridge-assistant/internal/storage"
)

type stubChat struct {
	lastSession string
	lastText    string
}

func (s *stubChat) Ask(_ context.Context, sessionID, text string) (string, string) {
	s.lastSession, s.lastText = sessionID, text
	if sessionID == "" {
		sessionID = "new-session"
	}
	return "resposta para " + text, sessionID
}

func newTestServer(t *testing.T, deps Deps) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(deps))
	t.Cleanup(srv.Close)
	return srv
}

func newJobService(t *testing.T) *jobs.Service {
	t.Helper()
	store, err := storage.Open(storage.MemoryDSN)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := jobs.NewService(store, nil, nil)
	if _, err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return svc
}

func do(t *testing.T, method, url, body string, headers ...string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Deps{Chat: &stubChat{}})

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "")
	if resp.StatusCode != http.StatusOK || body != `{"status":"ok"}` {
		t.Fatalf("unexpected health response %d %q", resp.StatusCode, body)
	}
}

func TestChat(t *testing.T) {
	chat := &stubChat{}
	srv := newTestServer(t, Deps{Chat: chat})

	resp, body := do(t, http.MethodPost, srv.URL+"/chat/api", `{"message":"vagas de java","session_id":"abc"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var out ChatResponse
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Reply != "resposta para vagas de java" || out.SessionID != "abc" {
		t.Fatalf("unexpected response %+v", out)
	}
	if chat.lastSession != "abc" {
		t.Fatalf("session id not forwarded, got %q", chat.lastSession)
	}
}

func TestChatValidation(t *testing.T) {
	srv := newTestServer(t, Deps{Chat: &stubChat{}})

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed", body: `{`, want: "invalid request body"},
		{name: "blank", body: `{"message":"   "}`, want: "message is required"},
		{name: "too long", body: `{"message":"` + strings.Repeat("á", MaxMessageLength+1) + `"}`, want: "at most 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/chat/api", tt.body)
			if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, tt.want) {
				t.Fatalf("expected 400 with %q, got %d %s", tt.want, resp.StatusCode, body)
			}
		})
	}

	resp, _ := do(t, http.MethodPost, srv.URL+"/chat/api", `{"message":"`+strings.Repeat("á", MaxMessageLength)+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("message at the limit must be accepted, got %d", resp.StatusCode)
	}
}

func TestChatRateLimitBehindProxy(t *testing.T) {
	srv := newTestServer(t, Deps{Chat: &stubChat{}, RateLimit: 0.001, RateBurst: 2, TrustProxy: true})

	for i := 0; i < 2; i++ {
		resp, _ := do(t, http.MethodPost, srv.URL+"/chat/api", `{"message":"oi"}`, "X-Forwarded-For", "10.0.0.1")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: unexpected status %d", i, resp.StatusCode)
		}
	}

	resp, _ := do(t, http.MethodPost, srv.URL+"/chat/api", `{"message":"oi"}`, "X-Forwarded-For", "10.0.0.1")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/chat/api", `{"message":"oi"}`, "X-Forwarded-For", "10.0.0.2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("other clients must not be limited, got %d", resp.StatusCode)
	}
}

func TestChatRateLimitIgnoresForwardedHeaders(t *testing.T) {
	srv := newTestServer(t, Deps{Chat: &stubChat{}, RateLimit: 0.001, RateBurst: 1})

	accepted := 0
	for i := 0; i < 5; i++ {
		resp, _ := do(t, http.MethodPost, srv.URL+"/chat/api", `{"message":"oi"}`,
			"X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1),
			"X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1),
		)
		if resp.StatusCode == http.StatusOK {
			accepted++
		}
	}

	if accepted != 1 {
		t.Fatalf("changing forwarded headers must not bypass the limit, %d/5 accepted", accepted)
	}
}

func TestJobsCRUD(t *testing.T) {
	srv := newTestServer(t, Deps{Chat: &stubChat{}, Jobs: newJobService(t)})
	base := srv.URL + "/api/jobs"

	resp, body := do(t, http.MethodGet, base, "")
	var list []jobs.Record
	if err := json.Unmarshal([]byte(body), &list); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d %s (%v)", resp.StatusCode, body, err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 seeded jobs, got %d", len(list))
	}

	resp, body = do(t, http.MethodPost, base, `{"title":"SRE","company":"Infra","location":"Remoto","requirements":"Go, Kubernetes"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	var created jobs.Record
	json.Unmarshal([]byte(body), &created)
	if created.ID != 4 {
		t.Fatalf("unexpected created record %+v", created)
	}

	resp, body = do(t, http.MethodPut, base+"/4", `{"title":"SRE Sênior","company":"Infra","location":"Remoto","requirements":"Go"}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "SRE Sênior") {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, base+"/4", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "SRE Sênior") {
		t.Fatalf("get: %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodDelete, base+"/4", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodGet, base+"/4", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestJobsErrors(t *testing.T) {
	srv := newTestServer(t, Deps{Chat: &stubChat{}, Jobs: newJobService(t)})
	base := srv.URL + "/api/jobs"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "bad id", method: http.MethodGet, path: "/abc", status: http.StatusBadRequest},
		{name: "zero id", method: http.MethodDelete, path: "/0", status: http.StatusBadRequest},
		{name: "invalid record", method: http.MethodPost, path: "", body: `{"title":"x"}`, status: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPut, path: "/1", body: `[`, status: http.StatusBadRequest},
		{name: "missing update", method: http.MethodPut, path: "/99", body: `{"title":"a","company":"b","location":"c","requirements":"d"}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, base+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.StatusCode, body)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveAsk("greeting")

	srv := newTestServer(t, Deps{Chat: &stubChat{}, Gatherer: reg})

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `skillbridge_ask_total{route="greeting"} 1`) {
		t.Fatalf("unexpected metrics response %d:\n%s", resp.StatusCode, body)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "4.4.4.4:1234", want: "4.4.4.4"},
		{name: "forwarded for ignored", headers: map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, remote: "4.4.4.4:1234", want: "4.4.4.4"},
		{name: "real ip ignored", headers: map[string]string{"X-Real-IP": "3.3.3.3"}, remote: "4.4.4.4:1234", want: "4.4.4.4"},
		{name: "address without port", remote: "5.5.5.5", want: "5.5.5.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Fatalf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
