package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opsline/rcachat/internal/adapter/ws"
	"github.com/opsline/rcachat/internal/domain/chat"
	"github.com/opsline/rcachat/internal/port/agentruntime"
	"github.com/opsline/rcachat/internal/service"
)

// stubStream replays canned events then ends cleanly.
type stubStream struct {
	events []agentruntime.Event
	pos    int
}

func (s *stubStream) Next(_ context.Context) (agentruntime.Event, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

func (s *stubStream) Close() error { return nil }

type stubRuntime struct {
	events []agentruntime.Event
	err    error
}

func (r *stubRuntime) InvokeAgent(_ context.Context, _ agentruntime.Request) (agentruntime.Stream, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &stubStream{events: r.events}, nil
}

type memCache struct {
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTestServer(t *testing.T, rt agentruntime.Runtime) (*Handlers, http.Handler) {
	t.Helper()

	svc, err := service.NewAgentService(chat.AgentIdentity{
		AgentID:      "agent-1",
		AgentAliasID: "alias-1",
	}, rt)
	if err != nil {
		t.Fatal(err)
	}

	h := &Handlers{
		Agent:   svc,
		History: service.NewHistory(),
		Hub:     ws.NewHub(),
	}

	r := chi.NewRouter()
	MountRoutes(r, h, &memCache{data: make(map[string][]byte)}, time.Minute)
	return h, r
}

func TestChatSuccess(t *testing.T) {
	rt := &stubRuntime{events: []agentruntime.Event{
		&agentruntime.OrchestrationStep{
			HasRationale: true,
			Rationale:    "checking database metrics",
		},
		&agentruntime.ContentChunk{Bytes: []byte("Root cause: connection pool exhaustion")},
	}}
	h, srv := newTestServer(t, rt)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"text":"DB down"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Answer    string `json:"answer"`
		Trace     string `json:"trace"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "Root cause: connection pool exhaustion" {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}
	if !strings.Contains(resp.Trace, "Step 1") || !strings.Contains(resp.Trace, "checking database metrics") {
		t.Fatalf("expected numbered rationale in trace, got %q", resp.Trace)
	}
	if resp.SessionID == "" {
		t.Fatal("expected session id in response")
	}

	msgs := h.History.List()
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Fatalf("expected user+assistant in history, got %d messages", len(msgs))
	}
	if msgs[1].Trace == "" {
		t.Fatal("expected trace stored on assistant message")
	}
}

func TestChatEmptyText(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"text":""}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatInvalidBody(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{bad json`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatInvocationFailureReturnsPartialTrace(t *testing.T) {
	rt := &stubRuntime{err: context.DeadlineExceeded}
	h, srv := newTestServer(t, rt)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"text":"DB down"}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp struct {
		Failed bool   `json:"failed"`
		Trace  string `json:"trace"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Failed {
		t.Fatal("expected failed flag set")
	}
	if !strings.Contains(resp.Trace, "deadline exceeded") {
		t.Fatalf("expected error detail in trace, got %q", resp.Trace)
	}

	// Failures are still part of the transcript.
	if h.History.Len() != 2 {
		t.Fatalf("expected 2 history entries, got %d", h.History.Len())
	}
}

func TestChatIdempotencyReplay(t *testing.T) {
	rt := &stubRuntime{events: []agentruntime.Event{
		&agentruntime.ContentChunk{Bytes: []byte("answer")},
	}}
	h, srv := newTestServer(t, rt)

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat",
			strings.NewReader(`{"text":"DB down"}`))
		req.Header.Set("Idempotency-Key", "retry-1")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	// Second request replayed from cache, so the agent ran once.
	if h.History.Len() != 2 {
		t.Fatalf("expected 2 history entries after replay, got %d", h.History.Len())
	}
}

func TestNewSessionClearsHistory(t *testing.T) {
	h, srv := newTestServer(t, &stubRuntime{})
	h.History.Append(chat.NewMessage("old", "user", "stale", ""))
	oldID := h.Agent.Session().ID

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/new", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var sess chat.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.ID == oldID {
		t.Fatal("expected a fresh session id")
	}
	if h.History.Len() != 0 {
		t.Fatal("expected history cleared")
	}
}

func TestGetSession(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var sess chat.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" {
		t.Fatal("expected a session id")
	}
}

func TestListHistoryEmpty(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", rec.Body.String())
	}
}

func TestListScenarios(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/scenarios", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var scenarios []chat.Scenario
	if err := json.Unmarshal(rec.Body.Bytes(), &scenarios); err != nil {
		t.Fatal(err)
	}
	if len(scenarios) != 4 {
		t.Fatalf("expected 4 demo scenarios, got %d", len(scenarios))
	}
}

func TestGetAgentInfo(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agent", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var id chat.AgentIdentity
	if err := json.Unmarshal(rec.Body.Bytes(), &id); err != nil {
		t.Fatal(err)
	}
	if id.AgentID != "agent-1" {
		t.Fatalf("unexpected agent id %q", id.AgentID)
	}
}

func TestVersionEndpoint(t *testing.T) {
	_, srv := newTestServer(t, &stubRuntime{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/", http.NoBody)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "version") {
		t.Fatalf("expected version payload, got %q", rec.Body.String())
	}
}
