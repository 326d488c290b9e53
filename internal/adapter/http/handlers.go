package http

import (
	"errors"
	"net/http"

	"github.com/opsline/rcachat/internal/adapter/otel"
	"github.com/opsline/rcachat/internal/adapter/ws"
	"github.com/opsline/rcachat/internal/domain/chat"
	"github.com/opsline/rcachat/internal/service"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Agent   *service.AgentService
	History *service.History
	Hub     *ws.Hub
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Trace     string `json:"trace"`
	Failed    bool   `json:"failed,omitempty"`
}

// Chat forwards one incident description to the agent, streams the reasoning
// trace over the WebSocket hub while the invocation runs, and returns the
// final answer plus the full trace. A failed invocation still returns the
// partial trace so the operator sees how far the agent got.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[chatRequest](w, r)
	if !ok {
		return
	}
	if !requireField(w, req.Text, "text") {
		return
	}

	session := h.Agent.Session()
	h.History.Append(chat.NewMessage(session.ID, roleUser, req.Text, ""))

	ctx, span := otel.StartInvocationSpan(r.Context(), h.Agent.Identity().AgentID, session.ID)
	defer span.End()

	sink := ws.NewTraceSink(h.Hub, session.ID)
	res, err := h.Agent.Invoke(ctx, req.Text, sink)
	if err != nil {
		var invErr *service.InvocationError
		if errors.As(err, &invErr) {
			span.RecordError(invErr.Err)
			answer := "The analysis could not be completed. See the trace for details."
			h.History.Append(chat.NewMessage(session.ID, roleAssistant, answer, invErr.Partial.TraceText))
			h.Hub.BroadcastEvent(r.Context(), ws.EventAnswerFinal, ws.AnswerFinalEvent{
				SessionID: session.ID,
				Text:      answer,
				Failed:    true,
			})
			writeJSON(w, http.StatusBadGateway, chatResponse{
				SessionID: session.ID,
				Answer:    answer,
				Trace:     invErr.Partial.TraceText,
				Failed:    true,
			})
			return
		}
		writeDomainError(w, err, "chat failed")
		return
	}

	h.History.Append(chat.NewMessage(session.ID, roleAssistant, res.FinalText, res.TraceText))
	h.Hub.BroadcastEvent(r.Context(), ws.EventAnswerFinal, ws.AnswerFinalEvent{
		SessionID: session.ID,
		Text:      res.FinalText,
	})
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: session.ID,
		Answer:    res.FinalText,
		Trace:     res.TraceText,
	})
}

// NewSession starts a fresh conversation: new remote session id, history
// cleared, connected clients notified.
func (h *Handlers) NewSession(w http.ResponseWriter, r *http.Request) {
	session := h.Agent.NewSession()
	h.History.Clear()
	h.Hub.BroadcastEvent(r.Context(), ws.EventSessionStarted, ws.SessionStartedEvent{
		SessionID: session.ID,
	})
	writeJSON(w, http.StatusCreated, session)
}

// GetSession returns the current session, creating one on first call.
func (h *Handlers) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Agent.Session())
}

// ListHistory returns the chat transcript for the current session.
func (h *Handlers) ListHistory(w http.ResponseWriter, _ *http.Request) {
	msgs := h.History.List()
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// ListScenarios returns the canned demo incident catalog.
func (h *Handlers) ListScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, chat.Scenarios())
}

// GetAgentInfo returns the configured agent identity for display.
func (h *Handlers) GetAgentInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Agent.Identity())
}
