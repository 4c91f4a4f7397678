package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/service"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
)

type verifierStub struct {
	evt identity.Event
	err error
}

func (s verifierStub) Verify([]byte, http.Header) (identity.Event, error) { return s.evt, s.err }

type identityEventsStub struct {
	handled []identity.Event
	plan    service.IdentityMutation
	err     error
}

func (s *identityEventsStub) Handle(_ context.Context, evt identity.Event) (service.IdentityMutation, error) {
	s.handled = append(s.handled, evt)
	return s.plan, s.err
}

type webhookMetricsRecorder struct{ outcomes []string }

func (r *webhookMetricsRecorder) RecordWebhook(eventType, outcome string) {
	r.outcomes = append(r.outcomes, eventType+"/"+outcome)
}

func serveWebhook(h *WebhookHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/identity", h.Identity)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader(`{"type":"user.created"}`)))
	return w
}

func TestWebhookHandlerRejectsBadSignature(t *testing.T) {
	events := &identityEventsStub{}
	metrics := &webhookMetricsRecorder{}
	w := serveWebhook(NewWebhookHandler(verifierStub{err: errors.New("no matching signature")}, events, metrics, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")
	assert.Empty(t, events.handled)
	assert.Equal(t, []string{"unknown/rejected"}, metrics.outcomes)
}

func TestWebhookHandlerAppliesEvent(t *testing.T) {
	evt := identity.Event{Type: identity.EventUserCreated, Data: identity.EventUser{ID: "user_1"}}
	events := &identityEventsStub{plan: service.IdentityMutation{Kind: service.MutationLink}}
	w := serveWebhook(NewWebhookHandler(verifierStub{evt: evt}, events, nil, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"link"`)
	assert.Contains(t, w.Body.String(), `"received":true`)
	require.Len(t, events.handled, 1)
}

func TestWebhookHandlerStoreFailure(t *testing.T) {
	events := &identityEventsStub{err: errors.New("db down")}
	w := serveWebhook(NewWebhookHandler(verifierStub{evt: identity.Event{Type: identity.EventUserUpdated}}, events, nil, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
