package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/service"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/identity"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

const maxWebhookBytes = 1 << 20

type webhookVerifier interface {
	Verify(payload []byte, headers http.Header) (identity.Event, error)
}

type identityEventHandler interface {
	Handle(ctx context.Context, evt identity.Event) (service.IdentityMutation, error)
}

type webhookMetrics interface {
	RecordWebhook(eventType, outcome string)
}

// WebhookHandler receives identity provider webhooks.
type WebhookHandler struct {
	verifier webhookVerifier
	events   identityEventHandler
	metrics  webhookMetrics
	logger   *zap.Logger
}

func NewWebhookHandler(verifier webhookVerifier, events identityEventHandler, metrics webhookMetrics, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{verifier: verifier, events: events, metrics: metrics, logger: logger}
}

// Identity godoc
// @Summary Receive identity provider user events
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /webhooks/identity [post]
func (h *WebhookHandler) Identity(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read webhook body"))
		return
	}
	evt, err := h.verifier.Verify(payload, c.Request.Header)
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		if h.metrics != nil {
			h.metrics.RecordWebhook("unknown", "rejected")
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidSignature.Code, appErrors.ErrInvalidSignature.Status, appErrors.ErrInvalidSignature.Message))
		return
	}

	plan, err := h.events.Handle(c.Request.Context(), evt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"received": true,
		"type":     evt.Type,
		"action":   plan.Kind,
	}, nil)
}
