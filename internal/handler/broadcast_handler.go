package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

type broadcastService interface {
	Send(ctx context.Context, details models.EventDetails) (*models.BroadcastReport, error)
}

// BroadcastHandler sends event invitations to all alumni.
type BroadcastHandler struct {
	service broadcastService
}

func NewBroadcastHandler(service broadcastService) *BroadcastHandler {
	return &BroadcastHandler{service: service}
}

// Send godoc
// @Summary Email an event invitation to every alumni
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Param payload body models.EventDetails true "Event"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/broadcasts [post]
func (h *BroadcastHandler) Send(c *gin.Context) {
	var details models.EventDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload"))
		return
	}
	report, err := h.service.Send(c.Request.Context(), details)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
