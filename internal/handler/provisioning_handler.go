package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

type provisioningRunner interface {
	Run(ctx context.Context) (*models.ProvisioningReport, error)
}

// ProvisioningHandler triggers the invitation loop on demand.
type ProvisioningHandler struct {
	runner provisioningRunner
}

func NewProvisioningHandler(runner provisioningRunner) *ProvisioningHandler {
	return &ProvisioningHandler{runner: runner}
}

// Run godoc
// @Summary Invite every account without an identity
// @Tags Provisioning
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/provisioning/run [post]
// A dropped connection does not stop the run; the report is still logged.
func (h *ProvisioningHandler) Run(c *gin.Context) {
	report, err := h.runner.Run(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
