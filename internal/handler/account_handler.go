package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

type accountService interface {
	SetVerification(ctx context.Context, uid string, req dto.SetVerificationRequest) (*models.Account, error)
	IsVerified(ctx context.Context, uid string) (*models.VerificationStatus, error)
}

// AccountHandler exposes account verification endpoints.
type AccountHandler struct {
	service accountService
}

func NewAccountHandler(service accountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// SetVerification godoc
// @Summary Mark an account verified or unverified
// @Tags Accounts
// @Accept json
// @Produce json
// @Param uid path string true "Alumni uid"
// @Param payload body dto.SetVerificationRequest true "Verification flag"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/accounts/{uid}/verify [patch]
func (h *AccountHandler) SetVerification(c *gin.Context) {
	var req dto.SetVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "verified must be a boolean"))
		return
	}
	account, err := h.service.SetVerification(c.Request.Context(), c.Param("uid"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// IsVerified godoc
// @Summary Report whether an account is verified
// @Tags Accounts
// @Produce json
// @Param uid path string true "Alumni uid"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /accounts/{uid}/verification [get]
func (h *AccountHandler) IsVerified(c *gin.Context) {
	uid := c.Param("uid")
	status, err := h.service.IsVerified(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Envelope{
				Data:  models.VerificationStatus{UID: uid, Verified: false},
				Error: appErrors.FromError(err),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
