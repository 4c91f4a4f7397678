package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

type achievementService interface {
	List(ctx context.Context) ([]models.Achievement, error)
	Create(ctx context.Context, req dto.AchievementRequest) (*models.Achievement, error)
	Update(ctx context.Context, id string, req dto.AchievementRequest) (*models.Achievement, error)
	Delete(ctx context.Context, id string) error
}

// AchievementHandler manages landing page achievements.
type AchievementHandler struct {
	service achievementService
}

func NewAchievementHandler(service achievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// List godoc
// @Summary List achievements, newest first
// @Tags Achievements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create an achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param payload body dto.AchievementRequest true "Achievement"
// @Success 201 {object} response.Envelope
// @Router /admin/achievements [post]
func (h *AchievementHandler) Create(c *gin.Context) {
	var req dto.AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Replace an achievement
// @Tags Achievements
// @Accept json
// @Produce json
// @Param id path string true "Achievement ID"
// @Param payload body dto.AchievementRequest true "Achievement"
// @Success 200 {object} response.Envelope
// @Router /admin/achievements/{id} [put]
func (h *AchievementHandler) Update(c *gin.Context) {
	var req dto.AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid achievement payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete an achievement
// @Tags Achievements
// @Param id path string true "Achievement ID"
// @Success 204
// @Router /admin/achievements/{id} [delete]
func (h *AchievementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
