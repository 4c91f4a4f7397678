package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/internal/service"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

type alumniService interface {
	List(ctx context.Context, query dto.DirectoryQuery) (*service.DirectoryPage, error)
	Get(ctx context.Context, uid string) (*models.Alumni, error)
	Recent(ctx context.Context) ([]models.RecentAlumni, error)
	UpdateProfile(ctx context.Context, principal *models.Principal, req dto.ProfileUpdateRequest) (*models.Alumni, error)
	Register(ctx context.Context, principal *models.Principal, req dto.RegistrationRequest) (*models.Alumni, error)
}

// AlumniHandler serves the directory and alumni self-service endpoints.
type AlumniHandler struct {
	service alumniService
}

func NewAlumniHandler(service alumniService) *AlumniHandler {
	return &AlumniHandler{service: service}
}

// List godoc
// @Summary List the alumni directory
// @Tags Alumni
// @Produce json
// @Param search query string false "Matches name, uid, occupation or place of work"
// @Param department query string false "Department"
// @Param course query string false "Course"
// @Param year query int false "Year of passing out"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "name|year|department|created_at"
// @Param sort_order query string false "asc|desc"
// @Success 200 {object} response.Envelope
// @Router /alumni [get]
func (h *AlumniHandler) List(c *gin.Context) {
	var query dto.DirectoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Items, &page.Pagination)
}

// Get godoc
// @Summary Get one alumni record
// @Tags Alumni
// @Produce json
// @Param uid path string true "Alumni uid"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /alumni/{uid} [get]
func (h *AlumniHandler) Get(c *gin.Context) {
	alumni, err := h.service.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alumni, nil)
}

// Recent godoc
// @Summary List the most recently joined alumni
// @Tags Alumni
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/alumni/recent [get]
func (h *AlumniHandler) Recent(c *gin.Context) {
	items, err := h.service.Recent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateProfile godoc
// @Summary Update the caller's alumni profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body dto.ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile [put]
func (h *AlumniHandler) UpdateProfile(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload"))
		return
	}
	alumni, err := h.service.UpdateProfile(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alumni, nil)
}

// Register godoc
// @Summary Register the caller as an alumni
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body dto.RegistrationRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *AlumniHandler) Register(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload"))
		return
	}
	alumni, err := h.service.Register(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, alumni)
}
