package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/response"
)

type importService interface {
	ImportCSV(ctx context.Context, r io.Reader) (*models.ImportReport, error)
	ImportEntries(ctx context.Context, entries []models.ImportEntry) (*models.ImportReport, error)
}

// ImportHandler exposes spreadsheet import endpoints.
type ImportHandler struct {
	service  importService
	maxBytes int64
}

func NewImportHandler(service importService, maxBytes int64) *ImportHandler {
	return &ImportHandler{service: service, maxBytes: maxBytes}
}

// ImportCSV godoc
// @Summary Import alumni from a CSV spreadsheet
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV export of the alumni spreadsheet"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/imports [post]
func (h *ImportHandler) ImportCSV(c *gin.Context) {
	if h.maxBytes > 0 {
		if c.Request.ContentLength > h.maxBytes {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "upload exceeds the size limit"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "upload exceeds the size limit"))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	report, err := h.service.ImportCSV(c.Request.Context(), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// ImportEntries godoc
// @Summary Import pre-mapped alumni entries
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body dto.ImportEntriesRequest true "Entries"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/imports/entries [post]
func (h *ImportHandler) ImportEntries(c *gin.Context) {
	var req dto.ImportEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import payload"))
		return
	}
	report, err := h.service.ImportEntries(c.Request.Context(), req.Data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}
