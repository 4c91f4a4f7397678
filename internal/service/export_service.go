package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/export"
	"github.com/noah-isme/alumni-network-api/pkg/storage"
)

type directoryExportSource interface {
	ListAll(ctx context.Context, filter models.AlumniFilter) ([]models.Alumni, error)
}

type exportStorage interface {
	Save(name string, data []byte) (string, error)
	Path(name string) (string, error)
	PurgeOlderThan(ttl time.Duration) (int, error)
}

// ExportConfig tunes directory exports.
type ExportConfig struct {
	APIPrefix string
	Retention time.Duration
}

// ExportDownload locates a stored export for streaming.
type ExportDownload struct {
	Path        string
	Filename    string
	ContentType string
}

var directoryColumns = []export.Column{
	{Key: "uid", Label: "UID", Width: 1},
	{Key: "name", Label: "Name", Width: 2},
	{Key: "year", Label: "Year", Width: 0.7},
	{Key: "course", Label: "Course", Width: 1.2},
	{Key: "department", Label: "Department", Width: 1.5},
	{Key: "email", Label: "E-mail", Width: 2},
	{Key: "contact_no", Label: "Contact No.", Width: 1.2},
	{Key: "occupation", Label: "Occupation", Width: 1.5},
	{Key: "place_of_work", Label: "Place of work", Width: 1.5},
}

// ExportService renders the alumni directory to CSV or PDF and hands out
// signed download links.
type ExportService struct {
	source    directoryExportSource
	storage   exportStorage
	signer    *storage.SignedURLSigner
	renderers map[models.ExportFormat]export.Renderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

func NewExportService(source directoryExportSource, store exportStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg ExportConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	return &ExportService{
		source:  source,
		storage: store,
		signer:  signer,
		renderers: map[models.ExportFormat]export.Renderer{
			models.ExportCSV: export.NewCSVRenderer(),
			models.ExportPDF: export.NewPDFRenderer(),
		},
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Export renders the filtered directory and stores the file.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*models.ExportResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query")
	}
	format := models.ExportFormat(strings.ToLower(query.Format))
	if format == "" {
		format = models.ExportCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	rows, err := s.source.ListAll(ctx, query.Filter())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load directory")
	}

	payload, err := renderer.Render(directoryTable(rows, s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	id := uuid.NewString()
	name, err := s.storage.Save(fmt.Sprintf("directory/%s.%s", id, renderer.Extension()), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, grant, err := s.signer.Sign(id, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("directory exported", zap.String("id", id), zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return &models.ExportResult{
		ID:          id,
		Format:      format,
		Rows:        len(rows),
		DownloadURL: prefix + "/exports/" + token,
		ExpiresAt:   grant.ExpiresAt,
	}, nil
}

// Resolve verifies a download token and locates its file.
func (s *ExportService) Resolve(token string) (*ExportDownload, error) {
	grant, err := s.signer.Verify(token)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}
	path, err := s.storage.Path(grant.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	download := &ExportDownload{Path: path, ContentType: "application/octet-stream"}
	ext := strings.TrimPrefix(filepath.Ext(grant.Path), ".")
	download.Filename = "alumni-directory." + ext
	for _, r := range s.renderers {
		if r.Extension() == ext {
			download.ContentType = r.ContentType()
		}
	}
	return download, nil
}

// Purge deletes exports older than the retention window.
func (s *ExportService) Purge() (int, error) {
	removed, err := s.storage.PurgeOlderThan(s.cfg.Retention)
	if err != nil {
		s.logger.Warn("export purge failed", zap.Error(err))
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", removed))
	}
	return removed, nil
}

func directoryTable(rows []models.Alumni, generated time.Time) export.Table {
	table := export.Table{
		Title:   "Alumni Directory " + generated.UTC().Format("2006-01-02"),
		Columns: directoryColumns,
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, a := range rows {
		year := ""
		if a.YearOfPassingOut != nil {
			year = strconv.Itoa(*a.YearOfPassingOut)
		}
		table.Rows = append(table.Rows, map[string]string{
			"uid":           a.UID,
			"name":          a.Name,
			"year":          year,
			"course":        a.Course,
			"department":    a.Department,
			"email":         a.Email,
			"contact_no":    a.ContactNo,
			"occupation":    a.Occupation,
			"place_of_work": a.PlaceOfWork,
		})
	}
	return table
}
