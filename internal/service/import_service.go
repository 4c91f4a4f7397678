package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type bulkEntryWriter interface {
	Write(ctx context.Context, entries []models.ImportEntry) (models.BulkWriteResult, error)
}

type provisioningScheduler interface {
	Schedule(reason string) (string, error)
}

type directoryInvalidator interface {
	InvalidateDirectory(ctx context.Context)
}

type importMetrics interface {
	RecordImport(report models.ImportReport)
}

// ImportConfig bounds a single import request.
type ImportConfig struct {
	MaxRows int
}

// ImportService runs the spreadsheet import pipeline: parse, map, validate,
// persist and hand accounts off to provisioning.
type ImportService struct {
	mapper    *RowMapper
	writer    bulkEntryWriter
	scheduler provisioningScheduler
	cache     directoryInvalidator
	metrics   importMetrics
	logger    *zap.Logger
	cfg       ImportConfig
}

func NewImportService(mapper *RowMapper, writer bulkEntryWriter, scheduler provisioningScheduler, cache directoryInvalidator, metrics importMetrics, logger *zap.Logger, cfg ImportConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mapper == nil {
		mapper = NewRowMapper(nil)
	}
	return &ImportService{mapper: mapper, writer: writer, scheduler: scheduler, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// ImportCSV reads a spreadsheet export. Row numbers in the report are 1-based
// and exclude the header row.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*models.ImportReport, error) {
	headers, rows, err := s.readCSV(r)
	if err != nil {
		return nil, err
	}

	report := &models.ImportReport{TotalRows: len(rows), Rows: make([]models.RowResult, 0, len(rows))}
	if missing := MissingHeaders(headers); len(missing) > 0 {
		report.Warnings = append(report.Warnings, "missing columns: "+strings.Join(missing, ", "))
	}

	valid := make([]models.ImportEntry, 0, len(rows))
	for i, row := range rows {
		mapped := s.mapper.MapAndValidate(i+1, row)
		result := models.RowResult{Row: mapped.Row, UID: mapped.Entry.UID, Email: mapped.Entry.Alumni.Email}
		if mapped.Valid() {
			result.Status = models.RowInserted
			valid = append(valid, mapped.Entry)
		} else {
			result.Status = models.RowInvalid
			result.Reasons = mapped.Reasons
			report.Invalid++
		}
		report.Rows = append(report.Rows, result)
	}

	return s.persist(ctx, report, valid)
}

// ImportEntries stores entries that were already mapped by the caller.
func (s *ImportService) ImportEntries(ctx context.Context, entries []models.ImportEntry) (*models.ImportReport, error) {
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no entries supplied")
	}
	if err := s.checkRowLimit(len(entries)); err != nil {
		return nil, err
	}

	report := &models.ImportReport{TotalRows: len(entries), Rows: make([]models.RowResult, 0, len(entries))}
	valid := make([]models.ImportEntry, 0, len(entries))
	for i, entry := range entries {
		entry.Row = i + 1
		result := models.RowResult{Row: entry.Row, UID: entry.UID, Email: entry.Alumni.Email, Status: models.RowInserted}
		if reasons := ValidateEntry(entry); len(reasons) > 0 {
			result.Status = models.RowInvalid
			result.Reasons = reasons
			report.Invalid++
		} else {
			valid = append(valid, entry)
		}
		report.Rows = append(report.Rows, result)
	}

	return s.persist(ctx, report, valid)
}

// persist outlives the upload request; once rows are parsed a client
// disconnect must not stop the alumni and account writes halfway.
func (s *ImportService) persist(ctx context.Context, report *models.ImportReport, valid []models.ImportEntry) (*models.ImportReport, error) {
	ctx = context.WithoutCancel(ctx)
	if len(valid) > 0 {
		written, err := s.writer.Write(ctx, valid)
		if err != nil {
			s.logger.Error("import aborted", zap.Int("rows", len(valid)), zap.Error(err))
			return nil, err
		}
		report.Inserted = written.Inserted
		report.Failed = len(written.Failures)
		report.Rows = mergeRowOutcomes(report.Rows, written.Failures)
	}

	if report.Inserted > 0 {
		if s.cache != nil {
			s.cache.InvalidateDirectory(ctx)
		}
		if s.scheduler != nil {
			jobID, err := s.scheduler.Schedule("import")
			if err != nil {
				s.logger.Warn("provisioning not scheduled", zap.Error(err))
				report.Warnings = append(report.Warnings, "invitations were not queued; run provisioning manually")
			} else {
				report.ProvisioningJob = jobID
			}
		}
	}

	if s.metrics != nil {
		s.metrics.RecordImport(*report)
	}
	s.logger.Info("import finished",
		zap.Int("total", report.TotalRows),
		zap.Int("inserted", report.Inserted),
		zap.Int("invalid", report.Invalid),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *ImportService) readCSV(r io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not valid CSV")
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not valid CSV")
		}
		if blankRecord(record) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		rows = append(rows, row)
		if err := s.checkRowLimit(len(rows)); err != nil {
			return nil, nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file contains no data rows")
	}
	return headers, rows, nil
}

func (s *ImportService) checkRowLimit(n int) error {
	if s.cfg.MaxRows > 0 && n > s.cfg.MaxRows {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("import is limited to %d rows", s.cfg.MaxRows))
	}
	return nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
