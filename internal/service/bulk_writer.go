package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/models"
	"github.com/noah-isme/alumni-network-api/pkg/database"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type alumniWriter interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, alumni *models.Alumni) error
	Delete(ctx context.Context, id string) error
}

type accountWriter interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, account *models.Account) error
}

// BulkWriter persists validated import entries. Every row is attempted even
// when earlier rows fail; a row-level failure never aborts the batch.
type BulkWriter struct {
	alumni   alumniWriter
	accounts accountWriter
	logger   *zap.Logger
}

func NewBulkWriter(alumni alumniWriter, accounts accountWriter, logger *zap.Logger) *BulkWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkWriter{alumni: alumni, accounts: accounts, logger: logger}
}

// Write inserts alumni rows first, then one pending account per inserted
// record. An account that cannot be stored rolls back its alumni row so the
// two collections stay one to one. Errors that are not attributable to a row
// (connection loss, permission errors) are returned as fatal, after every
// alumni row of this call that still lacks an account has been removed.
func (w *BulkWriter) Write(ctx context.Context, entries []models.ImportEntry) (models.BulkWriteResult, error) {
	result := models.BulkWriteResult{Failures: []models.RowFailure{}}
	inserted := make([]models.ImportEntry, 0, len(entries))

	for _, entry := range entries {
		record := entry.Alumni
		record.ID = ""
		record.UID = entry.UID
		if err := w.alumni.Insert(ctx, nil, &record); err != nil {
			if reason, ok := rowFailureReason(err); ok {
				result.Failures = append(result.Failures, models.RowFailure{Row: entry.Row, UID: entry.UID, Reason: reason})
				continue
			}
			w.discard(ctx, inserted)
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store alumni records")
		}
		entry.Alumni = record
		inserted = append(inserted, entry)
	}

	for i, entry := range inserted {
		uid := entry.UID
		ref := entry.Alumni.ID
		account := &models.Account{
			Email:     entry.Alumni.Email,
			Name:      entry.Alumni.Name,
			UID:       &uid,
			Role:      models.RoleUser,
			Verified:  true,
			AlumniRef: &ref,
		}
		err := w.accounts.Insert(ctx, nil, account)
		if err == nil {
			result.Inserted++
			continue
		}
		reason, rowLevel := rowFailureReason(err)
		if derr := w.alumni.Delete(context.WithoutCancel(ctx), ref); derr != nil {
			w.logger.Error("compensating alumni delete failed", zap.String("uid", uid), zap.Error(derr))
			w.discard(ctx, inserted[i+1:])
			return result, appErrors.Wrap(derr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to roll back alumni record")
		}
		if !rowLevel {
			w.discard(ctx, inserted[i+1:])
			return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store accounts")
		}
		result.Failures = append(result.Failures, models.RowFailure{Row: entry.Row, UID: uid, Reason: "account: " + reason})
	}

	w.logger.Info("bulk write finished",
		zap.Int("attempted", len(entries)),
		zap.Int("inserted", result.Inserted),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}

// discard deletes alumni rows whose account will never be written. It runs
// detached from ctx so an aborted request still cleans up.
func (w *BulkWriter) discard(ctx context.Context, entries []models.ImportEntry) {
	ctx = context.WithoutCancel(ctx)
	for _, entry := range entries {
		if err := w.alumni.Delete(ctx, entry.Alumni.ID); err != nil {
			w.logger.Error("orphaned alumni record left behind", zap.String("uid", entry.UID), zap.String("alumni_id", entry.Alumni.ID), zap.Error(err))
		}
	}
}

func rowFailureReason(err error) (string, bool) {
	pqErr, ok := database.RowError(err)
	if !ok {
		return "", false
	}
	return database.Describe(pqErr), true
}

// mergeRowOutcomes folds writer failures into the per-row report.
func mergeRowOutcomes(rows []models.RowResult, failures []models.RowFailure) []models.RowResult {
	byRow := make(map[int]models.RowFailure, len(failures))
	for _, f := range failures {
		byRow[f.Row] = f
	}
	for i := range rows {
		if rows[i].Status != models.RowInserted {
			continue
		}
		if f, ok := byRow[rows[i].Row]; ok {
			rows[i].Status = models.RowFailed
			rows[i].Reasons = []string{f.Reason}
		}
	}
	return rows
}
