package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

func TestAchievementRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM achievements ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "image", "alumni_name", "alumni_designation", "created_at", "updated_at"}).
			AddRow("ach-2", "Award", "desc", "https://img", "Asha Rao", "CTO", now, now).
			AddRow("ach-1", "Grant", "desc", "data:image/png;base64,AA", "Vik", "PI", now.Add(-time.Hour), now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "ach-2", items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAchievementRepositoryUpdateDeleteReportMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAchievementRepository(db)

	mock.ExpectExec("UPDATE achievements SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM achievements").WithArgs("ach-9").WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Update(context.Background(), &models.Achievement{ID: "ach-9", Title: "t"})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = repo.Delete(context.Background(), "ach-9")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditLog{Action: models.AuditActionImport, Resource: "alumni", Status: 200}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil)
	var dest map[string]string

	assert.ErrorIs(t, repo.Get(context.Background(), "alumni:list", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "alumni:list", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "alumni:*"))
	assert.NoError(t, repo.Ping(context.Background()))
}
