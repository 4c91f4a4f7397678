package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/dto"
	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/storage"
)

type directorySourceStub struct {
	filters []models.AlumniFilter
}

func (s *directorySourceStub) ListAll(_ context.Context, filter models.AlumniFilter) ([]models.Alumni, error) {
	s.filters = append(s.filters, filter)
	year := 2019
	return []models.Alumni{
		{UID: "asha19101", Name: "Asha Rao", YearOfPassingOut: &year, Department: "Physics", Email: "asha@example.com"},
		{UID: "bala20102", Name: "Bala Iyer", Department: "Physics"},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *directorySourceStub, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	source := &directorySourceStub{}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(source, store, signer, nil, nil, ExportConfig{APIPrefix: "/api/v1/"})
	return svc, source, store
}

func downloadToken(t *testing.T, url string) string {
	t.Helper()
	token := strings.TrimPrefix(url, "/api/v1/exports/")
	require.NotEqual(t, url, token)
	return token
}

func TestExportServiceCSV(t *testing.T) {
	svc, source, _ := newExportServiceForTest(t)

	result, err := svc.Export(context.Background(), dto.ExportQuery{DirectoryQuery: dto.DirectoryQuery{Department: "Physics"}})
	require.NoError(t, err)
	assert.Equal(t, models.ExportCSV, result.Format)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, "Physics", source.filters[0].Department)

	download, err := svc.Resolve(downloadToken(t, result.DownloadURL))
	require.NoError(t, err)
	assert.Equal(t, "text/csv", download.ContentType)
	assert.Equal(t, "alumni-directory.csv", download.Filename)

	body, err := os.ReadFile(download.Path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "asha19101")
	assert.Contains(t, string(body), "Contact No.")
}

func TestExportServicePDF(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	result, err := svc.Export(context.Background(), dto.ExportQuery{Format: "pdf"})
	require.NoError(t, err)

	download, err := svc.Resolve(downloadToken(t, result.DownloadURL))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", download.ContentType)

	info, err := os.Stat(download.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	_, err := svc.Export(context.Background(), dto.ExportQuery{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceResolveFailures(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	_, err := svc.Resolve("tampered.token")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	result, err := svc.Export(context.Background(), dto.ExportQuery{})
	require.NoError(t, err)
	download, err := svc.Resolve(downloadToken(t, result.DownloadURL))
	require.NoError(t, err)
	require.NoError(t, os.Remove(download.Path))

	_, err = svc.Resolve(downloadToken(t, result.DownloadURL))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
