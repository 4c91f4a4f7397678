package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type schedulerStub struct {
	reasons []string
	err     error
}

func (s *schedulerStub) Schedule(reason string) (string, error) {
	s.reasons = append(s.reasons, reason)
	if s.err != nil {
		return "", s.err
	}
	return "job-1", nil
}

type invalidatorStub struct{ calls int }

func (s *invalidatorStub) InvalidateDirectory(context.Context) { s.calls++ }

type importMetricsStub struct{ reports []models.ImportReport }

func (s *importMetricsStub) RecordImport(report models.ImportReport) {
	s.reports = append(s.reports, report)
}

type importFixture struct {
	svc       *ImportService
	alumni    *alumniWriterFake
	accounts  *accountWriterFake
	scheduler *schedulerStub
	cache     *invalidatorStub
	metrics   *importMetricsStub
}

func newImportFixture(cfg ImportConfig) *importFixture {
	f := &importFixture{
		alumni:    newAlumniWriterFake(),
		accounts:  &accountWriterFake{},
		scheduler: &schedulerStub{},
		cache:     &invalidatorStub{},
		metrics:   &importMetricsStub{},
	}
	// Counter-driven ids keep uids distinct and predictable.
	n := 0
	ids := NewIdentifierGenerator(func(int) int { n++; return n })
	writer := NewBulkWriter(f.alumni, f.accounts, nil)
	f.svc = NewImportService(NewRowMapper(ids), writer, f.scheduler, f.cache, f.metrics, nil, cfg)
	return f
}

const importHeader = "\ufeffName, Year of passing out ,E-mail,Department\n"

func TestImportCSVPipeline(t *testing.T) {
	f := newImportFixture(ImportConfig{})
	f.alumni.failOn["bala19102"] = &pq.Error{Code: "23505", Constraint: "alumni_uid_key"}

	csv := importHeader +
		"Asha Rao,2019,asha@example.com,Physics\n" +
		"Bala Iyer,2019,bala@example.com,Physics\n" +
		",,,\n" +
		"Chitra N,2019,chitra@example.com,Chemistry\n"

	report, err := f.svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.Invalid)
	assert.Equal(t, "job-1", report.ProvisioningJob)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "missing columns")

	require.Len(t, report.Rows, 3)
	assert.Equal(t, models.RowInserted, report.Rows[0].Status)
	assert.Equal(t, "asha19101", report.Rows[0].UID)
	assert.Equal(t, models.RowFailed, report.Rows[1].Status)
	assert.Equal(t, 2, report.Rows[1].Row)
	assert.Equal(t, models.RowInserted, report.Rows[2].Status)

	assert.Len(t, f.accounts.stored, 2)
	assert.Equal(t, []string{"import"}, f.scheduler.reasons)
	assert.Equal(t, 1, f.cache.calls)
	require.Len(t, f.metrics.reports, 1)
}

func TestImportCSVInvalidRowsAreReportedNotStored(t *testing.T) {
	f := newImportFixture(ImportConfig{})

	csv := importHeader +
		"Asha Rao,19,asha@example.com,Physics\n" +
		"Bala Iyer,2019,bala.example.com,Physics\n"

	report, err := f.svc.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Invalid)
	assert.Zero(t, report.Inserted)
	assert.Empty(t, report.ProvisioningJob)
	assert.Empty(t, f.scheduler.reasons, "nothing inserted, nothing to provision")
	assert.Zero(t, f.cache.calls)
	assert.Equal(t, []string{"year of passing out must be a four-digit year"}, report.Rows[0].Reasons)
	assert.Equal(t, []string{"e-mail is missing or malformed"}, report.Rows[1].Reasons)
}

func TestImportCSVRejectsBadFiles(t *testing.T) {
	cases := map[string]struct {
		body     string
		cfg      ImportConfig
		expected *appErrors.Error
	}{
		"empty":        {body: "", expected: appErrors.ErrValidation},
		"header only":  {body: importHeader, expected: appErrors.ErrValidation},
		"blank rows":   {body: importHeader + " , , ,\n", expected: appErrors.ErrValidation},
		"broken quote": {body: importHeader + "\"Asha,2019\n", expected: appErrors.ErrValidation},
		"too many rows": {
			body:     importHeader + "A,2019,a@x.io,P\nB,2019,b@x.io,P\n",
			cfg:      ImportConfig{MaxRows: 1},
			expected: appErrors.ErrPayloadTooLarge,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newImportFixture(tc.cfg)
			_, err := f.svc.ImportCSV(context.Background(), strings.NewReader(tc.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestImportScheduleFailureIsAWarning(t *testing.T) {
	f := newImportFixture(ImportConfig{})
	f.scheduler.err = errors.New("queue full")

	report, err := f.svc.ImportCSV(context.Background(), strings.NewReader(importHeader+"Asha Rao,2019,asha@example.com,Physics\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Empty(t, report.ProvisioningJob)
	assert.Contains(t, report.Warnings, "invitations were not queued; run provisioning manually")
}

func TestImportEntries(t *testing.T) {
	f := newImportFixture(ImportConfig{})

	good := importEntry(0, "asha19500", "asha@example.com")
	good.Alumni.Name = "Asha Rao"
	bad := importEntry(0, "", "nobody")

	report, err := f.svc.ImportEntries(context.Background(), []models.ImportEntry{good, bad})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 2, report.Rows[1].Row)
	assert.ElementsMatch(t, []string{"uid is required", "e-mail is missing or malformed"}, report.Rows[1].Reasons)

	_, err = f.svc.ImportEntries(context.Background(), nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestImportFatalWriteAborts(t *testing.T) {
	f := newImportFixture(ImportConfig{})
	f.alumni.failOn["asha19101"] = errors.New("connection refused")

	_, err := f.svc.ImportCSV(context.Background(), strings.NewReader(importHeader+"Asha Rao,2019,asha@example.com,Physics\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, f.scheduler.reasons)
}

func TestImportCSVFinishesAfterRequestCancelled(t *testing.T) {
	f := newImportFixture(ImportConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.ImportCSV(ctx, strings.NewReader(importHeader+"Asha Rao,2019,asha@example.com,Physics\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Len(t, f.alumni.stored, 1)
	assert.Len(t, f.accounts.stored, 1)
}
