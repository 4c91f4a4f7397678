package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

func TestMetricsServiceExposesDomainCounters(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/admin/imports", http.StatusOK, 20*time.Millisecond)
	m.RecordImport(models.ImportReport{Inserted: 2, Failed: 1})
	m.RecordBroadcast(models.BroadcastReport{SuccessCount: 23}, time.Second)
	m.RecordWebhook("user.created", "linked")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := w.Body.String()
	assert.Contains(t, body, `alumni_import_rows_total{status="inserted"} 2`)
	assert.Contains(t, body, `alumni_import_rows_total{status="failed"} 1`)
	assert.Contains(t, body, `broadcast_emails_total{outcome="sent"} 23`)
	assert.Contains(t, body, `identity_webhook_events_total{outcome="linked",type="user.created"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordProvisioning(models.ProvisioningReport{})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
