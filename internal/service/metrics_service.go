package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

// MetricsService owns the Prometheus registry. Every method is safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	importRows      *prometheus.CounterVec
	invitations     *prometheus.CounterVec
	emails          *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
}

func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Directory cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alumni_import_rows_total",
			Help: "Imported spreadsheet rows by outcome",
		}, []string{"status"}),
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_invitations_total",
			Help: "Identity provider invitations by outcome",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "broadcast_emails_total",
			Help: "Event invitation emails by outcome",
		}, []string{"outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "identity_webhook_events_total",
			Help: "Identity webhook events by type and outcome",
		}, []string{"type", "outcome"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_run_duration_seconds",
			Help:    "Wall time of batched runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		}, []string{"runner"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(m.requestDuration, m.requestTotal, m.cacheLookups, m.cacheLatency, m.cacheWrite,
		m.importRows, m.invitations, m.emails, m.webhookEvents, m.batchDuration, goroutines)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordImport counts an import report's rows by status.
func (m *MetricsService) RecordImport(report models.ImportReport) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(string(models.RowInserted)).Add(float64(report.Inserted))
	m.importRows.WithLabelValues(string(models.RowInvalid)).Add(float64(report.Invalid))
	m.importRows.WithLabelValues(string(models.RowFailed)).Add(float64(report.Failed))
}

func (m *MetricsService) RecordProvisioning(report models.ProvisioningReport) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues("invited").Add(float64(report.Invited))
	m.invitations.WithLabelValues("superseded").Add(float64(report.Superseded))
	m.invitations.WithLabelValues("failed").Add(float64(report.Failed))
	m.batchDuration.WithLabelValues("provisioning").Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
}

func (m *MetricsService) RecordBroadcast(report models.BroadcastReport, took time.Duration) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues("sent").Add(float64(report.SuccessCount))
	m.emails.WithLabelValues("failed").Add(float64(report.FailedCount))
	m.batchDuration.WithLabelValues("broadcast").Observe(took.Seconds())
}

func (m *MetricsService) RecordWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome).Inc()
}
