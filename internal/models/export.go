package models

import "time"

// ExportFormat selects the directory export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult describes a generated directory export.
type ExportResult struct {
	ID          string       `json:"id"`
	Format      ExportFormat `json:"format"`
	Rows        int          `json:"rows"`
	DownloadURL string       `json:"download_url"`
	ExpiresAt   time.Time    `json:"expires_at"`
}
