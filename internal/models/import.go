package models

// ImportEntry pairs a generated uid with the alumni fields for one spreadsheet row.
type ImportEntry struct {
	Row    int    `json:"row"`
	UID    string `json:"uid"`
	Alumni Alumni `json:"alumni_data"`
}

// RowStatus is the outcome of one imported row.
type RowStatus string

const (
	RowInserted RowStatus = "inserted"
	RowInvalid  RowStatus = "invalid"
	RowFailed   RowStatus = "failed"
)

// RowResult reports what happened to one row.
type RowResult struct {
	Row     int       `json:"row"`
	UID     string    `json:"uid,omitempty"`
	Email   string    `json:"email,omitempty"`
	Status  RowStatus `json:"status"`
	Reasons []string  `json:"reasons,omitempty"`
}

// RowFailure is a row the persistence writer could not store.
type RowFailure struct {
	Row    int    `json:"row"`
	UID    string `json:"uid"`
	Reason string `json:"reason"`
}

// BulkWriteResult is what the persistence writer returns.
type BulkWriteResult struct {
	Inserted int          `json:"inserted"`
	Failures []RowFailure `json:"failures"`
}

// ImportReport summarises an import request.
type ImportReport struct {
	TotalRows       int         `json:"total_rows"`
	Inserted        int         `json:"inserted"`
	Invalid         int         `json:"invalid"`
	Failed          int         `json:"failed"`
	Warnings        []string    `json:"warnings,omitempty"`
	Rows            []RowResult `json:"rows"`
	ProvisioningJob string      `json:"provisioning_job,omitempty"`
}
