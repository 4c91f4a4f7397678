package models

// EventAttachment is a file sent with an event invitation. Content is base64 in JSON.
type EventAttachment struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content" validate:"required"`
}

// EventDetails describes the event an invitation announces.
type EventDetails struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Timing      string            `json:"timing" validate:"required"`
	Date        string            `json:"date" validate:"required"`
	Location    string            `json:"location" validate:"required"`
	Attachments []EventAttachment `json:"attachments" validate:"omitempty,dive"`
}

// BroadcastReport aggregates one bulk send.
type BroadcastReport struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	FailedEmails []string `json:"failed_emails"`
	TotalAlumni  int      `json:"total_alumni"`
	Batches      int      `json:"batches"`
}
