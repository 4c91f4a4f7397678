package service

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/noah-isme/alumni-network-api/internal/models"
)

const invitationDateLayout = "Monday, January 2, 2006"

const invitationText = `Dear {{.Name}},

You're invited to: {{.Title}}

Event Details:
Date: {{.Date}}
Time: {{.Timing}}
Location: {{.Location}}

About the Event:
{{.Description}}

We look forward to seeing you there and reconnecting with fellow alumni.

Best regards,
Alumni Network Team
AlumniConnect College Network
`

const invitationHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; line-height: 1.6;">
  <div style="max-width: 600px; margin: 0 auto; padding: 24px;">
    <h2 style="color: #1d4ed8;">You're invited to: {{.Title}}</h2>
    <p>Dear {{.Name}},</p>
    <h3>Event Details:</h3>
    <p><strong>Date:</strong> {{.Date}}<br>
    <strong>Time:</strong> {{.Timing}}<br>
    <strong>Location:</strong> {{.Location}}</p>
    <h3>About the Event:</h3>
    <p>{{.Description}}</p>
    {{if .RSVPURL}}<p><a href="{{.RSVPURL}}" style="display: inline-block; padding: 10px 20px; background: #1d4ed8; color: #ffffff; text-decoration: none; border-radius: 4px;">RSVP Now</a></p>{{end}}
    <p>We look forward to seeing you there and reconnecting with fellow alumni.</p>
    <p>Best regards,<br>Alumni Network Team<br>AlumniConnect College Network</p>
  </div>
</body>
</html>
`

type invitationView struct {
	Name        string
	Title       string
	Date        string
	Timing      string
	Location    string
	Description string
	RSVPURL     string
}

// InvitationTemplate renders event invitation mail bodies.
type InvitationTemplate struct {
	text    *texttemplate.Template
	html    *htmltemplate.Template
	rsvpURL string
}

func NewInvitationTemplate(rsvpURL string) *InvitationTemplate {
	return &InvitationTemplate{
		text:    texttemplate.Must(texttemplate.New("invitation.txt").Parse(invitationText)),
		html:    htmltemplate.Must(htmltemplate.New("invitation.html").Parse(invitationHTML)),
		rsvpURL: rsvpURL,
	}
}

// Subject is shared by every recipient of one broadcast.
func (t *InvitationTemplate) Subject(details models.EventDetails) string {
	return "Invitation: " + details.Title
}

// Render produces the plain-text and HTML bodies for one recipient.
func (t *InvitationTemplate) Render(details models.EventDetails, recipientName string) (string, string, error) {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "Alumni"
	}
	view := invitationView{
		Name:        name,
		Title:       details.Title,
		Date:        formatEventDate(details.Date),
		Timing:      details.Timing,
		Location:    details.Location,
		Description: details.Description,
		RSVPURL:     t.rsvpURL,
	}

	var text, html bytes.Buffer
	if err := t.text.Execute(&text, view); err != nil {
		return "", "", err
	}
	if err := t.html.Execute(&html, view); err != nil {
		return "", "", err
	}
	return text.String(), html.String(), nil
}

// formatEventDate accepts calendar dates and RFC 3339 timestamps. Anything
// else is passed through unchanged.
func formatEventDate(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format(invitationDateLayout)
		}
	}
	return raw
}
