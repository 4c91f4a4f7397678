package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
)

// ErrMissingSignature is returned when any of the svix headers is absent.
var ErrMissingSignature = errors.New("identity: missing webhook signature headers")

var signatureHeaders = []string{"svix-id", "svix-timestamp", "svix-signature"}

// Event is a decoded identity provider webhook.
type Event struct {
	Type string    `json:"type"`
	Data EventUser `json:"data"`
}

// EventUser is the user object carried by user.* events.
type EventUser struct {
	ID                    string         `json:"id"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	PrimaryEmailAddressID *string        `json:"primary_email_address_id"`
	EmailAddresses        []EventAddress `json:"email_addresses"`
}

type EventAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// Email returns the primary address, falling back to the first one listed.
func (u EventUser) Email() string {
	if u.PrimaryEmailAddressID != nil {
		for _, a := range u.EmailAddresses {
			if a.ID == *u.PrimaryEmailAddressID {
				return strings.TrimSpace(a.EmailAddress)
			}
		}
	}
	if len(u.EmailAddresses) > 0 {
		return strings.TrimSpace(u.EmailAddresses[0].EmailAddress)
	}
	return ""
}

// DisplayName joins first and last name. Without a first name the email is used.
func (u EventUser) DisplayName() string {
	first := deref(u.FirstName)
	if first == "" {
		return u.Email()
	}
	return strings.TrimSpace(first + " " + deref(u.LastName))
}

// WebhookVerifier checks svix signatures on incoming webhook payloads.
type WebhookVerifier struct {
	wh *svix.Webhook
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("identity: webhook secret is required")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("identity: webhook secret: %w", err)
	}
	return &WebhookVerifier{wh: wh}, nil
}

// Verify authenticates payload against its headers and decodes the event.
func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) (Event, error) {
	for _, h := range signatureHeaders {
		if headers.Get(h) == "" {
			return Event{}, ErrMissingSignature
		}
	}
	if err := v.wh.Verify(payload, headers); err != nil {
		return Event{}, fmt.Errorf("identity: verify webhook: %w", err)
	}
	var evt Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return Event{}, fmt.Errorf("identity: decode webhook: %w", err)
	}
	return evt, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
