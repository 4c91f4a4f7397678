package models

import "time"

// AccountRole grants access to admin routes.
type AccountRole string

const (
	RoleAdmin AccountRole = "admin"
	RoleUser  AccountRole = "user"
)

// Account links a person's login identity to their alumni record.
type Account struct {
	ID               string      `db:"id" json:"id"`
	Email            string      `db:"email" json:"email"`
	Name             string      `db:"name" json:"name"`
	UID              *string     `db:"uid" json:"uid,omitempty"`
	ExternalID       *string     `db:"external_id" json:"external_id,omitempty"`
	InvitationID     *string     `db:"invitation_id" json:"invitation_id,omitempty"`
	InvitationSent   bool        `db:"invitation_sent" json:"invitation_sent"`
	InvitationSentAt *time.Time  `db:"invitation_sent_at" json:"invitation_sent_at,omitempty"`
	LinkedAt         *time.Time  `db:"linked_at" json:"linked_at,omitempty"`
	Role             AccountRole `db:"role" json:"role"`
	Verified         bool        `db:"verified" json:"verified"`
	AlumniRef        *string     `db:"alumni_ref" json:"alumni_ref,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// NeedsInvitation reports whether the provisioning loop should invite this account.
func (a Account) NeedsInvitation() bool {
	return a.ExternalID == nil && a.InvitationID == nil
}

// VerificationStatus is the public answer to "is this uid verified".
type VerificationStatus struct {
	UID      string `json:"uid"`
	Verified bool   `json:"verified"`
}
