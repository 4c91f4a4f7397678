package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims of a session token issued by the identity provider.
type SessionClaims struct {
	AuthorizedParty string `json:"azp,omitempty"`
	SessionID       string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller resolved from a session token and the
// local account it maps to. Account is nil until the caller registers.
type Principal struct {
	ExternalID string
	SessionID  string
	Account    *Account
}

// Role returns the caller's role, defaulting to user.
func (p *Principal) Role() AccountRole {
	if p == nil || p.Account == nil {
		return RoleUser
	}
	return p.Account.Role
}

// UID returns the alumni uid linked to the caller, if any.
func (p *Principal) UID() string {
	if p == nil || p.Account == nil || p.Account.UID == nil {
		return ""
	}
	return *p.Account.UID
}
