package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/invitation"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/noah-isme/alumni-network-api/pkg/config"
)

// InvitationRequest asks the provider to invite an address. UID is stored in the
// invited user's public metadata so the session can be tied back to the alumni record.
type InvitationRequest struct {
	Email       string
	UID         string
	RedirectURL string
}

// Provider is the subset of the identity provider the service uses.
type Provider interface {
	CreateInvitation(ctx context.Context, req InvitationRequest) (string, error)
	SetUID(ctx context.Context, externalID, uid string) error
}

type publicMetadata struct {
	UID string `json:"uid"`
}

// ClerkProvider talks to the Clerk backend API.
type ClerkProvider struct {
	invitations *invitation.Client
	users       *user.Client
}

// NewClerkProvider builds a provider authenticated with the backend secret key.
func NewClerkProvider(cfg config.IdentityConfig) (*ClerkProvider, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("identity: secret key is required")
	}
	clientCfg := &clerk.ClientConfig{}
	clientCfg.Key = clerk.String(cfg.SecretKey)
	if cfg.APIURL != "" {
		clientCfg.URL = clerk.String(cfg.APIURL)
	}
	return &ClerkProvider{
		invitations: invitation.NewClient(clientCfg),
		users:       user.NewClient(clientCfg),
	}, nil
}

// CreateInvitation sends a sign-up invitation and returns its id.
func (p *ClerkProvider) CreateInvitation(ctx context.Context, req InvitationRequest) (string, error) {
	metadata, err := json.Marshal(publicMetadata{UID: req.UID})
	if err != nil {
		return "", err
	}
	raw := json.RawMessage(metadata)
	params := &invitation.CreateParams{
		EmailAddress:   req.Email,
		PublicMetadata: &raw,
		Notify:         clerk.Bool(true),
	}
	if req.RedirectURL != "" {
		params.RedirectURL = clerk.String(req.RedirectURL)
	}

	inv, err := p.invitations.Create(ctx, params)
	if err != nil {
		return "", describe(err)
	}
	return inv.ID, nil
}

// SetUID writes the alumni uid into the user's public metadata.
func (p *ClerkProvider) SetUID(ctx context.Context, externalID, uid string) error {
	metadata, err := json.Marshal(publicMetadata{UID: uid})
	if err != nil {
		return err
	}
	raw := json.RawMessage(metadata)
	if _, err := p.users.UpdateMetadata(ctx, externalID, &user.UpdateMetadataParams{PublicMetadata: &raw}); err != nil {
		return describe(err)
	}
	return nil
}

// describe flattens Clerk API errors into one readable line.
func describe(err error) error {
	var apiErr *clerk.APIErrorResponse
	if !errors.As(err, &apiErr) || len(apiErr.Errors) == 0 {
		return err
	}
	parts := make([]string, 0, len(apiErr.Errors))
	for _, e := range apiErr.Errors {
		msg := e.LongMessage
		if msg == "" {
			msg = e.Message
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.Code, msg))
	}
	return fmt.Errorf("identity provider returned %d: %s: %w", apiErr.HTTPStatusCode, strings.Join(parts, "; "), err)
}
