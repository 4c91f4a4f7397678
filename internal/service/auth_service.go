package service

import (
	"context"
	"crypto/rsa"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type sessionAccountLookup interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Account, error)
}

// AuthConfig describes how identity provider session tokens are verified.
type AuthConfig struct {
	PublicKeyPEM      string
	AuthorizedParties []string
	ClockSkew         time.Duration
}

// AuthService verifies session tokens issued by the identity provider and
// resolves the caller's local account.
type AuthService struct {
	accounts sessionAccountLookup
	key      *rsa.PublicKey
	parties  map[string]struct{}
	parser   *jwt.Parser
	logger   *zap.Logger
}

// NewAuthService fails when the PEM key cannot be parsed.
func NewAuthService(accounts sessionAccountLookup, logger *zap.Logger, cfg AuthConfig) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse session public key: %w", err)
	}
	parties := make(map[string]struct{}, len(cfg.AuthorizedParties))
	for _, p := range cfg.AuthorizedParties {
		parties[p] = struct{}{}
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithExpirationRequired(),
	)
	return &AuthService{accounts: accounts, key: key, parties: parties, parser: parser, logger: logger}, nil
}

// ValidateToken checks signature, expiry and authorized party.
func (s *AuthService) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if len(s.parties) > 0 {
		if _, ok := s.parties[claims.AuthorizedParty]; !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token issued for another origin")
		}
	}
	return claims, nil
}

// Authenticate validates the token and attaches the linked account, if any.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	principal := &models.Principal{ExternalID: claims.Subject, SessionID: claims.SessionID}
	account, err := s.accounts.FindByExternalID(ctx, claims.Subject)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		s.logger.Error("resolve session account", zap.String("external_id", claims.Subject), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve account")
	default:
		principal.Account = account
	}
	return principal, nil
}
