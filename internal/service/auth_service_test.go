package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
)

type sessionLookupStub struct {
	accounts map[string]*models.Account
	err      error
}

func (s sessionLookupStub) FindByExternalID(_ context.Context, externalID string) (*models.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	if a, ok := s.accounts[externalID]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func newSigningKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func signSession(t *testing.T, key *rsa.PrivateKey, subject, azp string, expires time.Time) string {
	t.Helper()
	claims := models.SessionClaims{
		AuthorizedParty: azp,
		SessionID:       "sess_1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthServiceAuthenticate(t *testing.T) {
	key, pemKey := newSigningKey(t)
	admin := &models.Account{ID: "acc-1", Role: models.RoleAdmin}
	svc, err := NewAuthService(sessionLookupStub{accounts: map[string]*models.Account{"user_admin": admin}}, nil, AuthConfig{
		PublicKeyPEM:      pemKey,
		AuthorizedParties: []string{"https://alumni.example.com"},
	})
	require.NoError(t, err)

	principal, err := svc.Authenticate(context.Background(), signSession(t, key, "user_admin", "https://alumni.example.com", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "user_admin", principal.ExternalID)
	assert.Equal(t, "sess_1", principal.SessionID)
	assert.Equal(t, models.RoleAdmin, principal.Role())

	principal, err = svc.Authenticate(context.Background(), signSession(t, key, "user_new", "https://alumni.example.com", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Nil(t, principal.Account, "callers without an account are still authenticated")
	assert.Equal(t, models.RoleUser, principal.Role())
}

func TestAuthServiceRejectsBadTokens(t *testing.T) {
	key, pemKey := newSigningKey(t)
	otherKey, _ := newSigningKey(t)
	svc, err := NewAuthService(sessionLookupStub{}, nil, AuthConfig{
		PublicKeyPEM:      pemKey,
		AuthorizedParties: []string{"https://alumni.example.com"},
		ClockSkew:         time.Second,
	})
	require.NoError(t, err)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user_1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"expired":        signSession(t, key, "user_1", "https://alumni.example.com", time.Now().Add(-time.Hour)),
		"wrong party":    signSession(t, key, "user_1", "https://evil.example.com", time.Now().Add(time.Hour)),
		"no subject":     signSession(t, key, "", "https://alumni.example.com", time.Now().Add(time.Hour)),
		"other key":      signSession(t, otherKey, "user_1", "https://alumni.example.com", time.Now().Add(time.Hour)),
		"hmac algorithm": hs,
		"garbage":        "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
		})
	}
}

func TestAuthServiceLookupFailure(t *testing.T) {
	key, pemKey := newSigningKey(t)
	svc, err := NewAuthService(sessionLookupStub{err: errors.New("db down")}, nil, AuthConfig{PublicKeyPEM: pemKey})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), signSession(t, key, "user_1", "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestNewAuthServiceRequiresKey(t *testing.T) {
	_, err := NewAuthService(sessionLookupStub{}, nil, AuthConfig{PublicKeyPEM: "nope"})
	assert.Error(t, err)
}
