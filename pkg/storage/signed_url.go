package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenMalformed = errors.New("malformed download token")
	ErrTokenSignature = errors.New("invalid download token signature")
	ErrTokenExpired   = errors.New("download token expired")
)

// Grant is the content of a download token.
type Grant struct {
	ID        string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues HMAC-signed, expiring tokens that name a stored file.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form base64(id|exp|path).hexsig.
func (s *SignedURLSigner) Sign(id, path string) (string, Grant, error) {
	if id == "" || path == "" {
		return "", Grant{}, fmt.Errorf("%w: id and path required", ErrTokenMalformed)
	}
	if len(s.secret) == 0 {
		return "", Grant{}, errors.New("signing secret missing")
	}
	grant := Grant{ID: id, Path: path, ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second)}
	payload := strings.Join([]string{id, strconv.FormatInt(grant.ExpiresAt.Unix(), 10), path}, "|")
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + s.mac(encoded), grant, nil
}

// Verify checks the signature and expiry of token.
func (s *SignedURLSigner) Verify(token string) (Grant, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return Grant{}, ErrTokenMalformed
	}
	if !hmac.Equal([]byte(s.mac(encoded)), []byte(sig)) {
		return Grant{}, ErrTokenSignature
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Grant{}, ErrTokenMalformed
	}
	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 {
		return Grant{}, ErrTokenMalformed
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Grant{}, ErrTokenMalformed
	}
	grant := Grant{ID: parts[0], Path: parts[2], ExpiresAt: time.Unix(exp, 0)}
	if s.now().After(grant.ExpiresAt) {
		return grant, ErrTokenExpired
	}
	return grant, nil
}

func (s *SignedURLSigner) mac(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(payload))
	return fmt.Sprintf("%x", h.Sum(nil))
}
