package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 10, cfg.Broadcast.BatchSize)
	assert.Equal(t, 25*time.Millisecond, cfg.Broadcast.BatchDelay)
	assert.Equal(t, 10, cfg.Provisioning.BatchSize)
	assert.Equal(t, "http://localhost:3000/sign-up", cfg.Identity.RedirectURL)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BROADCAST_BATCH_SIZE", "7")
	t.Setenv("BROADCAST_BATCH_DELAY", "1s")
	t.Setenv("MAIN_URL", "https://alumni.example.org/")
	t.Setenv("EMAIL_USER", "mailer@example.org")
	t.Setenv("CLERK_JWT_KEY", `-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----`)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.org, https://b.example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Broadcast.BatchSize)
	assert.Equal(t, time.Second, cfg.Broadcast.BatchDelay)
	assert.Equal(t, "https://alumni.example.org/sign-up", cfg.Identity.RedirectURL)
	assert.Equal(t, "mailer@example.org", cfg.Mail.FromEmail)
	assert.Contains(t, cfg.Auth.JWTPublicKeyPEM, "\nabc\n")
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
