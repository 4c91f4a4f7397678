package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	MainURL   string

	Database     DatabaseConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Identity     IdentityConfig
	Webhook      WebhookConfig
	Mail         MailConfig
	Broadcast    BroadcastConfig
	Provisioning ProvisioningConfig
	Import       ImportConfig
	Directory    DirectoryConfig
	Exports      ExportsConfig
	CORS         CORSConfig
	Log          LogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig describes how session tokens minted by the identity provider are verified.
type AuthConfig struct {
	JWTPublicKeyPEM   string
	AuthorizedParties []string
	ClockSkew         time.Duration
}

// IdentityConfig holds identity provider API credentials.
type IdentityConfig struct {
	SecretKey   string
	APIURL      string
	RedirectURL string
}

// WebhookConfig holds the signing secret for identity provider webhooks.
type WebhookConfig struct {
	Secret string
}

// MailConfig configures the SMTP transport.
type MailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	PoolSize  int
}

// BroadcastConfig tunes the bulk mail dispatcher.
type BroadcastConfig struct {
	BatchSize      int
	BatchDelay     time.Duration
	FailureSamples int
}

// ProvisioningConfig tunes the invitation loop.
type ProvisioningConfig struct {
	BatchSize      int
	BatchDelay     time.Duration
	FailureSamples int
	QueueWorkers   int
	QueueRetries   int
}

// ImportConfig bounds spreadsheet uploads.
type ImportConfig struct {
	MaxUploadBytes int64
	MaxRows        int
}

// DirectoryConfig governs directory listing cache behaviour.
type DirectoryConfig struct {
	CacheTTL time.Duration
}

// ExportsConfig controls directory export storage and download links.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.MainURL = strings.TrimRight(v.GetString("MAIN_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		JWTPublicKeyPEM:   strings.ReplaceAll(v.GetString("CLERK_JWT_KEY"), `\n`, "\n"),
		AuthorizedParties: splitAndTrim(v.GetString("CLERK_AUTHORIZED_PARTIES")),
		ClockSkew:         parseDuration(v.GetString("AUTH_CLOCK_SKEW"), 5*time.Second),
	}

	redirect := v.GetString("INVITATION_REDIRECT_URL")
	if redirect == "" && cfg.MainURL != "" {
		redirect = cfg.MainURL + "/sign-up"
	}
	cfg.Identity = IdentityConfig{
		SecretKey:   v.GetString("CLERK_SECRET_KEY"),
		APIURL:      v.GetString("CLERK_API_URL"),
		RedirectURL: redirect,
	}

	cfg.Webhook = WebhookConfig{Secret: v.GetString("CLERK_WEBHOOK_SECRET")}

	cfg.Mail = MailConfig{
		Host:      v.GetString("SMTP_HOST"),
		Port:      v.GetInt("SMTP_PORT"),
		Username:  v.GetString("EMAIL_USER"),
		Password:  v.GetString("EMAIL_PASS"),
		FromEmail: v.GetString("EMAIL_FROM"),
		FromName:  v.GetString("EMAIL_FROM_NAME"),
		PoolSize:  v.GetInt("SMTP_POOL_SIZE"),
	}
	if cfg.Mail.FromEmail == "" {
		cfg.Mail.FromEmail = cfg.Mail.Username
	}

	cfg.Broadcast = BroadcastConfig{
		BatchSize:      v.GetInt("BROADCAST_BATCH_SIZE"),
		BatchDelay:     parseDuration(v.GetString("BROADCAST_BATCH_DELAY"), 25*time.Millisecond),
		FailureSamples: v.GetInt("BROADCAST_FAILURE_SAMPLES"),
	}

	cfg.Provisioning = ProvisioningConfig{
		BatchSize:      v.GetInt("PROVISIONING_BATCH_SIZE"),
		BatchDelay:     parseDuration(v.GetString("PROVISIONING_BATCH_DELAY"), 250*time.Millisecond),
		FailureSamples: v.GetInt("PROVISIONING_FAILURE_SAMPLES"),
		QueueWorkers:   v.GetInt("PROVISIONING_QUEUE_WORKERS"),
		QueueRetries:   v.GetInt("PROVISIONING_QUEUE_RETRIES"),
	}

	maxUpload := v.GetInt64("IMPORT_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Import = ImportConfig{
		MaxUploadBytes: maxUpload,
		MaxRows:        v.GetInt("IMPORT_MAX_ROWS"),
	}

	cfg.Directory = DirectoryConfig{
		CacheTTL: parseDuration(v.GetString("DIRECTORY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("MAIN_URL", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "alumni")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CLERK_JWT_KEY", "")
	v.SetDefault("CLERK_AUTHORIZED_PARTIES", "")
	v.SetDefault("AUTH_CLOCK_SKEW", "5s")
	v.SetDefault("CLERK_SECRET_KEY", "")
	v.SetDefault("CLERK_API_URL", "")
	v.SetDefault("INVITATION_REDIRECT_URL", "")
	v.SetDefault("CLERK_WEBHOOK_SECRET", "")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_USER", "")
	v.SetDefault("EMAIL_PASS", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("EMAIL_FROM_NAME", "Alumni Network")
	v.SetDefault("SMTP_POOL_SIZE", 10)

	v.SetDefault("BROADCAST_BATCH_SIZE", 10)
	v.SetDefault("BROADCAST_BATCH_DELAY", "25ms")
	v.SetDefault("BROADCAST_FAILURE_SAMPLES", 10)

	v.SetDefault("PROVISIONING_BATCH_SIZE", 10)
	v.SetDefault("PROVISIONING_BATCH_DELAY", "250ms")
	v.SetDefault("PROVISIONING_FAILURE_SAMPLES", 10)
	v.SetDefault("PROVISIONING_QUEUE_WORKERS", 1)
	v.SetDefault("PROVISIONING_QUEUE_RETRIES", 1)

	v.SetDefault("IMPORT_MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("IMPORT_MAX_ROWS", 5000)

	v.SetDefault("DIRECTORY_CACHE_TTL", "5m")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
