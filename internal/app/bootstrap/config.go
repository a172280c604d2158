// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for AttendEase.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: ATTENDEASE_MONGO_URI, ATTENDEASE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "attendease", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "attendease-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "720h", Desc: "Session lifetime (e.g. 24h, 720h)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@attendease.app", Desc: "From email address"},
	{Name: "mail_from_name", Default: "AttendEase", Desc: "From display name"},

	// Branding and links used in emails and health payloads
	{Name: "site_name", Default: "AttendEase", Desc: "Site display name"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// Check-in behavior
	{Name: "checkin_bonus_points", Default: 10, Desc: "Reward points granted per counted check-in"},
	{Name: "default_grace_minutes", Default: 15, Desc: "Minutes after session start before a scan counts as late"},
	{Name: "scan_rate_limit", Default: 30, Desc: "Max scan attempts per user per window"},
	{Name: "scan_rate_window", Default: "1m", Desc: "Window for the scan rate limit"},

	// Background expiry sweep for QR sessions
	{Name: "sweep_interval", Default: "1m", Desc: "How often overdue QR sessions are marked expired"},

	// Platform admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user to promote to platform admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, ATTENDEASE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ATTENDEASE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 720*time.Hour),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		CheckInBonusPoints:  int64(appValues.Int("checkin_bonus_points")),
		DefaultGraceMinutes: appValues.Int("default_grace_minutes"),
		ScanRateLimit:       appValues.Int("scan_rate_limit"),
		ScanRateWindow:      appValues.Duration("scan_rate_window", time.Minute),

		SweepInterval: appValues.Duration("sweep_interval", time.Minute),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// AttendEase validates the MongoDB URI format and the check-in knobs to
// catch configuration errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be set to a strong value in production")
	}

	if appCfg.CheckInBonusPoints < 0 {
		return fmt.Errorf("checkin_bonus_points must not be negative")
	}
	if appCfg.DefaultGraceMinutes < 0 {
		return fmt.Errorf("default_grace_minutes must not be negative")
	}
	if appCfg.ScanRateLimit <= 0 || appCfg.ScanRateWindow <= 0 {
		return fmt.Errorf("scan_rate_limit and scan_rate_window must be positive")
	}
	if appCfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}

	return nil
}
