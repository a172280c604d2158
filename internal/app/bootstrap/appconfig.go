// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds AttendEase-specific configuration, loaded on top of
// WAFFLE's core config (bind address, TLS, environment, etc.).
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Sessions
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionTTL    time.Duration

	// Email/SMTP
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// Branding and links
	SiteName string
	BaseURL  string

	// Check-in behavior
	CheckInBonusPoints  int64
	DefaultGraceMinutes int
	ScanRateLimit       int
	ScanRateWindow      time.Duration

	// Background expiry sweep
	SweepInterval time.Duration

	// Platform admin bootstrap
	AdminEmail string
}
