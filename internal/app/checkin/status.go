// internal/app/checkin/status.go
package checkin

import (
	"time"

	"github.com/attendease/attendease/internal/domain/models"
)

// StatusPolicy decides present vs. late for a scan. It is a pluggable
// policy rather than a hardcoded rule because the grace window is
// configuration, not a property of the domain: sessions may override the
// organization's window, and deployments set the fallback default.
type StatusPolicy func(scannedAt time.Time, sess *models.QRSession, org *models.Organization) string

// DefaultGraceMinutes is the fallback grace window when neither the session
// nor the organization configures one.
const DefaultGraceMinutes = 15

// GraceWindowPolicy marks a scan late when it lands more than the grace
// window after the session's creation. Precedence: session setting, then
// organization setting, then the supplied default.
func GraceWindowPolicy(defaultGraceMinutes int) StatusPolicy {
	if defaultGraceMinutes <= 0 {
		defaultGraceMinutes = DefaultGraceMinutes
	}
	return func(scannedAt time.Time, sess *models.QRSession, org *models.Organization) string {
		minutes := defaultGraceMinutes
		if org != nil && org.Settings.GraceMinutes > 0 {
			minutes = org.Settings.GraceMinutes
		}
		if sess.Settings.GraceMinutes > 0 {
			minutes = sess.Settings.GraceMinutes
		}
		deadline := sess.CreatedAt.Add(time.Duration(minutes) * time.Minute)
		if scannedAt.After(deadline) {
			return models.AttendanceLate
		}
		return models.AttendancePresent
	}
}

// AlwaysPresentPolicy ignores timing entirely. Event and access sessions
// use it: walking in late to an event is still walking in.
func AlwaysPresentPolicy() StatusPolicy {
	return func(time.Time, *models.QRSession, *models.Organization) string {
		return models.AttendancePresent
	}
}
