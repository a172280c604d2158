// internal/domain/models/qrsession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session types. The type travels inside the QR payload so a scanner can
// tell an attendance code from an event or access code before submitting.
const (
	SessionTypeAttendance = "attendance"
	SessionTypeEvent      = "event"
	SessionTypeAccess     = "access"
)

// Session statuses. "expired" and "revoked" are terminal: once a session
// leaves "active" it never accepts another scan, regardless of expires_at.
const (
	SessionActive  = "active"
	SessionExpired = "expired"
	SessionRevoked = "revoked"
)

// Geofence is a center point plus radius defining where a scan is accepted.
type Geofence struct {
	Center  GeoPoint `bson:"center" json:"center"`
	RadiusM float64  `bson:"radius_m" json:"radius_m"`
}

// SessionSettings are per-session scan policy flags.
type SessionSettings struct {
	AllowMultipleScans bool `bson:"allow_multiple_scans" json:"allow_multiple_scans"`
	RequireLocation    bool `bson:"require_location" json:"require_location"`
	// GraceMinutes overrides the organization's grace window when > 0.
	GraceMinutes int `bson:"grace_minutes,omitempty" json:"grace_minutes,omitempty"`
}

// SessionStats are running counters updated atomically at scan time.
// The counters are derived data: they can always be rebuilt by recounting
// the attendance ledger for the session.
type SessionStats struct {
	TotalScans  int64      `bson:"total_scans" json:"total_scans"`
	UniqueScans int64      `bson:"unique_scans" json:"unique_scans"`
	LastScanAt  *time.Time `bson:"last_scan_at,omitempty" json:"last_scan_at,omitempty"`
}

// QRSession is a time-bounded, optionally geofenced check-in token.
//
// Token is a bearer secret: anyone holding it can attempt a scan, so it is
// generated from a CSPRNG and its unguessability is the security boundary.
// The stored Status may lag the truth for an expired session until the
// record is next touched; callers must always go through
// session.Manager.ValidateForScan rather than trusting a cached "active".
type QRSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token     string             `bson:"token" json:"token"`
	OrgID     primitive.ObjectID `bson:"org_id" json:"org_id"`
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Type      string             `bson:"type" json:"type"`
	Status    string             `bson:"status" json:"status"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
	Geofence  *Geofence          `bson:"geofence,omitempty" json:"geofence,omitempty"`
	Settings  SessionSettings    `bson:"settings" json:"settings"`
	Stats     SessionStats       `bson:"stats" json:"stats"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the session can never accept another scan.
func (s *QRSession) IsTerminal() bool {
	return s.Status == SessionExpired || s.Status == SessionRevoked
}
