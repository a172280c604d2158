// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceLate    = "late"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

// DeviceInfo describes the device that submitted a scan.
type DeviceInfo struct {
	Platform  string `bson:"platform,omitempty" json:"platform,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	DeviceID  string `bson:"device_id,omitempty" json:"device_id,omitempty"`
}

// Attendance is one check-in event. Records are append-only: they are
// created exactly once per successful scan and never mutated afterward,
// except for the PointsAwarded flag that marks the reward bonus as applied.
//
// CountedOnce is set on the first record per (session, user) pair and left
// unset on repeat scans of multi-scan sessions. A unique partial index on
// (session_id, user_id) where counted_once is true makes the existence
// check-and-insert atomic: a duplicate key error from the insert is the
// "already marked" signal, not a fatal error.
type Attendance struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	OrgID     primitive.ObjectID  `bson:"org_id" json:"org_id"`
	SessionID *primitive.ObjectID `bson:"session_id,omitempty" json:"session_id,omitempty"`

	ScannedAt time.Time  `bson:"scanned_at" json:"scanned_at"`
	Location  *GeoPoint  `bson:"location,omitempty" json:"location,omitempty"`
	Device    DeviceInfo `bson:"device" json:"device"`
	Status    string     `bson:"status" json:"status"`

	CountedOnce   bool `bson:"counted_once,omitempty" json:"-"`
	PointsAwarded bool `bson:"points_awarded,omitempty" json:"-"`
}
