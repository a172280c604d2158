// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization types.
const (
	OrgTypeCompany = "company"
	OrgTypeSchool  = "school"
	OrgTypeClub    = "club"
	OrgTypeOther   = "other"
)

// Organization statuses. Organizations are never physically deleted in the
// normal flow; suspension is a soft status that also revokes the org's
// active QR sessions.
const (
	OrgStatusActive    = "active"
	OrgStatusSuspended = "suspended"
)

// GeoPoint is a latitude/longitude pair in degrees.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// OrgSettings holds per-organization attendance policy knobs.
// Zero values fall back to application defaults at the point of use.
type OrgSettings struct {
	AttendanceRadiusM float64 `bson:"attendance_radius_m" json:"attendance_radius_m"`
	QRExpiryMinutes   int     `bson:"qr_expiry_minutes" json:"qr_expiry_minutes"`
	GraceMinutes      int     `bson:"grace_minutes" json:"grace_minutes"`
	WorkStartHour     int     `bson:"work_start_hour" json:"work_start_hour"`
	WorkEndHour       int     `bson:"work_end_hour" json:"work_end_hour"`
	WorkDays          []int   `bson:"work_days,omitempty" json:"work_days,omitempty"` // 0=Sunday .. 6=Saturday
}

// Organization includes a case/diacritic-insensitive name field for search/sort.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"` // ← always stored
	Code      string             `bson:"code" json:"code"` // short unique join code
	Type      string             `bson:"type" json:"type"`
	Status    string             `bson:"status" json:"status"`
	Location  *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	Settings  OrgSettings        `bson:"settings" json:"settings"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
