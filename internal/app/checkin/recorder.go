// internal/app/checkin/recorder.go

// Package checkin records attendance scans. The recorder validates a scan
// against the session (expiry, revocation, geofence, membership), commits
// exactly one attendance record per (user, session) pair under the
// single-scan policy, and drives the stats aggregator.
package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/attendease/attendease/internal/app/session"
	attendancestore "github.com/attendease/attendease/internal/app/store/attendance"
	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	"github.com/attendease/attendease/internal/app/stats"
	"github.com/attendease/attendease/internal/app/system/geo"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Recorder is the attendance-marking pipeline. All of its storage calls run
// under the caller's context, which the API layer bounds with a timeout; a
// timeout surfaces as *PersistenceError, never as an unbounded retry.
type Recorder struct {
	sessions    *session.Manager
	attendance  *attendancestore.Store
	memberships *membershipstore.Store
	orgs        *organizationstore.Store
	aggregator  *stats.Aggregator
	policy      StatusPolicy
	log         *zap.Logger

	now func() time.Time
}

// NewRecorder wires the pipeline. A nil policy falls back to the default
// grace-window policy.
func NewRecorder(
	sessions *session.Manager,
	attendance *attendancestore.Store,
	memberships *membershipstore.Store,
	orgs *organizationstore.Store,
	aggregator *stats.Aggregator,
	policy StatusPolicy,
	logger *zap.Logger,
) *Recorder {
	if policy == nil {
		policy = GraceWindowPolicy(DefaultGraceMinutes)
	}
	return &Recorder{
		sessions:    sessions,
		attendance:  attendance,
		memberships: memberships,
		orgs:        orgs,
		aggregator:  aggregator,
		policy:      policy,
		log:         logger,
		now:         time.Now,
	}
}

// SetClock overrides the recorder's time source. Tests only.
func (r *Recorder) SetClock(now func() time.Time) { r.now = now }

// ScanRequest is one attempt to redeem a session token.
type ScanRequest struct {
	SessionToken string
	UserID       primitive.ObjectID
	Location     *models.GeoPoint
	Device       models.DeviceInfo
}

// RecordScan runs the scan pipeline. Each step short-circuits on failure,
// and every failure path leaves the attendance ledger untouched for the
// (user, session) pair.
//
//  1. Resolve the session by token.
//  2. Validate expiry/revocation (lazy expiry happens here).
//  3. Require the owning organization to be active.
//  4. Require an active membership in the owning organization.
//  5. Enforce the geofence when the session demands a location.
//  6. Insert the record; the unique index arbitrates duplicate scans.
//  7. Update session stats and award the check-in bonus (idempotent per
//     record, so a replay after a crash cannot double-count).
func (r *Recorder) RecordScan(ctx context.Context, req ScanRequest) (models.Attendance, error) {
	sess, err := r.sessions.Resolve(ctx, req.SessionToken)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return models.Attendance{}, ErrSessionNotFound
		}
		return models.Attendance{}, &PersistenceError{Op: "resolve session", Err: err}
	}

	now := r.now().UTC()
	switch r.sessions.ValidateForScan(ctx, &sess, now) {
	case session.Expired:
		return models.Attendance{}, ErrSessionExpired
	case session.Revoked:
		return models.Attendance{}, ErrSessionRevoked
	}

	org, err := r.orgs.GetByID(ctx, sess.OrgID)
	if err != nil {
		return models.Attendance{}, &PersistenceError{Op: "load organization", Err: err}
	}
	if org.Status != models.OrgStatusActive {
		// Suspension cascade-revokes the org's sessions, but that revoke can
		// lag or fail; the org status is authoritative at scan time.
		return models.Attendance{}, ErrSessionRevoked
	}

	if _, err := r.memberships.GetActive(ctx, sess.OrgID, req.UserID); err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			return models.Attendance{}, ErrNotAMember
		}
		return models.Attendance{}, &PersistenceError{Op: "check membership", Err: err}
	}

	if sess.Settings.RequireLocation {
		if req.Location == nil {
			return models.Attendance{}, ErrLocationRequired
		}
		if fence := sess.Geofence; fence != nil {
			if !geo.IsWithinRadius(fence.Center.Lat, fence.Center.Lon, fence.RadiusM,
				req.Location.Lat, req.Location.Lon) {
				return models.Attendance{}, ErrOutOfRange
			}
		}
	}

	record := models.Attendance{
		UserID:    req.UserID,
		OrgID:     sess.OrgID,
		SessionID: &sess.ID,
		ScannedAt: now,
		Location:  req.Location,
		Device:    req.Device,
		Status:    r.policy(now, &sess, &org),
	}

	firstScan := true
	if sess.Settings.AllowMultipleScans {
		// Multi-scan sessions insert uncounted repeats; only the first record
		// for the pair carries counted_once and bumps the unique counter.
		counted, err := r.attendance.HasCounted(ctx, sess.ID, req.UserID)
		if err != nil {
			return models.Attendance{}, &PersistenceError{Op: "check prior scans", Err: err}
		}
		firstScan = !counted
	}
	record.CountedOnce = firstScan

	inserted, err := r.insertWithRetry(ctx, record)
	if err != nil {
		if errors.Is(err, attendancestore.ErrDuplicateScan) {
			if sess.Settings.AllowMultipleScans {
				// Two concurrent first scans raced on counted_once; this one
				// still counts, just not as unique.
				record.CountedOnce = false
				inserted, err = r.insertWithRetry(ctx, record)
				if err != nil {
					return models.Attendance{}, &PersistenceError{Op: "insert attendance", Err: err}
				}
				firstScan = false
			} else {
				return models.Attendance{}, ErrAlreadyMarked
			}
		} else {
			return models.Attendance{}, &PersistenceError{Op: "insert attendance", Err: err}
		}
	}

	// The ledger insert is the commit point. Stats and the point bonus are
	// derived data with idempotent, replayable updates; a failure here is
	// logged for the rebuild path rather than failing the scan.
	if err := r.aggregator.OnAttendanceRecorded(ctx, &sess, &inserted, firstScan); err != nil {
		r.log.Error("stats update failed after attendance commit",
			zap.String("session_id", sess.ID.Hex()),
			zap.String("attendance_id", inserted.ID.Hex()),
			zap.Error(err))
	}

	r.log.Debug("attendance recorded",
		zap.String("session_id", sess.ID.Hex()),
		zap.String("user_id", req.UserID.Hex()),
		zap.String("status", inserted.Status))

	return inserted, nil
}

// insertWithRetry attempts the ledger insert, retrying once on a transient
// storage error. Duplicate-key outcomes and context cancellation are not
// transient and return immediately.
func (r *Recorder) insertWithRetry(ctx context.Context, record models.Attendance) (models.Attendance, error) {
	inserted, err := r.attendance.Insert(ctx, record)
	if err == nil || errors.Is(err, attendancestore.ErrDuplicateScan) || ctx.Err() != nil {
		return inserted, err
	}
	r.log.Warn("attendance insert failed, retrying once", zap.Error(err))
	return r.attendance.Insert(ctx, record)
}
