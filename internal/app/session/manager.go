// internal/app/session/manager.go
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	sessionstore "github.com/attendease/attendease/internal/app/store/qrsessions"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sentinel errors surfaced to the API layer.
var (
	ErrOrgNotFound     = errors.New("organization not found")
	ErrOrgSuspended    = errors.New("organization is suspended")
	ErrForbidden       = errors.New("caller may not manage sessions for this organization")
	ErrSessionNotFound = errors.New("session not found")
)

// Validity is the outcome of ValidateForScan.
type Validity int

const (
	Valid Validity = iota
	Expired
	Revoked
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Revoked:
		return "revoked"
	}
	return "unknown"
}

// DefaultExpiryMinutes applies when neither the request nor the owning
// organization configures a session duration.
const DefaultExpiryMinutes = 30

// Manager owns the QR session lifecycle: creation, resolution, the lazy
// expiry check, and revocation. It never trusts a stored "active" status;
// validity is re-derived from expires_at on every scan.
type Manager struct {
	sessions    *sessionstore.Store
	orgs        *organizationstore.Store
	memberships *membershipstore.Store
	log         *zap.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewManager wires the manager to its stores.
func NewManager(sessions *sessionstore.Store, orgs *organizationstore.Store, memberships *membershipstore.Store, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:    sessions,
		orgs:        orgs,
		memberships: memberships,
		log:         logger,
		now:         time.Now,
	}
}

// SetClock overrides the manager's time source. Tests only.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// CreateParams describes a session creation request.
type CreateParams struct {
	OrgID           primitive.ObjectID
	CreatorID       primitive.ObjectID
	Type            string
	DurationMinutes int // 0 means use the org's configured default
	Geofence        *models.Geofence
	Settings        models.SessionSettings
}

// Create builds and persists a new active session. The creator must hold an
// admin or owner role in an active organization. The token is 32 bytes from
// crypto/rand, base64url-encoded; holders of the token can attempt scans,
// so it is generated here and nowhere else.
func (m *Manager) Create(ctx context.Context, p CreateParams) (models.QRSession, error) {
	org, err := m.orgs.GetByID(ctx, p.OrgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return models.QRSession{}, ErrOrgNotFound
		}
		return models.QRSession{}, fmt.Errorf("load organization: %w", err)
	}
	if org.Status != models.OrgStatusActive {
		return models.QRSession{}, ErrOrgSuspended
	}

	allowed, err := m.memberships.HasRole(ctx, p.OrgID, p.CreatorID, models.RoleAdmin, models.RoleOwner)
	if err != nil {
		return models.QRSession{}, fmt.Errorf("check creator role: %w", err)
	}
	if !allowed {
		return models.QRSession{}, ErrForbidden
	}

	switch p.Type {
	case models.SessionTypeAttendance, models.SessionTypeEvent, models.SessionTypeAccess:
		// ok
	case "":
		p.Type = models.SessionTypeAttendance
	default:
		return models.QRSession{}, fmt.Errorf("unknown session type %q", p.Type)
	}

	minutes := p.DurationMinutes
	if minutes <= 0 {
		minutes = org.Settings.QRExpiryMinutes
	}
	if minutes <= 0 {
		minutes = DefaultExpiryMinutes
	}

	token, err := newToken()
	if err != nil {
		return models.QRSession{}, fmt.Errorf("generate session token: %w", err)
	}

	now := m.now().UTC()
	sess := models.QRSession{
		Token:     token,
		OrgID:     p.OrgID,
		CreatorID: p.CreatorID,
		Type:      p.Type,
		ExpiresAt: now.Add(time.Duration(minutes) * time.Minute),
		Geofence:  p.Geofence,
		Settings:  p.Settings,
	}

	created, err := m.sessions.Create(ctx, sess)
	if err != nil {
		return models.QRSession{}, fmt.Errorf("persist session: %w", err)
	}

	m.log.Info("qr session created",
		zap.String("session_id", created.ID.Hex()),
		zap.String("org_id", p.OrgID.Hex()),
		zap.String("type", created.Type),
		zap.Time("expires_at", created.ExpiresAt))

	return created, nil
}

// Resolve looks a session up by token without mutating anything.
func (m *Manager) Resolve(ctx context.Context, token string) (models.QRSession, error) {
	sess, err := m.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return models.QRSession{}, ErrSessionNotFound
		}
		return models.QRSession{}, err
	}
	return sess, nil
}

// ValidateForScan re-derives the session's validity at the given time.
//
// Revoked wins over everything. A session whose expires_at has passed is
// Expired even while its stored status still says "active"; in that case
// the record is opportunistically transitioned (self-healing), but the
// return value never depends on that write succeeding. Expiry is
// monotonic: once this returns Expired for time T it returns Expired for
// every later time, because expires_at is set at creation and never
// extended.
func (m *Manager) ValidateForScan(ctx context.Context, sess *models.QRSession, now time.Time) Validity {
	if sess.Status == models.SessionRevoked {
		return Revoked
	}
	if sess.Status == models.SessionExpired {
		return Expired
	}
	if !now.Before(sess.ExpiresAt) {
		// Lazy write-back. Failure only means the stored status stays stale
		// until the next touch; the verdict stands either way.
		if _, err := m.sessions.MarkExpired(ctx, sess.ID); err != nil {
			m.log.Warn("lazy expiry write-back failed",
				zap.String("session_id", sess.ID.Hex()), zap.Error(err))
		}
		sess.Status = models.SessionExpired
		return Expired
	}
	return Valid
}

// Revoke explicitly terminates a session. The caller must hold admin/owner
// in the owning organization. Revoking an already-terminal session is a
// successful no-op.
func (m *Manager) Revoke(ctx context.Context, sessionID, callerID primitive.ObjectID) error {
	sess, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	allowed, err := m.memberships.HasRole(ctx, sess.OrgID, callerID, models.RoleAdmin, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("check caller role: %w", err)
	}
	if !allowed {
		return ErrForbidden
	}

	changed, err := m.sessions.MarkRevoked(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if changed {
		m.log.Info("qr session revoked",
			zap.String("session_id", sessionID.Hex()),
			zap.String("revoked_by", callerID.Hex()))
	}
	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
