package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/attendease/attendease/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T

	seq int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates an active test organization with the given name
// and a generated unique code.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	f.seq++
	now := time.Now().UTC()
	org := models.Organization{
		ID:     primitive.NewObjectID(),
		Name:   name,
		NameCI: text.Fold(name),
		Code:   fmt.Sprintf("ORG-%d-%d", now.UnixNano(), f.seq),
		Type:   models.OrgTypeCompany,
		Status: models.OrgStatusActive,
		Settings: models.OrgSettings{
			AttendanceRadiusM: 100,
			QRExpiryMinutes:   30,
			GraceMinutes:      15,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("organizations").InsertOne(ctx, org)
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// CreateSuspendedOrganization creates a test organization in suspended status.
func (f *Fixtures) CreateSuspendedOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	org := f.CreateOrganization(ctx, name)
	_, err := f.db.Collection("organizations").UpdateByID(ctx, org.ID,
		map[string]any{"$set": map[string]any{"status": models.OrgStatusSuspended}})
	if err != nil {
		f.t.Fatalf("failed to suspend test organization: %v", err)
	}
	org.Status = models.OrgStatusSuspended
	return org
}

// CreateUser creates a test user.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateMembership links a user to an organization with the given role.
func (f *Fixtures) CreateMembership(ctx context.Context, orgID, userID primitive.ObjectID, role string) models.OrgMembership {
	f.t.Helper()

	m := models.OrgMembership{
		ID:       primitive.NewObjectID(),
		OrgID:    orgID,
		UserID:   userID,
		Role:     role,
		Status:   models.MembershipActive,
		JoinedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("org_memberships").InsertOne(ctx, m)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}

	return m
}

// CreateMember creates a user plus an active member-role membership.
func (f *Fixtures) CreateMember(ctx context.Context, fullName, email string, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, fullName, email)
	f.CreateMembership(ctx, orgID, u.ID, models.RoleMember)
	return u
}

// CreateAdmin creates a user plus an active admin-role membership.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, fullName, email)
	f.CreateMembership(ctx, orgID, u.ID, models.RoleAdmin)
	return u
}

// CreateOwner creates a user plus an active owner-role membership.
func (f *Fixtures) CreateOwner(ctx context.Context, fullName, email string, orgID primitive.ObjectID) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, fullName, email)
	f.CreateMembership(ctx, orgID, u.ID, models.RoleOwner)
	return u
}

// CreateQRSession inserts an active session for the org with the given
// settings, expiring at the supplied time.
func (f *Fixtures) CreateQRSession(ctx context.Context, orgID, creatorID primitive.ObjectID, expiresAt time.Time, settings models.SessionSettings, fence *models.Geofence) models.QRSession {
	f.t.Helper()

	f.seq++
	now := time.Now().UTC()
	sess := models.QRSession{
		ID:        primitive.NewObjectID(),
		Token:     fmt.Sprintf("testtok-%d-%d", now.UnixNano(), f.seq),
		OrgID:     orgID,
		CreatorID: creatorID,
		Type:      models.SessionTypeAttendance,
		Status:    models.SessionActive,
		ExpiresAt: expiresAt.UTC(),
		Geofence:  fence,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("qr_sessions").InsertOne(ctx, sess)
	if err != nil {
		f.t.Fatalf("failed to create test qr session: %v", err)
	}

	return sess
}

// CreateReward inserts an active catalog item.
func (f *Fixtures) CreateReward(ctx context.Context, orgID primitive.ObjectID, name string, cost int64) models.Reward {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Reward{
		ID:         primitive.NewObjectID(),
		OrgID:      orgID,
		Name:       name,
		CostPoints: cost,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("rewards").InsertOne(ctx, r)
	if err != nil {
		f.t.Fatalf("failed to create test reward: %v", err)
	}

	return r
}

// CreateAttendance inserts a raw attendance record. countedOnce marks the
// record as the user's first counted scan for the session.
func (f *Fixtures) CreateAttendance(ctx context.Context, orgID, sessionID, userID primitive.ObjectID, countedOnce bool) models.Attendance {
	f.t.Helper()

	rec := models.Attendance{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		OrgID:       orgID,
		SessionID:   &sessionID,
		ScannedAt:   time.Now().UTC(),
		Status:      models.AttendancePresent,
		CountedOnce: countedOnce,
	}

	_, err := f.db.Collection("attendance").InsertOne(ctx, rec)
	if err != nil {
		f.t.Fatalf("failed to create test attendance record: %v", err)
	}

	return rec
}

// SetUserPoints writes a reward balance directly, bypassing the store.
func (f *Fixtures) SetUserPoints(ctx context.Context, userID primitive.ObjectID, points int64) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateByID(ctx, userID,
		map[string]any{"$set": map[string]any{"reward_points": points}})
	if err != nil {
		f.t.Fatalf("failed to set test user points: %v", err)
	}
}
