package sessions_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/attendease/attendease/internal/app/features/sessions"
	"github.com/attendease/attendease/internal/app/stats"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/attendease/attendease/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*sessions.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return sessions.NewHandler(db, stats.DefaultCheckInBonus, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestHandleCreate_AdminCreatesSession(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Create Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/sessions", map[string]any{
		"org_id":           org.ID.Hex(),
		"type":             "attendance",
		"require_location": true,
		"geofence": map[string]any{
			"lat":      37.7749,
			"lon":      -122.4194,
			"radius_m": 75,
		},
	})
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var created struct {
		ID        string    `json:"id"`
		Status    string    `json:"status"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		Geofence  *struct {
			RadiusM float64 `json:"radius_m"`
		} `json:"geofence"`
	}
	testutil.DecodeJSON(t, rec, &created)
	if created.Status != models.SessionActive {
		t.Errorf("status: got %q, want %q", created.Status, models.SessionActive)
	}
	if created.Token == "" {
		t.Error("created session has no token")
	}
	if created.Geofence == nil || created.Geofence.RadiusM != 75 {
		t.Errorf("geofence not persisted: %+v", created.Geofence)
	}
	// Org fixture configures a 30-minute expiry.
	wantExpiry := time.Now().Add(30 * time.Minute)
	if d := created.ExpiresAt.Sub(wantExpiry); d < -time.Minute || d > time.Minute {
		t.Errorf("expires_at %v not near %v", created.ExpiresAt, wantExpiry)
	}
}

func TestHandleCreate_MemberForbidden(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Create Org")
	member := f.CreateMember(ctx, "Plain Member", "member@example.com", org.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/sessions", map[string]any{
		"org_id": org.ID.Hex(),
	})
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleCreate_SuspendedOrgRefuses(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateSuspendedOrganization(ctx, "Frozen Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)

	req := testutil.NewJSONRequest(t, "POST", "/api/sessions", map[string]any{
		"org_id": org.ID.Hex(),
	})
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleRevoke_IsIdempotent(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Revoke Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)

	revoke := func() *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "POST",
			"/api/sessions/"+sess.ID.Hex()+"/revoke", nil)
		req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
		req = testutil.WithChiURLParam(req, "sessionID", sess.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleRevoke(rec, req)
		return rec
	}

	rec := revoke()
	testutil.AssertStatus(t, rec, http.StatusOK)
	var got struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if got.Status != models.SessionRevoked {
		t.Errorf("status after revoke: got %q, want %q", got.Status, models.SessionRevoked)
	}

	// Second revoke is a successful no-op.
	testutil.AssertStatus(t, revoke(), http.StatusOK)
}

func TestHandleQRImage_ServesPNGForActiveOnly(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "QR Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)

	fetch := func() *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "GET",
			"/api/sessions/"+sess.ID.Hex()+"/qr.png", nil)
		req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
		req = testutil.WithChiURLParam(req, "sessionID", sess.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleQRImage(rec, req)
		return rec
	}

	rec := fetch()
	testutil.AssertStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type: got %q, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty png body")
	}

	if _, err := h.Sessions.MarkRevoked(ctx, sess.ID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}
	testutil.AssertStatus(t, fetch(), http.StatusConflict)
}

func TestHandleQRImage_MemberForbidden(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "QR Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	member := f.CreateMember(ctx, "Plain Member", "member@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)

	req := testutil.NewJSONRequest(t, "GET",
		"/api/sessions/"+sess.ID.Hex()+"/qr.png", nil)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	req = testutil.WithChiURLParam(req, "sessionID", sess.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleQRImage(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleList_FiltersByStatus(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "List Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	active := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	revoked := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	if _, err := h.Sessions.MarkRevoked(ctx, revoked.ID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}

	req := testutil.NewJSONRequest(t, "GET",
		"/api/sessions?org_id="+org.ID.Hex()+"&status=active", nil)
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var list []struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].ID != active.ID.Hex() {
		t.Errorf("active filter returned %+v, want just %s", list, active.ID.Hex())
	}
}

func TestHandleRebuildStats_RecountsLedger(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Stats Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{AllowMultipleScans: true}, nil)

	// Two users, one scanning twice: three total, two unique.
	u1, u2 := primitive.NewObjectID(), primitive.NewObjectID()
	f.CreateAttendance(ctx, org.ID, sess.ID, u1, true)
	f.CreateAttendance(ctx, org.ID, sess.ID, u1, false)
	f.CreateAttendance(ctx, org.ID, sess.ID, u2, true)

	req := testutil.NewJSONRequest(t, "POST",
		"/api/sessions/"+sess.ID.Hex()+"/stats/rebuild", nil)
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	req = testutil.WithChiURLParam(req, "sessionID", sess.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleRebuildStats(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var got models.SessionStats
	testutil.DecodeJSON(t, rec, &got)
	if got.TotalScans != 3 || got.UniqueScans != 2 {
		t.Errorf("rebuilt stats: got %d/%d, want 3/2", got.TotalScans, got.UniqueScans)
	}
}
