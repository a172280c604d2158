package reports_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"time"

	"github.com/attendease/attendease/internal/app/features/reports"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/attendease/attendease/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleOrgAttendance_ManagerSeesRecords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := reports.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Report Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	member := f.CreateMember(ctx, "Worker", "worker@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	f.CreateAttendance(ctx, org.ID, sess.ID, member.ID, true)

	req := testutil.NewJSONRequest(t, "GET",
		"/api/reports/attendance?org_id="+org.ID.Hex(), nil)
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	rec := httptest.NewRecorder()
	h.HandleOrgAttendance(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var list []struct {
		UserID string `json:"user_id"`
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].UserID != member.ID.Hex() {
		t.Errorf("report rows: %+v", list)
	}

	// Plain members cannot pull the org report.
	req = testutil.NewJSONRequest(t, "GET",
		"/api/reports/attendance?org_id="+org.ID.Hex(), nil)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	rec = httptest.NewRecorder()
	h.HandleOrgAttendance(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleMyAttendance_OwnRecordsOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := reports.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Report Org")
	me := f.CreateMember(ctx, "Me", "me@example.com", org.ID)
	other := f.CreateMember(ctx, "Other", "other@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, me.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	f.CreateAttendance(ctx, org.ID, sess.ID, me.ID, true)
	f.CreateAttendance(ctx, org.ID, sess.ID, other.ID, true)

	req := testutil.NewJSONRequest(t, "GET", "/api/reports/attendance/me", nil)
	req = testutil.AsUser(req, me.ID, me.FullName, me.Email)
	rec := httptest.NewRecorder()
	h.HandleMyAttendance(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var list []struct {
		UserID string `json:"user_id"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].UserID != me.ID.Hex() {
		t.Errorf("personal history leaked other users: %+v", list)
	}
}

func TestHandleExportCSV_JoinsIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	h := reports.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Export Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	member := f.CreateMember(ctx, "Worker Bee", "bee@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, admin.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	f.CreateAttendance(ctx, org.ID, sess.ID, member.ID, true)

	req := testutil.NewJSONRequest(t, "GET",
		"/api/reports/attendance/export.csv?org_id="+org.ID.Hex(), nil)
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	rec := httptest.NewRecorder()
	h.HandleExportCSV(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: got %q, want text/csv", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "scanned_at,name,email,status") {
		t.Errorf("missing csv header: %q", body)
	}
	if !strings.Contains(body, "Worker Bee") || !strings.Contains(body, "bee@example.com") {
		t.Errorf("identity not joined into export: %q", body)
	}
}
