package sessionstore_test

import (
	"testing"
	"time"

	sessionstore "github.com/attendease/attendease/internal/app/store/qrsessions"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/attendease/attendease/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMarkExpired_OnlyTransitionsActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Acme")
	owner := f.CreateOwner(ctx, "Olive Owner", "olive@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, owner.ID,
		time.Now().Add(-time.Minute), models.SessionSettings{}, nil)
	store := sessionstore.New(db)

	changed, err := store.MarkExpired(ctx, sess.ID)
	if err != nil {
		t.Fatalf("MarkExpired failed: %v", err)
	}
	if !changed {
		t.Fatal("expected first transition to report a change")
	}

	changed, err = store.MarkExpired(ctx, sess.ID)
	if err != nil {
		t.Fatalf("second MarkExpired failed: %v", err)
	}
	if changed {
		t.Error("expected repeat transition to be a no-op")
	}
}

func TestMarkRevoked_DoesNotResurrectExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Acme")
	owner := f.CreateOwner(ctx, "Olive Owner", "olive@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, owner.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	store := sessionstore.New(db)

	if _, err := store.MarkExpired(ctx, sess.ID); err != nil {
		t.Fatalf("MarkExpired failed: %v", err)
	}

	changed, err := store.MarkRevoked(ctx, sess.ID)
	if err != nil {
		t.Fatalf("MarkRevoked failed: %v", err)
	}
	if changed {
		t.Error("expected revoke of an expired session to be a no-op")
	}

	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != models.SessionExpired {
		t.Errorf("expected status to stay expired, got %q", got.Status)
	}
}

func TestExpireDue_SkipsCurrentSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Acme")
	owner := f.CreateOwner(ctx, "Olive Owner", "olive@example.com", org.ID)
	overdue := f.CreateQRSession(ctx, org.ID, owner.ID,
		time.Now().Add(-time.Minute), models.SessionSettings{}, nil)
	current := f.CreateQRSession(ctx, org.ID, owner.ID,
		time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	store := sessionstore.New(db)

	n, err := store.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ExpireDue failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session expired, got %d", n)
	}

	for _, tc := range []struct {
		id   primitive.ObjectID
		want string
	}{
		{overdue.ID, models.SessionExpired},
		{current.ID, models.SessionActive},
	} {
		got, err := store.GetByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if got.Status != tc.want {
			t.Errorf("session %s: expected %q, got %q", tc.id.Hex(), tc.want, got.Status)
		}
	}
}

func TestRevokeAllForOrg_LeavesOtherOrgsAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := f.CreateOrganization(ctx, "Org A")
	orgB := f.CreateOrganization(ctx, "Org B")
	ownerA := f.CreateOwner(ctx, "Owner A", "a@example.com", orgA.ID)
	ownerB := f.CreateOwner(ctx, "Owner B", "b@example.com", orgB.ID)
	sessA := f.CreateQRSession(ctx, orgA.ID, ownerA.ID, time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	sessB := f.CreateQRSession(ctx, orgB.ID, ownerB.ID, time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	store := sessionstore.New(db)

	n, err := store.RevokeAllForOrg(ctx, orgA.ID)
	if err != nil {
		t.Fatalf("RevokeAllForOrg failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session revoked, got %d", n)
	}

	gotA, _ := store.GetByID(ctx, sessA.ID)
	gotB, _ := store.GetByID(ctx, sessB.ID)
	if gotA.Status != models.SessionRevoked {
		t.Errorf("expected org A session revoked, got %q", gotA.Status)
	}
	if gotB.Status != models.SessionActive {
		t.Errorf("expected org B session untouched, got %q", gotB.Status)
	}
}

func TestApplyScan_CountsTotalsAndUniques(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Acme")
	owner := f.CreateOwner(ctx, "Olive Owner", "olive@example.com", org.ID)
	sess := f.CreateQRSession(ctx, org.ID, owner.ID, time.Now().Add(time.Hour), models.SessionSettings{}, nil)
	store := sessionstore.New(db)

	at := time.Now().UTC()
	if err := store.ApplyScan(ctx, sess.ID, true, at); err != nil {
		t.Fatalf("ApplyScan failed: %v", err)
	}
	if err := store.ApplyScan(ctx, sess.ID, false, at.Add(time.Minute)); err != nil {
		t.Fatalf("ApplyScan failed: %v", err)
	}

	got, err := store.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Stats.TotalScans != 2 || got.Stats.UniqueScans != 1 {
		t.Errorf("expected 2 total / 1 unique, got %d / %d", got.Stats.TotalScans, got.Stats.UniqueScans)
	}
	if got.Stats.LastScanAt == nil {
		t.Error("expected last_scan_at set")
	}
}
