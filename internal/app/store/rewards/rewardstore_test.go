package rewardstore_test

import (
	"testing"

	rewardstore "github.com/attendease/attendease/internal/app/store/rewards"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/attendease/attendease/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestListActiveByOrg_SortsByCostAndFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Acme")
	other := f.CreateOrganization(ctx, "Elsewhere")

	f.CreateReward(ctx, org.ID, "Coffee", 30)
	f.CreateReward(ctx, org.ID, "Mug", 10)
	retired := f.CreateReward(ctx, org.ID, "Old Prize", 5)
	f.CreateReward(ctx, other.ID, "Foreign", 1)

	if _, err := db.Collection("rewards").UpdateByID(ctx, retired.ID,
		bson.M{"$set": bson.M{"active": false}}); err != nil {
		t.Fatalf("failed to retire reward: %v", err)
	}

	store := rewardstore.New(db)
	got, err := store.ListActiveByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("ListActiveByOrg failed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 rewards, got %d", len(got))
	}
	if got[0].Name != "Mug" || got[1].Name != "Coffee" {
		t.Errorf("expected cheapest first, got %q then %q", got[0].Name, got[1].Name)
	}
}

func TestRecordClaim_StampsIDAndTime(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Acme")
	user := f.CreateUser(ctx, "Worker Bee", "bee@example.com")
	reward := f.CreateReward(ctx, org.ID, "Coffee", 30)
	store := rewardstore.New(db)

	claim, err := store.RecordClaim(ctx, models.RewardClaim{
		UserID:      user.ID,
		RewardID:    reward.ID,
		OrgID:       org.ID,
		PointsSpent: reward.CostPoints,
	})
	if err != nil {
		t.Fatalf("RecordClaim failed: %v", err)
	}
	if claim.ID.IsZero() {
		t.Error("expected claim ID assigned")
	}
	if claim.ClaimedAt.IsZero() {
		t.Error("expected claim time stamped")
	}

	history, err := store.ListClaimsByUser(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("ListClaimsByUser failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != claim.ID {
		t.Errorf("expected the claim in history, got %d entries", len(history))
	}
}
