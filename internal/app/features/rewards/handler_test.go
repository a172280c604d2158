package rewards_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/attendease/attendease/internal/app/features/rewards"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/attendease/attendease/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*rewards.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return rewards.NewHandler(db, nil, "AttendEase", zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestHandleClaim_DeductsAndRecords(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	member := f.CreateMember(ctx, "Point Holder", "holder@example.com", org.ID)
	f.SetUserPoints(ctx, member.ID, 100)
	reward := f.CreateReward(ctx, org.ID, "Coffee Voucher", 30)

	req := testutil.NewJSONRequest(t, "POST",
		"/api/rewards/"+reward.ID.Hex()+"/claim", nil)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	req = testutil.WithChiURLParam(req, "rewardID", reward.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleClaim(rec, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var claim struct {
		PointsSpent int64 `json:"points_spent"`
		Balance     int64 `json:"balance"`
	}
	testutil.DecodeJSON(t, rec, &claim)
	if claim.PointsSpent != 30 || claim.Balance != 70 {
		t.Errorf("claim: spent %d balance %d, want 30/70", claim.PointsSpent, claim.Balance)
	}

	u, err := h.Users.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.RewardPoints != 70 {
		t.Errorf("balance after claim: got %d, want 70", u.RewardPoints)
	}
}

func TestHandleClaim_InsufficientPoints(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	member := f.CreateMember(ctx, "Poor Member", "poor@example.com", org.ID)
	f.SetUserPoints(ctx, member.ID, 10)
	reward := f.CreateReward(ctx, org.ID, "Expensive Thing", 500)

	req := testutil.NewJSONRequest(t, "POST",
		"/api/rewards/"+reward.ID.Hex()+"/claim", nil)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	req = testutil.WithChiURLParam(req, "rewardID", reward.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleClaim(rec, req)
	testutil.AssertStatus(t, rec, http.StatusConflict)
	testutil.AssertErrorCode(t, rec, "insufficient_points")

	u, err := h.Users.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.RewardPoints != 10 {
		t.Errorf("failed claim moved the balance: got %d, want 10", u.RewardPoints)
	}
}

func TestHandleClaim_ConcurrentClaimsNeverOverspend(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	member := f.CreateMember(ctx, "Racer", "racer@example.com", org.ID)
	f.SetUserPoints(ctx, member.ID, 50)
	reward := f.CreateReward(ctx, org.ID, "Voucher", 30)

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := testutil.NewJSONRequest(t, "POST",
				"/api/rewards/"+reward.ID.Hex()+"/claim", nil)
			req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
			req = testutil.WithChiURLParam(req, "rewardID", reward.ID.Hex())
			rec := httptest.NewRecorder()
			h.HandleClaim(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			succeeded++
		}
	}
	if succeeded != 1 {
		t.Errorf("successful claims: got %d, want exactly 1", succeeded)
	}

	u, err := h.Users.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if u.RewardPoints != 20 {
		t.Errorf("balance after race: got %d, want 20", u.RewardPoints)
	}
}

func TestHandleClaim_NonMemberForbidden(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	outsider := f.CreateUser(ctx, "Out Sider", "out@example.com")
	f.SetUserPoints(ctx, outsider.ID, 1000)
	reward := f.CreateReward(ctx, org.ID, "Members Only", 10)

	req := testutil.NewJSONRequest(t, "POST",
		"/api/rewards/"+reward.ID.Hex()+"/claim", nil)
	req = testutil.AsUser(req, outsider.ID, outsider.FullName, outsider.Email)
	req = testutil.WithChiURLParam(req, "rewardID", reward.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleClaim(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleListCatalog_MembersOnly(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	member := f.CreateMember(ctx, "Browser", "browse@example.com", org.ID)
	f.CreateReward(ctx, org.ID, "Coffee", 30)
	f.CreateReward(ctx, org.ID, "Tea", 20)

	req := testutil.NewJSONRequest(t, "GET", "/api/rewards?org_id="+org.ID.Hex(), nil)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	rec := httptest.NewRecorder()
	h.HandleListCatalog(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var list []struct {
		Name string `json:"name"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("catalog size: got %d, want 2", len(list))
	}

	outsider := f.CreateUser(ctx, "Out Sider", "out@example.com")
	req = testutil.NewJSONRequest(t, "GET", "/api/rewards?org_id="+org.ID.Hex(), nil)
	req = testutil.AsUser(req, outsider.ID, outsider.FullName, outsider.Email)
	rec = httptest.NewRecorder()
	h.HandleListCatalog(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleCreateReward_ManagerOnly(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	admin := f.CreateAdmin(ctx, "Org Admin", "admin@example.com", org.ID)
	member := f.CreateMember(ctx, "Plain Member", "member@example.com", org.ID)

	body := map[string]any{
		"org_id":      org.ID.Hex(),
		"name":        "Gift Card",
		"cost_points": 100,
	}

	req := testutil.NewJSONRequest(t, "POST", "/api/rewards", body)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	rec := httptest.NewRecorder()
	h.HandleCreateReward(rec, req)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	req = testutil.NewJSONRequest(t, "POST", "/api/rewards", body)
	req = testutil.AsUser(req, admin.ID, admin.FullName, admin.Email)
	rec = httptest.NewRecorder()
	h.HandleCreateReward(rec, req)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var created struct {
		Active     bool  `json:"active"`
		CostPoints int64 `json:"cost_points"`
	}
	testutil.DecodeJSON(t, rec, &created)
	if !created.Active || created.CostPoints != 100 {
		t.Errorf("created reward: %+v", created)
	}
}

func TestHandleMyClaims_NewestFirst(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := f.CreateOrganization(ctx, "Reward Org")
	member := f.CreateMember(ctx, "Claimer", "claimer@example.com", org.ID)
	f.SetUserPoints(ctx, member.ID, 100)
	first := f.CreateReward(ctx, org.ID, "First", 10)
	second := f.CreateReward(ctx, org.ID, "Second", 20)

	for _, rw := range []models.Reward{first, second} {
		req := testutil.NewJSONRequest(t, "POST",
			"/api/rewards/"+rw.ID.Hex()+"/claim", nil)
		req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
		req = testutil.WithChiURLParam(req, "rewardID", rw.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleClaim(rec, req)
		testutil.AssertStatus(t, rec, http.StatusCreated)
	}

	req := testutil.NewJSONRequest(t, "GET", "/api/rewards/claims", nil)
	req = testutil.AsUser(req, member.ID, member.FullName, member.Email)
	rec := httptest.NewRecorder()
	h.HandleMyClaims(rec, req)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var claims []struct {
		RewardID string `json:"reward_id"`
	}
	testutil.DecodeJSON(t, rec, &claims)
	if len(claims) != 2 {
		t.Fatalf("claim count: got %d, want 2", len(claims))
	}
	if claims[0].RewardID != second.ID.Hex() {
		t.Errorf("first claim listed: got %s, want most recent %s",
			claims[0].RewardID, second.ID.Hex())
	}
}
