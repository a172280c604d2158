// Package rewards exposes the reward catalog and the claim flow. A claim
// is a conditional point deduction: the balance check and the decrement
// are one atomic update, so concurrent claims can never overspend.
package rewards

import (
	"net/http"
	"time"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	rewardstore "github.com/attendease/attendease/internal/app/store/rewards"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/mailer"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds the dependencies for reward endpoints.
type Handler struct {
	Rewards  *rewardstore.Store
	Users    *userstore.Store
	Authz    *authz.OrgAuthorizer
	Mail     *mailer.Mailer
	SiteName string
	Log      *zap.Logger
}

// NewHandler constructs the rewards Handler. mail may be nil; claim
// confirmations are then skipped.
func NewHandler(db *mongo.Database, mail *mailer.Mailer, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Rewards:  rewardstore.New(db),
		Users:    userstore.New(db),
		Authz:    authz.NewOrgAuthorizer(membershipstore.New(db)),
		Mail:     mail,
		SiteName: siteName,
		Log:      logger,
	}
}

// rewardResponse is the wire shape of a catalog item.
type rewardResponse struct {
	ID          string `json:"id"`
	OrgID       string `json:"org_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CostPoints  int64  `json:"cost_points"`
	Active      bool   `json:"active"`
}

func toRewardResponse(r models.Reward) rewardResponse {
	return rewardResponse{
		ID:          r.ID.Hex(),
		OrgID:       r.OrgID.Hex(),
		Name:        r.Name,
		Description: r.Description,
		CostPoints:  r.CostPoints,
		Active:      r.Active,
	}
}

// claimResponse is one claim receipt.
type claimResponse struct {
	ID          string    `json:"id"`
	RewardID    string    `json:"reward_id"`
	OrgID       string    `json:"org_id"`
	PointsSpent int64     `json:"points_spent"`
	ClaimedAt   time.Time `json:"claimed_at"`
	Balance     int64     `json:"balance"`
}

// rewardIDParam extracts and parses the {rewardID} route parameter.
func rewardIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "rewardID"))
	if err != nil {
		httpjson.BadRequest(w, "invalid reward id")
		return primitive.NilObjectID, false
	}
	return id, true
}
