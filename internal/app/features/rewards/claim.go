// internal/app/features/rewards/claim.go
package rewards

import (
	"errors"
	"net/http"

	rewardstore "github.com/attendease/attendease/internal/app/store/rewards"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/limits"
	"github.com/attendease/attendease/internal/app/system/mailer"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.uber.org/zap"
)

// HandleClaim handles POST /api/rewards/{rewardID}/claim.
//
// The deduction is the commit point: SpendPoints only matches when the
// balance covers the cost, so by the time the claim record is written the
// points are already spent. A crash between the two leaves a deducted
// balance without a receipt, never a free reward.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	rewardID, ok := rewardIDParam(w, r)
	if !ok {
		return
	}
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "claim reward")
	defer cancel()

	reward, err := h.Rewards.GetReward(ctx, rewardID)
	if errors.Is(err, rewardstore.ErrNotFound) {
		httpjson.NotFound(w, "reward not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "load reward", err)
		return
	}
	if !reward.Active {
		httpjson.Conflict(w, "reward_inactive", "This reward is no longer available.")
		return
	}

	member, err := h.Authz.IsMember(ctx, reward.OrgID, callerID)
	if err != nil {
		httpjson.Internal(w, h.Log, "check membership", err)
		return
	}
	if !member {
		httpjson.Forbidden(w, "membership required")
		return
	}

	err = h.Users.SpendPoints(ctx, callerID, reward.CostPoints)
	if errors.Is(err, userstore.ErrInsufficientPoints) {
		httpjson.Conflict(w, "insufficient_points", "You do not have enough points for this reward.")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "spend points", err)
		return
	}

	claim, err := h.Rewards.RecordClaim(ctx, models.RewardClaim{
		UserID:      callerID,
		RewardID:    reward.ID,
		OrgID:       reward.OrgID,
		PointsSpent: reward.CostPoints,
	})
	if err != nil {
		// Points are gone but the receipt write failed; this needs an
		// operator, so it logs loudly with everything needed to repair.
		h.Log.Error("claim receipt write failed after deduction",
			zap.String("user_id", callerID.Hex()),
			zap.String("reward_id", reward.ID.Hex()),
			zap.Int64("points_spent", reward.CostPoints),
			zap.Error(err))
		httpjson.Internal(w, h.Log, "record claim", err)
		return
	}

	u, err := h.Users.GetByID(ctx, callerID)
	if err != nil {
		httpjson.Internal(w, h.Log, "reload user", err)
		return
	}

	if h.Mail != nil {
		msg := mailer.BuildRewardClaimEmail(mailer.RewardClaimEmailData{
			SiteName:   h.SiteName,
			Name:       u.FullName,
			RewardName: reward.Name,
			Points:     reward.CostPoints,
			Balance:    u.RewardPoints,
		})
		msg.To = u.Email
		h.Mail.SendAsync(msg)
	}

	h.Log.Info("reward claimed",
		zap.String("user_id", callerID.Hex()),
		zap.String("reward_id", reward.ID.Hex()),
		zap.Int64("points_spent", reward.CostPoints),
		zap.Int64("balance", u.RewardPoints))

	httpjson.Write(w, http.StatusCreated, claimResponse{
		ID:          claim.ID.Hex(),
		RewardID:    claim.RewardID.Hex(),
		OrgID:       claim.OrgID.Hex(),
		PointsSpent: claim.PointsSpent,
		ClaimedAt:   claim.ClaimedAt,
		Balance:     u.RewardPoints,
	})
}

// HandleMyClaims handles GET /api/rewards/claims: the caller's claim
// history, newest first.
func (h *Handler) HandleMyClaims(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list my claims")
	defer cancel()

	claims, err := h.Rewards.ListClaimsByUser(ctx, callerID, limits.Clamp(0))
	if err != nil {
		httpjson.Internal(w, h.Log, "list claims", err)
		return
	}
	out := make([]claimResponse, 0, len(claims))
	for _, c := range claims {
		out = append(out, claimResponse{
			ID:          c.ID.Hex(),
			RewardID:    c.RewardID.Hex(),
			OrgID:       c.OrgID.Hex(),
			PointsSpent: c.PointsSpent,
			ClaimedAt:   c.ClaimedAt,
		})
	}
	httpjson.Write(w, http.StatusOK, out)
}
