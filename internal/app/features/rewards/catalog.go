// internal/app/features/rewards/catalog.go
package rewards

import (
	"net/http"
	"strings"

	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/htmlsanitize"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleListCatalog handles GET /api/rewards?org_id=...: the active
// catalog for an org. Any active member of the org can browse it.
func (h *Handler) HandleListCatalog(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}
	orgID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("org_id"))
	if err != nil {
		httpjson.BadRequest(w, "org_id query parameter must be a valid id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list rewards")
	defer cancel()

	if !authz.IsAdmin(r) {
		member, err := h.Authz.IsMember(ctx, orgID, callerID)
		if err != nil {
			httpjson.Internal(w, h.Log, "check membership", err)
			return
		}
		if !member {
			httpjson.Forbidden(w, "membership required")
			return
		}
	}

	rewards, err := h.Rewards.ListActiveByOrg(ctx, orgID)
	if err != nil {
		httpjson.Internal(w, h.Log, "list rewards", err)
		return
	}
	out := make([]rewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		out = append(out, toRewardResponse(rw))
	}
	httpjson.Write(w, http.StatusOK, out)
}

type createRewardRequest struct {
	OrgID       string `json:"org_id" validate:"required,objectid" label:"Organization id"`
	Name        string `json:"name" validate:"required,max=200" label:"Reward name"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	CostPoints  int64  `json:"cost_points" validate:"required,gt=0" label:"Cost"`
}

// HandleCreateReward handles POST /api/rewards. Admin or owner role in
// the owning org required.
func (h *Handler) HandleCreateReward(w http.ResponseWriter, r *http.Request) {
	if _, _, _, ok := authz.UserCtx(r); !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	var req createRewardRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}
	orgID, err := primitive.ObjectIDFromHex(req.OrgID)
	if err != nil {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create reward")
	defer cancel()

	canManage, err := h.Authz.CanManage(ctx, r, orgID)
	if err != nil {
		httpjson.Internal(w, h.Log, "check org role", err)
		return
	}
	if !canManage {
		httpjson.Forbidden(w, "admin or owner role required")
		return
	}

	created, err := h.Rewards.CreateReward(ctx, models.Reward{
		OrgID:       orgID,
		Name:        strings.TrimSpace(htmlsanitize.StripTags(req.Name)),
		Description: htmlsanitize.Sanitize(req.Description),
		CostPoints:  req.CostPoints,
		Active:      true,
	})
	if err != nil {
		httpjson.Internal(w, h.Log, "create reward", err)
		return
	}

	h.Log.Info("reward created",
		zap.String("reward_id", created.ID.Hex()),
		zap.String("org_id", orgID.Hex()),
		zap.Int64("cost_points", created.CostPoints))

	httpjson.Write(w, http.StatusCreated, toRewardResponse(created))
}
