// internal/app/features/organizations/join.go
package organizations

import (
	"errors"
	"net/http"
	"strings"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.uber.org/zap"
)

type joinRequest struct {
	Code string `json:"code" validate:"required,orgcode" label:"Org code"`
}

// HandleJoin handles POST /api/orgs/join: self-service enrollment by org
// code. The new membership is always a plain member; a previously removed
// member rejoins as a plain member too.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	var req joinRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "join organization")
	defer cancel()

	org, err := h.Orgs.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(req.Code)))
	if errors.Is(err, organizationstore.ErrNotFound) {
		httpjson.NotFound(w, "no organization with this code")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "lookup org by code", err)
		return
	}
	if org.Status != models.OrgStatusActive {
		httpjson.Forbidden(w, "this organization is not accepting members")
		return
	}

	_, err = h.Memberships.Add(ctx, org.ID, callerID, models.RoleMember)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		// A removed membership blocks the insert on the unique index;
		// rejoin reactivates it instead.
		existing, gerr := h.Memberships.Get(ctx, org.ID, callerID)
		if gerr != nil {
			httpjson.Internal(w, h.Log, "load existing membership", gerr)
			return
		}
		if existing.Status == models.MembershipActive {
			httpjson.Conflict(w, "already_member", "You are already a member of this organization.")
			return
		}
		if rerr := h.Memberships.Reactivate(ctx, org.ID, callerID); rerr != nil {
			httpjson.Internal(w, h.Log, "reactivate membership", rerr)
			return
		}
	} else if err != nil {
		httpjson.Internal(w, h.Log, "add membership", err)
		return
	}

	h.Log.Info("user joined org",
		zap.String("org_id", org.ID.Hex()),
		zap.String("user_id", callerID.Hex()))

	httpjson.Write(w, http.StatusCreated, toOrgResponse(org))
}
