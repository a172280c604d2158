// internal/app/features/organizations/view.go
package organizations

import (
	"errors"
	"net/http"

	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// myOrgResponse is an org the caller belongs to, with their role in it.
type myOrgResponse struct {
	orgResponse
	Role string `json:"role"`
}

// HandleGet handles GET /api/orgs/{orgID}. Visible to active members and
// platform admins.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get organization")
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

	org, err := h.Orgs.GetByID(ctx, orgID)
	if errors.Is(err, organizationstore.ErrNotFound) {
		httpjson.NotFound(w, "organization not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "get organization", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toOrgResponse(org))
}

// HandleListMine handles GET /api/orgs: the orgs the caller belongs to,
// with their role in each.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list my organizations")
	defer cancel()

	memberships, err := h.Memberships.ListByUser(ctx, callerID)
	if err != nil {
		httpjson.Internal(w, h.Log, "list memberships", err)
		return
	}

	out := make([]myOrgResponse, 0, len(memberships))
	for _, m := range memberships {
		org, err := h.Orgs.GetByID(ctx, m.OrgID)
		if errors.Is(err, organizationstore.ErrNotFound) {
			// Membership pointing at a missing org; skip rather than fail
			// the whole listing.
			h.Log.Warn("membership references missing org",
				zap.String("org_id", m.OrgID.Hex()),
				zap.String("user_id", callerID.Hex()))
			continue
		}
		if err != nil {
			httpjson.Internal(w, h.Log, "load organization", err)
			return
		}
		out = append(out, myOrgResponse{orgResponse: toOrgResponse(org), Role: m.Role})
	}
	httpjson.Write(w, http.StatusOK, out)
}
