// internal/app/features/organizations/members.go
package organizations

import (
	"context"
	"errors"
	"net/http"
	"time"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/normalize"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memberResponse is one roster entry: membership joined with user identity.
type memberResponse struct {
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// HandleListMembers handles GET /api/orgs/{orgID}/members. Any active
// member of the org (or a platform admin) can see the roster.
func (h *Handler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list org members")
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

	memberships, err := h.Memberships.ListByOrg(ctx, orgID, "")
	if err != nil {
		httpjson.Internal(w, h.Log, "list memberships", err)
		return
	}

	out := make([]memberResponse, 0, len(memberships))
	for _, m := range memberships {
		u, err := h.Users.GetByID(ctx, m.UserID)
		if errors.Is(err, userstore.ErrNotFound) {
			h.Log.Warn("membership references missing user",
				zap.String("org_id", orgID.Hex()),
				zap.String("user_id", m.UserID.Hex()))
			continue
		}
		if err != nil {
			httpjson.Internal(w, h.Log, "load member user", err)
			return
		}
		out = append(out, memberResponse{
			UserID:   m.UserID.Hex(),
			FullName: u.FullName,
			Email:    u.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	httpjson.Write(w, http.StatusOK, out)
}

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email" label:"Email"`
	Role  string `json:"role" validate:"omitempty,oneof=member admin" label:"Role"`
}

// HandleAddMember handles POST /api/orgs/{orgID}/members: enroll an
// existing user by email. Admins and owners can add members; granting the
// admin role on the way in takes owner standing.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add org member")
	defer cancel()

	callerID, ok := h.requireManager(ctx, w, r, orgID)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role == models.RoleAdmin {
		if ok, err := h.callerIsOwner(ctx, r, orgID, callerID); err != nil {
			httpjson.Internal(w, h.Log, "check owner role", err)
			return
		} else if !ok {
			httpjson.Forbidden(w, "owner role required to grant admin")
			return
		}
	}

	u, err := h.Users.GetByEmail(ctx, normalize.Email(req.Email))
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.NotFound(w, "no user with this email")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "lookup user by email", err)
		return
	}

	m, err := h.Memberships.Add(ctx, orgID, u.ID, role)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		httpjson.Conflict(w, "already_member", "This user is already a member of the organization.")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "add membership", err)
		return
	}

	h.Log.Info("member added",
		zap.String("org_id", orgID.Hex()),
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", role),
		zap.String("added_by", callerID.Hex()))

	httpjson.Write(w, http.StatusCreated, memberResponse{
		UserID:   u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	})
}

// HandleRemoveMember handles DELETE /api/orgs/{orgID}/members/{userID}.
// The owner cannot be removed. Removing an admin takes owner standing.
// Members may remove themselves (leaving the org).
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.BadRequest(w, "invalid user id")
		return
	}
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove org member")
	defer cancel()

	target, err := h.Memberships.GetActive(ctx, orgID, targetID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		httpjson.NotFound(w, "membership not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "load membership", err)
		return
	}
	if target.Role == models.RoleOwner {
		httpjson.Forbidden(w, "the owner cannot be removed")
		return
	}

	self := callerID == targetID
	if !self {
		canManage, err := h.Authz.CanManage(ctx, r, orgID)
		if err != nil {
			httpjson.Internal(w, h.Log, "check org role", err)
			return
		}
		if !canManage {
			httpjson.Forbidden(w, "admin or owner role required")
			return
		}
		if target.Role == models.RoleAdmin {
			if ok, err := h.callerIsOwner(ctx, r, orgID, callerID); err != nil {
				httpjson.Internal(w, h.Log, "check owner role", err)
				return
			} else if !ok {
				httpjson.Forbidden(w, "owner role required to remove an admin")
				return
			}
		}
	}

	if err := h.Memberships.Remove(ctx, orgID, targetID); err != nil {
		httpjson.Internal(w, h.Log, "remove membership", err)
		return
	}

	h.Log.Info("member removed",
		zap.String("org_id", orgID.Hex()),
		zap.String("user_id", targetID.Hex()),
		zap.Bool("self", self),
		zap.String("removed_by", callerID.Hex()))

	w.WriteHeader(http.StatusNoContent)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member admin" label:"Role"`
}

// HandleSetRole handles PUT /api/orgs/{orgID}/members/{userID}/role.
// Owner only; platform admins are deliberately excluded. The owner role
// itself never moves through this endpoint.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	orgID, ok := orgIDParam(w, r)
	if !ok {
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		httpjson.BadRequest(w, "invalid user id")
		return
	}
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set member role")
	defer cancel()

	owner, err := h.Authz.IsOwner(ctx, orgID, callerID)
	if err != nil {
		httpjson.Internal(w, h.Log, "check owner role", err)
		return
	}
	if !owner {
		httpjson.Forbidden(w, "owner role required")
		return
	}

	var req setRoleRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	target, err := h.Memberships.GetActive(ctx, orgID, targetID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		httpjson.NotFound(w, "membership not found")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "load membership", err)
		return
	}
	if target.Role == models.RoleOwner {
		httpjson.Forbidden(w, "the owner role cannot be changed here")
		return
	}

	if err := h.Memberships.SetRole(ctx, orgID, targetID, req.Role); err != nil {
		httpjson.Internal(w, h.Log, "set member role", err)
		return
	}

	h.Log.Info("member role changed",
		zap.String("org_id", orgID.Hex()),
		zap.String("user_id", targetID.Hex()),
		zap.String("role", req.Role),
		zap.String("changed_by", callerID.Hex()))

	w.WriteHeader(http.StatusNoContent)
}

// callerIsOwner treats platform admins as owners for roster management,
// matching CanManage. Role changes stay owner-only (HandleSetRole).
func (h *Handler) callerIsOwner(ctx context.Context, r *http.Request, orgID, callerID primitive.ObjectID) (bool, error) {
	if authz.IsAdmin(r) {
		return true, nil
	}
	return h.Authz.IsOwner(ctx, orgID, callerID)
}
