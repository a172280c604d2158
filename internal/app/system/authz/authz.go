// Package authz holds request-level authorization helpers.
//
// Platform roles (user/admin) live on the session; organization roles
// (member/admin/owner) live on org memberships and are resolved through
// OrgAuthorizer, which wraps the membership store.
package authz

import (
	"context"
	"errors"
	"net/http"
	"strings"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's platform role (lowercased), name, Mongo
// ObjectID, and a found flag. If no user is present in context or the
// user ID is malformed, it returns "visitor", "", NilObjectID, false,
// so ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is a platform admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == auth.RoleAdmin
}

// HasAnyRole reports whether the current request's user has any of the
// given platform roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...string) bool {
	cur, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's platform role (lowercased) and whether
// a user is present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return role, ok
}

// OrgAuthorizer answers org-scoped role questions from memberships.
type OrgAuthorizer struct {
	memberships *membershipstore.Store
}

// NewOrgAuthorizer wraps a membership store.
func NewOrgAuthorizer(ms *membershipstore.Store) *OrgAuthorizer {
	return &OrgAuthorizer{memberships: ms}
}

// IsMember reports whether the user has an active membership in the org.
// Platform admins are not implicitly members; member-only actions like
// scanning require a real membership.
func (a *OrgAuthorizer) IsMember(ctx context.Context, orgID, userID primitive.ObjectID) (bool, error) {
	_, err := a.memberships.GetActive(ctx, orgID, userID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CanManage reports whether the user holds the admin or owner role in
// the org. Platform admins can manage any org.
func (a *OrgAuthorizer) CanManage(ctx context.Context, r *http.Request, orgID primitive.ObjectID) (bool, error) {
	role, _, userID, ok := UserCtx(r)
	if !ok {
		return false, nil
	}
	if role == auth.RoleAdmin {
		return true, nil
	}
	return a.memberships.HasRole(ctx, orgID, userID, models.RoleAdmin, models.RoleOwner)
}

// IsOwner reports whether the user holds the owner role in the org.
// Owner-only actions (transferring ownership, removing the last owner)
// are never granted to platform admins.
func (a *OrgAuthorizer) IsOwner(ctx context.Context, orgID, userID primitive.ObjectID) (bool, error) {
	return a.memberships.HasRole(ctx, orgID, userID, models.RoleOwner)
}
