// Package organizations implements organization CRUD, membership
// management, and the join-by-code flow.
//
// Role rules enforced here:
//   - the creating user becomes the org's owner
//   - admins and owners manage members and settings
//   - only the owner changes roles, and the owner role itself never
//     moves through the generic role endpoint
package organizations

import (
	"context"
	"net/http"

	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	organizationstore "github.com/attendease/attendease/internal/app/store/organizations"
	sessionstore "github.com/attendease/attendease/internal/app/store/qrsessions"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds the dependencies for organization endpoints.
type Handler struct {
	Orgs        *organizationstore.Store
	Memberships *membershipstore.Store
	Users       *userstore.Store
	Sessions    *sessionstore.Store
	Authz       *authz.OrgAuthorizer
	Log         *zap.Logger
}

// NewHandler constructs the organizations Handler from the Mongo database.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	ms := membershipstore.New(db)
	return &Handler{
		Orgs:        organizationstore.New(db),
		Memberships: ms,
		Users:       userstore.New(db),
		Sessions:    sessionstore.New(db),
		Authz:       authz.NewOrgAuthorizer(ms),
		Log:         logger,
	}
}

// orgResponse is the wire shape of an organization.
type orgResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Code     string             `json:"code"`
	Type     string             `json:"type"`
	Status   string             `json:"status"`
	Location *models.GeoPoint   `json:"location,omitempty"`
	Settings models.OrgSettings `json:"settings"`
}

func toOrgResponse(org models.Organization) orgResponse {
	return orgResponse{
		ID:       org.ID.Hex(),
		Name:     org.Name,
		Code:     org.Code,
		Type:     org.Type,
		Status:   org.Status,
		Location: org.Location,
		Settings: org.Settings,
	}
}

// orgIDParam extracts and parses the {orgID} route parameter.
func orgIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		httpjson.BadRequest(w, "invalid organization id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// requireManager loads the caller and checks admin/owner standing in the
// org. Writes the error response itself when the check fails.
func (h *Handler) requireManager(ctx context.Context, w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID) (callerID primitive.ObjectID, ok bool) {
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return primitive.NilObjectID, false
	}
	canManage, err := h.Authz.CanManage(ctx, r, orgID)
	if err != nil {
		httpjson.Internal(w, h.Log, "check org role", err)
		return primitive.NilObjectID, false
	}
	if !canManage {
		httpjson.Forbidden(w, "admin or owner role required")
		return primitive.NilObjectID, false
	}
	return callerID, true
}
