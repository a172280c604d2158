// Package reports serves attendance history: an org-wide listing and CSV
// export for managers, and a personal history for any signed-in user.
package reports

import (
	"context"
	"errors"
	"net/http"
	"time"

	attendancestore "github.com/attendease/attendease/internal/app/store/attendance"
	membershipstore "github.com/attendease/attendease/internal/app/store/memberships"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds the dependencies for report endpoints.
type Handler struct {
	Attendance *attendancestore.Store
	Users      *userstore.Store
	Authz      *authz.OrgAuthorizer
	Log        *zap.Logger
}

// NewHandler constructs the reports Handler from the Mongo database.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Attendance: attendancestore.New(db),
		Users:      userstore.New(db),
		Authz:      authz.NewOrgAuthorizer(membershipstore.New(db)),
		Log:        logger,
	}
}

// attendanceResponse is the wire shape of one attendance record.
type attendanceResponse struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	OrgID     string           `json:"org_id"`
	SessionID string           `json:"session_id,omitempty"`
	ScannedAt time.Time        `json:"scanned_at"`
	Status    string           `json:"status"`
	Location  *models.GeoPoint `json:"location,omitempty"`
}

func toAttendanceResponse(a models.Attendance) attendanceResponse {
	out := attendanceResponse{
		ID:        a.ID.Hex(),
		UserID:    a.UserID.Hex(),
		OrgID:     a.OrgID.Hex(),
		ScannedAt: a.ScannedAt,
		Status:    a.Status,
		Location:  a.Location,
	}
	if a.SessionID != nil {
		out.SessionID = a.SessionID.Hex()
	}
	return out
}

// requireOrgManager parses org_id from the query and checks standing.
// Writes the error response itself when the check fails.
func (h *Handler) requireOrgManager(ctx context.Context, w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	if _, _, _, ok := authz.UserCtx(r); !ok {
		httpjson.Unauthorized(w, "not signed in")
		return primitive.NilObjectID, false
	}
	orgID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("org_id"))
	if err != nil {
		httpjson.BadRequest(w, "org_id query parameter must be a valid id")
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
	return orgID, true
}

// parseTimeRange reads optional from/to query parameters as RFC 3339.
func parseTimeRange(r *http.Request) (from, to time.Time, err error) {
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be an RFC 3339 timestamp")
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be an RFC 3339 timestamp")
		}
	}
	return from, to, nil
}
