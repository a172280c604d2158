// Package sessions exposes the QR session lifecycle over REST: create,
// inspect, revoke, the rendered QR image, and per-session scan stats.
//
// Every endpoint here is management-scoped: the token inside a session is
// a bearer secret, so nothing in this package is visible to plain members.
// Members interact with sessions only by scanning the rendered code.
package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/attendease/attendease/internal/app/session"
	"github.com/attendease/attendease/internal/app/stats"
	attendancestore "github.com/attendease/attendease/internal/app/store/attendance"
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

// Handler holds the dependencies for session endpoints.
type Handler struct {
	Manager    *session.Manager
	Aggregator *stats.Aggregator
	Sessions   *sessionstore.Store
	Authz      *authz.OrgAuthorizer
	Log        *zap.Logger
}

// NewHandler constructs the sessions Handler from the Mongo database.
// bonus is the per-check-in reward amount used by stat rebuilds.
func NewHandler(db *mongo.Database, bonus int64, logger *zap.Logger) *Handler {
	ss := sessionstore.New(db)
	ms := membershipstore.New(db)
	return &Handler{
		Manager:    session.NewManager(ss, organizationstore.New(db), ms, logger),
		Aggregator: stats.NewAggregator(ss, attendancestore.New(db), userstore.New(db), bonus, logger),
		Sessions:   ss,
		Authz:      authz.NewOrgAuthorizer(ms),
		Log:        logger,
	}
}

// sessionResponse is the wire shape of a QR session. It includes the
// token; responses from this package go only to org managers.
type sessionResponse struct {
	ID        string                 `json:"id"`
	OrgID     string                 `json:"org_id"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Token     string                 `json:"token"`
	ExpiresAt string                 `json:"expires_at"`
	Geofence  *models.Geofence       `json:"geofence,omitempty"`
	Settings  models.SessionSettings `json:"settings"`
	Stats     models.SessionStats    `json:"stats"`
}

func toSessionResponse(s models.QRSession) sessionResponse {
	return sessionResponse{
		ID:        s.ID.Hex(),
		OrgID:     s.OrgID.Hex(),
		Type:      s.Type,
		Status:    s.Status,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		Geofence:  s.Geofence,
		Settings:  s.Settings,
		Stats:     s.Stats,
	}
}

// sessionIDParam extracts and parses the {sessionID} route parameter.
func sessionIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sessionID"))
	if err != nil {
		httpjson.BadRequest(w, "invalid session id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadManaged loads the session and verifies the caller manages its org.
// Writes the error response itself when the check fails.
func (h *Handler) loadManaged(ctx context.Context, w http.ResponseWriter, r *http.Request, sessionID primitive.ObjectID) (models.QRSession, bool) {
	if _, _, _, signedIn := authz.UserCtx(r); !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return models.QRSession{}, false
	}
	sess, err := h.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, sessionstore.ErrNotFound) {
		httpjson.NotFound(w, "session not found")
		return models.QRSession{}, false
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "load session", err)
		return models.QRSession{}, false
	}
	canManage, err := h.Authz.CanManage(ctx, r, sess.OrgID)
	if err != nil {
		httpjson.Internal(w, h.Log, "check org role", err)
		return models.QRSession{}, false
	}
	if !canManage {
		httpjson.Forbidden(w, "admin or owner role required")
		return models.QRSession{}, false
	}
	return sess, true
}
