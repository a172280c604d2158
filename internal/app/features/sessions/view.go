// internal/app/features/sessions/view.go
package sessions

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/limits"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleGet handles GET /api/sessions/{sessionID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get qr session")
	defer cancel()

	sess, ok := h.loadManaged(ctx, w, r, sessionID)
	if !ok {
		return
	}
	httpjson.Write(w, http.StatusOK, toSessionResponse(sess))
}

// HandleList handles GET /api/sessions?org_id=...&status=...&limit=...
// Admin or owner role in the org required.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if _, _, _, signedIn := authz.UserCtx(r); !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}
	orgID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("org_id"))
	if err != nil {
		httpjson.BadRequest(w, "org_id query parameter must be a valid id")
		return
	}
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "", models.SessionActive, models.SessionExpired, models.SessionRevoked:
		// ok
	default:
		httpjson.BadRequest(w, "status must be active, expired, or revoked")
		return
	}
	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpjson.BadRequest(w, "limit must be a number")
			return
		}
	}
	limit = limits.Clamp(limit)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list qr sessions")
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

	sessions, err := h.Sessions.ListByOrg(ctx, orgID, status, limit)
	if err != nil {
		httpjson.Internal(w, h.Log, "list qr sessions", err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	httpjson.Write(w, http.StatusOK, out)
}
