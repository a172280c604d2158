// internal/app/features/sessions/revoke.go
package sessions

import (
	"errors"
	"net/http"

	"github.com/attendease/attendease/internal/app/session"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/timeouts"
)

// HandleRevoke handles POST /api/sessions/{sessionID}/revoke. Revoking an
// already expired or revoked session succeeds without changing anything.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	_, _, callerID, signedIn := authz.UserCtx(r)
	if !signedIn {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "revoke qr session")
	defer cancel()

	err := h.Manager.Revoke(ctx, sessionID, callerID)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		httpjson.NotFound(w, "session not found")
		return
	case errors.Is(err, session.ErrForbidden):
		httpjson.Forbidden(w, "admin or owner role required")
		return
	case err != nil:
		httpjson.Internal(w, h.Log, "revoke qr session", err)
		return
	}

	sess, err := h.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		httpjson.Internal(w, h.Log, "reload session", err)
		return
	}
	httpjson.Write(w, http.StatusOK, toSessionResponse(sess))
}
