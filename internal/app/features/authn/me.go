// internal/app/features/authn/me.go
package authn

import (
	"errors"
	"net/http"

	"github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/authz"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/timeouts"
)

// HandleMe handles GET /api/auth/me: the signed-in user's own record,
// loaded fresh so the points balance is current.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Unauthorized(w, "not signed in")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load current user")
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Unauthorized(w, "account no longer exists")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "load current user", err)
		return
	}

	httpjson.Write(w, http.StatusOK, userResponse{
		ID:           user.ID.Hex(),
		FullName:     user.FullName,
		Email:        user.Email,
		Role:         user.Role,
		RewardPoints: user.RewardPoints,
	})
}
