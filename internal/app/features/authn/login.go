// internal/app/features/authn/login.go
package authn

import (
	"errors"
	"net/http"

	"github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"Email address"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// HandleLogin handles POST /api/auth/login.
//
// A wrong email and a wrong password produce the same response, so the
// endpoint cannot be used to probe which addresses have accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	// Throttle before touching storage: failed attempts are counted per
	// client IP and per account.
	if ok, msg := h.Limits.Check(r, req.Email); !ok {
		httpjson.WriteError(w, http.StatusTooManyRequests, "rate_limited", msg)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login user")
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		// Burn a comparison so the timing matches the wrong-password path.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"), []byte(req.Password))
		httpjson.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "load user by email", err)
		return
	}

	if user.Status == "disabled" {
		httpjson.Forbidden(w, "this account is disabled")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httpjson.Unauthorized(w, "invalid email or password")
		return
	}

	role := user.Role
	if role == "" {
		role = auth.RoleUser
	}
	sessUser := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  role,
	}
	if err := h.Sessions.SignIn(w, r, sessUser); err != nil {
		httpjson.Internal(w, h.Log, "sign in", err)
		return
	}
	h.Limits.ResetEmail(user.Email)

	if err := h.Users.TouchLastLogin(ctx, user.ID); err != nil {
		h.Log.Warn("touch last login failed", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	httpjson.Write(w, http.StatusOK, userResponse{
		ID:           user.ID.Hex(),
		FullName:     user.FullName,
		Email:        user.Email,
		Role:         role,
		RewardPoints: user.RewardPoints,
	})
}

// HandleLogout handles POST /api/auth/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		httpjson.Internal(w, h.Log, "sign out", err)
		return
	}
	httpjson.Write(w, http.StatusNoContent, nil)
}
