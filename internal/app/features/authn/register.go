// internal/app/features/authn/register.go
package authn

import (
	"errors"
	"net/http"

	"github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/httpjson"
	"github.com/attendease/attendease/internal/app/system/inputval"
	"github.com/attendease/attendease/internal/app/system/mailer"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,max=200" label:"Full name"`
	Email    string `json:"email" validate:"required,email" label:"Email address"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"Password"`
}

// HandleRegister handles POST /api/auth/register. A successful
// registration signs the user in immediately.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Validation(w, res.All())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register user")
	defer cancel()

	// bcrypt rejects passwords over 72 bytes; the validator caps it first.
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Internal(w, h.Log, "hash password", err)
		return
	}

	created, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
		Status:       "active",
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		httpjson.Conflict(w, "email_taken", "An account with this email already exists.")
		return
	}
	if err != nil {
		httpjson.Internal(w, h.Log, "create user", err)
		return
	}

	sessUser := &auth.SessionUser{
		ID:    created.ID.Hex(),
		Name:  created.FullName,
		Email: created.Email,
		Role:  created.Role,
	}
	if err := h.Sessions.SignIn(w, r, sessUser); err != nil {
		httpjson.Internal(w, h.Log, "sign in after register", err)
		return
	}

	if h.Mail != nil {
		msg := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
			SiteName: h.SiteName,
			Name:     created.FullName,
			LoginURL: h.BaseURL + "/login",
		})
		msg.To = created.Email
		h.Mail.SendAsync(msg)
	}

	h.Log.Info("user registered", zap.String("user_id", created.ID.Hex()))

	httpjson.Write(w, http.StatusCreated, userResponse{
		ID:           created.ID.Hex(),
		FullName:     created.FullName,
		Email:        created.Email,
		Role:         created.Role,
		RewardPoints: created.RewardPoints,
	})
}
