// Package authn implements account registration and cookie-session login
// for the JSON API.
package authn

import (
	"github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/mailer"
	"github.com/attendease/attendease/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds the dependencies for the auth endpoints.
type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Mail     *mailer.Mailer
	Limits   *ratelimit.LoginLimiter
	SiteName string
	BaseURL  string
	Log      *zap.Logger
}

// NewHandler constructs the auth Handler. Mail may be nil in tests; the
// welcome email is skipped when it is.
func NewHandler(db *mongo.Database, sm *auth.SessionManager, mail *mailer.Mailer, siteName, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Sessions: sm,
		Mail:     mail,
		Limits:   ratelimit.NewLoginLimiter(),
		SiteName: siteName,
		BaseURL:  baseURL,
		Log:      logger,
	}
}

// userResponse is the wire shape of the signed-in user.
type userResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	RewardPoints int64  `json:"reward_points"`
}
