// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	authnfeature "github.com/attendease/attendease/internal/app/features/authn"
	healthfeature "github.com/attendease/attendease/internal/app/features/health"
	organizationsfeature "github.com/attendease/attendease/internal/app/features/organizations"
	reportsfeature "github.com/attendease/attendease/internal/app/features/reports"
	rewardsfeature "github.com/attendease/attendease/internal/app/features/rewards"
	scanfeature "github.com/attendease/attendease/internal/app/features/scan"
	sessionsfeature "github.com/attendease/attendease/internal/app/features/sessions"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. AttendEase mounts a JSON API:
//
//	/health        liveness and Mongo reachability
//	/api/auth      register, login, logout, current user
//	/api/orgs      organizations, membership roster, join by code
//	/api/sessions  QR check-in sessions and their stats
//	/api/scan      the check-in endpoint QR codes resolve to
//	/api/rewards   reward catalog and claims
//	/api/reports   attendance history and CSV export
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser consults the fetcher on every request so role
	// changes and disabled accounts take effect immediately.
	db := deps.MongoDatabase
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	from := appCfg.MailFrom
	if appCfg.MailFromName != "" {
		from = fmt.Sprintf("%s <%s>", appCfg.MailFromName, appCfg.MailFrom)
	}
	mail := mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, from, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.BaseURL, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authnHandler := authnfeature.NewHandler(db, sessionMgr, mail, appCfg.SiteName, appCfg.BaseURL, logger)
	r.Mount("/api/auth", authnfeature.Routes(authnHandler, sessionMgr))

	orgsHandler := organizationsfeature.NewHandler(db, logger)
	r.Mount("/api/orgs", organizationsfeature.Routes(orgsHandler, sessionMgr))

	sessionsHandler := sessionsfeature.NewHandler(db, appCfg.CheckInBonusPoints, logger)
	r.Mount("/api/sessions", sessionsfeature.Routes(sessionsHandler, sessionMgr))

	scanHandler := scanfeature.NewHandler(db, scanfeature.Config{
		GraceMinutes: appCfg.DefaultGraceMinutes,
		BonusPoints:  appCfg.CheckInBonusPoints,
		RateLimit:    appCfg.ScanRateLimit,
		RateWindow:   appCfg.ScanRateWindow,
	}, logger)
	r.Mount("/api/scan", scanfeature.Routes(scanHandler, sessionMgr))

	rewardsHandler := rewardsfeature.NewHandler(db, mail, appCfg.SiteName, logger)
	r.Mount("/api/rewards", rewardsfeature.Routes(rewardsHandler, sessionMgr))

	reportsHandler := reportsfeature.NewHandler(db, logger)
	r.Mount("/api/reports", reportsfeature.Routes(reportsHandler, sessionMgr))

	return r, nil
}
