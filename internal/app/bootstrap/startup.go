// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	sessionstore "github.com/attendease/attendease/internal/app/store/qrsessions"
	userstore "github.com/attendease/attendease/internal/app/store/users"
	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// sweeper is started in Startup and stopped in Shutdown.
var sweeper *workers.SessionSweep

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensurePlatformAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}

	sweeper = workers.NewSessionSweep(
		sessionstore.New(deps.MongoDatabase), logger, appCfg.SweepInterval)
	sweeper.Start()

	return nil
}

// ensurePlatformAdmin promotes the configured user to the platform
// admin role. The account must already exist: admin rights are attached
// to a registered user, never conjured with a placeholder password.
func ensurePlatformAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		logger.Warn("admin_email does not match any user; register the account first",
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	if u.Role == auth.RoleAdmin {
		logger.Info("platform admin already in place", zap.String("email", email))
		return nil
	}

	_, err = deps.MongoDatabase.Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{
			"role":       auth.RoleAdmin,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}

	logger.Info("promoted user to platform admin",
		zap.String("email", email),
		zap.String("user_id", u.ID.Hex()))
	return nil
}
