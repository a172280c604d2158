// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Two of these indexes are correctness-critical rather than performance
tuning: the unique token index on qr_sessions, and the unique partial
(session_id, user_id) index on attendance that makes the duplicate-scan
check-and-insert atomic. The application must not start without them.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureOrgMemberships(ctx, db); err != nil {
		problems = append(problems, "org_memberships: "+err.Error())
	}
	if err := ensureQRSessions(ctx, db); err != nil {
		problems = append(problems, "qr_sessions: "+err.Error())
	}
	if err := ensureAttendance(ctx, db); err != nil {
		problems = append(problems, "attendance: "+err.Error())
	}
	if err := ensureRewards(ctx, db); err != nil {
		problems = append(problems, "rewards: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_name_ci"),
		},
	})
	return err
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("organizations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_orgs_name_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("uniq_orgs_code").SetUnique(true),
		},
	})
	return err
}

func ensureOrgMemberships(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("org_memberships").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_memberships_org_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_memberships_user_status"),
		},
	})
	return err
}

func ensureQRSessions(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("qr_sessions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("uniq_sessions_token").SetUnique(true),
		},
		// The background sweep and org listings both walk this.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_sessions_status_expiry"),
		},
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_org"),
		},
	})
	return err
}

func ensureAttendance(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("attendance").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// At most one counted record per (session, user). Partial on
		// counted_once so multi-scan sessions can append uncounted repeats
		// while single-scan duplicates are rejected by the server, not by a
		// racy application-level existence check.
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_attendance_session_user_counted").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"counted_once": true}),
		},
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}, {Key: "scanned_at", Value: -1}},
			Options: options.Index().SetName("idx_attendance_org_time"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "scanned_at", Value: -1}},
			Options: options.Index().SetName("idx_attendance_user_time"),
		},
	})
	return err
}

func ensureRewards(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("rewards").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("idx_rewards_org_active"),
		},
	}); err != nil {
		return err
	}
	_, err := db.Collection("reward_claims").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "claimed_at", Value: -1}},
			Options: options.Index().SetName("idx_claims_user_time"),
		},
	})
	return err
}
