// internal/app/store/users/fetcher.go
package userstore

import (
	"context"
	"errors"

	"github.com/attendease/attendease/internal/app/system/auth"
	"github.com/attendease/attendease/internal/app/system/timeouts"
	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewFetcher returns an auth.UserFetcher backed by the users collection.
// LoadSessionUser calls it on every request carrying a session, so role
// changes and account disables take effect without a re-login. A nil,
// nil return tells the session manager to drop the session.
func NewFetcher(db *mongo.Database) auth.UserFetcher {
	users := db.Collection("users")

	return func(ctx context.Context, userID string) (*auth.SessionUser, error) {
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, nil
		}

		ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()

		var u models.User
		proj := options.FindOne().SetProjection(bson.M{
			"_id":       1,
			"full_name": 1,
			"email":     1,
			"role":      1,
			"status":    1,
		})
		err = users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if u.Status == "disabled" {
			return nil, nil
		}

		role := u.Role
		if role == "" {
			role = auth.RoleUser
		}
		return &auth.SessionUser{
			ID:    userID,
			Name:  u.FullName,
			Email: u.Email,
			Role:  role,
		}, nil
	}
}
