// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/attendease/attendease/internal/app/system/normalize"
	"github.com/attendease/attendease/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrNotFound is returned when a user lookup matches nothing.
	ErrNotFound = errors.New("user not found")
	// ErrInsufficientPoints is returned when a conditional point deduction
	// finds a balance smaller than the amount to deduct.
	ErrInsufficientPoints = errors.New("insufficient reward points")

	errBadStatus = errors.New(`status must be "active"|"disabled"`)
)

// Create inserts a new user after normalizing fields.
// Reward points always start at zero.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	if u.Status == "" {
		u.Status = "active"
	}
	switch u.Status {
	case "active", "disabled":
		// ok
	default:
		return models.User{}, errBadStatus
	}
	u.RewardPoints = 0

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// TouchLastLogin stamps the user's last login time.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"last_login_at": now,
		"updated_at":    now,
	}})
	return err
}

// AddPoints atomically increments the user's reward balance. The amount
// must be positive; the check-in bonus path is the only caller.
func (s *Store) AddPoints(ctx context.Context, id primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return errors.New("point award must be positive")
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"reward_points": amount},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SpendPoints atomically deducts points, but only when the current balance
// covers the amount. The filter makes the read-check-deduct a single
// conditional update, so two concurrent claims can never drive the balance
// negative.
func (s *Store) SpendPoints(ctx context.Context, id primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return errors.New("point deduction must be positive")
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "reward_points": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{"reward_points": -amount},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the user is gone or the balance is short; disambiguate.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return ErrInsufficientPoints
	}
	return nil
}
