// internal/app/store/rewards/rewardstore.go
package rewardstore

import (
	"context"
	"errors"
	"time"

	"github.com/attendease/attendease/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the reward catalog and claim ledger. The catalog is a plain
// lookup table; the only subtlety, the no-negative-balance rule, lives in
// the user store's conditional SpendPoints.
type Store struct {
	catalog *mongo.Collection
	claims  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		catalog: db.Collection("rewards"),
		claims:  db.Collection("reward_claims"),
	}
}

var ErrNotFound = errors.New("reward not found")

// CreateReward adds a catalog item.
func (s *Store) CreateReward(ctx context.Context, r models.Reward) (models.Reward, error) {
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.catalog.InsertOne(ctx, r); err != nil {
		return models.Reward{}, err
	}
	return r, nil
}

// GetReward loads one catalog item.
func (s *Store) GetReward(ctx context.Context, id primitive.ObjectID) (models.Reward, error) {
	var r models.Reward
	err := s.catalog.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.Reward{}, ErrNotFound
	}
	if err != nil {
		return models.Reward{}, err
	}
	return r, nil
}

// ListActiveByOrg returns the org's claimable catalog.
func (s *Store) ListActiveByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Reward, error) {
	opts := options.Find().SetSort(bson.D{{Key: "cost_points", Value: 1}})
	cur, err := s.catalog.Find(ctx, bson.M{"org_id": orgID, "active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rewards []models.Reward
	if err := cur.All(ctx, &rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

// RecordClaim appends a claim entry. Called after the point deduction
// succeeded.
func (s *Store) RecordClaim(ctx context.Context, claim models.RewardClaim) (models.RewardClaim, error) {
	claim.ID = primitive.NewObjectID()
	claim.ClaimedAt = time.Now().UTC()
	if _, err := s.claims.InsertOne(ctx, claim); err != nil {
		return models.RewardClaim{}, err
	}
	return claim, nil
}

// ListClaimsByUser returns a user's claim history, newest first.
func (s *Store) ListClaimsByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RewardClaim, error) {
	opts := options.Find().SetSort(bson.D{{Key: "claimed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.claims.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var claims []models.RewardClaim
	if err := cur.All(ctx, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}
