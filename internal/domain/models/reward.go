// internal/domain/models/reward.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reward is a catalog item members can claim with accumulated points.
type Reward struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID       primitive.ObjectID `bson:"org_id" json:"org_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CostPoints  int64              `bson:"cost_points" json:"cost_points"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// RewardClaim records a point deduction against a catalog item.
type RewardClaim struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	RewardID    primitive.ObjectID `bson:"reward_id" json:"reward_id"`
	OrgID       primitive.ObjectID `bson:"org_id" json:"org_id"`
	PointsSpent int64              `bson:"points_spent" json:"points_spent"`
	ClaimedAt   time.Time          `bson:"claimed_at" json:"claimed_at"`
}
