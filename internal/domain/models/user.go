// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents anyone who can sign in and check in.
//
// NOTE:
//   - Organization membership is not embedded on User.
//     Use the org_memberships collection to discover a user's organizations.
//   - RewardPoints is mutated only by check-in bonuses (monotonic increase)
//     and reward claims (monotonic decrease, never below zero). Both paths
//     use atomic updates in the stores; never read-modify-write this field.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role,omitempty" json:"role,omitempty"` // platform role: "user" or "admin"
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	RewardPoints int64              `bson:"reward_points" json:"reward_points"`
	LastLoginAt  *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
