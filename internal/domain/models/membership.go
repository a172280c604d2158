// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles. Exactly one owner exists per organization at creation;
// admins and owners may create sessions and view reports.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
)

// Membership statuses.
const (
	MembershipActive  = "active"
	MembershipRemoved = "removed"
)

// OrgMembership links a user to an organization with a role.
// The (org_id, user_id) pair is unique at the collection level.
type OrgMembership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID    primitive.ObjectID `bson:"org_id" json:"org_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     string             `bson:"role" json:"role"`
	Status   string             `bson:"status" json:"status"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}
