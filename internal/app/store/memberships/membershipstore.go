// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/attendease/attendease/internal/app/system/normalize"
	"github.com/attendease/attendease/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_memberships")}
}

var (
	ErrDuplicateMembership = errors.New("user is already a member of this organization")
	ErrNotFound            = errors.New("membership not found")

	errBadRole = errors.New(`role must be "member", "admin", or "owner"`)
)

// Add creates a membership. The unique (org_id, user_id) index turns a
// repeat add into ErrDuplicateMembership.
func (s *Store) Add(ctx context.Context, orgID, userID primitive.ObjectID, role string) (models.OrgMembership, error) {
	role = normalize.Role(role)
	switch role {
	case models.RoleMember, models.RoleAdmin, models.RoleOwner:
		// ok
	default:
		return models.OrgMembership{}, errBadRole
	}

	m := models.OrgMembership{
		ID:       primitive.NewObjectID(),
		OrgID:    orgID,
		UserID:   userID,
		Role:     role,
		Status:   models.MembershipActive,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrgMembership{}, ErrDuplicateMembership
		}
		return models.OrgMembership{}, err
	}
	return m, nil
}

// Reactivate flips a removed membership back to active as a plain member.
// Rejoining never restores a prior elevated role.
func (s *Store) Reactivate(ctx context.Context, orgID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID, "status": models.MembershipRemoved},
		bson.M{"$set": bson.M{
			"status":    models.MembershipActive,
			"role":      models.RoleMember,
			"joined_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the membership for (orgID, userID) regardless of status.
func (s *Store) Get(ctx context.Context, orgID, userID primitive.ObjectID) (models.OrgMembership, error) {
	var m models.OrgMembership
	err := s.c.FindOne(ctx, bson.M{"org_id": orgID, "user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.OrgMembership{}, ErrNotFound
	}
	if err != nil {
		return models.OrgMembership{}, err
	}
	return m, nil
}

// GetActive returns the membership only if its status is active.
// Scan authorization goes through here.
func (s *Store) GetActive(ctx context.Context, orgID, userID primitive.ObjectID) (models.OrgMembership, error) {
	var m models.OrgMembership
	err := s.c.FindOne(ctx, bson.M{
		"org_id":  orgID,
		"user_id": userID,
		"status":  models.MembershipActive,
	}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.OrgMembership{}, ErrNotFound
	}
	if err != nil {
		return models.OrgMembership{}, err
	}
	return m, nil
}

// HasRole reports whether the user holds one of the given roles in the
// organization with an active membership.
func (s *Store) HasRole(ctx context.Context, orgID, userID primitive.ObjectID, roles ...string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"org_id":  orgID,
		"user_id": userID,
		"status":  models.MembershipActive,
		"role":    bson.M{"$in": roles},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetRole changes the member's role. Owner demotion/promotion rules are
// enforced by the caller (the organizations feature), not here.
func (s *Store) SetRole(ctx context.Context, orgID, userID primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	switch role {
	case models.RoleMember, models.RoleAdmin, models.RoleOwner:
		// ok
	default:
		return errBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove soft-removes the membership. The document stays so historical
// attendance keeps its organizational context.
func (s *Store) Remove(ctx context.Context, orgID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"org_id": orgID, "user_id": userID},
		bson.M{"$set": bson.M{"status": models.MembershipRemoved}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOrg returns active memberships for an organization, optionally
// filtered by role.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID, role string) ([]models.OrgMembership, error) {
	filter := bson.M{"org_id": orgID, "status": models.MembershipActive}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListByUser returns the user's active memberships across organizations.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.OrgMembership, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "status": models.MembershipActive})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountByOrg returns the count of active memberships, optionally by role.
func (s *Store) CountByOrg(ctx context.Context, orgID primitive.ObjectID, role string) (int64, error) {
	filter := bson.M{"org_id": orgID, "status": models.MembershipActive}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}
