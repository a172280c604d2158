// internal/app/store/qrsessions/sessionstore.go
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/attendease/attendease/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("qr_sessions")}
}

var (
	// ErrNotFound is returned when no session matches the lookup.
	ErrNotFound = errors.New("qr session not found")
	// ErrDuplicateToken is returned on a token collision at insert. With
	// 256-bit random tokens this is effectively unreachable, but the unique
	// index makes the guarantee structural rather than probabilistic.
	ErrDuplicateToken = errors.New("qr session token already exists")
)

// Create inserts a new session document.
func (s *Store) Create(ctx context.Context, sess models.QRSession) (models.QRSession, error) {
	now := time.Now().UTC()
	sess.ID = primitive.NewObjectID()
	sess.Status = models.SessionActive
	sess.Stats = models.SessionStats{}
	sess.CreatedAt = now
	sess.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		if wafflemongo.IsDup(err) {
			return models.QRSession{}, ErrDuplicateToken
		}
		return models.QRSession{}, err
	}
	return sess, nil
}

// GetByToken resolves a session by its opaque token.
func (s *Store) GetByToken(ctx context.Context, token string) (models.QRSession, error) {
	var sess models.QRSession
	err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return models.QRSession{}, ErrNotFound
	}
	if err != nil {
		return models.QRSession{}, err
	}
	return sess, nil
}

// GetByID loads a session by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.QRSession, error) {
	var sess models.QRSession
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return models.QRSession{}, ErrNotFound
	}
	if err != nil {
		return models.QRSession{}, err
	}
	return sess, nil
}

// MarkExpired transitions active → expired. The {status: "active"} filter is
// the compare-and-set that keeps terminal states terminal: a session that is
// already expired or revoked matches nothing and the call is a no-op.
// Returns true when this call performed the transition.
func (s *Store) MarkExpired(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SessionActive},
		bson.M{"$set": bson.M{
			"status":     models.SessionExpired,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// MarkRevoked transitions active → revoked with the same CAS discipline as
// MarkExpired. Revoking a session that is already terminal is a no-op, which
// makes revocation idempotent at the storage layer.
func (s *Store) MarkRevoked(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SessionActive},
		bson.M{"$set": bson.M{
			"status":     models.SessionRevoked,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RevokeAllForOrg revokes every active session owned by the organization.
// Used when an organization is suspended.
func (s *Store) RevokeAllForOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"org_id": orgID, "status": models.SessionActive},
		bson.M{"$set": bson.M{
			"status":     models.SessionRevoked,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ApplyScan bumps the running counters in one atomic update: total always,
// unique only for a first scan, last_scan_at to the scan time. Counters are
// never read-modified-written at the application layer, so concurrent scans
// of a popular session cannot lose updates.
func (s *Store) ApplyScan(ctx context.Context, id primitive.ObjectID, firstScan bool, at time.Time) error {
	inc := bson.M{"stats.total_scans": 1}
	if firstScan {
		inc["stats.unique_scans"] = 1
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": inc,
		"$set": bson.M{
			"stats.last_scan_at": at.UTC(),
			"updated_at":         time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStats overwrites the counters wholesale. Only the rebuild path uses
// this; normal scan traffic goes through ApplyScan.
func (s *Store) SetStats(ctx context.Context, id primitive.ObjectID, stats models.SessionStats) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"stats":      stats,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireDue eagerly marks active sessions whose expiry has passed. This is
// storage hygiene for the background sweep; scan-time validation never
// depends on it having run.
func (s *Store) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status":     models.SessionActive,
			"expires_at": bson.M{"$lte": now.UTC()},
		},
		bson.M{"$set": bson.M{
			"status":     models.SessionExpired,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListByOrg returns sessions for an organization, newest first.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID, status string, limit int64) ([]models.QRSession, error) {
	filter := bson.M{"org_id": orgID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sessions []models.QRSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
