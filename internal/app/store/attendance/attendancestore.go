// internal/app/store/attendance/attendancestore.go
package attendancestore

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
	return &Store{c: db.Collection("attendance")}
}

var (
	// ErrDuplicateScan is returned when the unique (session_id, user_id)
	// partial index rejects a second counted record for the pair. The
	// recorder treats this as "already marked", never as a fatal error.
	ErrDuplicateScan = errors.New("attendance already recorded for this user and session")
	// ErrNotFound is returned when a record lookup matches nothing.
	ErrNotFound = errors.New("attendance record not found")
)

// Insert persists one attendance record. For single-scan sessions the caller
// sets CountedOnce on the record; the unique partial index then makes this
// insert the atomic check-and-insert required for idempotency. An
// application-level "find then insert" is deliberately absent: under
// concurrent scans both requests can pass the find, and only the index
// arbitrates correctly.
func (s *Store) Insert(ctx context.Context, a models.Attendance) (models.Attendance, error) {
	a.ID = primitive.NewObjectID()
	a.ScannedAt = a.ScannedAt.UTC()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Attendance{}, ErrDuplicateScan
		}
		return models.Attendance{}, err
	}
	return a, nil
}

// HasCounted reports whether a counted record exists for (sessionID, userID).
// The stats aggregator uses this to decide unique-scan increments for
// multi-scan sessions; the recorder itself relies on the index, not on this.
func (s *Store) HasCounted(ctx context.Context, sessionID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"session_id":   sessionID,
		"user_id":      userID,
		"counted_once": true,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountForPair returns how many records exist for (sessionID, userID).
func (s *Store) CountForPair(ctx context.Context, sessionID, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"session_id": sessionID, "user_id": userID})
}

// MarkPointsAwarded flips the points_awarded flag, returning true only for
// the call that performed the flip. Replayed stats updates for the same
// record see false and skip the bonus, which is what makes the award
// at-least-once safe.
func (s *Store) MarkPointsAwarded(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "points_awarded": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"points_awarded": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ClearPointsAwarded reopens a record whose side effects failed after the
// flag flipped, so a later replay retries them instead of skipping the
// record forever.
func (s *Store) ClearPointsAwarded(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"points_awarded": false}},
	)
	return err
}

// SessionTally is a recount of a session's ledger.
type SessionTally struct {
	Total      int64
	Unique     int64
	LastScanAt *time.Time
}

// TallySession recomputes scan totals for a session directly from the
// ledger. Session stats are derived data; this is the source of truth the
// rebuild path uses after a crash between insert and stats update.
func (s *Store) TallySession(ctx context.Context, sessionID primitive.ObjectID) (SessionTally, error) {
	var tally SessionTally

	total, err := s.c.CountDocuments(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return SessionTally{}, err
	}
	tally.Total = total

	ids, err := s.c.Distinct(ctx, "user_id", bson.M{"session_id": sessionID})
	if err != nil {
		return SessionTally{}, err
	}
	tally.Unique = int64(len(ids))

	opts := options.FindOne().SetSort(bson.D{{Key: "scanned_at", Value: -1}})
	var last models.Attendance
	err = s.c.FindOne(ctx, bson.M{"session_id": sessionID}, opts).Decode(&last)
	if err == nil {
		t := last.ScannedAt
		tally.LastScanAt = &t
	} else if err != mongo.ErrNoDocuments {
		return SessionTally{}, err
	}

	return tally, nil
}

// ListByOrg returns attendance for an organization within [from, to),
// newest first. Zero times skip that bound.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID, from, to time.Time, limit int64) ([]models.Attendance, error) {
	filter := bson.M{"org_id": orgID}
	if scanned := rangeFilter(from, to); scanned != nil {
		filter["scanned_at"] = scanned
	}
	return s.find(ctx, filter, limit)
}

// ListByUser returns a user's attendance history, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Attendance, error) {
	return s.find(ctx, bson.M{"user_id": userID}, limit)
}

// ListBySession returns all records for one session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scanned_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.Attendance
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scanned_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.Attendance
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func rangeFilter(from, to time.Time) bson.M {
	m := bson.M{}
	if !from.IsZero() {
		m["$gte"] = from.UTC()
	}
	if !to.IsZero() {
		m["$lt"] = to.UTC()
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
