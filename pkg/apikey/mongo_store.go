package apikey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/credkit/pkg/ratelimit"
)

// DefaultMongoCollection is the collection used when none is configured.
const DefaultMongoCollection = "api_keys"

type mongoKey struct {
	ID               string     `bson:"_id"`
	OwnerID          string     `bson:"owner_id"`
	Name             string     `bson:"name"`
	KeyHash          string     `bson:"key_hash"`
	KeyPrefix        string     `bson:"key_prefix"`
	Scopes           []string   `bson:"scopes"`
	Status           string     `bson:"status"`
	RateLimitPerHour int        `bson:"rate_limit_per_hour"`
	RequestsUsed     int        `bson:"requests_used"`
	WindowStartedAt  time.Time  `bson:"window_started_at"`
	LastUsedAt       *time.Time `bson:"last_used_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	ExpiresAt        *time.Time `bson:"expires_at,omitempty"`
}

func (d *mongoKey) toKey() (*Key, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed key id in store: %w", err)
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("malformed owner id in store: %w", err)
	}
	return &Key{
		ID:               id,
		OwnerID:          ownerID,
		Name:             d.Name,
		KeyHash:          d.KeyHash,
		KeyPrefix:        d.KeyPrefix,
		Scopes:           d.Scopes,
		Status:           Status(d.Status),
		RateLimitPerHour: d.RateLimitPerHour,
		Window: ratelimit.WindowState{
			Used:      d.RequestsUsed,
			StartedAt: d.WindowStartedAt,
		},
		LastUsedAt: d.LastUsedAt,
		CreatedAt:  d.CreatedAt,
		ExpiresAt:  d.ExpiresAt,
	}, nil
}

// MongoStore persists keys in a MongoDB collection. Usage updates are
// guarded single-document operations, which MongoDB applies atomically.
// The deployment is expected to carry a unique index on key_hash.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a key store over the given database, using
// DefaultMongoCollection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(DefaultMongoCollection)}
}

func (s *MongoStore) CreateKey(ctx context.Context, key *Key) error {
	doc := mongoKey{
		ID:               key.ID.String(),
		OwnerID:          key.OwnerID.String(),
		Name:             key.Name,
		KeyHash:          key.KeyHash,
		KeyPrefix:        key.KeyPrefix,
		Scopes:           key.Scopes,
		Status:           string(key.Status),
		RateLimitPerHour: key.RateLimitPerHour,
		RequestsUsed:     key.Window.Used,
		WindowStartedAt:  key.Window.StartedAt,
		LastUsedAt:       key.LastUsedAt,
		CreatedAt:        key.CreatedAt,
		ExpiresAt:        key.ExpiresAt,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}

func (s *MongoStore) GetKeyByID(ctx context.Context, id uuid.UUID) (*Key, error) {
	return s.findKey(ctx, bson.M{"_id": id.String()})
}

func (s *MongoStore) GetKeyByHash(ctx context.Context, hash string) (*Key, error) {
	return s.findKey(ctx, bson.M{"key_hash": hash})
}

func (s *MongoStore) findKey(ctx context.Context, filter bson.M) (*Key, error) {
	var doc mongoKey
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to load API key: %w", err)
	}
	return doc.toKey()
}

func (s *MongoStore) ListKeysByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Key, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"owner_id": ownerID.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*Key
	for cursor.Next(ctx) {
		var doc mongoKey
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode API key: %w", err)
		}
		key, err := doc.toKey()
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, cursor.Err()
}

func (s *MongoStore) CountActiveKeys(ctx context.Context, ownerID uuid.UUID) (int, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"owner_id": ownerID.String(),
		"status":   string(StatusActive),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count active API keys: %w", err)
	}
	return int(count), nil
}

func (s *MongoStore) UpdateKeyStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"status": string(status)}},
	)
	if err != nil {
		return fmt.Errorf("failed to update API key status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *MongoStore) ReplaceKeySecret(ctx context.Context, id uuid.UUID, hash, prefix string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{
			"key_hash":          hash,
			"key_prefix":        prefix,
			"requests_used":     0,
			"window_started_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to rotate API key secret: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *MongoStore) ApplyUsage(ctx context.Context, id uuid.UUID, prev, next ratelimit.WindowState, lastUsedAt time.Time) error {
	// The filter pins the previous counter state; a racing validation
	// that committed first leaves nothing for this update to match.
	res, err := s.coll.UpdateOne(ctx,
		bson.M{
			"_id":               id.String(),
			"requests_used":     prev.Used,
			"window_started_at": prev.StartedAt,
		},
		bson.M{"$set": bson.M{
			"requests_used":     next.Used,
			"window_started_at": next.StartedAt,
			"last_used_at":      lastUsedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to record API key use: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUsageConflict
	}
	return nil
}

func (s *MongoStore) DeleteKey(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrKeyNotFound
	}
	return nil
}
