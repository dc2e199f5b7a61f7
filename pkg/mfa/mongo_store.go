package mfa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultMongoCollection is the collection used when none is configured.
const DefaultMongoCollection = "mfa_credentials"

type mongoCredential struct {
	UserID           string    `bson:"_id"`
	Secret           string    `bson:"secret"`
	Enabled          bool      `bson:"enabled"`
	BackupCodeHashes []string  `bson:"backup_code_hashes"`
	LastUsedStep     int64     `bson:"last_used_step"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// MongoStore persists credentials in a MongoDB collection. Consumption uses
// $pull and guarded updates, which MongoDB applies atomically per document.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a credential store over the given database, using
// DefaultMongoCollection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(DefaultMongoCollection)}
}

func (s *MongoStore) GetCredential(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	var doc mongoCredential
	err := s.coll.FindOne(ctx, bson.M{"_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to load MFA credential: %w", err)
	}

	id, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("malformed user id in store: %w", err)
	}
	return &Credential{
		UserID:           id,
		Secret:           doc.Secret,
		Enabled:          doc.Enabled,
		BackupCodeHashes: doc.BackupCodeHashes,
		LastUsedStep:     doc.LastUsedStep,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

func (s *MongoStore) SaveCredential(ctx context.Context, cred *Credential) error {
	now := time.Now()
	doc := mongoCredential{
		UserID:           cred.UserID.String(),
		Secret:           cred.Secret,
		Enabled:          false,
		BackupCodeHashes: cred.BackupCodeHashes,
		LastUsedStep:     0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.UserID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save MFA credential: %w", err)
	}
	return nil
}

func (s *MongoStore) Enable(ctx context.Context, userID uuid.UUID, step int64) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{
			"$set": bson.M{"enabled": true, "updated_at": time.Now()},
			"$max": bson.M{"last_used_step": step},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to enable MFA credential: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *MongoStore) ConsumeTOTPStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String(), "last_used_step": bson.M{"$lt": step}},
		bson.M{"$set": bson.M{"last_used_step": step, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume TOTP step: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String(), "backup_code_hashes": hash},
		bson.M{
			"$pull": bson.M{"backup_code_hashes": hash},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to consume backup code: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": bson.M{"backup_code_hashes": hashes, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to replace backup codes: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

func (s *MongoStore) DeleteCredential(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": userID.String()}); err != nil {
		return fmt.Errorf("failed to delete MFA credential: %w", err)
	}
	return nil
}
