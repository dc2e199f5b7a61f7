package apikey_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/credkit/pkg/apikey"
	"github.com/dmitrymomot/credkit/pkg/ratelimit"
)

// MockStorage is a mock implementation of apikey.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateKey(ctx context.Context, key *apikey.Key) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) GetKeyByID(ctx context.Context, id uuid.UUID) (*apikey.Key, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikey.Key), args.Error(1)
}

func (m *MockStorage) GetKeyByHash(ctx context.Context, hash string) (*apikey.Key, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apikey.Key), args.Error(1)
}

func (m *MockStorage) ListKeysByOwner(ctx context.Context, ownerID uuid.UUID) ([]*apikey.Key, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apikey.Key), args.Error(1)
}

func (m *MockStorage) CountActiveKeys(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) UpdateKeyStatus(ctx context.Context, id uuid.UUID, status apikey.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStorage) ReplaceKeySecret(ctx context.Context, id uuid.UUID, hash, prefix string) error {
	args := m.Called(ctx, id, hash, prefix)
	return args.Error(0)
}

func (m *MockStorage) ApplyUsage(ctx context.Context, id uuid.UUID, prev, next ratelimit.WindowState, lastUsedAt time.Time) error {
	args := m.Called(ctx, id, prev, next, lastUsedAt)
	return args.Error(0)
}

func (m *MockStorage) DeleteKey(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
