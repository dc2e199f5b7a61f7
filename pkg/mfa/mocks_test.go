package mfa_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/credkit/pkg/mfa"
)

// MockStorage is a mock implementation of mfa.Storage.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetCredential(ctx context.Context, userID uuid.UUID) (*mfa.Credential, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mfa.Credential), args.Error(1)
}

func (m *MockStorage) SaveCredential(ctx context.Context, cred *mfa.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockStorage) Enable(ctx context.Context, userID uuid.UUID, step int64) error {
	args := m.Called(ctx, userID, step)
	return args.Error(0)
}

func (m *MockStorage) ConsumeTOTPStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	args := m.Called(ctx, userID, step)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	args := m.Called(ctx, userID, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	args := m.Called(ctx, userID, hashes)
	return args.Error(0)
}

func (m *MockStorage) DeleteCredential(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// stubPasswordVerifier accepts a single known password.
type stubPasswordVerifier struct {
	password string
}

func (v *stubPasswordVerifier) VerifyPassword(_ context.Context, _ uuid.UUID, password string) error {
	if password != v.password {
		return errors.New("password mismatch")
	}
	return nil
}
