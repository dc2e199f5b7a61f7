package mfa

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Storage for tests and single-process use.
// All mutations happen under one mutex, which gives the same per-record
// atomicity the SQL and Mongo stores get from conditional updates.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[uuid.UUID]*Credential
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[uuid.UUID]*Credential)}
}

func (s *MemoryStore) GetCredential(ctx context.Context, userID uuid.UUID) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[userID]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	return cloneCredential(cred), nil
}

func (s *MemoryStore) SaveCredential(ctx context.Context, cred *Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.UserID] = cloneCredential(cred)
	return nil
}

func (s *MemoryStore) Enable(ctx context.Context, userID uuid.UUID, step int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[userID]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.Enabled = true
	if step > cred.LastUsedStep {
		cred.LastUsedStep = step
	}
	cred.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ConsumeTOTPStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[userID]
	if !ok {
		return false, ErrCredentialNotFound
	}
	if step <= cred.LastUsedStep {
		return false, nil
	}
	cred.LastUsedStep = step
	cred.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) ConsumeBackupCode(ctx context.Context, userID uuid.UUID, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[userID]
	if !ok {
		return false, ErrCredentialNotFound
	}

	i := slices.Index(cred.BackupCodeHashes, hash)
	if i < 0 {
		return false, nil
	}
	cred.BackupCodeHashes = slices.Delete(cred.BackupCodeHashes, i, i+1)
	cred.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) ReplaceBackupCodes(ctx context.Context, userID uuid.UUID, hashes []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[userID]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.BackupCodeHashes = slices.Clone(hashes)
	cred.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) DeleteCredential(ctx context.Context, userID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, userID)
	return nil
}

func cloneCredential(cred *Credential) *Credential {
	out := *cred
	out.BackupCodeHashes = slices.Clone(cred.BackupCodeHashes)
	return &out
}
