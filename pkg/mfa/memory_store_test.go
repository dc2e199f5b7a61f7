package mfa_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/credkit/pkg/mfa"
)

func TestMemoryStoreCredentialLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := mfa.NewMemoryStore()
	userID := uuid.New()

	_, err := store.GetCredential(ctx, userID)
	assert.ErrorIs(t, err, mfa.ErrCredentialNotFound)

	cred := &mfa.Credential{
		UserID:           userID,
		Secret:           "SECRETSECRETSECRETSECRETSECRETAA",
		BackupCodeHashes: []string{"h1", "h2", "h3"},
	}
	require.NoError(t, store.SaveCredential(ctx, cred))

	got, err := store.GetCredential(ctx, userID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, cred.BackupCodeHashes, got.BackupCodeHashes)

	// Returned credential is a copy; mutating it does not leak into the store.
	got.BackupCodeHashes[0] = "tampered"
	fresh, err := store.GetCredential(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "h1", fresh.BackupCodeHashes[0])

	require.NoError(t, store.Enable(ctx, userID, 42))
	got, err = store.GetCredential(ctx, userID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	assert.EqualValues(t, 42, got.LastUsedStep)

	require.NoError(t, store.DeleteCredential(ctx, userID))
	_, err = store.GetCredential(ctx, userID)
	assert.ErrorIs(t, err, mfa.ErrCredentialNotFound)
}

func TestMemoryStoreConsumeTOTPStep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := mfa.NewMemoryStore()
	userID := uuid.New()
	require.NoError(t, store.SaveCredential(ctx, &mfa.Credential{UserID: userID, Secret: "S"}))
	require.NoError(t, store.Enable(ctx, userID, 10))

	advanced, err := store.ConsumeTOTPStep(ctx, userID, 11)
	require.NoError(t, err)
	assert.True(t, advanced)

	// Same or older step never advances again.
	for _, step := range []int64{11, 10, 9} {
		advanced, err = store.ConsumeTOTPStep(ctx, userID, step)
		require.NoError(t, err)
		assert.False(t, advanced, "step %d", step)
	}

	_, err = store.ConsumeTOTPStep(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, mfa.ErrCredentialNotFound)
}

func TestMemoryStoreConsumeBackupCodeOnceUnderRace(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := mfa.NewMemoryStore()
	userID := uuid.New()
	require.NoError(t, store.SaveCredential(ctx, &mfa.Credential{
		UserID:           userID,
		Secret:           "S",
		BackupCodeHashes: []string{"target", "other"},
	}))

	const racers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	wg.Add(racers)
	for range racers {
		go func() {
			defer wg.Done()
			ok, err := store.ConsumeBackupCode(ctx, userID, "target")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one racer may consume the hash")

	got, err := store.GetCredential(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, got.BackupCodeHashes)
}

func TestMemoryStoreReplaceBackupCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := mfa.NewMemoryStore()
	userID := uuid.New()
	require.NoError(t, store.SaveCredential(ctx, &mfa.Credential{
		UserID:           userID,
		Secret:           "S",
		BackupCodeHashes: []string{"old1", "old2"},
	}))

	require.NoError(t, store.ReplaceBackupCodes(ctx, userID, []string{"new1"}))
	got, err := store.GetCredential(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new1"}, got.BackupCodeHashes)

	assert.ErrorIs(t, store.ReplaceBackupCodes(ctx, uuid.New(), nil), mfa.ErrCredentialNotFound)
}
