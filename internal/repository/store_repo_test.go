package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/samms-api/internal/models"
)

type failingSlot struct {
	Slot
	readErr  error
	writeErr error
}

func (s failingSlot) Read(ctx context.Context, key string) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.Slot.Read(ctx, key)
}

func (s failingSlot) Write(ctx context.Context, key string, value []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.Slot.Write(ctx, key, value)
}

func newMemorySlot(t *testing.T) Slot {
	t.Helper()
	_, client := setupRedis(t)
	slot, err := NewRedisSlot(client)
	require.NoError(t, err)
	return slot
}

func TestStoreRepositorySeedsEmptySlot(t *testing.T) {
	ctx := context.Background()
	slot := newMemorySlot(t)
	repo := NewStoreRepository(slot, "", zerolog.Nop())

	store, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, models.CurrentVersion, store.Version)
	require.Len(t, store.Students, 3)
	require.Len(t, store.Users, 4)
	require.Equal(t, []string{"Math", "Science", "English"}, store.Subjects)

	raw, err := slot.Read(ctx, DefaultStoreKey)
	require.NoError(t, err)

	var persisted models.Store
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Equal(t, *store, persisted)
}

func TestStoreRepositoryReseedsCorruptSlot(t *testing.T) {
	ctx := context.Background()
	slot := newMemorySlot(t)
	require.NoError(t, slot.Write(ctx, DefaultStoreKey, []byte("{not json")))

	store, err := NewStoreRepository(slot, DefaultStoreKey, zerolog.Nop()).Load(ctx)
	require.NoError(t, err)
	require.Len(t, store.Students, 3)

	raw, err := slot.Read(ctx, DefaultStoreKey)
	require.NoError(t, err)
	require.True(t, json.Valid(raw))
}

func TestStoreRepositoryReseedsUnreadableSlot(t *testing.T) {
	slot := failingSlot{Slot: newMemorySlot(t), readErr: errors.New("disk on fire")}

	store, err := NewStoreRepository(slot, DefaultStoreKey, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, store.Students, 3)
}

func TestStoreRepositoryStampsOldVersion(t *testing.T) {
	ctx := context.Background()
	slot := newMemorySlot(t)
	require.NoError(t, slot.Write(ctx, DefaultStoreKey, []byte(`{"users":[],"students":[{"id":"x","name":"Xena","className":"7C"}],"legacy":true}`)))

	store, err := NewStoreRepository(slot, DefaultStoreKey, zerolog.Nop()).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, models.CurrentVersion, store.Version)
	require.Equal(t, "Xena", store.Students[0].Name)

	raw, err := slot.Read(ctx, DefaultStoreKey)
	require.NoError(t, err)

	var persisted map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.JSONEq(t, `1`, string(persisted["version"]))
	require.JSONEq(t, `true`, string(persisted["legacy"]))
}

func TestStoreRepositoryKeepsCurrentStore(t *testing.T) {
	ctx := context.Background()
	slot := newMemorySlot(t)
	repo := NewStoreRepository(slot, DefaultStoreKey, zerolog.Nop())

	original := DefaultStore()
	original.Subjects = append(original.Subjects, "History")
	require.NoError(t, repo.Save(ctx, original))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, original, loaded)
}

func TestStoreRepositoryFailsWhenSeedCannotBeWritten(t *testing.T) {
	slot := failingSlot{Slot: newMemorySlot(t), writeErr: errors.New("read-only")}

	_, err := NewStoreRepository(slot, DefaultStoreKey, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
}
