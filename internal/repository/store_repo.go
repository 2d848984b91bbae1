package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/models"
	"github.com/noah-isme/samms-api/internal/observability"
)

// DefaultStoreKey is the namespaced key the store is persisted under.
const DefaultStoreKey = "SAMMS_DB_V1"

// StoreRepository loads and saves the whole store through a Slot.
type StoreRepository interface {
	Load(ctx context.Context) (*models.Store, error)
	Save(ctx context.Context, store *models.Store) error
}

type storeRepository struct {
	slot   Slot
	key    string
	logger zerolog.Logger
	seed   func() *models.Store
}

// NewStoreRepository constructs the persistence adapter for the given slot.
func NewStoreRepository(slot Slot, key string, logger zerolog.Logger) StoreRepository {
	if key == "" {
		key = DefaultStoreKey
	}
	return &storeRepository{
		slot:   slot,
		key:    key,
		logger: logger.With().Str("component", "store_repository").Str("backend", slot.Backend()).Logger(),
		seed:   DefaultStore,
	}
}

// Load never fails on unreadable data: an absent, unreadable or corrupt slot
// is replaced by the default seed. It only errors when that seed (or a version
// stamp) cannot be written back.
func (r *storeRepository) Load(ctx context.Context) (*models.Store, error) {
	raw, err := r.slot.Read(ctx, r.key)
	if err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			r.logger.Info().Str("key", r.key).Msg("no stored data, seeding defaults")
		} else {
			r.logger.Error().Err(err).Str("key", r.key).Msg("failed to read stored data, seeding defaults")
		}
		return r.reseed(ctx)
	}

	var store models.Store
	if err := json.Unmarshal(raw, &store); err != nil {
		r.logger.Warn().Err(err).Str("key", r.key).Msg("failed to parse stored data, seeding defaults")
		return r.reseed(ctx)
	}

	if store.Version < models.CurrentVersion {
		r.logger.Info().Int("from", store.Version).Int("to", models.CurrentVersion).Msg("stamping store version")
		store.Version = models.CurrentVersion
		if err := r.Save(ctx, &store); err != nil {
			return nil, err
		}
	}

	return &store, nil
}

func (r *storeRepository) Save(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("cannot save a nil store")
	}

	start := time.Now()
	payload, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	err = r.slot.Write(ctx, r.key, payload)
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.StorePersist().WithLabelValues(r.slot.Backend(), result).Observe(time.Since(start).Seconds())

	if err != nil {
		r.logger.Error().Err(err).Msg("failed to persist store")
		return err
	}
	return nil
}

func (r *storeRepository) reseed(ctx context.Context) (*models.Store, error) {
	store := r.seed()
	if err := r.Save(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}
