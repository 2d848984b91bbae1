// Package datastore holds the single in-memory store shared by the record and
// report services. Writers persist the full store after every change.
package datastore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/models"
)

// Saver writes the whole store to durable storage.
type Saver interface {
	Save(ctx context.Context, store *models.Store) error
}

// DataStore guards the store. Readers share the lock; a writer holds it
// exclusively until its change has been persisted.
type DataStore struct {
	mu       sync.RWMutex
	data     *models.Store
	epoch    string
	revision uint64
	saver    Saver
	logger   zerolog.Logger
}

// New wraps an already loaded store. saver may be nil for purely in-memory use.
func New(data *models.Store, saver Saver, logger zerolog.Logger) *DataStore {
	if data == nil {
		data = &models.Store{Version: models.CurrentVersion}
	}
	return &DataStore{
		data:   data,
		epoch:  uuid.NewString(),
		saver:  saver,
		logger: logger.With().Str("component", "datastore").Logger(),
	}
}

// View runs fn with shared access. fn must not retain or modify the store.
func (d *DataStore) View(fn func(store *models.Store)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.data)
}

// Update runs fn with exclusive access. When fn succeeds the revision is
// bumped and the store persisted; when fn fails nothing is written.
func (d *DataStore) Update(ctx context.Context, fn func(store *models.Store) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := fn(d.data); err != nil {
		return err
	}
	return d.commit(ctx)
}

// Replace swaps the store contents in place so existing handles stay valid.
func (d *DataStore) Replace(ctx context.Context, next models.Store) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	*d.data = next
	return d.commit(ctx)
}

// Epoch identifies this DataStore instance. Revisions restart at zero with
// every instance, so keys shared across processes need both.
func (d *DataStore) Epoch() string {
	return d.epoch
}

// Revision increases by one on every successful change.
func (d *DataStore) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

func (d *DataStore) commit(ctx context.Context) error {
	d.revision++
	if d.saver == nil {
		return nil
	}
	if err := d.saver.Save(ctx, d.data); err != nil {
		d.logger.Error().Err(err).Uint64("revision", d.revision).Msg("failed to persist store")
		return fmt.Errorf("failed to persist store: %w", err)
	}
	return nil
}
