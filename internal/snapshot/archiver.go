// Package snapshot archives the entity store to a blob store and restores
// it from the newest archive.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"soapcore/internal/blob"
	"soapcore/internal/infra/persistence/memory"
)

const (
	// DefaultPrefix is the key prefix archives are written under.
	DefaultPrefix = "snapshots/"
	// Format tags the archive layout in blob metadata.
	Format = "soapcore-snapshot/v1"

	keyLayout = "20060102T150405.000000000Z"
)

// ErrNoSnapshots is returned by RestoreLatest when the prefix is empty.
var ErrNoSnapshots = errors.New("snapshot: no archives")

// StateStore is the part of the entity store the archiver needs.
type StateStore interface {
	ExportState() memory.Snapshot
	ImportState(memory.Snapshot)
}

// Archiver writes timestamped JSON archives. Keys sort chronologically.
type Archiver struct {
	store  StateStore
	blobs  blob.Store
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// Option customises an Archiver.
type Option func(*Archiver)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(a *Archiver) {
		if prefix != "" {
			a.prefix = prefix
		}
	}
}

// WithClock overrides the time source used for archive keys.
func WithClock(now func() time.Time) Option {
	return func(a *Archiver) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archiver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewArchiver binds an entity store to a blob store.
func NewArchiver(store StateStore, blobs blob.Store, opts ...Option) *Archiver {
	a := &Archiver{
		store:  store,
		blobs:  blobs,
		prefix: DefaultPrefix,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Export serialises the current store state to <prefix><UTC timestamp>.json.
func (a *Archiver) Export(ctx context.Context) (blob.Info, error) {
	state := a.store.ExportState()
	payload, err := json.Marshal(state)
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	key := a.prefix + a.now().UTC().Format(keyLayout) + ".json"
	info, err := a.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"format":   Format,
			"entities": strconv.Itoa(entityCount(state)),
		},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store snapshot %s: %w", key, err)
	}
	a.logger.Info("snapshot exported", "key", key, "bytes", info.Size, "driver", string(a.blobs.Driver()))
	return info, nil
}

// List returns the archives under the prefix, oldest first.
func (a *Archiver) List(ctx context.Context) ([]blob.Info, error) {
	return a.blobs.List(ctx, a.prefix)
}

// RestoreLatest replaces the store state with the newest archive.
func (a *Archiver) RestoreLatest(ctx context.Context) (blob.Info, error) {
	infos, err := a.List(ctx)
	if err != nil {
		return blob.Info{}, fmt.Errorf("list snapshots: %w", err)
	}
	if len(infos) == 0 {
		return blob.Info{}, ErrNoSnapshots
	}
	return a.Restore(ctx, infos[len(infos)-1].Key)
}

// Restore replaces the store state with the archive at key.
func (a *Archiver) Restore(ctx context.Context, key string) (blob.Info, error) {
	info, rc, err := a.blobs.Get(ctx, key)
	if err != nil {
		return blob.Info{}, fmt.Errorf("open snapshot %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return blob.Info{}, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	var state memory.Snapshot
	if err := json.Unmarshal(raw, &state); err != nil {
		return blob.Info{}, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	a.store.ImportState(state)
	a.logger.Info("snapshot restored", "key", key, "entities", entityCount(state))
	return info, nil
}

func entityCount(s memory.Snapshot) int {
	return len(s.Users) + len(s.Properties) + len(s.Hubs) + len(s.Pickups) +
		len(s.Cartons) + len(s.Contracts) + len(s.Reports)
}
