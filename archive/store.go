/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package archive

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/mikeb26/knockoutdraw/internal/config"
	"github.com/mikeb26/knockoutdraw/s3store"
)

var ErrNotFound = errors.New("archive: record not found")

// Store persists draw records.
type Store interface {
	// Put inserts rec, replacing any record with the same ID.
	Put(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns up to limit records, newest first. A limit <= 0 returns
	// every record.
	List(ctx context.Context, limit int) ([]*Record, error)
	Close() error
}

// Open returns the Store selected by cfg.
func Open(ctx context.Context, cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Backend {
	case config.ArchiveSQLite:
		store, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.ArchiveS3:
		objects := s3store.New(ctx, cfg.Bucket, false, true)
		if err := objects.Init(); err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		return NewObjectStore(objects), nil
	case config.ArchiveNone, "":
		return Discard{}, nil
	}

	return nil, fmt.Errorf("archive: unknown backend %q", cfg.Backend)
}

// Discard drops every record.
type Discard struct{}

func (Discard) Put(ctx context.Context, rec *Record) error {
	log.Printf("archive.discard: not recording draw %v", rec.ID)
	return nil
}

func (Discard) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return nil, fmt.Errorf("%w: %v (archive disabled)", ErrNotFound, id)
}

func (Discard) List(ctx context.Context, limit int) ([]*Record, error) {
	return nil, nil
}

func (Discard) Close() error { return nil }
