/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mikeb26/knockoutdraw/s3store"
	"golang.org/x/sync/errgroup"
)

const (
	recordPrefix = "draws/"
	recordSuffix = ".json"

	maxParallelGets = 8
)

// ObjectBackend is the subset of *s3store.Store used by ObjectStore.
type ObjectBackend interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// ObjectStore keeps one JSON object per record. Record IDs are version 7
// UUIDs, so key order is creation order.
type ObjectStore struct {
	objects ObjectBackend
}

func NewObjectStore(objects ObjectBackend) *ObjectStore {
	return &ObjectStore{objects: objects}
}

func recordKey(id uuid.UUID) string {
	return recordPrefix + id.String() + recordSuffix
}

func (s *ObjectStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %v: %w", rec.ID, err)
	}
	if err := s.objects.PutObject(ctx, recordKey(rec.ID), data); err != nil {
		return fmt.Errorf("archive.put: %w", err)
	}
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	data, err := s.objects.GetObject(ctx, recordKey(id))
	if errors.Is(err, s3store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("archive.get: %w", err)
	}
	return decodeRecord(data)
}

func (s *ObjectStore) List(ctx context.Context, limit int) ([]*Record, error) {
	keys, err := s.objects.ListKeys(ctx, recordPrefix)
	if err != nil {
		return nil, fmt.Errorf("archive.list: %w", err)
	}
	var ids []uuid.UUID
	for _, k := range keys {
		name := strings.TrimSuffix(strings.TrimPrefix(k, recordPrefix),
			recordSuffix)
		id, err := uuid.Parse(name)
		if err != nil || k != recordKey(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() > ids[j].String()
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]*Record, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelGets)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := s.Get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *ObjectStore) Close() error { return nil }
