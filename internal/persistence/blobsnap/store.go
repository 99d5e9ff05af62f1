// Package blobsnap persists snapshots through the blob store abstraction,
// writing one JSON object per bucket. Suited for object-storage-only
// deployments where no relational database is available.
package blobsnap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"tenantcore/internal/blob"
	"tenantcore/internal/core"
	"tenantcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists state as JSON blobs while reusing the in-memory
// implementation for transactions.
type Store struct {
	*core.MemoryStore
	blobs blob.Store
	mu    sync.Mutex
}

// NewStore hydrates the in-memory store from existing blobs. Missing buckets
// are treated as an empty state.
func NewStore(ctx context.Context, blobs blob.Store, engine *domain.RulesEngine) (*Store, error) {
	s := &Store{MemoryStore: core.NewMemoryStore(engine), blobs: blobs}
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.MemoryStore.ImportState(snapshot); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if err := s.readBucket(ctx, domain.BucketProjects, &snapshot.Projects); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.readBucket(ctx, domain.BucketArchive, &snapshot.Archive); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

func (s *Store) readBucket(ctx context.Context, bucket string, target any) error {
	_, rc, err := s.blobs.Get(ctx, bucket)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", bucket, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", bucket, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	payloads := map[string]any{
		domain.BucketProjects: snapshot.Projects,
		domain.BucketArchive:  snapshot.Archive,
	}
	for _, bucket := range []string{domain.BucketProjects, domain.BucketArchive} {
		data, err := json.Marshal(payloads[bucket])
		if err != nil {
			return err
		}
		if _, err := s.blobs.Put(ctx, bucket, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"}); err != nil {
			return fmt.Errorf("put %s: %w", bucket, err)
		}
	}
	return nil
}

// RunInTransaction commits against the in-memory store, then snapshots to the
// blob backend on success.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.MemoryStore.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		return res, pErr
	}
	return res, nil
}

// ImportState replaces in-memory state and persists the new snapshot.
func (s *Store) ImportState(snapshot domain.Snapshot) error {
	if err := s.MemoryStore.ImportState(snapshot); err != nil {
		return err
	}
	return s.persist(context.Background())
}

// Blobs exposes the underlying blob store for testing hooks.
func (s *Store) Blobs() blob.Store { return s.blobs }
