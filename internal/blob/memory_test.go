package blob

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	payload := []byte(`{"projects":[]}`)
	info, err := store.Put(ctx, "housing_management_data", bytes.NewReader(payload), PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) || info.ContentType != "application/json" || info.ETag == "" {
		t.Fatalf("unexpected info: %+v", info)
	}

	got, rc, err := store.Get(ctx, "housing_management_data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) || got.ETag != info.ETag {
		t.Fatalf("round trip mismatch")
	}

	// Overwrite is allowed; snapshot buckets are rewritten on every save.
	updated := []byte(`{"projects":[{"id":"p1"}]}`)
	info2, err := store.Put(ctx, "housing_management_data", bytes.NewReader(updated), PutOptions{})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if info2.ETag == info.ETag {
		t.Fatalf("expected etag change on overwrite")
	}

	if _, err := store.Head(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := store.Put(ctx, "eviction_archive", bytes.NewReader([]byte("[]")), PutOptions{}); err != nil {
		t.Fatalf("put archive: %v", err)
	}
	infos, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "eviction_archive" || infos[1].Key != "housing_management_data" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	if _, err := store.PresignURL(ctx, "eviction_archive", SignedURLOptions{Method: "PUT"}); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported for PUT presign, got %v", err)
	}

	existed, err := store.Delete(ctx, "eviction_archive")
	if err != nil || !existed {
		t.Fatalf("delete: existed=%v err=%v", existed, err)
	}
	existed, err = store.Delete(ctx, "eviction_archive")
	if err != nil || existed {
		t.Fatalf("second delete should report absence: existed=%v err=%v", existed, err)
	}
}

func TestMemoryStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	for _, key := range []string{"", " ", "../escape", "/absolute"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), PutOptions{}); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}
