package blobsnap

import (
	"context"
	"testing"
	"time"

	"tenantcore/internal/blob"
	"tenantcore/pkg/domain"
)

func TestBlobSnapshotSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()

	store, err := NewStore(ctx, blobs, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	var projectID, addressID, tenantID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		project, err := tx.CreateProject(domain.Project{Name: "Central"})
		if err != nil {
			return err
		}
		projectID = project.ID
		address, err := tx.CreateAddress(projectID, domain.Address{Name: "Main St 5", TotalSpaces: 2})
		if err != nil {
			return err
		}
		addressID = address.ID
		room, err := tx.AddRoom(addressID, domain.Room{Name: "101", Type: domain.RoomMale, TotalSpaces: 2})
		if err != nil {
			return err
		}
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		_, _, err = tx.AssignTenant(room.ID, tenantID)
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CheckOutTenant(tenantID, time.Now().UTC(), domain.ReasonOwnHousing)
		return err
	}); err != nil {
		t.Fatalf("check out: %v", err)
	}

	// Both buckets must be present in the blob backend.
	for _, bucket := range []string{domain.BucketProjects, domain.BucketArchive} {
		if _, err := blobs.Head(ctx, bucket); err != nil {
			t.Fatalf("bucket %s not persisted: %v", bucket, err)
		}
	}

	// A fresh store over the same blobs hydrates the committed state.
	reopened, err := NewStore(ctx, blobs, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	project, ok := reopened.GetProject(projectID)
	if !ok {
		t.Fatalf("project lost across restart")
	}
	if len(project.Addresses) != 1 || project.Addresses[0].ID != addressID {
		t.Fatalf("unexpected tree: %+v", project)
	}
	archive := reopened.Archive()
	if len(archive) != 1 || archive[0].TenantID != tenantID {
		t.Fatalf("archive lost across restart: %+v", archive)
	}
}

func TestBlobSnapshotFailedTransactionNotPersisted(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	store, err := NewStore(ctx, blobs, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateProject(domain.Project{Name: "Doomed"}); err != nil {
			return err
		}
		return domain.NotFoundError{Entity: domain.EntityProject, ID: "forced"}
	}); err == nil {
		t.Fatalf("expected injected failure")
	}

	if _, err := blobs.Head(ctx, domain.BucketProjects); err == nil {
		t.Fatalf("failed transaction must not write blobs")
	}
}
