package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"tenantcore/pkg/domain"
)

// seedRoom builds an address with one room of the given size and returns
// project, address, and room ids.
func seedRoom(t *testing.T, store *MemoryStore, roomSize int) (string, string, string) {
	t.Helper()
	projectID, addressID := seedAddress(t, store, roomSize)
	var roomID string
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		room, err := tx.AddRoom(addressID, domain.Room{Name: "101", Type: domain.RoomMale, TotalSpaces: roomSize})
		if err != nil {
			return err
		}
		roomID = room.ID
		return nil
	}); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return projectID, addressID, roomID
}

func TestAddTenantJoinsRoster(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, _ := seedRoom(t, store, 2)

	var tenantID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski", Gender: domain.GenderMale})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		if tenant.SpaceID != nil {
			t.Errorf("registration must not place the tenant")
		}
		return nil
	}); err != nil {
		t.Fatalf("add tenant: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	if len(address.UnassignedTenants) != 1 || address.UnassignedTenants[0].ID != tenantID {
		t.Fatalf("expected tenant on roster, got %+v", address.UnassignedTenants)
	}
}

func TestAssignTenantTakesLowestNumberedSpace(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, roomID := seedRoom(t, store, 3)

	var tenantID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		placed, assigned, err := tx.AssignTenant(roomID, tenantID)
		if err != nil {
			return err
		}
		if !assigned || placed.SpaceID == nil {
			t.Errorf("expected assignment, got assigned=%v", assigned)
		}
		return nil
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	if len(address.UnassignedTenants) != 0 {
		t.Fatalf("expected roster emptied, got %d", len(address.UnassignedTenants))
	}
	room := address.Rooms[0]
	for _, space := range room.Spaces {
		if space.Number == 1 {
			if space.Tenant == nil || space.Tenant.ID != tenantID {
				t.Fatalf("expected tenant in space 1, got %+v", space.Tenant)
			}
		} else if space.Tenant != nil {
			t.Fatalf("unexpected occupant in space %d", space.Number)
		}
	}
}

func TestAssignTenantFullRoomIsSoftNoop(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, roomID := seedRoom(t, store, 1)

	var firstID, secondID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		first, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		firstID = first.ID
		if _, assigned, err := tx.AssignTenant(roomID, firstID); err != nil || !assigned {
			t.Errorf("first assignment should succeed: assigned=%v err=%v", assigned, err)
		}
		second, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Piotr", LastName: "Zieliński"})
		if err != nil {
			return err
		}
		secondID = second.ID
		tenant, assigned, err := tx.AssignTenant(roomID, secondID)
		if err != nil {
			return err
		}
		if assigned {
			t.Errorf("expected full room to refuse placement")
		}
		if tenant.SpaceID != nil {
			t.Errorf("tenant must remain unplaced, got %v", *tenant.SpaceID)
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	if len(address.UnassignedTenants) != 1 || address.UnassignedTenants[0].ID != secondID {
		t.Fatalf("expected second tenant back on roster, got %+v", address.UnassignedTenants)
	}
}

func TestReassignWithinRoomKeepsLowestSpace(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, roomID := seedRoom(t, store, 2)

	var tenantID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		if _, assigned, err := tx.AssignTenant(roomID, tenantID); err != nil || !assigned {
			t.Errorf("first assignment: assigned=%v err=%v", assigned, err)
		}
		// Space 2 is free, but the tenant's own space 1 is still the
		// lowest number available to them.
		placed, assigned, err := tx.AssignTenant(roomID, tenantID)
		if err != nil {
			return err
		}
		if !assigned || placed.SpaceID == nil {
			t.Errorf("repeat assignment must place, got assigned=%v", assigned)
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	for _, space := range address.Rooms[0].Spaces {
		if space.Number == 1 {
			if space.Tenant == nil || space.Tenant.ID != tenantID {
				t.Fatalf("expected tenant to stay in space 1, got %+v", space.Tenant)
			}
		} else if space.Tenant != nil {
			t.Fatalf("tenant duplicated into space %d", space.Number)
		}
	}
}

func TestReassignIntoOwnSingleSpaceRoomPlaces(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, roomID := seedRoom(t, store, 1)

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		if _, assigned, err := tx.AssignTenant(roomID, tenant.ID); err != nil || !assigned {
			t.Errorf("first assignment: assigned=%v err=%v", assigned, err)
		}
		// The room is full, but only with this tenant: re-placement wins
		// over the full-room no-op.
		placed, assigned, err := tx.AssignTenant(roomID, tenant.ID)
		if err != nil {
			return err
		}
		if !assigned {
			t.Errorf("expected re-placement into own space, got soft no-op")
		}
		if placed.SpaceID == nil {
			t.Errorf("tenant left unplaced")
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	space := address.Rooms[0].Spaces[0]
	if space.Tenant == nil || space.Status() != domain.SpaceOccupied {
		t.Fatalf("expected tenant back in space 1, got %s", space.Status())
	}
}

func TestReassignTenantVacatesOldSpaceKeepingNotice(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, roomID := seedRoom(t, store, 2)

	var secondRoomID, tenantID, oldSpaceID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		// Capacity 2 is already declared by the first room; widen the address.
		if _, err := tx.UpdateAddress(addressID, func(a *domain.Address) error {
			a.TotalSpaces = 4
			return nil
		}); err != nil {
			return err
		}
		second, err := tx.AddRoom(addressID, domain.Room{Name: "102", Type: domain.RoomMale, TotalSpaces: 2})
		if err != nil {
			return err
		}
		secondRoomID = second.ID

		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		placed, _, err := tx.AssignTenant(roomID, tenantID)
		if err != nil {
			return err
		}
		oldSpaceID = *placed.SpaceID
		if _, err := tx.PutSpaceOnNotice(oldSpaceID, 14); err != nil {
			return err
		}
		_, assigned, err := tx.AssignTenant(secondRoomID, tenantID)
		if err != nil {
			return err
		}
		if !assigned {
			t.Errorf("expected reassignment to succeed")
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	for _, room := range address.Rooms {
		for _, space := range room.Spaces {
			if space.ID == oldSpaceID {
				if space.Tenant != nil {
					t.Fatalf("old space still occupied")
				}
				if space.Notice == nil {
					t.Fatalf("vacating must keep the notice interval")
				}
				if space.Status() != domain.SpaceNotice {
					t.Fatalf("expected lingering notice status, got %s", space.Status())
				}
			}
			if room.ID == secondRoomID && space.Number == 1 {
				if space.Tenant == nil || space.Tenant.ID != tenantID {
					t.Fatalf("tenant missing from new space")
				}
			}
		}
	}
}

func TestDeleteTenantLeavesNoticeLingering(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, addressID, roomID := seedRoom(t, store, 1)

	var tenantID, spaceID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		placed, _, err := tx.AssignTenant(roomID, tenantID)
		if err != nil {
			return err
		}
		spaceID = *placed.SpaceID
		_, err = tx.PutSpaceOnNotice(spaceID, 14)
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteTenant(tenantID)
	}); err != nil {
		t.Fatalf("delete tenant: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	space := address.Rooms[0].Spaces[0]
	if space.Tenant != nil {
		t.Fatalf("tenant record should be gone")
	}
	if space.Notice == nil || space.Status() != domain.SpaceNotice {
		t.Fatalf("deleting a tenant must not clear the notice, got %s", space.Status())
	}
	if got := len(store.Archive()); got != 0 {
		t.Fatalf("plain deletion must not archive, got %d entries", got)
	}
}

func TestCheckOutTenantArchivesAndResetsSpace(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return now })
	projectID, addressID, roomID := seedRoom(t, store, 1)

	checkIn := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	var tenantID, spaceID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tenant, err := tx.AddTenant(addressID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski", CheckInDate: checkIn})
		if err != nil {
			return err
		}
		tenantID = tenant.ID
		placed, _, err := tx.AssignTenant(roomID, tenantID)
		if err != nil {
			return err
		}
		spaceID = *placed.SpaceID
		_, err = tx.PutSpaceOnNotice(spaceID, 14)
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	checkOut := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		entry, err := tx.CheckOutTenant(tenantID, checkOut, domain.ReasonJobChange)
		if err != nil {
			return err
		}
		if entry.TenantID != tenantID || entry.Reason != domain.ReasonJobChange {
			t.Errorf("unexpected entry: %+v", entry)
		}
		if entry.ProjectID != projectID || entry.AddressID != addressID {
			t.Errorf("entry missing location denormalisation: %+v", entry)
		}
		if !entry.CheckInDate.Equal(checkIn) || !entry.CheckOutDate.Equal(checkOut) {
			t.Errorf("entry dates wrong: %+v", entry)
		}
		return nil
	}); err != nil {
		t.Fatalf("check out: %v", err)
	}

	address, _ := store.GetAddress(addressID)
	space := address.Rooms[0].Spaces[0]
	if space.Status() != domain.SpaceVacant {
		t.Fatalf("check-out must fully reset the space, got %s", space.Status())
	}
	archive := store.Archive()
	if len(archive) != 1 || !archive[0].CreatedAt.Equal(now) {
		t.Fatalf("unexpected archive: %+v", archive)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, ok := tx.FindTenant(tenantID)
		if ok {
			t.Errorf("tenant record should be removed after check-out")
		}
		return nil
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestCheckOutUnknownTenant(t *testing.T) {
	store := NewMemoryStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CheckOutTenant("missing", time.Now(), domain.ReasonRelocation)
		return err
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != domain.EntityTenant {
		t.Fatalf("expected tenant NotFoundError, got %v", err)
	}
}
