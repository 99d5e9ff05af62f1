package core

import (
	"time"

	"tenantcore/pkg/domain"
)

// AddTenant registers a tenant on the address roster. Registration never
// places the tenant; assignment is a separate step.
func (tx *Transaction) AddTenant(addressID string, tenant Tenant) (Tenant, error) {
	rec, ok := tx.state.addresses[addressID]
	if !ok {
		return Tenant{}, domain.NotFoundError{Entity: EntityAddress, ID: addressID}
	}
	if tenant.ID == "" {
		tenant.ID = newID()
	}
	tenant.AddressID = addressID
	tenant.SpaceID = nil
	tx.state.tenants[tenant.ID] = cloneTenant(tenant)
	rec.roster = append(rec.roster, tenant.ID)
	tx.state.addresses[addressID] = rec
	tx.recordChange(Change{Entity: EntityTenant, Action: ActionCreate, After: cloneTenant(tenant)})
	return cloneTenant(tenant), nil
}

// AssignTenant places a tenant into the lowest-numbered free space of the
// given room. The tenant is detached from wherever it currently sits: the
// address roster, or another space anywhere in the same address. The tenant's
// own space counts as free, so the placement matches a detach-then-scan
// order and a repeat assignment into the same room keeps the lowest number.
// A vacated space keeps its notice interval if it has one.
//
// When the room has no space free for this tenant the call is a soft no-op:
// the tenant is returned unchanged with assigned=false and no error, so
// callers can retry another room without unwinding a transaction.
func (tx *Transaction) AssignTenant(roomID, tenantID string) (Tenant, bool, error) {
	rs, ok := tx.state.rooms[roomID]
	if !ok {
		return Tenant{}, false, domain.NotFoundError{Entity: EntityRoom, ID: roomID}
	}
	tenant, ok := tx.state.tenants[tenantID]
	if !ok {
		return Tenant{}, false, domain.NotFoundError{Entity: EntityTenant, ID: tenantID}
	}

	var target string
	bestNumber := 0
	for _, spaceID := range rs.spaceIDs {
		sp, ok := tx.state.spaces[spaceID]
		if !ok || (sp.tenantID != "" && sp.tenantID != tenantID) {
			continue
		}
		if target == "" || sp.space.Number < bestNumber {
			target = spaceID
			bestNumber = sp.space.Number
		}
	}
	if target == "" {
		return cloneTenant(tenant), false, nil
	}

	tx.detachTenant(tenantID)

	sp := tx.state.spaces[target]
	sp.tenantID = tenantID
	tx.state.spaces[target] = sp

	tenant.SpaceID = &target
	tx.state.tenants[tenantID] = cloneTenant(tenant)
	tx.recordChange(Change{Entity: EntitySpace, Action: ActionUpdate, After: sp.space})
	tx.recordChange(Change{Entity: EntityTenant, Action: ActionUpdate, After: cloneTenant(tenant)})
	return cloneTenant(tenant), true, nil
}

// detachTenant removes the tenant from its current placement: the owning
// space if assigned, or the address roster if not. Space notice intervals
// survive the vacate.
func (tx *Transaction) detachTenant(tenantID string) {
	tenant, ok := tx.state.tenants[tenantID]
	if !ok {
		return
	}
	if tenant.SpaceID != nil {
		if sp, ok := tx.state.spaces[*tenant.SpaceID]; ok && sp.tenantID == tenantID {
			sp.tenantID = ""
			tx.state.spaces[*tenant.SpaceID] = sp
		}
	}
	// Ownership back-refs can be stale in imported payloads, so sweep spaces too.
	for spaceID, sp := range tx.state.spaces {
		if sp.tenantID == tenantID {
			sp.tenantID = ""
			tx.state.spaces[spaceID] = sp
		}
	}
	if rec, ok := tx.state.addresses[tenant.AddressID]; ok {
		rec.roster = remove(rec.roster, tenantID)
		tx.state.addresses[tenant.AddressID] = rec
	}
	tenant.SpaceID = nil
	tx.state.tenants[tenantID] = tenant
}

// DeleteTenant removes a tenant record without archiving. The vacated space
// keeps any notice interval it carries, including a grouped one; the interval
// lingers until removed explicitly or via address-level revert.
func (tx *Transaction) DeleteTenant(id string) error {
	tenant, ok := tx.state.tenants[id]
	if !ok {
		return domain.NotFoundError{Entity: EntityTenant, ID: id}
	}
	tx.detachTenant(id)
	delete(tx.state.tenants, id)
	tx.recordChange(Change{Entity: EntityTenant, Action: ActionDelete, Before: cloneTenant(tenant)})
	return nil
}

// CheckOutTenant completes a tenancy: the space is fully reset to vacant
// (tenant and notice interval both cleared), an archive entry is appended,
// and the tenant record is removed. Works for roster tenants too; then no
// space is touched.
func (tx *Transaction) CheckOutTenant(id string, checkOut time.Time, reason CheckoutReason) (EvictionArchiveEntry, error) {
	tenant, ok := tx.state.tenants[id]
	if !ok {
		return EvictionArchiveEntry{}, domain.NotFoundError{Entity: EntityTenant, ID: id}
	}

	if tenant.SpaceID != nil {
		if sp, ok := tx.state.spaces[*tenant.SpaceID]; ok && sp.tenantID == id {
			sp.tenantID = ""
			sp.space.Notice = nil
			tx.state.spaces[*tenant.SpaceID] = sp
		}
	}
	tx.detachTenant(id)
	delete(tx.state.tenants, id)

	entry := EvictionArchiveEntry{
		TenantID:     tenant.ID,
		FirstName:    tenant.FirstName,
		LastName:     tenant.LastName,
		CheckInDate:  tenant.CheckInDate,
		CheckOutDate: checkOut,
		Reason:       reason,
		CreatedAt:    tx.now,
	}
	if rec, ok := tx.state.addresses[tenant.AddressID]; ok {
		entry.AddressID = rec.address.ID
		entry.AddressName = rec.address.Name
		if project, ok := tx.state.projects[rec.address.ProjectID]; ok {
			entry.ProjectID = project.project.ID
			entry.ProjectName = project.project.Name
		}
	}
	tx.state.archive = append(tx.state.archive, entry)
	tx.recordChange(Change{Entity: EntityArchiveEntry, Action: ActionCreate, After: entry})
	tx.recordChange(Change{Entity: EntityTenant, Action: ActionDelete, Before: cloneTenant(tenant)})
	return entry, nil
}
