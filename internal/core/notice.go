package core

import (
	"time"

	"tenantcore/pkg/domain"
)

// noticeInterval builds a fixed countdown starting now. PaidUntil initially
// coincides with the end date.
func noticeInterval(now time.Time, periodDays int, grouped bool) NoticeInterval {
	end := now.AddDate(0, 0, periodDays)
	return NoticeInterval{
		StartDate:          now,
		EndDate:            end,
		PaidUntil:          end,
		GroupedWithAddress: grouped,
	}
}

// PutSpaceOnNotice attaches an individual eviction countdown to a space. A
// non-positive period falls back to the default. Re-issuing replaces the
// existing interval with a fresh countdown.
func (tx *Transaction) PutSpaceOnNotice(spaceID string, periodDays int) (Space, error) {
	ss, ok := tx.state.spaces[spaceID]
	if !ok {
		return Space{}, domain.NotFoundError{Entity: EntitySpace, ID: spaceID}
	}
	if periodDays <= 0 {
		periodDays = domain.DefaultEvictionPeriodDays
	}
	interval := noticeInterval(tx.now, periodDays, false)
	ss.space.Notice = &interval
	tx.state.spaces[spaceID] = ss
	tx.recordChange(Change{Entity: EntitySpace, Action: ActionUpdate, After: ss.space})
	space, _ := tx.state.spaceTree(spaceID)
	return space, nil
}

// RemoveSpaceFromNotice clears the countdown on a space. The tenant, if any,
// stays in place; clearing a notice never evicts.
func (tx *Transaction) RemoveSpaceFromNotice(spaceID string) (Space, error) {
	ss, ok := tx.state.spaces[spaceID]
	if !ok {
		return Space{}, domain.NotFoundError{Entity: EntitySpace, ID: spaceID}
	}
	ss.space.Notice = nil
	tx.state.spaces[spaceID] = ss
	tx.recordChange(Change{Entity: EntitySpace, Action: ActionUpdate, After: ss.space})
	space, _ := tx.state.spaceTree(spaceID)
	return space, nil
}

// PutAddressOnNotice marks the whole building as being wound down: the
// address switches to notice status and every space that is not already on
// notice receives a grouped countdown using the address's configured period.
// Pre-existing individual intervals are left untouched.
func (tx *Transaction) PutAddressOnNotice(addressID string) (Address, error) {
	rec, ok := tx.state.addresses[addressID]
	if !ok {
		return Address{}, domain.NotFoundError{Entity: EntityAddress, ID: addressID}
	}
	periodDays := rec.address.EvictionPeriodDays
	if periodDays <= 0 {
		periodDays = domain.DefaultEvictionPeriodDays
	}
	before := cloneAddress(rec.address)
	rec.address.Status = domain.AddressNotice
	start := tx.now
	rec.address.NoticeStart = &start
	tx.state.addresses[addressID] = rec

	for _, roomID := range rec.roomIDs {
		room := tx.state.rooms[roomID]
		for _, spaceID := range room.spaceIDs {
			ss, ok := tx.state.spaces[spaceID]
			if !ok || ss.space.Notice != nil {
				continue
			}
			interval := noticeInterval(tx.now, periodDays, true)
			ss.space.Notice = &interval
			tx.state.spaces[spaceID] = ss
		}
	}
	tx.recordChange(Change{Entity: EntityAddress, Action: ActionUpdate, Before: before, After: cloneAddress(rec.address)})
	address, _ := tx.state.addressTree(addressID)
	return address, nil
}

// RemoveAddressFromNotice reverts an address-level notice. Grouped intervals
// are treated as executed evictions: their tenants are removed outright and
// the intervals cleared. Individually noticed spaces keep their countdowns
// and tenants.
func (tx *Transaction) RemoveAddressFromNotice(addressID string) (Address, error) {
	rec, ok := tx.state.addresses[addressID]
	if !ok {
		return Address{}, domain.NotFoundError{Entity: EntityAddress, ID: addressID}
	}
	before := cloneAddress(rec.address)
	rec.address.Status = domain.AddressActive
	rec.address.NoticeStart = nil
	tx.state.addresses[addressID] = rec

	for _, roomID := range rec.roomIDs {
		room := tx.state.rooms[roomID]
		for _, spaceID := range room.spaceIDs {
			ss, ok := tx.state.spaces[spaceID]
			if !ok || ss.space.Notice == nil || !ss.space.Notice.GroupedWithAddress {
				continue
			}
			if ss.tenantID != "" {
				delete(tx.state.tenants, ss.tenantID)
				ss.tenantID = ""
			}
			ss.space.Notice = nil
			tx.state.spaces[spaceID] = ss
		}
	}
	tx.recordChange(Change{Entity: EntityAddress, Action: ActionUpdate, Before: before, After: cloneAddress(rec.address)})
	address, _ := tx.state.addressTree(addressID)
	return address, nil
}
