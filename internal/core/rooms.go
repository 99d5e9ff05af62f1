package core

import (
	"sort"

	"tenantcore/pkg/domain"
)

// AddRoom creates a room with generated vacant spaces numbered 1..TotalSpaces.
// The address-level capacity limit is enforced for all room types, so an
// address can never hold more declared spaces than it advertises.
func (tx *Transaction) AddRoom(addressID string, room Room) (Room, error) {
	rec, ok := tx.state.addresses[addressID]
	if !ok {
		return Room{}, domain.NotFoundError{Entity: EntityAddress, ID: addressID}
	}
	declared := tx.declaredSpaces(rec)
	if declared+room.TotalSpaces > rec.address.TotalSpaces {
		return Room{}, domain.CapacityExceededError{
			AddressID: addressID,
			Requested: declared + room.TotalSpaces,
			Limit:     rec.address.TotalSpaces,
		}
	}
	if room.ID == "" {
		room.ID = newID()
	}
	room.AddressID = addressID
	preset := room.Spaces
	room.Spaces = nil

	rs := roomState{room: room}
	if len(preset) > 0 {
		// Snapshot-style payloads carry explicit spaces; keep them as given.
		for _, space := range preset {
			ss := spaceState{space: cloneSpace(space)}
			if ss.space.ID == "" {
				ss.space.ID = newID()
			}
			ss.space.RoomID = room.ID
			if space.Tenant != nil {
				tenant := cloneTenant(*space.Tenant)
				tenant.AddressID = addressID
				tx.state.tenants[tenant.ID] = tenant
				ss.tenantID = tenant.ID
			}
			tx.state.spaces[ss.space.ID] = ss
			rs.spaceIDs = append(rs.spaceIDs, ss.space.ID)
		}
	} else {
		for n := 1; n <= room.TotalSpaces; n++ {
			space := Space{ID: newID(), RoomID: room.ID, Number: n}
			tx.state.spaces[space.ID] = spaceState{space: space}
			rs.spaceIDs = append(rs.spaceIDs, space.ID)
		}
	}
	tx.state.rooms[room.ID] = rs
	rec.roomIDs = append(rec.roomIDs, room.ID)
	tx.state.addresses[addressID] = rec
	tx.recordChange(Change{Entity: EntityRoom, Action: ActionCreate, After: room})
	created, _ := tx.state.roomTree(room.ID)
	return created, nil
}

// declaredSpaces sums TotalSpaces across the address's rooms.
func (tx *Transaction) declaredSpaces(rec addressState) int {
	total := 0
	for _, roomID := range rec.roomIDs {
		if room, ok := tx.state.rooms[roomID]; ok {
			total += room.room.TotalSpaces
		}
	}
	return total
}

// ResizeRoom grows or shrinks a room to newTotal spaces. Growing appends
// vacant spaces numbered after the current maximum; shrinking removes the
// highest-numbered vacant spaces and is all-or-nothing. Surviving spaces are
// never renumbered.
func (tx *Transaction) ResizeRoom(roomID string, newTotal int) (Room, error) {
	rs, ok := tx.state.rooms[roomID]
	if !ok {
		return Room{}, domain.NotFoundError{Entity: EntityRoom, ID: roomID}
	}
	current := rs.room.TotalSpaces
	if newTotal == current {
		room, _ := tx.state.roomTree(roomID)
		return room, nil
	}
	if newTotal > current {
		rec := tx.state.addresses[rs.room.AddressID]
		declared := tx.declaredSpaces(rec) - current + newTotal
		if declared > rec.address.TotalSpaces {
			return Room{}, domain.CapacityExceededError{
				AddressID: rs.room.AddressID,
				Requested: declared,
				Limit:     rec.address.TotalSpaces,
			}
		}
		next := 0
		for _, spaceID := range rs.spaceIDs {
			if sp, ok := tx.state.spaces[spaceID]; ok && sp.space.Number > next {
				next = sp.space.Number
			}
		}
		for n := 0; n < newTotal-current; n++ {
			next++
			space := Space{ID: newID(), RoomID: roomID, Number: next}
			tx.state.spaces[space.ID] = spaceState{space: space}
			rs.spaceIDs = append(rs.spaceIDs, space.ID)
		}
	} else {
		toRemove := current - newTotal
		removable := make([]string, 0, toRemove)
		// Highest space numbers go first.
		order := append([]string(nil), rs.spaceIDs...)
		sort.Slice(order, func(i, j int) bool {
			return tx.state.spaces[order[i]].space.Number > tx.state.spaces[order[j]].space.Number
		})
		for _, spaceID := range order {
			if len(removable) == toRemove {
				break
			}
			if sp, ok := tx.state.spaces[spaceID]; ok && sp.tenantID == "" && sp.space.Notice == nil {
				removable = append(removable, spaceID)
			}
		}
		if len(removable) < toRemove {
			return Room{}, domain.SpacesOccupiedError{RoomID: roomID, Requested: toRemove, Freeable: len(removable)}
		}
		for _, spaceID := range removable {
			delete(tx.state.spaces, spaceID)
			rs.spaceIDs = remove(rs.spaceIDs, spaceID)
		}
	}
	before := rs.room
	rs.room.TotalSpaces = newTotal
	tx.state.rooms[roomID] = rs
	tx.recordChange(Change{Entity: EntityRoom, Action: ActionUpdate, Before: before, After: rs.room})
	room, _ := tx.state.roomTree(roomID)
	return room, nil
}

// DeleteRoom removes a room and its spaces. Blocked while any space still has
// a tenant; notice-only spaces do not block.
func (tx *Transaction) DeleteRoom(id string) error {
	rs, ok := tx.state.rooms[id]
	if !ok {
		return domain.NotFoundError{Entity: EntityRoom, ID: id}
	}
	occupied := 0
	for _, spaceID := range rs.spaceIDs {
		if sp, ok := tx.state.spaces[spaceID]; ok && sp.tenantID != "" {
			occupied++
		}
	}
	if occupied > 0 {
		return domain.RoomOccupiedError{RoomID: id, Occupied: occupied}
	}
	for _, spaceID := range rs.spaceIDs {
		delete(tx.state.spaces, spaceID)
	}
	if rec, ok := tx.state.addresses[rs.room.AddressID]; ok {
		rec.roomIDs = remove(rec.roomIDs, id)
		tx.state.addresses[rs.room.AddressID] = rec
	}
	delete(tx.state.rooms, id)
	tx.recordChange(Change{Entity: EntityRoom, Action: ActionDelete, Before: rs.room})
	return nil
}

// DeleteSpace removes a single space. Only vacant spaces may be deleted; the
// room's declared total shrinks accordingly.
func (tx *Transaction) DeleteSpace(id string) error {
	ss, ok := tx.state.spaces[id]
	if !ok {
		return domain.NotFoundError{Entity: EntitySpace, ID: id}
	}
	if status := tx.spaceStatus(ss); status != domain.SpaceVacant {
		return domain.SpaceNotVacantError{SpaceID: id, Status: status}
	}
	if rs, ok := tx.state.rooms[ss.space.RoomID]; ok {
		rs.spaceIDs = remove(rs.spaceIDs, id)
		rs.room.TotalSpaces--
		tx.state.rooms[ss.space.RoomID] = rs
	}
	delete(tx.state.spaces, id)
	tx.recordChange(Change{Entity: EntitySpace, Action: ActionDelete, Before: ss.space})
	return nil
}

// spaceStatus derives the legacy status for an arena record, where tenant
// ownership lives on the record rather than the embedded pointer.
func (tx *Transaction) spaceStatus(ss spaceState) domain.SpaceStatus {
	switch {
	case ss.space.Notice != nil:
		return domain.SpaceNotice
	case ss.tenantID != "":
		return domain.SpaceOccupied
	default:
		return domain.SpaceVacant
	}
}
