package domain

import "fmt"

// NotFoundError is returned when a referenced entity does not exist. The
// operation aborts with no mutation.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// CapacityExceededError is returned when adding or resizing a room would push
// the address past its declared total. Callers surface Over to the user.
type CapacityExceededError struct {
	AddressID string
	Requested int
	Limit     int
}

// Over reports how many spaces the request exceeds the address limit by.
func (e CapacityExceededError) Over() int { return e.Requested - e.Limit }

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("address %s capacity exceeded: %d requested, limit %d (over by %d)",
		e.AddressID, e.Requested, e.Limit, e.Over())
}

// SpacesOccupiedError is returned when a room shrink cannot free enough vacant
// spaces. The shrink is all-or-nothing; no spaces were removed.
type SpacesOccupiedError struct {
	RoomID    string
	Requested int
	Freeable  int
}

func (e SpacesOccupiedError) Error() string {
	return fmt.Sprintf("room %s shrink needs %d removable spaces, only %d vacant",
		e.RoomID, e.Requested, e.Freeable)
}

// RoomOccupiedError guards room deletion while any space still has a tenant.
type RoomOccupiedError struct {
	RoomID   string
	Occupied int
}

func (e RoomOccupiedError) Error() string {
	return fmt.Sprintf("room %s still has %d occupied spaces", e.RoomID, e.Occupied)
}

// SpaceNotVacantError guards deletion of a space that has a tenant or an
// active notice interval.
type SpaceNotVacantError struct {
	SpaceID string
	Status  SpaceStatus
}

func (e SpaceNotVacantError) Error() string {
	return fmt.Sprintf("space %s is %s, not vacant", e.SpaceID, e.Status)
}

// InvalidImportError reports a structurally invalid export document. Existing
// persisted data is left untouched.
type InvalidImportError struct {
	Reason string
}

func (e InvalidImportError) Error() string {
	return fmt.Sprintf("invalid import structure: %s", e.Reason)
}
