package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ConflictType classifies a derived conflict record.
type ConflictType string

// Conflict classes.
const (
	// ConflictNoRoom flags a tenant registered to an address but not placed
	// in any space.
	ConflictNoRoom ConflictType = "no_room"
	// ConflictNoticeOverdue flags an occupied space whose notice period has
	// already elapsed.
	ConflictNoticeOverdue ConflictType = "notice_overdue"
)

// Conflict is a derived warning. Conflicts are recomputed fresh on every call
// and never persisted; ids are minted per call and carry no stability
// guarantee.
type Conflict struct {
	ID        string       `json:"id"`
	Type      ConflictType `json:"type"`
	ProjectID string       `json:"project_id"`
	AddressID string       `json:"address_id"`
	TenantID  string       `json:"tenant_id"`
	SpaceID   string       `json:"space_id,omitempty"`
	Message   string       `json:"message"`
}

// DaysRemaining returns the whole days left until end, rounding partial days
// up. Negative values mean the deadline has passed.
func DaysRemaining(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

// DetectConflicts scans the project tree for the two conflict classes.
// Ordering is deterministic: unassigned-tenant conflicts in address then
// tenant order, followed by overdue-notice conflicts in address, room, space
// order.
func DetectConflicts(project Project, now time.Time) []Conflict {
	var conflicts []Conflict
	for _, address := range project.Addresses {
		for _, tenant := range address.UnassignedTenants {
			conflicts = append(conflicts, noRoomConflict(project, address, tenant, ""))
		}
		// Defensive: a tenant owned by a space whose back-reference was never
		// set is effectively unplaced for the UI.
		for _, room := range address.Rooms {
			for _, space := range room.Spaces {
				if space.Tenant != nil && space.Tenant.SpaceID == nil {
					conflicts = append(conflicts, noRoomConflict(project, address, *space.Tenant, space.ID))
				}
			}
		}
	}
	for _, address := range project.Addresses {
		for _, room := range address.Rooms {
			for _, space := range room.Spaces {
				if space.Notice == nil || space.Tenant == nil {
					continue
				}
				if DaysRemaining(space.Notice.EndDate, now) >= 0 {
					continue
				}
				conflicts = append(conflicts, Conflict{
					ID:        uuid.NewString(),
					Type:      ConflictNoticeOverdue,
					ProjectID: project.ID,
					AddressID: address.ID,
					TenantID:  space.Tenant.ID,
					SpaceID:   space.ID,
					Message:   fmt.Sprintf("Zwolnij miejsce lub przenieś %s %s", space.Tenant.FirstName, space.Tenant.LastName),
				})
			}
		}
	}
	return conflicts
}

func noRoomConflict(project Project, address Address, tenant Tenant, spaceID string) Conflict {
	return Conflict{
		ID:        uuid.NewString(),
		Type:      ConflictNoRoom,
		ProjectID: project.ID,
		AddressID: address.ID,
		TenantID:  tenant.ID,
		SpaceID:   spaceID,
		Message:   fmt.Sprintf("Określ pokój dla %s %s", tenant.FirstName, tenant.LastName),
	}
}
