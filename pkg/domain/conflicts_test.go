package domain

import (
	"testing"
	"time"
)

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := DaysRemaining(now.AddDate(0, 0, 14), now); got != 14 {
		t.Fatalf("expected 14 whole days, got %d", got)
	}
	// Partial days round up.
	if got := DaysRemaining(now.Add(36*time.Hour), now); got != 2 {
		t.Fatalf("expected 2 for a day and a half, got %d", got)
	}
	if got := DaysRemaining(now, now); got != 0 {
		t.Fatalf("expected 0 at the deadline, got %d", got)
	}
	if got := DaysRemaining(now.Add(-25*time.Hour), now); got != -1 {
		t.Fatalf("expected -1 past the deadline, got %d", got)
	}
}

func TestDetectConflictsUnplacedTenant(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project := Project{
		ID: "p1",
		Addresses: []Address{{
			ID:                "a1",
			UnassignedTenants: []Tenant{{ID: "t1", FirstName: "Jan", LastName: "Kowalski"}},
		}},
	}
	conflicts := DetectConflicts(project, now)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.Type != ConflictNoRoom || c.TenantID != "t1" || c.AddressID != "a1" {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if c.Message != "Określ pokój dla Jan Kowalski" {
		t.Fatalf("unexpected message: %q", c.Message)
	}
	if c.ID == "" {
		t.Fatalf("expected a minted conflict id")
	}
}

func TestDetectConflictsNoticeOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	spaceID := "s1"
	project := Project{
		ID: "p1",
		Addresses: []Address{{
			ID: "a1",
			Rooms: []Room{{
				ID: "r1",
				Spaces: []Space{{
					ID:     spaceID,
					Tenant: &Tenant{ID: "t1", FirstName: "Anna", LastName: "Nowak", SpaceID: &spaceID},
					Notice: &NoticeInterval{EndDate: now.AddDate(0, 0, -3)},
				}},
			}},
		}},
	}
	conflicts := DetectConflicts(project, now)
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.Type != ConflictNoticeOverdue || c.SpaceID != spaceID {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if c.Message != "Zwolnij miejsce lub przenieś Anna Nowak" {
		t.Fatalf("unexpected message: %q", c.Message)
	}
}

func TestDetectConflictsNoticeStillRunning(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	spaceID := "s1"
	project := Project{
		ID: "p1",
		Addresses: []Address{{
			ID: "a1",
			Rooms: []Room{{
				ID: "r1",
				Spaces: []Space{{
					ID:     spaceID,
					Tenant: &Tenant{ID: "t1", SpaceID: &spaceID},
					Notice: &NoticeInterval{EndDate: now.AddDate(0, 0, 5)},
				}},
			}},
		}},
	}
	if conflicts := DetectConflicts(project, now); len(conflicts) != 0 {
		t.Fatalf("expected no conflicts while the countdown runs, got %d", len(conflicts))
	}
}

func TestDetectConflictsVacantNoticeIgnored(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project := Project{
		ID: "p1",
		Addresses: []Address{{
			ID: "a1",
			Rooms: []Room{{
				ID: "r1",
				Spaces: []Space{{
					ID:     "s1",
					Notice: &NoticeInterval{EndDate: now.AddDate(0, 0, -30)},
				}},
			}},
		}},
	}
	if conflicts := DetectConflicts(project, now); len(conflicts) != 0 {
		t.Fatalf("a lingering notice on a vacant space is not a conflict, got %d", len(conflicts))
	}
}

func TestDetectConflictsMissingBackReference(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project := Project{
		ID: "p1",
		Addresses: []Address{{
			ID: "a1",
			Rooms: []Room{{
				ID: "r1",
				Spaces: []Space{{
					ID:     "s1",
					Tenant: &Tenant{ID: "t1", FirstName: "Piotr", LastName: "Wiśniewski"},
				}},
			}},
		}},
	}
	conflicts := DetectConflicts(project, now)
	if len(conflicts) != 1 || conflicts[0].Type != ConflictNoRoom {
		t.Fatalf("expected the stale back-reference to surface as no-room, got %+v", conflicts)
	}
	if conflicts[0].SpaceID != "s1" {
		t.Fatalf("expected the owning space to be referenced, got %q", conflicts[0].SpaceID)
	}
}

func TestDetectConflictsOrdering(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	spaceID := "s1"
	project := Project{
		ID: "p1",
		Addresses: []Address{{
			ID:                "a1",
			UnassignedTenants: []Tenant{{ID: "t-roster", FirstName: "Jan", LastName: "Kowalski"}},
			Rooms: []Room{{
				ID: "r1",
				Spaces: []Space{{
					ID:     spaceID,
					Tenant: &Tenant{ID: "t-overdue", FirstName: "Anna", LastName: "Nowak", SpaceID: &spaceID},
					Notice: &NoticeInterval{EndDate: now.AddDate(0, 0, -1)},
				}},
			}},
		}},
	}
	conflicts := DetectConflicts(project, now)
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(conflicts))
	}
	if conflicts[0].Type != ConflictNoRoom || conflicts[1].Type != ConflictNoticeOverdue {
		t.Fatalf("expected no-room conflicts first, got %s then %s", conflicts[0].Type, conflicts[1].Type)
	}
}
