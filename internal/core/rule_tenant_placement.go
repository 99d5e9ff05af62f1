package core

import (
	"context"
	"fmt"
)

// TenantPlacementRule blocks commits where a tenant id appears in more than
// one location at once, whether two spaces, two rosters, or a space and a
// roster. A tenant has exactly one home.
type TenantPlacementRule struct{}

// NewTenantPlacementRule constructs the placement uniqueness backstop.
func NewTenantPlacementRule() TenantPlacementRule { return TenantPlacementRule{} }

// Name identifies the rule in violations.
func (TenantPlacementRule) Name() string { return "tenant-placement" }

// Evaluate counts tenant occurrences across all placements.
func (r TenantPlacementRule) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	seen := map[string]int{}
	for _, project := range view.ListProjects() {
		for _, address := range project.Addresses {
			for _, tenant := range address.UnassignedTenants {
				seen[tenant.ID]++
			}
			for _, room := range address.Rooms {
				for _, space := range room.Spaces {
					if space.Tenant != nil {
						seen[space.Tenant.ID]++
					}
				}
			}
		}
	}
	var result Result
	for id, count := range seen {
		if count > 1 {
			result.Violations = append(result.Violations, Violation{
				Rule:     r.Name(),
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("tenant placed in %d locations", count),
				Entity:   EntityTenant,
				EntityID: id,
			})
		}
	}
	return result, nil
}
