package core

import (
	"context"
	"fmt"
)

// RoomCapacityRule blocks commits where the declared room spaces of an
// address exceed its advertised total. Operations guard this up front; the
// rule is the backstop for bulk imports and composite transactions.
type RoomCapacityRule struct{}

// NewRoomCapacityRule constructs the capacity backstop.
func NewRoomCapacityRule() RoomCapacityRule { return RoomCapacityRule{} }

// Name identifies the rule in violations.
func (RoomCapacityRule) Name() string { return "room-capacity" }

// Evaluate scans every address in the committed view.
func (r RoomCapacityRule) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var result Result
	for _, project := range view.ListProjects() {
		for _, address := range project.Addresses {
			declared := 0
			for _, room := range address.Rooms {
				declared += room.TotalSpaces
			}
			if declared > address.TotalSpaces {
				result.Violations = append(result.Violations, Violation{
					Rule:     r.Name(),
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("declared %d spaces over address limit %d", declared, address.TotalSpaces),
					Entity:   EntityAddress,
					EntityID: address.ID,
				})
			}
		}
	}
	return result, nil
}
