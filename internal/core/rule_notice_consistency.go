package core

import (
	"context"
	"fmt"
)

// NoticeConsistencyRule reports warn-level oddities in notice state: an
// address marked as on notice without a recorded start, or an interval whose
// end precedes its start. Neither blocks a commit; lingering intervals on
// vacated spaces are expected and tolerated.
type NoticeConsistencyRule struct{}

// NewNoticeConsistencyRule constructs the notice sanity checker.
func NewNoticeConsistencyRule() NoticeConsistencyRule { return NoticeConsistencyRule{} }

// Name identifies the rule in violations.
func (NoticeConsistencyRule) Name() string { return "notice-consistency" }

// Evaluate inspects address-level and space-level notice data.
func (r NoticeConsistencyRule) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var result Result
	warn := func(entity EntityType, id, msg string) {
		result.Violations = append(result.Violations, Violation{
			Rule:     r.Name(),
			Severity: SeverityWarn,
			Message:  msg,
			Entity:   entity,
			EntityID: id,
		})
	}
	for _, project := range view.ListProjects() {
		for _, address := range project.Addresses {
			if address.Status == AddressNotice && address.NoticeStart == nil {
				warn(EntityAddress, address.ID, "address on notice without a start date")
			}
			for _, room := range address.Rooms {
				for _, space := range room.Spaces {
					if space.Notice == nil {
						continue
					}
					if space.Notice.EndDate.Before(space.Notice.StartDate) {
						warn(EntitySpace, space.ID, fmt.Sprintf(
							"notice ends %s before it starts %s",
							space.Notice.EndDate.Format("2006-01-02"),
							space.Notice.StartDate.Format("2006-01-02"),
						))
					}
				}
			}
		}
	}
	return result, nil
}
