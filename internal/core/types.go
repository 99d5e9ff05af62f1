package core

import "tenantcore/pkg/domain"

type (
	EntityType           = domain.EntityType
	Project              = domain.Project
	Address              = domain.Address
	Room                 = domain.Room
	Space                = domain.Space
	Tenant               = domain.Tenant
	Photo                = domain.Photo
	NoticeInterval       = domain.NoticeInterval
	EvictionArchiveEntry = domain.EvictionArchiveEntry
	Snapshot             = domain.Snapshot
	Change               = domain.Change
	Action               = domain.Action
	Violation            = domain.Violation
	Result               = domain.Result
	CheckoutReason       = domain.CheckoutReason
	Rule                 = domain.Rule
	RuleView             = domain.RuleView
	RulesEngine          = domain.RulesEngine
	RuleViolationError   = domain.RuleViolationError
)

const (
	EntityProject      = domain.EntityProject
	EntityAddress      = domain.EntityAddress
	EntityRoom         = domain.EntityRoom
	EntitySpace        = domain.EntitySpace
	EntityTenant       = domain.EntityTenant
	EntityArchiveEntry = domain.EntityArchiveEntry
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

const (
	AddressActive = domain.AddressActive
	AddressNotice = domain.AddressNotice
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

// NewRulesEngine re-exports the domain constructor for core consumers.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewRoomCapacityRule())
	engine.Register(NewTenantPlacementRule())
	engine.Register(NewNoticeConsistencyRule())
	return engine
}
