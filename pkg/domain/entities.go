// Package domain defines the core housing entities, derived statistics,
// conflict detection, and rule evaluation primitives used by tenantcore.
package domain

import (
	"encoding/json"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProject identifies a project (building group) record.
	EntityProject EntityType = "project"
	// EntityAddress identifies a building record.
	EntityAddress EntityType = "address"
	// EntityRoom identifies a room record.
	EntityRoom EntityType = "room"
	// EntitySpace identifies a bed-level space record.
	EntitySpace EntityType = "space"
	// EntityTenant identifies a tenant record.
	EntityTenant EntityType = "tenant"
	// EntityArchiveEntry identifies an eviction archive entry.
	EntityArchiveEntry EntityType = "archive_entry"
)

// DefaultEvictionPeriodDays is the notice countdown applied when an address
// does not configure its own period.
const DefaultEvictionPeriodDays = 14

// RoomType categorises a room by intended occupants.
type RoomType string

// Canonical room types. Couple rooms accept any gender pairing.
const (
	RoomMale   RoomType = "male"
	RoomFemale RoomType = "female"
	RoomCouple RoomType = "couple"
)

// Gender identifies a tenant's gender used for advisory room filtering.
type Gender string

// Tenant genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// AddressStatus captures whether a whole address has been put on notice.
type AddressStatus string

// Address statuses.
const (
	AddressActive AddressStatus = "active"
	AddressNotice AddressStatus = "notice"
)

// SpaceStatus is the legacy single-value occupancy encoding. It is derived
// from tenant and notice presence and only materialised at the JSON boundary.
type SpaceStatus string

// Derived space statuses.
const (
	SpaceVacant   SpaceStatus = "vacant"
	SpaceOccupied SpaceStatus = "occupied"
	SpaceNotice   SpaceStatus = "notice"
)

// CheckoutReason records why a tenant was checked out.
type CheckoutReason string

// Canonical checkout reasons stored in the eviction archive.
const (
	ReasonJobChange    CheckoutReason = "job_change"
	ReasonOwnHousing   CheckoutReason = "own_housing"
	ReasonDisciplinary CheckoutReason = "disciplinary"
	ReasonRelocation   CheckoutReason = "relocation"
)

// Project is the root aggregate: a named group of addresses.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      *string   `json:"city,omitempty"`
	Addresses []Address `json:"addresses"`
}

// Address represents a single building with its rooms, registered-but-unplaced
// tenants, and capacity/pricing metadata.
type Address struct {
	ID                 string        `json:"id"`
	ProjectID          string        `json:"project_id"`
	Name               string        `json:"name"`
	FullAddress        string        `json:"full_address"`
	TotalSpaces        int           `json:"total_spaces"`
	CoupleRooms        int           `json:"couple_rooms"`
	PricePerSpace      float64       `json:"price_per_space"`
	CouplePrice        float64       `json:"couple_price"`
	TotalCost          float64       `json:"total_cost"`
	EvictionPeriodDays int           `json:"eviction_period_days"`
	OperatorName       string        `json:"operator_name,omitempty"`
	OperatorPhone      string        `json:"operator_phone,omitempty"`
	Status             AddressStatus `json:"status"`
	NoticeStart        *time.Time    `json:"notice_start,omitempty"`
	Photos             []Photo       `json:"photos,omitempty"`
	Rooms              []Room        `json:"rooms"`
	UnassignedTenants  []Tenant      `json:"unassigned_tenants"`
}

// Photo references an image attached to an address.
type Photo struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Room groups spaces under a declared capacity and occupant type.
type Room struct {
	ID          string   `json:"id"`
	AddressID   string   `json:"address_id"`
	Name        string   `json:"name"`
	Type        RoomType `json:"type"`
	TotalSpaces int      `json:"total_spaces"`
	Spaces      []Space  `json:"spaces"`
}

// Space is a single bed-level slot. Occupancy and notice state are two
// independent axes: Tenant presence and Notice presence. The legacy status
// value is derived via Status and emitted only during serialisation.
type Space struct {
	ID     string          `json:"id"`
	RoomID string          `json:"room_id"`
	Number int             `json:"number"`
	Tenant *Tenant         `json:"tenant,omitempty"`
	Notice *NoticeInterval `json:"notice,omitempty"`
}

// Status derives the legacy single-value encoding: notice wins over occupied,
// occupied requires a tenant, everything else is vacant.
func (s Space) Status() SpaceStatus {
	switch {
	case s.Notice != nil:
		return SpaceNotice
	case s.Tenant != nil:
		return SpaceOccupied
	default:
		return SpaceVacant
	}
}

type spaceAlias Space

// MarshalJSON emits the derived status alongside the orthogonal fields so the
// wire format stays compatible with the legacy single-status encoding.
func (s Space) MarshalJSON() ([]byte, error) {
	type payload struct {
		spaceAlias
		Status SpaceStatus `json:"status"`
	}
	return json.Marshal(payload{spaceAlias: spaceAlias(s), Status: s.Status()})
}

// UnmarshalJSON accepts and discards the legacy status field; tenant and
// notice presence are authoritative.
func (s *Space) UnmarshalJSON(data []byte) error {
	type payload struct {
		spaceAlias
		Status SpaceStatus `json:"status"`
	}
	var aux payload
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Space(aux.spaceAlias)
	return nil
}

// Tenant is a person registered to an address. While unplaced it lives in the
// address roster; once placed it is owned by exactly one space. SpaceID is a
// non-owning back-reference mirroring the owning space, nil while unassigned.
type Tenant struct {
	ID            string     `json:"id"`
	AddressID     string     `json:"address_id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Gender        Gender     `json:"gender"`
	BirthYear     int        `json:"birth_year"`
	CheckInDate   time.Time  `json:"check_in_date"`
	WorkStartDate *time.Time `json:"work_start_date,omitempty"`
	MonthlyPrice  float64    `json:"monthly_price"`
	SpaceID       *string    `json:"space_id,omitempty"`
	Photo         *string    `json:"photo,omitempty"`
}

// NoticeInterval ("wypowiedzenie") is a fixed eviction countdown attached to a
// space. GroupedWithAddress marks intervals created as a side effect of
// putting the whole address on notice; only those are cleared when the
// address-level notice is reverted.
type NoticeInterval struct {
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	PaidUntil          time.Time `json:"paid_until"`
	GroupedWithAddress bool      `json:"grouped_with_address"`
}

// EvictionArchiveEntry is the immutable record of a completed check-out. The
// archive is append-only and the sole authoritative trace of prior tenancy.
type EvictionArchiveEntry struct {
	TenantID     string         `json:"tenant_id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	ProjectID    string         `json:"project_id"`
	ProjectName  string         `json:"project_name"`
	AddressID    string         `json:"address_id"`
	AddressName  string         `json:"address_name"`
	CheckInDate  time.Time      `json:"check_in_date"`
	CheckOutDate time.Time      `json:"check_out_date"`
	Reason       CheckoutReason `json:"reason"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured for audit and rules.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
