package domain

import (
	"context"
	"time"
)

// Persistence bucket keys shared by every snapshot backend: SQLite/Postgres
// rows, blob object keys, and the legacy storage collaborator.
const (
	// BucketProjects holds the JSON array of full project trees.
	BucketProjects = "housing_management_data"
	// BucketArchive holds the append-only eviction archive JSON array.
	BucketArchive = "eviction_archive"
)

// Snapshot captures the whole persisted state: every project tree plus the
// eviction archive. The unit of persistence is all projects; writers must
// re-read before mutating or risk last-write-wins data loss.
type Snapshot struct {
	Projects []Project              `json:"projects"`
	Archive  []EvictionArchiveEntry `json:"eviction_archive"`
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Child collections are managed through
// the dedicated operations; Update mutators only touch scalar fields.
type Transaction interface {
	CreateProject(Project) (Project, error)
	UpdateProject(id string, mutator func(*Project) error) (Project, error)
	DeleteProject(id string) error

	CreateAddress(projectID string, address Address) (Address, error)
	UpdateAddress(id string, mutator func(*Address) error) (Address, error)
	DeleteAddress(id string) error

	AddRoom(addressID string, room Room) (Room, error)
	ResizeRoom(roomID string, newTotal int) (Room, error)
	DeleteRoom(id string) error
	DeleteSpace(id string) error

	AddTenant(addressID string, tenant Tenant) (Tenant, error)
	AssignTenant(roomID, tenantID string) (Tenant, bool, error)
	DeleteTenant(id string) error
	CheckOutTenant(id string, checkOut time.Time, reason CheckoutReason) (EvictionArchiveEntry, error)

	PutSpaceOnNotice(spaceID string, periodDays int) (Space, error)
	RemoveSpaceFromNotice(spaceID string) (Space, error)
	PutAddressOnNotice(addressID string) (Address, error)
	RemoveAddressFromNotice(addressID string) (Address, error)

	FindProject(id string) (Project, bool)
	FindAddress(id string) (Address, bool)
	FindRoom(id string) (Room, bool)
	FindSpace(id string) (Space, bool)
	FindTenant(id string) (Tenant, bool)
}

// TransactionView provides read-only access to materialised snapshot data.
type TransactionView interface {
	RuleView
	FindAddress(id string) (Address, bool)
	FindRoom(id string) (Room, bool)
	FindSpace(id string) (Space, bool)
	FindTenant(id string) (Tenant, bool)
	Archive() []EvictionArchiveEntry
}

// PersistentStore is a minimal abstraction over durable snapshot backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ListProjects() []Project
	GetProject(id string) (Project, bool)
	GetAddress(id string) (Address, bool)
	Archive() []EvictionArchiveEntry
	ExportState() Snapshot
	ImportState(Snapshot) error
}
