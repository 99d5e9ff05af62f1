package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tenantcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*MemoryStore)(nil)

// MemoryStore provides an in-memory transactional store for the housing
// domain. Every transaction runs against a clone of the arena state; rules
// are evaluated on the mutated clone and a blocking violation or an operation
// error discards it, so a failed call never leaves partial writes behind.
type MemoryStore struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewMemoryStore constructs an in-memory store backed by the provided rules engine.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return &MemoryStore{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the store clock; intended for tests.
func (s *MemoryStore) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

func newID() string { return uuid.NewString() }

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

var _ domain.Transaction = (*Transaction)(nil)

func (tx *Transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// txView exposes a read-only materialised view of transactional state.
type txView struct {
	state *memoryState
}

var _ domain.TransactionView = txView{}

// ListProjects returns every project tree in insertion order.
func (v txView) ListProjects() []Project { return v.state.listProjects() }

// FindProject materialises a single project tree.
func (v txView) FindProject(id string) (Project, bool) { return v.state.projectTree(id) }

// FindAddress materialises a single address tree.
func (v txView) FindAddress(id string) (Address, bool) { return v.state.addressTree(id) }

// FindRoom materialises a single room with its spaces.
func (v txView) FindRoom(id string) (Room, bool) { return v.state.roomTree(id) }

// FindSpace materialises a space with its owned tenant attached.
func (v txView) FindSpace(id string) (Space, bool) { return v.state.spaceTree(id) }

// FindTenant returns a tenant by id regardless of placement.
func (v txView) FindTenant(id string) (Tenant, bool) {
	tenant, ok := v.state.tenants[id]
	if !ok {
		return Tenant{}, false
	}
	return cloneTenant(tenant), true
}

// Archive returns the append-only eviction log.
func (v txView) Archive() []EvictionArchiveEntry {
	return append([]EvictionArchiveEntry(nil), v.state.archive...)
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := txView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *MemoryStore) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(txView{state: &snapshot})
}

// ListProjects returns all project trees from committed state.
func (s *MemoryStore) ListProjects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.listProjects()
}

// GetProject materialises a project tree from committed state.
func (s *MemoryStore) GetProject(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.projectTree(id)
}

// GetAddress materialises an address tree from committed state.
func (s *MemoryStore) GetAddress(id string) (Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.addressTree(id)
}

// Archive returns the committed eviction archive.
func (s *MemoryStore) Archive() []EvictionArchiveEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]EvictionArchiveEntry(nil), s.state.archive...)
}

// ExportState returns a full snapshot of committed state.
func (s *MemoryStore) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.snapshot()
}

// ImportState replaces the committed state wholesale. Used by snapshot
// loaders and destructive imports.
func (s *MemoryStore) ImportState(snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
	return nil
}

// Project / address CRUD -----------------------------------------------------

// CreateProject stores a new project. Nested addresses, rooms, and tenants
// are created through their dedicated operations so every guard applies.
func (tx *Transaction) CreateProject(p Project) (Project, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	nested := p.Addresses
	tx.state.projects[p.ID] = projectState{project: cloneProject(p)}
	tx.state.projectOrder = append(tx.state.projectOrder, p.ID)
	for _, address := range nested {
		if _, err := tx.CreateAddress(p.ID, address); err != nil {
			return Project{}, err
		}
	}
	tx.recordChange(Change{Entity: EntityProject, Action: ActionCreate, After: cloneProject(p)})
	created, _ := tx.state.projectTree(p.ID)
	return created, nil
}

// UpdateProject mutates a project's scalar fields.
func (tx *Transaction) UpdateProject(id string, mutator func(*Project) error) (Project, error) {
	rec, ok := tx.state.projects[id]
	if !ok {
		return Project{}, domain.NotFoundError{Entity: EntityProject, ID: id}
	}
	before := cloneProject(rec.project)
	current := cloneProject(rec.project)
	if err := mutator(&current); err != nil {
		return Project{}, err
	}
	current.ID = id
	current.Addresses = nil
	rec.project = current
	tx.state.projects[id] = rec
	tx.recordChange(Change{Entity: EntityProject, Action: ActionUpdate, Before: before, After: cloneProject(current)})
	updated, _ := tx.state.projectTree(id)
	return updated, nil
}

// DeleteProject removes a project and cascades through all of its addresses.
func (tx *Transaction) DeleteProject(id string) error {
	rec, ok := tx.state.projects[id]
	if !ok {
		return domain.NotFoundError{Entity: EntityProject, ID: id}
	}
	for _, addressID := range append([]string(nil), rec.addressIDs...) {
		if err := tx.DeleteAddress(addressID); err != nil {
			return err
		}
	}
	delete(tx.state.projects, id)
	tx.state.projectOrder = remove(tx.state.projectOrder, id)
	tx.recordChange(Change{Entity: EntityProject, Action: ActionDelete, Before: cloneProject(rec.project)})
	return nil
}

// CreateAddress stores a new address under the given project. Defaults are
// applied: status active, eviction period 14 days when unset.
func (tx *Transaction) CreateAddress(projectID string, a Address) (Address, error) {
	project, ok := tx.state.projects[projectID]
	if !ok {
		return Address{}, domain.NotFoundError{Entity: EntityProject, ID: projectID}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	a.ProjectID = projectID
	if a.Status == "" {
		a.Status = domain.AddressActive
	}
	if a.EvictionPeriodDays <= 0 {
		a.EvictionPeriodDays = domain.DefaultEvictionPeriodDays
	}
	rooms := a.Rooms
	roster := a.UnassignedTenants
	tx.state.addresses[a.ID] = addressState{address: cloneAddress(a)}
	project.addressIDs = append(project.addressIDs, a.ID)
	tx.state.projects[projectID] = project
	for _, room := range rooms {
		if _, err := tx.AddRoom(a.ID, room); err != nil {
			return Address{}, err
		}
	}
	for _, tenant := range roster {
		if _, err := tx.AddTenant(a.ID, tenant); err != nil {
			return Address{}, err
		}
	}
	tx.recordChange(Change{Entity: EntityAddress, Action: ActionCreate, After: cloneAddress(a)})
	created, _ := tx.state.addressTree(a.ID)
	return created, nil
}

// UpdateAddress mutates an address's scalar fields.
func (tx *Transaction) UpdateAddress(id string, mutator func(*Address) error) (Address, error) {
	rec, ok := tx.state.addresses[id]
	if !ok {
		return Address{}, domain.NotFoundError{Entity: EntityAddress, ID: id}
	}
	before := cloneAddress(rec.address)
	current := cloneAddress(rec.address)
	if err := mutator(&current); err != nil {
		return Address{}, err
	}
	current.ID = id
	current.ProjectID = rec.address.ProjectID
	current.Rooms = nil
	current.UnassignedTenants = nil
	rec.address = current
	tx.state.addresses[id] = rec
	tx.recordChange(Change{Entity: EntityAddress, Action: ActionUpdate, Before: before, After: cloneAddress(current)})
	updated, _ := tx.state.addressTree(id)
	return updated, nil
}

// DeleteAddress removes an address unconditionally, cascading rooms, spaces,
// and every tenant registered there. The "are you sure" guard for unassigned
// tenants is a presentation concern, not a store invariant.
func (tx *Transaction) DeleteAddress(id string) error {
	rec, ok := tx.state.addresses[id]
	if !ok {
		return domain.NotFoundError{Entity: EntityAddress, ID: id}
	}
	for _, roomID := range rec.roomIDs {
		room := tx.state.rooms[roomID]
		for _, spaceID := range room.spaceIDs {
			if sp, ok := tx.state.spaces[spaceID]; ok && sp.tenantID != "" {
				delete(tx.state.tenants, sp.tenantID)
			}
			delete(tx.state.spaces, spaceID)
		}
		delete(tx.state.rooms, roomID)
	}
	for _, tenantID := range rec.roster {
		delete(tx.state.tenants, tenantID)
	}
	if project, ok := tx.state.projects[rec.address.ProjectID]; ok {
		project.addressIDs = remove(project.addressIDs, id)
		tx.state.projects[rec.address.ProjectID] = project
	}
	delete(tx.state.addresses, id)
	tx.recordChange(Change{Entity: EntityAddress, Action: ActionDelete, Before: cloneAddress(rec.address)})
	return nil
}

// Finds ----------------------------------------------------------------------

// FindProject materialises a project tree within the transaction.
func (tx *Transaction) FindProject(id string) (Project, bool) { return tx.state.projectTree(id) }

// FindAddress materialises an address tree within the transaction.
func (tx *Transaction) FindAddress(id string) (Address, bool) { return tx.state.addressTree(id) }

// FindRoom materialises a room within the transaction.
func (tx *Transaction) FindRoom(id string) (Room, bool) { return tx.state.roomTree(id) }

// FindSpace materialises a space within the transaction.
func (tx *Transaction) FindSpace(id string) (Space, bool) { return tx.state.spaceTree(id) }

// FindTenant returns a tenant by id within the transaction.
func (tx *Transaction) FindTenant(id string) (Tenant, bool) {
	tenant, ok := tx.state.tenants[id]
	if !ok {
		return Tenant{}, false
	}
	return cloneTenant(tenant), true
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
