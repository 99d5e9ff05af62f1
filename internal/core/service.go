package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tenantcore/pkg/domain"
)

// Service exposes higher-level transactional operations over a persistent
// store, wrapping each one with audit, metrics, and tracing hooks.
type Service struct {
	store   domain.PersistentStore
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	logger  *zap.Logger
	nowFn   func() time.Time
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithAuditRecorder attaches an audit sink.
func WithAuditRecorder(rec AuditRecorder) ServiceOption {
	return func(s *Service) { s.audit = rec }
}

// WithMetricsRecorder attaches a metrics sink.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tracer }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the service clock; intended for tests.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) { s.nowFn = fn }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: zap.NewNop(),
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// observe wraps a service operation with tracing, metrics, and audit.
// entityID is read after fn so created ids are captured.
func (s *Service) observe(ctx context.Context, op string, entity EntityType, entityID func() string, fn func(context.Context) error) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, op)
	}
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if span != nil {
		span.End(err)
	}
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, elapsed)
	}
	if s.audit != nil {
		entry := AuditEntry{
			ID:         newID(),
			Operation:  op,
			Status:     AuditStatusSuccess,
			Entity:     entity,
			OccurredAt: s.nowFn(),
		}
		if entityID != nil {
			entry.EntityID = entityID()
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.Debug("operation failed", zap.String("operation", op), zap.Error(err))
	}
	return err
}

// Projects --------------------------------------------------------------------

// CreateProject persists a new project.
func (s *Service) CreateProject(ctx context.Context, project Project) (Project, Result, error) {
	var created Project
	var res Result
	err := s.observe(ctx, "create_project", EntityProject, func() string { return created.ID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateProject(project)
			return err
		})
		return err
	})
	return created, res, err
}

// UpdateProject mutates a project's scalar fields.
func (s *Service) UpdateProject(ctx context.Context, id string, mutator func(*Project) error) (Project, Result, error) {
	var updated Project
	var res Result
	err := s.observe(ctx, "update_project", EntityProject, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateProject(id, mutator)
			return err
		})
		return err
	})
	return updated, res, err
}

// DeleteProject removes a project and everything under it.
func (s *Service) DeleteProject(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_project", EntityProject, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteProject(id)
		})
		return err
	})
	return res, err
}

// Addresses -------------------------------------------------------------------

// CreateAddress persists a new address under a project.
func (s *Service) CreateAddress(ctx context.Context, projectID string, address Address) (Address, Result, error) {
	var created Address
	var res Result
	err := s.observe(ctx, "create_address", EntityAddress, func() string { return created.ID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateAddress(projectID, address)
			return err
		})
		return err
	})
	return created, res, err
}

// UpdateAddress mutates an address's scalar fields.
func (s *Service) UpdateAddress(ctx context.Context, id string, mutator func(*Address) error) (Address, Result, error) {
	var updated Address
	var res Result
	err := s.observe(ctx, "update_address", EntityAddress, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateAddress(id, mutator)
			return err
		})
		return err
	})
	return updated, res, err
}

// DeleteAddress removes an address and everything under it.
func (s *Service) DeleteAddress(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_address", EntityAddress, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteAddress(id)
		})
		return err
	})
	return res, err
}

// Rooms and spaces ------------------------------------------------------------

// AddRoom creates a room with generated vacant spaces.
func (s *Service) AddRoom(ctx context.Context, addressID string, room Room) (Room, Result, error) {
	var created Room
	var res Result
	err := s.observe(ctx, "add_room", EntityRoom, func() string { return created.ID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.AddRoom(addressID, room)
			return err
		})
		return err
	})
	return created, res, err
}

// ResizeRoom grows or shrinks a room's space count.
func (s *Service) ResizeRoom(ctx context.Context, roomID string, newTotal int) (Room, Result, error) {
	var resized Room
	var res Result
	err := s.observe(ctx, "resize_room", EntityRoom, func() string { return roomID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			resized, err = tx.ResizeRoom(roomID, newTotal)
			return err
		})
		return err
	})
	return resized, res, err
}

// DeleteRoom removes a room; blocked while any space is occupied.
func (s *Service) DeleteRoom(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_room", EntityRoom, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteRoom(id)
		})
		return err
	})
	return res, err
}

// DeleteSpace removes a single vacant space.
func (s *Service) DeleteSpace(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_space", EntitySpace, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteSpace(id)
		})
		return err
	})
	return res, err
}

// Tenants ---------------------------------------------------------------------

// AddTenant registers a tenant on an address roster.
func (s *Service) AddTenant(ctx context.Context, addressID string, tenant Tenant) (Tenant, Result, error) {
	var created Tenant
	var res Result
	err := s.observe(ctx, "add_tenant", EntityTenant, func() string { return created.ID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.AddTenant(addressID, tenant)
			return err
		})
		return err
	})
	return created, res, err
}

// AssignTenant places a tenant into the first free space of the room. The
// boolean reports whether a space was found; a full room is not an error.
func (s *Service) AssignTenant(ctx context.Context, roomID, tenantID string) (Tenant, bool, Result, error) {
	var tenant Tenant
	var assigned bool
	var res Result
	err := s.observe(ctx, "assign_tenant", EntityTenant, func() string { return tenantID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			tenant, assigned, err = tx.AssignTenant(roomID, tenantID)
			return err
		})
		return err
	})
	return tenant, assigned, res, err
}

// DeleteTenant removes a tenant record without archiving.
func (s *Service) DeleteTenant(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.observe(ctx, "delete_tenant", EntityTenant, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteTenant(id)
		})
		return err
	})
	return res, err
}

// CheckOutTenant completes a tenancy and appends an eviction archive entry.
func (s *Service) CheckOutTenant(ctx context.Context, id string, checkOut time.Time, reason CheckoutReason) (EvictionArchiveEntry, Result, error) {
	var entry EvictionArchiveEntry
	var res Result
	err := s.observe(ctx, "check_out_tenant", EntityTenant, func() string { return id }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			entry, err = tx.CheckOutTenant(id, checkOut, reason)
			return err
		})
		return err
	})
	return entry, res, err
}

// Notices ---------------------------------------------------------------------

// PutSpaceOnNotice starts an individual eviction countdown on a space.
func (s *Service) PutSpaceOnNotice(ctx context.Context, spaceID string, periodDays int) (Space, Result, error) {
	var space Space
	var res Result
	err := s.observe(ctx, "put_space_on_notice", EntitySpace, func() string { return spaceID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			space, err = tx.PutSpaceOnNotice(spaceID, periodDays)
			return err
		})
		return err
	})
	return space, res, err
}

// RemoveSpaceFromNotice clears a space countdown.
func (s *Service) RemoveSpaceFromNotice(ctx context.Context, spaceID string) (Space, Result, error) {
	var space Space
	var res Result
	err := s.observe(ctx, "remove_space_from_notice", EntitySpace, func() string { return spaceID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			space, err = tx.RemoveSpaceFromNotice(spaceID)
			return err
		})
		return err
	})
	return space, res, err
}

// PutAddressOnNotice winds down a whole building.
func (s *Service) PutAddressOnNotice(ctx context.Context, addressID string) (Address, Result, error) {
	var address Address
	var res Result
	err := s.observe(ctx, "put_address_on_notice", EntityAddress, func() string { return addressID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			address, err = tx.PutAddressOnNotice(addressID)
			return err
		})
		return err
	})
	return address, res, err
}

// RemoveAddressFromNotice reverts an address-level notice, executing grouped
// evictions.
func (s *Service) RemoveAddressFromNotice(ctx context.Context, addressID string) (Address, Result, error) {
	var address Address
	var res Result
	err := s.observe(ctx, "remove_address_from_notice", EntityAddress, func() string { return addressID }, func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			address, err = tx.RemoveAddressFromNotice(addressID)
			return err
		})
		return err
	})
	return address, res, err
}

// Queries ---------------------------------------------------------------------

// ListProjects returns every project tree.
func (s *Service) ListProjects(ctx context.Context) []Project {
	return s.store.ListProjects()
}

// GetProject returns a single project tree.
func (s *Service) GetProject(ctx context.Context, id string) (Project, bool) {
	return s.store.GetProject(id)
}

// GetAddress returns a single address tree.
func (s *Service) GetAddress(ctx context.Context, id string) (Address, bool) {
	return s.store.GetAddress(id)
}

// Archive returns the eviction archive.
func (s *Service) Archive(ctx context.Context) []EvictionArchiveEntry {
	return s.store.Archive()
}

// ProjectStats aggregates occupancy and conflict counts for a project.
func (s *Service) ProjectStats(ctx context.Context, projectID string) (domain.ProjectStats, error) {
	project, ok := s.store.GetProject(projectID)
	if !ok {
		return domain.ProjectStats{}, domain.NotFoundError{Entity: EntityProject, ID: projectID}
	}
	return domain.ComputeProjectStats(project, s.nowFn()), nil
}

// Conflicts detects attention-required situations within a project.
func (s *Service) Conflicts(ctx context.Context, projectID string) ([]domain.Conflict, error) {
	project, ok := s.store.GetProject(projectID)
	if !ok {
		return nil, domain.NotFoundError{Entity: EntityProject, ID: projectID}
	}
	return domain.DetectConflicts(project, s.nowFn()), nil
}

// Export wraps the full persisted state in the interchange envelope.
func (s *Service) Export(ctx context.Context) (domain.ExportDocument, error) {
	var doc domain.ExportDocument
	err := s.observe(ctx, "export_state", "", nil, func(ctx context.Context) error {
		doc = domain.NewExportDocument(s.store.ExportState(), s.nowFn())
		return nil
	})
	return doc, err
}

// Import validates an interchange document and replaces the persisted state
// wholesale. A structurally invalid payload leaves existing data untouched.
func (s *Service) Import(ctx context.Context, data []byte) error {
	return s.observe(ctx, "import_state", "", nil, func(ctx context.Context) error {
		doc, err := domain.ParseExportDocument(data)
		if err != nil {
			return err
		}
		return s.store.ImportState(doc.Snapshot())
	})
}
