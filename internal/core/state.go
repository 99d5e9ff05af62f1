package core

// The store keeps the tree flattened into arena maps keyed by id, with
// parent-id back-references on the entities and ordered child-id slices
// preserving the owning-collection order. Nested trees are materialised only
// at the query/serialisation boundary.

type projectState struct {
	project    Project // Addresses always nil in the arena
	addressIDs []string
}

type addressState struct {
	address Address // Rooms and UnassignedTenants always nil in the arena
	roomIDs []string
	roster  []string // unassigned tenant ids, insertion order
}

type roomState struct {
	room     Room // Spaces always nil in the arena
	spaceIDs []string
}

type spaceState struct {
	space    Space  // Tenant always nil in the arena
	tenantID string // owning tenant id, "" when no tenant
}

type memoryState struct {
	projectOrder []string
	projects     map[string]projectState
	addresses    map[string]addressState
	rooms        map[string]roomState
	spaces       map[string]spaceState
	tenants      map[string]Tenant
	archive      []EvictionArchiveEntry
}

func newMemoryState() memoryState {
	return memoryState{
		projects:  make(map[string]projectState),
		addresses: make(map[string]addressState),
		rooms:     make(map[string]roomState),
		spaces:    make(map[string]spaceState),
		tenants:   make(map[string]Tenant),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	cloned.projectOrder = append([]string(nil), s.projectOrder...)
	for k, v := range s.projects {
		cloned.projects[k] = projectState{
			project:    cloneProject(v.project),
			addressIDs: append([]string(nil), v.addressIDs...),
		}
	}
	for k, v := range s.addresses {
		cloned.addresses[k] = addressState{
			address: cloneAddress(v.address),
			roomIDs: append([]string(nil), v.roomIDs...),
			roster:  append([]string(nil), v.roster...),
		}
	}
	for k, v := range s.rooms {
		cloned.rooms[k] = roomState{
			room:     v.room,
			spaceIDs: append([]string(nil), v.spaceIDs...),
		}
	}
	for k, v := range s.spaces {
		cloned.spaces[k] = spaceState{space: cloneSpace(v.space), tenantID: v.tenantID}
	}
	for k, v := range s.tenants {
		cloned.tenants[k] = cloneTenant(v)
	}
	cloned.archive = append([]EvictionArchiveEntry(nil), s.archive...)
	return cloned
}

func cloneProject(p Project) Project {
	cp := p
	cp.Addresses = nil
	cp.City = clonePtr(p.City)
	return cp
}

func cloneAddress(a Address) Address {
	cp := a
	cp.Rooms = nil
	cp.UnassignedTenants = nil
	cp.NoticeStart = clonePtr(a.NoticeStart)
	cp.Photos = append([]Photo(nil), a.Photos...)
	return cp
}

func cloneSpace(s Space) Space {
	cp := s
	cp.Tenant = nil
	cp.Notice = clonePtr(s.Notice)
	return cp
}

func cloneTenant(t Tenant) Tenant {
	cp := t
	cp.WorkStartDate = clonePtr(t.WorkStartDate)
	cp.SpaceID = clonePtr(t.SpaceID)
	cp.Photo = clonePtr(t.Photo)
	return cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Materialisation ------------------------------------------------------------

func (s memoryState) spaceTree(id string) (Space, bool) {
	st, ok := s.spaces[id]
	if !ok {
		return Space{}, false
	}
	space := cloneSpace(st.space)
	if st.tenantID != "" {
		if tenant, ok := s.tenants[st.tenantID]; ok {
			owned := cloneTenant(tenant)
			space.Tenant = &owned
		}
	}
	return space, true
}

func (s memoryState) roomTree(id string) (Room, bool) {
	st, ok := s.rooms[id]
	if !ok {
		return Room{}, false
	}
	room := st.room
	room.Spaces = make([]Space, 0, len(st.spaceIDs))
	for _, spaceID := range st.spaceIDs {
		if space, ok := s.spaceTree(spaceID); ok {
			room.Spaces = append(room.Spaces, space)
		}
	}
	return room, true
}

func (s memoryState) addressTree(id string) (Address, bool) {
	st, ok := s.addresses[id]
	if !ok {
		return Address{}, false
	}
	address := cloneAddress(st.address)
	address.Rooms = make([]Room, 0, len(st.roomIDs))
	for _, roomID := range st.roomIDs {
		if room, ok := s.roomTree(roomID); ok {
			address.Rooms = append(address.Rooms, room)
		}
	}
	address.UnassignedTenants = make([]Tenant, 0, len(st.roster))
	for _, tenantID := range st.roster {
		if tenant, ok := s.tenants[tenantID]; ok {
			address.UnassignedTenants = append(address.UnassignedTenants, cloneTenant(tenant))
		}
	}
	return address, true
}

func (s memoryState) projectTree(id string) (Project, bool) {
	st, ok := s.projects[id]
	if !ok {
		return Project{}, false
	}
	project := cloneProject(st.project)
	project.Addresses = make([]Address, 0, len(st.addressIDs))
	for _, addressID := range st.addressIDs {
		if address, ok := s.addressTree(addressID); ok {
			project.Addresses = append(project.Addresses, address)
		}
	}
	return project, true
}

func (s memoryState) listProjects() []Project {
	out := make([]Project, 0, len(s.projectOrder))
	for _, id := range s.projectOrder {
		if project, ok := s.projectTree(id); ok {
			out = append(out, project)
		}
	}
	return out
}

// Decomposition --------------------------------------------------------------

// stateFromSnapshot flattens nested project trees into the arena. Back-
// references present in the payload are preserved as-is so defensive conflict
// detection still sees unset pointers.
func stateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for _, project := range snapshot.Projects {
		ps := projectState{project: cloneProject(project)}
		for _, address := range project.Addresses {
			as := addressState{address: cloneAddress(address)}
			as.address.ProjectID = project.ID
			for _, room := range address.Rooms {
				rs := roomState{room: room}
				rs.room.Spaces = nil
				rs.room.AddressID = address.ID
				for _, space := range room.Spaces {
					ss := spaceState{space: cloneSpace(space)}
					ss.space.RoomID = room.ID
					if space.Tenant != nil {
						tenant := cloneTenant(*space.Tenant)
						tenant.AddressID = address.ID
						state.tenants[tenant.ID] = tenant
						ss.tenantID = tenant.ID
					}
					state.spaces[space.ID] = ss
					rs.spaceIDs = append(rs.spaceIDs, space.ID)
				}
				state.rooms[room.ID] = rs
				as.roomIDs = append(as.roomIDs, room.ID)
			}
			for _, tenant := range address.UnassignedTenants {
				unplaced := cloneTenant(tenant)
				unplaced.AddressID = address.ID
				state.tenants[tenant.ID] = unplaced
				as.roster = append(as.roster, tenant.ID)
			}
			state.addresses[address.ID] = as
			ps.addressIDs = append(ps.addressIDs, address.ID)
		}
		state.projects[project.ID] = ps
		state.projectOrder = append(state.projectOrder, project.ID)
	}
	state.archive = append([]EvictionArchiveEntry(nil), snapshot.Archive...)
	return state
}

func (s memoryState) snapshot() Snapshot {
	return Snapshot{
		Projects: s.listProjects(),
		Archive:  append([]EvictionArchiveEntry(nil), s.archive...),
	}
}
