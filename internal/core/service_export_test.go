package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenantcore/pkg/domain"
)

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewInMemoryService(nil, WithClock(func() time.Time { return now }))

	project, _, err := svc.CreateProject(ctx, domain.Project{Name: "Central"})
	require.NoError(t, err)
	address, _, err := svc.CreateAddress(ctx, project.ID, domain.Address{Name: "Main St 5", TotalSpaces: 2})
	require.NoError(t, err)
	room, _, err := svc.AddRoom(ctx, address.ID, domain.Room{Name: "101", Type: domain.RoomCouple, TotalSpaces: 2})
	require.NoError(t, err)
	tenant, _, err := svc.AddTenant(ctx, address.ID, domain.Tenant{FirstName: "Jan", LastName: "Kowalski"})
	require.NoError(t, err)
	_, assigned, _, err := svc.AssignTenant(ctx, room.ID, tenant.ID)
	require.NoError(t, err)
	require.True(t, assigned)
	_, _, err = svc.CheckOutTenant(ctx, tenant.ID, now, domain.ReasonRelocation)
	require.NoError(t, err)

	doc, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ExportVersion, doc.Version)
	assert.Equal(t, now, doc.ExportDate)
	require.Len(t, doc.Projects, 1)
	require.Len(t, doc.EvictionArchive, 1)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	fresh := NewInMemoryService(nil)
	require.NoError(t, fresh.Import(ctx, data))

	restored, ok := fresh.GetProject(ctx, project.ID)
	require.True(t, ok)
	assert.Equal(t, "Central", restored.Name)
	require.Len(t, fresh.Archive(ctx), 1)
	assert.Equal(t, domain.ReasonRelocation, fresh.Archive(ctx)[0].Reason)
}

func TestServiceImportInvalidLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(nil)

	project, _, err := svc.CreateProject(ctx, domain.Project{Name: "Central"})
	require.NoError(t, err)

	err = svc.Import(ctx, []byte(`{"version":"1.0"}`))
	var invalid domain.InvalidImportError
	require.ErrorAs(t, err, &invalid)

	_, ok := svc.GetProject(ctx, project.ID)
	assert.True(t, ok, "failed import must not clear existing data")
}

func TestServiceImportReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(nil)

	stale, _, err := svc.CreateProject(ctx, domain.Project{Name: "Old"})
	require.NoError(t, err)

	doc := domain.NewExportDocument(domain.Snapshot{
		Projects: []domain.Project{{ID: "p-new", Name: "New"}},
	}, time.Now().UTC())
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, svc.Import(ctx, data))

	_, ok := svc.GetProject(ctx, stale.ID)
	assert.False(t, ok, "import replaces, never merges")
	_, ok = svc.GetProject(ctx, "p-new")
	assert.True(t, ok)
}
