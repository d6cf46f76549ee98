package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"backend/internal/model"
	"backend/internal/repository"
)

// --- Mock TransactionManager ---

type mockTxManager struct{}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Mock AuditRepository ---

type mockAuditRepo struct {
	entries []model.AuditLog
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{}
}

func (m *mockAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, limit, offset int) ([]model.AuditLog, int64, error) {
	total := int64(len(m.entries))
	if offset >= len(m.entries) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.entries) {
		end = len(m.entries)
	}
	return m.entries[offset:end], total, nil
}

// --- Mock LocationRepository ---

// mockLocationRepo mirrors the store contract in memory, including the
// set-reconciliation behavior of upserts and the unique constraints.
type mockLocationRepo struct {
	nextID      int64
	nextAliasID int64
	locations   map[int64]*model.Location
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{
		nextID:      1,
		nextAliasID: 1,
		locations:   make(map[int64]*model.Location),
	}
}

func (m *mockLocationRepo) findByCode(code string) *model.Location {
	for _, loc := range m.locations {
		if loc.Code == code {
			return loc
		}
	}
	return nil
}

func copyLocation(loc *model.Location) *model.Location {
	out := *loc
	if loc.Address != nil {
		addr := *loc.Address
		out.Address = &addr
	}
	out.Aliases = append([]model.LocationAlias(nil), loc.Aliases...)
	out.Clients = append([]model.LocationClient(nil), loc.Clients...)
	return &out
}

func (m *mockLocationRepo) Upsert(_ context.Context, params repository.UpsertParams) (*model.Location, error) {
	for _, other := range m.locations {
		if other.OfficialName == params.OfficialName && other.Code != params.Code {
			return nil, fmt.Errorf("duplicate key value violates unique constraint %q", "idx_locations_official_name")
		}
	}

	loc := m.findByCode(params.Code)
	if loc == nil {
		loc = &model.Location{
			ID:        m.nextID,
			Code:      params.Code,
			CreatedAt: time.Now(),
		}
		m.nextID++
		m.locations[loc.ID] = loc
	}
	loc.OfficialName = params.OfficialName
	loc.Type = params.Type
	loc.Active = params.Active
	loc.IsGlobal = params.IsGlobal
	loc.UpdatedAt = time.Now()

	if params.Address != nil {
		m.applyAddress(loc, *params.Address, true)
	}
	m.reconcileAliases(loc, params.Aliases)
	m.reconcileClients(loc, params.Clients)

	return copyLocation(loc), nil
}

func (m *mockLocationRepo) applyAddress(loc *model.Location, in repository.AddressInput, overwriteAll bool) {
	if loc.Address == nil {
		loc.Address = &model.Address{LocationID: loc.ID, CreatedAt: time.Now()}
		overwriteAll = true
	}
	addr := loc.Address
	if overwriteAll || in.Street != nil {
		addr.Street = in.Street
	}
	if overwriteAll || in.Neighborhood != nil {
		addr.Neighborhood = in.Neighborhood
	}
	if overwriteAll || in.City != nil {
		addr.City = in.City
	}
	if overwriteAll || in.State != nil {
		addr.State = in.State
	}
	if overwriteAll || in.PostalCode != nil {
		addr.PostalCode = in.PostalCode
	}
	if overwriteAll || in.Lat != nil {
		addr.Lat = in.Lat
	}
	if overwriteAll || in.Lng != nil {
		addr.Lng = in.Lng
	}
	if overwriteAll || in.Reference != nil {
		addr.Reference = in.Reference
	}
	addr.UpdatedAt = time.Now()
}

func (m *mockLocationRepo) reconcileAliases(loc *model.Location, target []string) {
	targetSet := make(map[string]struct{}, len(target))
	for _, alias := range target {
		if alias != "" {
			targetSet[alias] = struct{}{}
		}
	}

	kept := loc.Aliases[:0]
	existing := make(map[string]struct{})
	for _, row := range loc.Aliases {
		if _, keep := targetSet[row.Alias]; keep {
			kept = append(kept, row)
			existing[row.Alias] = struct{}{}
		}
	}
	for alias := range targetSet {
		if _, present := existing[alias]; present {
			continue
		}
		kept = append(kept, model.LocationAlias{
			ID:         m.nextAliasID,
			LocationID: loc.ID,
			Alias:      alias,
			CreatedAt:  time.Now(),
		})
		m.nextAliasID++
	}
	loc.Aliases = kept
}

func (m *mockLocationRepo) reconcileClients(loc *model.Location, target []repository.ClientKey) {
	targetSet := make(map[repository.ClientKey]struct{}, len(target))
	for _, key := range target {
		targetSet[key] = struct{}{}
	}

	kept := loc.Clients[:0]
	existing := make(map[repository.ClientKey]struct{})
	for _, row := range loc.Clients {
		key := repository.ClientKey{Source: row.ClientSource, ExternalID: row.ClientExternalID, Role: row.Role}
		if _, keep := targetSet[key]; keep {
			kept = append(kept, row)
			existing[key] = struct{}{}
		}
	}
	for key := range targetSet {
		if _, present := existing[key]; present {
			continue
		}
		kept = append(kept, model.LocationClient{
			LocationID:       loc.ID,
			ClientSource:     key.Source,
			ClientExternalID: key.ExternalID,
			Role:             key.Role,
			CreatedAt:        time.Now(),
		})
	}
	loc.Clients = kept
}

func (m *mockLocationRepo) FindByID(_ context.Context, id int64) (*model.Location, error) {
	loc, ok := m.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyLocation(loc), nil
}

func (m *mockLocationRepo) List(_ context.Context, filters repository.LocationFilters, page repository.Pagination) ([]model.Location, int64, error) {
	var matched []model.Location
	for _, loc := range m.locations {
		if filters.Type != "" && loc.Type != filters.Type {
			continue
		}
		if filters.Active != nil && loc.Active != *filters.Active {
			continue
		}
		if filters.ClientSource != "" || filters.ClientExternalID != "" {
			if !loc.IsGlobal && !matchesClient(loc, filters) {
				continue
			}
		}
		matched = append(matched, *copyLocation(loc))
	}
	total := int64(len(matched))
	if page.Offset >= len(matched) {
		return nil, total, nil
	}
	end := page.Offset + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[page.Offset:end], total, nil
}

func matchesClient(loc *model.Location, filters repository.LocationFilters) bool {
	for _, client := range loc.Clients {
		if filters.ClientSource != "" && client.ClientSource != filters.ClientSource {
			continue
		}
		if filters.ClientExternalID != "" && client.ClientExternalID != filters.ClientExternalID {
			continue
		}
		return true
	}
	return false
}

func (m *mockLocationRepo) UpdateFields(_ context.Context, id int64, updates repository.FieldUpdates) (*model.Location, error) {
	loc, ok := m.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if updates.OfficialName != nil {
		loc.OfficialName = *updates.OfficialName
	}
	if updates.Code != nil {
		loc.Code = *updates.Code
	}
	if updates.Type != nil {
		loc.Type = *updates.Type
	}
	if updates.Active != nil {
		loc.Active = *updates.Active
	}
	if updates.IsGlobal != nil {
		loc.IsGlobal = *updates.IsGlobal
	}
	loc.UpdatedAt = time.Now()
	return copyLocation(loc), nil
}

func (m *mockLocationRepo) UpdateAddress(_ context.Context, id int64, address repository.AddressInput) (*model.Location, error) {
	loc, ok := m.locations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.applyAddress(loc, address, false)
	return copyLocation(loc), nil
}

func (m *mockLocationRepo) AddAlias(_ context.Context, locationID int64, alias string) (*model.LocationAlias, error) {
	loc, ok := m.locations[locationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range loc.Aliases {
		if loc.Aliases[i].Alias == alias {
			existing := loc.Aliases[i]
			return &existing, nil
		}
	}
	created := model.LocationAlias{
		ID:         m.nextAliasID,
		LocationID: locationID,
		Alias:      alias,
		CreatedAt:  time.Now(),
	}
	m.nextAliasID++
	loc.Aliases = append(loc.Aliases, created)
	return &created, nil
}

func (m *mockLocationRepo) RemoveAlias(_ context.Context, locationID, aliasID int64) error {
	loc, ok := m.locations[locationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range loc.Aliases {
		if loc.Aliases[i].ID == aliasID {
			loc.Aliases = append(loc.Aliases[:i], loc.Aliases[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) AddClient(_ context.Context, locationID int64, key repository.ClientKey) (*model.LocationClient, error) {
	loc, ok := m.locations[locationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range loc.Clients {
		row := loc.Clients[i]
		if row.ClientSource == key.Source && row.ClientExternalID == key.ExternalID && row.Role == key.Role {
			return &row, nil
		}
	}
	created := model.LocationClient{
		LocationID:       locationID,
		ClientSource:     key.Source,
		ClientExternalID: key.ExternalID,
		Role:             key.Role,
		CreatedAt:        time.Now(),
	}
	loc.Clients = append(loc.Clients, created)
	return &created, nil
}

func (m *mockLocationRepo) RemoveClient(_ context.Context, locationID int64, key repository.ClientKey) error {
	loc, ok := m.locations[locationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range loc.Clients {
		row := loc.Clients[i]
		if row.ClientSource == key.Source && row.ClientExternalID == key.ExternalID && row.Role == key.Role {
			loc.Clients = append(loc.Clients[:i], loc.Clients[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockLocationRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := m.locations[id]; !ok {
		return false, nil
	}
	delete(m.locations, id)
	return true, nil
}
