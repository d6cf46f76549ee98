package repository

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"

	"gorm.io/gorm"
)

// AddressInput carries address fields for create-or-overwrite writes.
// Nil fields mean NULL when overwriteAll is set, "leave untouched" otherwise.
type AddressInput struct {
	Street       *string
	Neighborhood *string
	City         *string
	State        *string
	PostalCode   *string
	Lat          *float64
	Lng          *float64
	Reference    *string
}

// ClientKey identifies a client link within a location (the 4-tuple minus the location id).
type ClientKey struct {
	Source     string
	ExternalID string
	Role       string
}

// UpsertParams is the full-replace payload keyed by Code.
// Address == nil leaves any existing address untouched; Aliases and Clients
// always replace the persisted sets.
type UpsertParams struct {
	OfficialName string
	Code         string
	Type         string
	Active       bool
	IsGlobal     bool
	Address      *AddressInput
	Aliases      []string
	Clients      []ClientKey
}

// FieldUpdates applies only the non-nil base fields of a location.
type FieldUpdates struct {
	OfficialName *string
	Code         *string
	Type         *string
	Active       *bool
	IsGlobal     *bool
}

// LocationFilters compose conjunctively; the client pair is overridden by is_global.
type LocationFilters struct {
	Query            string
	Type             string
	Active           *bool
	State            string
	City             string
	ClientSource     string
	ClientExternalID string
}

// Pagination bounds a listing page. Limit is validated upstream (1-200).
type Pagination struct {
	Limit  int
	Offset int
}

type LocationRepository interface {
	Upsert(ctx context.Context, params UpsertParams) (*model.Location, error)
	FindByID(ctx context.Context, id int64) (*model.Location, error)
	List(ctx context.Context, filters LocationFilters, page Pagination) ([]model.Location, int64, error)
	UpdateFields(ctx context.Context, id int64, updates FieldUpdates) (*model.Location, error)
	UpdateAddress(ctx context.Context, id int64, address AddressInput) (*model.Location, error)
	AddAlias(ctx context.Context, locationID int64, alias string) (*model.LocationAlias, error)
	RemoveAlias(ctx context.Context, locationID, aliasID int64) error
	AddClient(ctx context.Context, locationID int64, key ClientKey) (*model.LocationClient, error)
	RemoveClient(ctx context.Context, locationID int64, key ClientKey) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Upsert(ctx context.Context, params UpsertParams) (*model.Location, error) {
	db := GetDB(ctx, r.db)

	var location model.Location
	err := db.Where("code = ?", params.Code).First(&location).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		location = model.Location{
			OfficialName: params.OfficialName,
			Code:         params.Code,
			Type:         params.Type,
			Active:       params.Active,
			IsGlobal:     params.IsGlobal,
		}
		if err := db.Create(&location).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		// Code is the lookup key and is never rewritten here
		location.OfficialName = params.OfficialName
		location.Type = params.Type
		location.Active = params.Active
		location.IsGlobal = params.IsGlobal
		if err := db.Save(&location).Error; err != nil {
			return nil, err
		}
	}

	if params.Address != nil {
		if err := applyAddress(db, location.ID, *params.Address, true); err != nil {
			return nil, err
		}
	}
	if err := reconcileAliases(db, location.ID, params.Aliases); err != nil {
		return nil, err
	}
	if err := reconcileClients(db, location.ID, params.Clients); err != nil {
		return nil, err
	}

	refreshed, err := findByID(db, location.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("location %d vanished after upsert", location.ID)
	}
	return refreshed, err
}

func (r *locationRepository) FindByID(ctx context.Context, id int64) (*model.Location, error) {
	return findByID(GetDB(ctx, r.db), id)
}

func (r *locationRepository) List(ctx context.Context, filters LocationFilters, page Pagination) ([]model.Location, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	countQuery := applyFilters(db.Model(&model.Location{}), filters)
	if err := countQuery.Distinct("locations.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var locations []model.Location
	fetchQuery := applyFilters(db.Model(&model.Location{}), filters).
		Preload("Address").Preload("Aliases").Preload("Clients").
		Distinct("locations.*").
		Order("official_name ASC").
		Limit(page.Limit).Offset(page.Offset)
	if err := fetchQuery.Find(&locations).Error; err != nil {
		return nil, 0, err
	}

	return locations, total, nil
}

func (r *locationRepository) UpdateFields(ctx context.Context, id int64, updates FieldUpdates) (*model.Location, error) {
	db := GetDB(ctx, r.db)

	var location model.Location
	if err := db.First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if updates.OfficialName != nil {
		location.OfficialName = *updates.OfficialName
	}
	if updates.Code != nil {
		location.Code = *updates.Code
	}
	if updates.Type != nil {
		location.Type = *updates.Type
	}
	if updates.Active != nil {
		location.Active = *updates.Active
	}
	if updates.IsGlobal != nil {
		location.IsGlobal = *updates.IsGlobal
	}
	if err := db.Save(&location).Error; err != nil {
		return nil, err
	}

	return findByID(db, id)
}

func (r *locationRepository) UpdateAddress(ctx context.Context, id int64, address AddressInput) (*model.Location, error) {
	db := GetDB(ctx, r.db)

	var location model.Location
	if err := db.First(&location, "id = ?", id).Error; err != nil {
		return nil, err
	}
	// Partial write: only fields explicitly supplied touch the existing row
	if err := applyAddress(db, id, address, false); err != nil {
		return nil, err
	}

	return findByID(db, id)
}

func (r *locationRepository) AddAlias(ctx context.Context, locationID int64, alias string) (*model.LocationAlias, error) {
	db := GetDB(ctx, r.db)

	var location model.Location
	if err := db.First(&location, "id = ?", locationID).Error; err != nil {
		return nil, err
	}

	var existing model.LocationAlias
	err := db.Where("location_id = ? AND alias = ?", locationID, alias).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := model.LocationAlias{LocationID: locationID, Alias: alias}
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *locationRepository) RemoveAlias(ctx context.Context, locationID, aliasID int64) error {
	res := GetDB(ctx, r.db).
		Where("id = ? AND location_id = ?", aliasID, locationID).
		Delete(&model.LocationAlias{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *locationRepository) AddClient(ctx context.Context, locationID int64, key ClientKey) (*model.LocationClient, error) {
	db := GetDB(ctx, r.db)

	var location model.Location
	if err := db.First(&location, "id = ?", locationID).Error; err != nil {
		return nil, err
	}

	var existing model.LocationClient
	err := db.Where(
		"location_id = ? AND client_source = ? AND client_external_id = ? AND role = ?",
		locationID, key.Source, key.ExternalID, key.Role,
	).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := model.LocationClient{
		LocationID:       locationID,
		ClientSource:     key.Source,
		ClientExternalID: key.ExternalID,
		Role:             key.Role,
	}
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *locationRepository) RemoveClient(ctx context.Context, locationID int64, key ClientKey) error {
	res := GetDB(ctx, r.db).Where(
		"location_id = ? AND client_source = ? AND client_external_id = ? AND role = ?",
		locationID, key.Source, key.ExternalID, key.Role,
	).Delete(&model.LocationClient{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	// Children (address, aliases, clients, geocoding cache) go with the
	// ON DELETE CASCADE constraints declared on the model
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Location{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// findByID loads the full aggregate in one logical read.
func findByID(db *gorm.DB, id int64) (*model.Location, error) {
	var location model.Location
	err := db.
		Preload("Address").Preload("Aliases").Preload("Clients").
		First(&location, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// applyFilters appends predicates and joins only for the filters actually set,
// so unfiltered listings never multiply rows through unused joins.
func applyFilters(query *gorm.DB, filters LocationFilters) *gorm.DB {
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("locations.official_name ILIKE ? OR locations.code ILIKE ?", pattern, pattern)
	}
	if filters.Type != "" {
		query = query.Where("locations.type = ?", filters.Type)
	}
	if filters.Active != nil {
		query = query.Where("locations.active = ?", *filters.Active)
	}

	if filters.State != "" || filters.City != "" {
		query = query.Joins("LEFT JOIN addresses ON addresses.location_id = locations.id")
		if filters.State != "" {
			query = query.Where("addresses.state ILIKE ?", "%"+filters.State+"%")
		}
		if filters.City != "" {
			query = query.Where("addresses.city ILIKE ?", "%"+filters.City+"%")
		}
	}

	if filters.ClientSource != "" || filters.ClientExternalID != "" {
		query = query.Joins("LEFT JOIN location_clients ON location_clients.location_id = locations.id")
		switch {
		case filters.ClientSource != "" && filters.ClientExternalID != "":
			query = query.Where(
				"locations.is_global = TRUE OR (location_clients.client_source = ? AND location_clients.client_external_id = ?)",
				filters.ClientSource, filters.ClientExternalID,
			)
		case filters.ClientSource != "":
			query = query.Where(
				"locations.is_global = TRUE OR location_clients.client_source = ?",
				filters.ClientSource,
			)
		default:
			query = query.Where(
				"locations.is_global = TRUE OR location_clients.client_external_id = ?",
				filters.ClientExternalID,
			)
		}
	}

	return query
}

// applyAddress creates the address row on first write, otherwise updates it in
// place. overwriteAll makes nil fields clear their columns (full-replace upsert);
// a partial update only touches the fields that were supplied.
func applyAddress(db *gorm.DB, locationID int64, in AddressInput, overwriteAll bool) error {
	var existing model.Address
	err := db.Where("location_id = ?", locationID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := model.Address{
			LocationID:   locationID,
			Street:       in.Street,
			Neighborhood: in.Neighborhood,
			City:         in.City,
			State:        in.State,
			PostalCode:   in.PostalCode,
			Lat:          in.Lat,
			Lng:          in.Lng,
			Reference:    in.Reference,
		}
		return db.Create(&created).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	setColumn := func(column string, value interface{}, present bool) {
		if overwriteAll || present {
			updates[column] = value
		}
	}
	setColumn("street", in.Street, in.Street != nil)
	setColumn("neighborhood", in.Neighborhood, in.Neighborhood != nil)
	setColumn("city", in.City, in.City != nil)
	setColumn("state", in.State, in.State != nil)
	setColumn("postal_code", in.PostalCode, in.PostalCode != nil)
	setColumn("lat", in.Lat, in.Lat != nil)
	setColumn("lng", in.Lng, in.Lng != nil)
	setColumn("reference", in.Reference, in.Reference != nil)

	if len(updates) == 0 {
		// Explicit update with no fields set is a no-op, not a deletion
		return nil
	}
	return db.Model(&model.Address{}).Where("location_id = ?", locationID).Updates(updates).Error
}

// reconcileAliases diffs the persisted alias set against the target list:
// persisted-only rows are deleted, target-only values inserted, matches kept
// so their ids and created_at survive.
func reconcileAliases(db *gorm.DB, locationID int64, target []string) error {
	var existing []model.LocationAlias
	if err := db.Where("location_id = ?", locationID).Find(&existing).Error; err != nil {
		return err
	}

	targetSet := make(map[string]struct{}, len(target))
	for _, alias := range target {
		if alias != "" {
			targetSet[alias] = struct{}{}
		}
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		existingSet[row.Alias] = struct{}{}
		if _, keep := targetSet[row.Alias]; !keep {
			if err := db.Delete(&model.LocationAlias{}, "id = ?", row.ID).Error; err != nil {
				return err
			}
		}
	}

	for _, alias := range target {
		if alias == "" {
			continue
		}
		if _, present := existingSet[alias]; present {
			continue
		}
		existingSet[alias] = struct{}{} // dedupe repeated entries in the payload
		if err := db.Create(&model.LocationAlias{LocationID: locationID, Alias: alias}).Error; err != nil {
			return err
		}
	}
	return nil
}

// reconcileClients applies the same set-difference strategy keyed on the
// (source, external id, role) tuple.
func reconcileClients(db *gorm.DB, locationID int64, target []ClientKey) error {
	var existing []model.LocationClient
	if err := db.Where("location_id = ?", locationID).Find(&existing).Error; err != nil {
		return err
	}

	targetSet := make(map[ClientKey]struct{}, len(target))
	for _, key := range target {
		targetSet[key] = struct{}{}
	}

	existingSet := make(map[ClientKey]struct{}, len(existing))
	for _, row := range existing {
		key := ClientKey{Source: row.ClientSource, ExternalID: row.ClientExternalID, Role: row.Role}
		existingSet[key] = struct{}{}
		if _, keep := targetSet[key]; !keep {
			err := db.Where(
				"location_id = ? AND client_source = ? AND client_external_id = ? AND role = ?",
				locationID, key.Source, key.ExternalID, key.Role,
			).Delete(&model.LocationClient{}).Error
			if err != nil {
				return err
			}
		}
	}

	for _, key := range target {
		if _, present := existingSet[key]; present {
			continue
		}
		existingSet[key] = struct{}{}
		created := model.LocationClient{
			LocationID:       locationID,
			ClientSource:     key.Source,
			ClientExternalID: key.ExternalID,
			Role:             key.Role,
		}
		if err := db.Create(&created).Error; err != nil {
			return err
		}
	}
	return nil
}
