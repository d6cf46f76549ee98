package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinel errors the handler layer maps to HTTP statuses.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrLocationNotFound = errors.New("location not found")
	ErrAliasNotFound    = errors.New("alias not found")
	ErrClientNotFound   = errors.New("client link not found")
)

// --- Address DTO ---

type AddressPayload struct {
	Calle      *string  `json:"calle"`
	Colonia    *string  `json:"colonia"`
	CiudadText *string  `json:"ciudad_text"`
	EstadoText *string  `json:"estado_text"`
	CP         *string  `json:"cp"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Referencia *string  `json:"referencia"`
}

type AddressResponse struct {
	Calle      *string   `json:"calle"`
	Colonia    *string   `json:"colonia"`
	CiudadText *string   `json:"ciudad_text"`
	EstadoText *string   `json:"estado_text"`
	CP         *string   `json:"cp"`
	Lat        *float64  `json:"lat"`
	Lng        *float64  `json:"lng"`
	Referencia *string   `json:"referencia"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// --- Alias / Client DTOs ---

type AliasPayload struct {
	Alias string `json:"alias" binding:"required"`
}

type AliasResponse struct {
	ID        int64     `json:"id"`
	Alias     string    `json:"alias"`
	CreatedAt time.Time `json:"created_at"`
}

type ClientPayload struct {
	ClienteSource     string `json:"cliente_source" binding:"required"`
	ClienteExternalID string `json:"cliente_external_id" binding:"required"`
	Rol               string `json:"rol" binding:"required"`
}

type ClientResponse struct {
	ClienteSource     string    `json:"cliente_source"`
	ClienteExternalID string    `json:"cliente_external_id"`
	Rol               string    `json:"rol"`
	CreatedAt         time.Time `json:"created_at"`
}

// --- Location DTOs ---

// UpsertLocationRequest is a full-replace payload keyed by Codigo: empty alias
// or client lists clear the persisted sets, a nil Address leaves it untouched.
type UpsertLocationRequest struct {
	NombreOficial string          `json:"nombre_oficial" binding:"required"`
	Codigo        string          `json:"codigo" binding:"required"`
	Tipo          string          `json:"tipo"`
	Activo        *bool           `json:"activo"`
	EsGlobal      bool            `json:"es_global"`
	Address       *AddressPayload `json:"address"`
	Aliases       []AliasPayload  `json:"aliases"`
	Clients       []ClientPayload `json:"clients"`
}

type UpdateLocationRequest struct {
	NombreOficial *string `json:"nombre_oficial"`
	Codigo        *string `json:"codigo"`
	Tipo          *string `json:"tipo"`
	Activo        *bool   `json:"activo"`
	EsGlobal      *bool   `json:"es_global"`
}

func (r UpdateLocationRequest) isEmpty() bool {
	return r.NombreOficial == nil && r.Codigo == nil && r.Tipo == nil &&
		r.Activo == nil && r.EsGlobal == nil
}

type ListLocationsQuery struct {
	Query             string
	Tipo              string
	Activo            *bool
	Estado            string
	Ciudad            string
	ClienteSource     string
	ClienteExternalID string
}

type LocationResponse struct {
	ID            int64            `json:"id"`
	NombreOficial string           `json:"nombre_oficial"`
	Codigo        string           `json:"codigo"`
	Tipo          string           `json:"tipo"`
	Activo        bool             `json:"activo"`
	EsGlobal      bool             `json:"es_global"`
	Address       *AddressResponse `json:"address"`
	Aliases       []AliasResponse  `json:"aliases"`
	Clients       []ClientResponse `json:"clients"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// --- Interface ---

type LocationService interface {
	UpsertLocation(ctx context.Context, req UpsertLocationRequest) (LocationResponse, error)
	GetLocation(ctx context.Context, id int64) (LocationResponse, error)
	ListLocations(ctx context.Context, query ListLocationsQuery, limit, offset int) ([]LocationResponse, int64, error)
	UpdateLocation(ctx context.Context, id int64, req UpdateLocationRequest) (LocationResponse, error)
	UpdateLocationAddress(ctx context.Context, id int64, req AddressPayload) (LocationResponse, error)
	AddAlias(ctx context.Context, locationID int64, req AliasPayload) (AliasResponse, error)
	RemoveAlias(ctx context.Context, locationID, aliasID int64) error
	AddClient(ctx context.Context, locationID int64, req ClientPayload) (ClientResponse, error)
	RemoveClient(ctx context.Context, locationID int64, req ClientPayload) error
	DeleteLocation(ctx context.Context, id int64) error
}

// --- Implementation ---

type locationService struct {
	locationRepo repository.LocationRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
	logger       *zap.Logger
}

func NewLocationService(
	locationRepo repository.LocationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	logger *zap.Logger,
) LocationService {
	return &locationService{
		locationRepo: locationRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
		logger:       logger,
	}
}

// --- Validation helpers ---

var validLocationTypes = map[string]bool{
	model.LocationTypeOrigin:      true,
	model.LocationTypeDestination: true,
	model.LocationTypeBoth:        true,
}

// normalizeOptional trims an optional string; blank values become nil,
// matching the upstream DTO contract.
func normalizeOptional(value *string, maxLen int, field string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxLen {
		return nil, fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, maxLen)
	}
	return &trimmed, nil
}

func normalizeRequired(value string, maxLen int, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, maxLen)
	}
	return trimmed, nil
}

func validateAddress(p AddressPayload) (repository.AddressInput, error) {
	var in repository.AddressInput
	var err error

	if in.Street, err = normalizeOptional(p.Calle, 255, "calle"); err != nil {
		return in, err
	}
	if in.Neighborhood, err = normalizeOptional(p.Colonia, 255, "colonia"); err != nil {
		return in, err
	}
	if in.City, err = normalizeOptional(p.CiudadText, 255, "ciudad_text"); err != nil {
		return in, err
	}
	if in.State, err = normalizeOptional(p.EstadoText, 255, "estado_text"); err != nil {
		return in, err
	}
	if in.PostalCode, err = normalizeOptional(p.CP, 20, "cp"); err != nil {
		return in, err
	}
	if in.Reference, err = normalizeOptional(p.Referencia, 500, "referencia"); err != nil {
		return in, err
	}
	if p.Lat != nil && (*p.Lat < -90 || *p.Lat > 90) {
		return in, fmt.Errorf("%w: lat must be between -90 and 90", ErrInvalidInput)
	}
	if p.Lng != nil && (*p.Lng < -180 || *p.Lng > 180) {
		return in, fmt.Errorf("%w: lng must be between -180 and 180", ErrInvalidInput)
	}
	in.Lat = p.Lat
	in.Lng = p.Lng
	return in, nil
}

func validateAliases(payloads []AliasPayload) ([]string, error) {
	aliases := make([]string, 0, len(payloads))
	for i, p := range payloads {
		trimmed := strings.TrimSpace(p.Alias)
		if trimmed == "" {
			continue // blank entries are discarded, not rejected
		}
		if len(trimmed) > 255 {
			return nil, fmt.Errorf("%w: aliases[%d] must be at most 255 characters", ErrInvalidInput, i)
		}
		aliases = append(aliases, trimmed)
	}
	return aliases, nil
}

func validateClient(p ClientPayload) (repository.ClientKey, error) {
	var key repository.ClientKey
	if p.ClienteSource == "" || len(p.ClienteSource) > 50 {
		return key, fmt.Errorf("%w: cliente_source must be 1-50 characters", ErrInvalidInput)
	}
	if p.ClienteExternalID == "" || len(p.ClienteExternalID) > 100 {
		return key, fmt.Errorf("%w: cliente_external_id must be 1-100 characters", ErrInvalidInput)
	}
	if p.Rol == "" || len(p.Rol) > 50 {
		return key, fmt.Errorf("%w: rol must be 1-50 characters", ErrInvalidInput)
	}
	return repository.ClientKey{
		Source:     p.ClienteSource,
		ExternalID: p.ClienteExternalID,
		Role:       p.Rol,
	}, nil
}

func validateClients(payloads []ClientPayload) ([]repository.ClientKey, error) {
	keys := make([]repository.ClientKey, 0, len(payloads))
	for i, p := range payloads {
		key, err := validateClient(p)
		if err != nil {
			return nil, fmt.Errorf("clients[%d]: %w", i, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// --- Use cases ---

func (s *locationService) UpsertLocation(ctx context.Context, req UpsertLocationRequest) (LocationResponse, error) {
	name, err := normalizeRequired(req.NombreOficial, 255, "nombre_oficial")
	if err != nil {
		return LocationResponse{}, err
	}
	code, err := normalizeRequired(req.Codigo, 50, "codigo")
	if err != nil {
		return LocationResponse{}, err
	}
	locationType := req.Tipo
	if locationType == "" {
		locationType = model.LocationTypeBoth
	}
	if !validLocationTypes[locationType] {
		return LocationResponse{}, fmt.Errorf("%w: tipo must be one of: Origen, Destino, Ambos", ErrInvalidInput)
	}
	active := true
	if req.Activo != nil {
		active = *req.Activo
	}

	params := repository.UpsertParams{
		OfficialName: name,
		Code:         code,
		Type:         locationType,
		Active:       active,
		IsGlobal:     req.EsGlobal,
	}
	if req.Address != nil {
		address, err := validateAddress(*req.Address)
		if err != nil {
			return LocationResponse{}, err
		}
		params.Address = &address
	}
	if params.Aliases, err = validateAliases(req.Aliases); err != nil {
		return LocationResponse{}, err
	}
	// Global locations carry no explicit client links; the list is cleared
	// here rather than in the store
	if !req.EsGlobal {
		if params.Clients, err = validateClients(req.Clients); err != nil {
			return LocationResponse{}, err
		}
	}

	var location *model.Location
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		location, err = s.locationRepo.Upsert(txCtx, params)
		if err != nil {
			return fmt.Errorf("failed to upsert location: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			Action:     model.ActionUpsertLocation,
			EntityID:   strconv.FormatInt(location.ID, 10),
			EntityName: location.OfficialName,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to record audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return LocationResponse{}, err
	}

	s.logger.Info("location upserted",
		zap.Int64("id", location.ID),
		zap.String("codigo", location.Code),
	)
	s.notify("location_upserted", location.ID, location.Code)

	return toLocationResponse(*location), nil
}

func (s *locationService) GetLocation(ctx context.Context, id int64) (LocationResponse, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LocationResponse{}, ErrLocationNotFound
		}
		return LocationResponse{}, fmt.Errorf("failed to fetch location: %w", err)
	}
	return toLocationResponse(*location), nil
}

func (s *locationService) ListLocations(ctx context.Context, query ListLocationsQuery, limit, offset int) ([]LocationResponse, int64, error) {
	if query.Tipo != "" && !validLocationTypes[query.Tipo] {
		return nil, 0, fmt.Errorf("%w: tipo must be one of: Origen, Destino, Ambos", ErrInvalidInput)
	}

	filters := repository.LocationFilters{
		Query:            strings.TrimSpace(query.Query),
		Type:             query.Tipo,
		Active:           query.Activo,
		State:            strings.TrimSpace(query.Estado),
		City:             strings.TrimSpace(query.Ciudad),
		ClientSource:     query.ClienteSource,
		ClientExternalID: query.ClienteExternalID,
	}
	page := repository.Pagination{Limit: limit, Offset: offset}

	locations, total, err := s.locationRepo.List(ctx, filters, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list locations: %w", err)
	}

	res := make([]LocationResponse, 0, len(locations))
	for _, location := range locations {
		res = append(res, toLocationResponse(location))
	}
	return res, total, nil
}

func (s *locationService) UpdateLocation(ctx context.Context, id int64, req UpdateLocationRequest) (LocationResponse, error) {
	if req.isEmpty() {
		return LocationResponse{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	var updates repository.FieldUpdates
	if req.NombreOficial != nil {
		name, err := normalizeRequired(*req.NombreOficial, 255, "nombre_oficial")
		if err != nil {
			return LocationResponse{}, err
		}
		updates.OfficialName = &name
	}
	if req.Codigo != nil {
		code, err := normalizeRequired(*req.Codigo, 50, "codigo")
		if err != nil {
			return LocationResponse{}, err
		}
		updates.Code = &code
	}
	if req.Tipo != nil {
		if !validLocationTypes[*req.Tipo] {
			return LocationResponse{}, fmt.Errorf("%w: tipo must be one of: Origen, Destino, Ambos", ErrInvalidInput)
		}
		updates.Type = req.Tipo
	}
	updates.Active = req.Activo
	updates.IsGlobal = req.EsGlobal

	var location *model.Location
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		location, err = s.locationRepo.UpdateFields(txCtx, id, updates)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			Action:     model.ActionUpdateLocation,
			EntityID:   strconv.FormatInt(id, 10),
			EntityName: location.OfficialName,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LocationResponse{}, ErrLocationNotFound
		}
		return LocationResponse{}, fmt.Errorf("failed to update location: %w", err)
	}

	return toLocationResponse(*location), nil
}

func (s *locationService) UpdateLocationAddress(ctx context.Context, id int64, req AddressPayload) (LocationResponse, error) {
	address, err := validateAddress(req)
	if err != nil {
		return LocationResponse{}, err
	}

	var location *model.Location
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		location, err = s.locationRepo.UpdateAddress(txCtx, id, address)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			Action:     model.ActionUpdateLocationAddress,
			EntityID:   strconv.FormatInt(id, 10),
			EntityName: location.OfficialName,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LocationResponse{}, ErrLocationNotFound
		}
		return LocationResponse{}, fmt.Errorf("failed to update address: %w", err)
	}

	return toLocationResponse(*location), nil
}

func (s *locationService) AddAlias(ctx context.Context, locationID int64, req AliasPayload) (AliasResponse, error) {
	alias, err := normalizeRequired(req.Alias, 255, "alias")
	if err != nil {
		return AliasResponse{}, err
	}

	var created *model.LocationAlias
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.locationRepo.AddAlias(txCtx, locationID, alias)
		if err != nil {
			return err
		}

		audit := &model.AuditLog{
			Action:   model.ActionAddLocationAlias,
			EntityID: strconv.FormatInt(locationID, 10),
			Details:  fmt.Sprintf(`{"alias":%q}`, alias),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AliasResponse{}, ErrLocationNotFound
		}
		return AliasResponse{}, fmt.Errorf("failed to add alias: %w", err)
	}

	return toAliasResponse(*created), nil
}

func (s *locationService) RemoveAlias(ctx context.Context, locationID, aliasID int64) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.locationRepo.RemoveAlias(txCtx, locationID, aliasID); err != nil {
			return err
		}

		audit := &model.AuditLog{
			Action:   model.ActionRemoveLocationAlias,
			EntityID: strconv.FormatInt(locationID, 10),
			Details:  fmt.Sprintf(`{"alias_id":%d}`, aliasID),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAliasNotFound
		}
		return fmt.Errorf("failed to remove alias: %w", err)
	}
	return nil
}

func (s *locationService) AddClient(ctx context.Context, locationID int64, req ClientPayload) (ClientResponse, error) {
	key, err := validateClient(req)
	if err != nil {
		return ClientResponse{}, err
	}

	var created *model.LocationClient
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.locationRepo.AddClient(txCtx, locationID, key)
		if err != nil {
			return err
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			Action:   model.ActionAddClientLink,
			EntityID: strconv.FormatInt(locationID, 10),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClientResponse{}, ErrLocationNotFound
		}
		return ClientResponse{}, fmt.Errorf("failed to add client link: %w", err)
	}

	return toClientResponse(*created), nil
}

func (s *locationService) RemoveClient(ctx context.Context, locationID int64, req ClientPayload) error {
	key, err := validateClient(req)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.locationRepo.RemoveClient(txCtx, locationID, key); err != nil {
			return err
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			Action:   model.ActionRemoveClientLink,
			EntityID: strconv.FormatInt(locationID, 10),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to remove client link: %w", err)
	}
	return nil
}

func (s *locationService) DeleteLocation(ctx context.Context, id int64) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		deleted, err := s.locationRepo.Delete(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}
		if !deleted {
			return ErrLocationNotFound
		}

		audit := &model.AuditLog{
			Action:   model.ActionDeleteLocation,
			EntityID: strconv.FormatInt(id, 10),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return err
	}

	s.logger.Info("location deleted", zap.Int64("id", id))
	s.notify("location_deleted", id, "")
	return nil
}

// notify pushes a change event to connected websocket clients.
func (s *locationService) notify(event string, id int64, code string) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"type":   event,
		"id":     id,
		"codigo": code,
	})
	s.hub.Broadcast <- payload
}

// --- Response mappers ---

func toLocationResponse(location model.Location) LocationResponse {
	var address *AddressResponse
	if location.Address != nil {
		address = &AddressResponse{
			Calle:      location.Address.Street,
			Colonia:    location.Address.Neighborhood,
			CiudadText: location.Address.City,
			EstadoText: location.Address.State,
			CP:         location.Address.PostalCode,
			Lat:        location.Address.Lat,
			Lng:        location.Address.Lng,
			Referencia: location.Address.Reference,
			CreatedAt:  location.Address.CreatedAt,
			UpdatedAt:  location.Address.UpdatedAt,
		}
	}

	aliases := make([]AliasResponse, 0, len(location.Aliases))
	for _, alias := range location.Aliases {
		aliases = append(aliases, toAliasResponse(alias))
	}

	clients := make([]ClientResponse, 0, len(location.Clients))
	for _, client := range location.Clients {
		clients = append(clients, toClientResponse(client))
	}

	return LocationResponse{
		ID:            location.ID,
		NombreOficial: location.OfficialName,
		Codigo:        location.Code,
		Tipo:          location.Type,
		Activo:        location.Active,
		EsGlobal:      location.IsGlobal,
		Address:       address,
		Aliases:       aliases,
		Clients:       clients,
		CreatedAt:     location.CreatedAt,
		UpdatedAt:     location.UpdatedAt,
	}
}

func toAliasResponse(alias model.LocationAlias) AliasResponse {
	return AliasResponse{
		ID:        alias.ID,
		Alias:     alias.Alias,
		CreatedAt: alias.CreatedAt,
	}
}

func toClientResponse(client model.LocationClient) ClientResponse {
	return ClientResponse{
		ClienteSource:     client.ClientSource,
		ClienteExternalID: client.ClientExternalID,
		Rol:               client.Role,
		CreatedAt:         client.CreatedAt,
	}
}
