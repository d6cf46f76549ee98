package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockLocationService lets each test stub out exactly the calls it exercises.
type mockLocationService struct {
	upsertFn        func(ctx context.Context, req service.UpsertLocationRequest) (service.LocationResponse, error)
	getFn           func(ctx context.Context, id int64) (service.LocationResponse, error)
	listFn          func(ctx context.Context, query service.ListLocationsQuery, limit, offset int) ([]service.LocationResponse, int64, error)
	updateFn        func(ctx context.Context, id int64, req service.UpdateLocationRequest) (service.LocationResponse, error)
	updateAddressFn func(ctx context.Context, id int64, req service.AddressPayload) (service.LocationResponse, error)
	addAliasFn      func(ctx context.Context, locationID int64, req service.AliasPayload) (service.AliasResponse, error)
	removeAliasFn   func(ctx context.Context, locationID, aliasID int64) error
	addClientFn     func(ctx context.Context, locationID int64, req service.ClientPayload) (service.ClientResponse, error)
	removeClientFn  func(ctx context.Context, locationID int64, req service.ClientPayload) error
	deleteFn        func(ctx context.Context, id int64) error
}

func (m *mockLocationService) UpsertLocation(ctx context.Context, req service.UpsertLocationRequest) (service.LocationResponse, error) {
	return m.upsertFn(ctx, req)
}

func (m *mockLocationService) GetLocation(ctx context.Context, id int64) (service.LocationResponse, error) {
	return m.getFn(ctx, id)
}

func (m *mockLocationService) ListLocations(ctx context.Context, query service.ListLocationsQuery, limit, offset int) ([]service.LocationResponse, int64, error) {
	return m.listFn(ctx, query, limit, offset)
}

func (m *mockLocationService) UpdateLocation(ctx context.Context, id int64, req service.UpdateLocationRequest) (service.LocationResponse, error) {
	return m.updateFn(ctx, id, req)
}

func (m *mockLocationService) UpdateLocationAddress(ctx context.Context, id int64, req service.AddressPayload) (service.LocationResponse, error) {
	return m.updateAddressFn(ctx, id, req)
}

func (m *mockLocationService) AddAlias(ctx context.Context, locationID int64, req service.AliasPayload) (service.AliasResponse, error) {
	return m.addAliasFn(ctx, locationID, req)
}

func (m *mockLocationService) RemoveAlias(ctx context.Context, locationID, aliasID int64) error {
	return m.removeAliasFn(ctx, locationID, aliasID)
}

func (m *mockLocationService) AddClient(ctx context.Context, locationID int64, req service.ClientPayload) (service.ClientResponse, error) {
	return m.addClientFn(ctx, locationID, req)
}

func (m *mockLocationService) RemoveClient(ctx context.Context, locationID int64, req service.ClientPayload) error {
	return m.removeClientFn(ctx, locationID, req)
}

func (m *mockLocationService) DeleteLocation(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

func setupRouter(svc service.LocationService) *gin.Engine {
	router := gin.New()
	NewLocationHandler(svc).RegisterRoutes(router.Group(""))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestUpsertLocation_Created(t *testing.T) {
	svc := &mockLocationService{
		upsertFn: func(_ context.Context, req service.UpsertLocationRequest) (service.LocationResponse, error) {
			return service.LocationResponse{ID: 1, NombreOficial: req.NombreOficial, Codigo: req.Codigo, Tipo: "Ambos", Activo: true}, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/api/locations", map[string]interface{}{
		"nombre_oficial": "Central Norte",
		"codigo":         "LOC-001",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data envelope: %v", body)
	}
	if data["codigo"] != "LOC-001" {
		t.Errorf("unexpected payload: %v", data)
	}
}

func TestUpsertLocation_MissingRequiredField(t *testing.T) {
	svc := &mockLocationService{
		upsertFn: func(_ context.Context, _ service.UpsertLocationRequest) (service.LocationResponse, error) {
			t.Fatal("service must not be called when binding fails")
			return service.LocationResponse{}, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/api/locations", map[string]interface{}{
		"nombre_oficial": "Central Norte",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing codigo, got %d", rec.Code)
	}
}

func TestUpsertLocation_InvalidJSON(t *testing.T) {
	router := setupRouter(&mockLocationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/locations", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestGetLocation_NotFound(t *testing.T) {
	svc := &mockLocationService{
		getFn: func(_ context.Context, _ int64) (service.LocationResponse, error) {
			return service.LocationResponse{}, service.ErrLocationNotFound
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/locations/42", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetLocation_InvalidID(t *testing.T) {
	router := setupRouter(&mockLocationService{})

	rec := doRequest(t, router, http.MethodGet, "/api/locations/abc", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestListLocations_PaginationEnvelope(t *testing.T) {
	var gotLimit, gotOffset int
	svc := &mockLocationService{
		listFn: func(_ context.Context, _ service.ListLocationsQuery, limit, offset int) ([]service.LocationResponse, int64, error) {
			gotLimit, gotOffset = limit, offset
			return []service.LocationResponse{{ID: 1, Codigo: "LOC-001"}}, 7, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/locations?limit=5&offset=2", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotLimit != 5 || gotOffset != 2 {
		t.Errorf("pagination not forwarded, got limit=%d offset=%d", gotLimit, gotOffset)
	}
	body := decodeBody(t, rec)
	pag, ok := body["pagination"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing pagination envelope: %v", body)
	}
	if pag["total"] != float64(7) || pag["limit"] != float64(5) || pag["offset"] != float64(2) {
		t.Errorf("unexpected pagination: %v", pag)
	}
}

func TestListLocations_ForwardsFilters(t *testing.T) {
	var got service.ListLocationsQuery
	svc := &mockLocationService{
		listFn: func(_ context.Context, query service.ListLocationsQuery, _, _ int) ([]service.LocationResponse, int64, error) {
			got = query
			return nil, 0, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/locations?q=norte&tipo=Origen&activo=true&estado=CDMX", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Query != "norte" || got.Tipo != "Origen" || got.Estado != "CDMX" {
		t.Errorf("filters not forwarded: %+v", got)
	}
	if got.Activo == nil || !*got.Activo {
		t.Errorf("activo filter not forwarded: %+v", got.Activo)
	}
}

func TestListLocationsByClient_ForwardsPathParams(t *testing.T) {
	var got service.ListLocationsQuery
	svc := &mockLocationService{
		listFn: func(_ context.Context, query service.ListLocationsQuery, _, _ int) ([]service.LocationResponse, int64, error) {
			got = query
			return nil, 0, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/api/locations/by-client/erp/123", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.ClienteSource != "erp" || got.ClienteExternalID != "123" {
		t.Errorf("client path params not forwarded: %+v", got)
	}
}

func TestUpdateLocation_InvalidInput(t *testing.T) {
	svc := &mockLocationService{
		updateFn: func(_ context.Context, _ int64, _ service.UpdateLocationRequest) (service.LocationResponse, error) {
			return service.LocationResponse{}, service.ErrInvalidInput
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/api/locations/1", map[string]interface{}{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateLocationAddress_OK(t *testing.T) {
	svc := &mockLocationService{
		updateAddressFn: func(_ context.Context, id int64, _ service.AddressPayload) (service.LocationResponse, error) {
			return service.LocationResponse{ID: id, Codigo: "LOC-001"}, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/api/locations/1/address", map[string]interface{}{
		"ciudad_text": "CDMX",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAddAlias_Created(t *testing.T) {
	svc := &mockLocationService{
		addAliasFn: func(_ context.Context, locationID int64, req service.AliasPayload) (service.AliasResponse, error) {
			return service.AliasResponse{ID: 9, Alias: req.Alias}, nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/api/locations/1/aliases", map[string]interface{}{
		"alias": "El Centro",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRemoveAlias_NoContent(t *testing.T) {
	svc := &mockLocationService{
		removeAliasFn: func(_ context.Context, locationID, aliasID int64) error {
			if locationID != 1 || aliasID != 9 {
				t.Errorf("unexpected ids: %d %d", locationID, aliasID)
			}
			return nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/api/locations/1/aliases/9", nil)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRemoveAlias_NotFound(t *testing.T) {
	svc := &mockLocationService{
		removeAliasFn: func(_ context.Context, _, _ int64) error {
			return service.ErrAliasNotFound
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/api/locations/1/aliases/9", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRemoveClient_NoContent(t *testing.T) {
	svc := &mockLocationService{
		removeClientFn: func(_ context.Context, _ int64, req service.ClientPayload) error {
			if req.ClienteSource != "erp" || req.Rol != "Operador" {
				t.Errorf("client tuple not forwarded: %+v", req)
			}
			return nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/api/locations/1/clients", map[string]interface{}{
		"cliente_source":      "erp",
		"cliente_external_id": "123",
		"rol":                 "Operador",
	})

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRemoveClient_NotFound(t *testing.T) {
	svc := &mockLocationService{
		removeClientFn: func(_ context.Context, _ int64, _ service.ClientPayload) error {
			return service.ErrClientNotFound
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/api/locations/1/clients", map[string]interface{}{
		"cliente_source":      "erp",
		"cliente_external_id": "123",
		"rol":                 "Operador",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteLocation_NoContent(t *testing.T) {
	svc := &mockLocationService{
		deleteFn: func(_ context.Context, id int64) error {
			if id != 3 {
				t.Errorf("unexpected id %d", id)
			}
			return nil
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/api/locations/3", nil)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestDeleteLocation_NotFound(t *testing.T) {
	svc := &mockLocationService{
		deleteFn: func(_ context.Context, _ int64) error {
			return service.ErrLocationNotFound
		},
	}
	router := setupRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/api/locations/42", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
