package handler

import (
	"errors"
	"net/http"
	"strconv"

	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationService service.LocationService
}

func NewLocationHandler(locationService service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	locations := router.Group("/api/locations")
	{
		locations.POST("", h.UpsertLocation)
		locations.GET("", h.ListLocations)
		locations.GET("/by-client/:source/:externalId", h.ListLocationsByClient)
		locations.GET("/:id", h.GetLocation)
		locations.PUT("/:id", h.UpdateLocation)
		locations.PUT("/:id/address", h.UpdateLocationAddress)
		locations.POST("/:id/aliases", h.AddAlias)
		locations.DELETE("/:id/aliases/:aliasId", h.RemoveAlias)
		locations.POST("/:id/clients", h.AddClient)
		locations.DELETE("/:id/clients", h.RemoveClient)
		locations.DELETE("/:id", h.DeleteLocation)
	}
}

// writeError maps service errors to transport-level results
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLocationNotFound),
		errors.Is(err, service.ErrAliasNotFound),
		errors.Is(err, service.ErrClientNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+param+" parameter"))
		return 0, false
	}
	return id, true
}

// UpsertLocation creates a location or fully replaces one matched by codigo
// @Summary      Create or update location
// @Description  Idempotent upsert keyed on codigo; empty alias/client lists clear the stored sets
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        payload  body  service.UpsertLocationRequest  true  "Location payload"
// @Success      201  {object}  response.Response{data=service.LocationResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/locations [post]
func (h *LocationHandler) UpsertLocation(c *gin.Context) {
	var req service.UpsertLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	location, err := h.locationService.UpsertLocation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, location))
}

// ListLocations returns a filtered, paginated page of locations
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Param        q                    query  string  false  "Substring match on official name or code"
// @Param        tipo                 query  string  false  "Filter by type: Origen, Destino, Ambos"
// @Param        activo               query  bool    false  "Filter by active flag"
// @Param        estado               query  string  false  "Substring match on address state"
// @Param        ciudad               query  string  false  "Substring match on address city"
// @Param        cliente_source       query  string  false  "Client source system"
// @Param        cliente_external_id  query  string  false  "Client external id"
// @Param        limit                query  int     false  "Items per page (default 50, max 200)"
// @Param        offset               query  int     false  "Rows to skip (default 0)"
// @Success      200  {object}  response.Response{data=[]service.LocationResponse}
// @Router       /api/locations [get]
func (h *LocationHandler) ListLocations(c *gin.Context) {
	query := service.ListLocationsQuery{
		Query:             c.Query("q"),
		Tipo:              c.Query("tipo"),
		Estado:            c.Query("estado"),
		Ciudad:            c.Query("ciudad"),
		ClienteSource:     c.Query("cliente_source"),
		ClienteExternalID: c.Query("cliente_external_id"),
	}
	if raw := c.Query("activo"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			query.Activo = &active
		}
	}

	h.list(c, query)
}

// ListLocationsByClient lists locations visible to one client, honoring es_global
// @Summary      List locations by client
// @Description  Returns locations linked to the given client plus every global location
// @Tags         locations
// @Produce      json
// @Param        source      path   string  true   "Client source system"
// @Param        externalId  path   string  true   "Client external id"
// @Param        q           query  string  false  "Substring match on official name or code"
// @Param        tipo        query  string  false  "Filter by type: Origen, Destino, Ambos"
// @Param        activo      query  bool    false  "Filter by active flag"
// @Param        estado      query  string  false  "Substring match on address state"
// @Param        ciudad      query  string  false  "Substring match on address city"
// @Param        limit       query  int     false  "Items per page (default 50, max 200)"
// @Param        offset      query  int     false  "Rows to skip (default 0)"
// @Success      200  {object}  response.Response{data=[]service.LocationResponse}
// @Router       /api/locations/by-client/{source}/{externalId} [get]
func (h *LocationHandler) ListLocationsByClient(c *gin.Context) {
	query := service.ListLocationsQuery{
		Query:             c.Query("q"),
		Tipo:              c.Query("tipo"),
		Estado:            c.Query("estado"),
		Ciudad:            c.Query("ciudad"),
		ClienteSource:     c.Param("source"),
		ClienteExternalID: c.Param("externalId"),
	}
	if raw := c.Query("activo"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			query.Activo = &active
		}
	}

	h.list(c, query)
}

func (h *LocationHandler) list(c *gin.Context, query service.ListLocationsQuery) {
	params := pagination.Parse(c)

	locations, total, err := h.locationService.ListLocations(c.Request.Context(), query, params.Limit, params.Offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, locations, params.Limit, params.Offset, total))
}

// GetLocation fetches one full aggregate by id
// @Summary      Get location
// @Tags         locations
// @Produce      json
// @Param        id  path  int  true  "Location ID"
// @Success      200  {object}  response.Response{data=service.LocationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	location, err := h.locationService.GetLocation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, location))
}

// UpdateLocation applies a partial update to the base fields only
// @Summary      Update location fields
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id       path  int                            true  "Location ID"
// @Param        payload  body  service.UpdateLocationRequest  true  "Fields to update"
// @Success      200  {object}  response.Response{data=service.LocationResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id} [put]
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	location, err := h.locationService.UpdateLocation(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, location))
}

// UpdateLocationAddress creates or overwrites the location's address
// @Summary      Update location address
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id       path  int                     true  "Location ID"
// @Param        payload  body  service.AddressPayload  true  "Address fields"
// @Success      200  {object}  response.Response{data=service.LocationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id}/address [put]
func (h *LocationHandler) UpdateLocationAddress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.AddressPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	location, err := h.locationService.UpdateLocationAddress(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, location))
}

// AddAlias adds an alias to a location (idempotent on the alias text)
// @Summary      Add alias
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id       path  int                   true  "Location ID"
// @Param        payload  body  service.AliasPayload  true  "Alias"
// @Success      201  {object}  response.Response{data=service.AliasResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id}/aliases [post]
func (h *LocationHandler) AddAlias(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.AliasPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	alias, err := h.locationService.AddAlias(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, alias))
}

// RemoveAlias deletes an alias belonging to the location
// @Summary      Remove alias
// @Tags         locations
// @Produce      json
// @Param        id       path  int  true  "Location ID"
// @Param        aliasId  path  int  true  "Alias ID"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id}/aliases/{aliasId} [delete]
func (h *LocationHandler) RemoveAlias(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	aliasID, ok := parseID(c, "aliasId")
	if !ok {
		return
	}

	if err := h.locationService.RemoveAlias(c.Request.Context(), id, aliasID); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddClient links an external client to the location (idempotent on the tuple)
// @Summary      Add client link
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id       path  int                    true  "Location ID"
// @Param        payload  body  service.ClientPayload  true  "Client link"
// @Success      201  {object}  response.Response{data=service.ClientResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id}/clients [post]
func (h *LocationHandler) AddClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ClientPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	client, err := h.locationService.AddClient(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// RemoveClient unlinks the exact client tuple from the location
// @Summary      Remove client link
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        id       path  int                    true  "Location ID"
// @Param        payload  body  service.ClientPayload  true  "Client link to remove"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id}/clients [delete]
func (h *LocationHandler) RemoveClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.ClientPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.locationService.RemoveClient(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteLocation removes the location and all owned children
// @Summary      Delete location
// @Tags         locations
// @Produce      json
// @Param        id  path  int  true  "Location ID"
// @Success      204  "No Content"
// @Failure      404  {object}  response.Response
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.locationService.DeleteLocation(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
