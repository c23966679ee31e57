package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rental/internal/domain"
	"rental/internal/service"
)

// VehicleHandler handles HTTP requests for the vehicle catalog.
type VehicleHandler struct {
	catalogService *service.CatalogService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(catalogService *service.CatalogService) *VehicleHandler {
	return &VehicleHandler{catalogService: catalogService}
}

// ListVehiclesResponse is the HTTP response for a catalog search.
type ListVehiclesResponse struct {
	Vehicles []*domain.Vehicle `json:"vehicles"`
	Count    int               `json:"count"`
}

// AvailabilityResponse is the HTTP response for an availability preview.
type AvailabilityResponse struct {
	VehicleID  string   `json:"vehicle_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Available  bool     `json:"available"`
	Conflicts  []string `json:"conflicts"`
	TotalDays  int      `json:"total_days"`
	TotalPrice int64    `json:"total_price"`
}

// List handles GET /v1/vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	vehicles, err := h.catalogService.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ListVehiclesResponse{Vehicles: vehicles, Count: len(vehicles)})
}

// Get handles GET /v1/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.catalogService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, vehicle)
}

// Availability handles GET /v1/vehicles/:id/availability
func (h *VehicleHandler) Availability(c *gin.Context) {
	res, err := h.catalogService.Availability(c.Request.Context(), c.Param("id"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AvailabilityResponse{
		VehicleID:  res.VehicleID,
		StartDate:  res.Range.Start.String(),
		EndDate:    res.Range.End.String(),
		Available:  res.Available,
		Conflicts:  dateStrings(res.Conflicts),
		TotalDays:  res.TotalDays,
		TotalPrice: int64(res.TotalPrice),
	})
}

// parseFilter reads the catalog filter from the query string.
func parseFilter(c *gin.Context) (service.Filter, error) {
	f := service.Filter{
		Query: c.Query("q"),
		Type:  c.Query("type"),
	}

	minPrice, err := moneyParam(c, "min_price")
	if err != nil {
		return f, err
	}
	if minPrice != nil {
		f.MinPrice = *minPrice
	}
	if f.MaxPrice, err = moneyParam(c, "max_price"); err != nil {
		return f, err
	}
	if raw := strings.TrimSpace(c.Query("min_capacity")); raw != "" {
		if f.MinCapacity, err = strconv.Atoi(raw); err != nil {
			return f, service.ErrInvalidFilter
		}
	}

	start, end := c.Query("start_date"), c.Query("end_date")
	if start != "" || end != "" {
		r, err := service.ParseRange(start, end)
		if err != nil {
			return f, err
		}
		f.Available = &r
	}
	return f, nil
}

// moneyParam returns nil when the parameter is absent.
func moneyParam(c *gin.Context, name string) (*domain.Money, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, service.ErrInvalidFilter
	}
	m := domain.Money(v)
	return &m, nil
}
