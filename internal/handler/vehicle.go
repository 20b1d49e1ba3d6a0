package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ligo/internal/domain"
	"ligo/internal/service"
)

// VehicleHandler handles HTTP requests for provider vehicles.
type VehicleHandler struct {
	accountService *service.AccountService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(accountService *service.AccountService) *VehicleHandler {
	return &VehicleHandler{
		accountService: accountService,
	}
}

// VehiclesResponse is the HTTP response for listing a user's vehicles.
type VehiclesResponse struct {
	Vehicles []domain.Vehicle `json:"vehicles"`
}

// Vehicles handles GET /api/v0/:provider/users/:id/vehicles
func (h *VehicleHandler) Vehicles(c *gin.Context) {
	provider := c.Param("provider")
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user id is required"})
		return
	}

	vehicles, err := h.accountService.Vehicles(c.Request.Context(), provider, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, VehiclesResponse{Vehicles: vehicles})
}

// OdometerResponse is the HTTP response for a vehicle odometer reading.
type OdometerResponse struct {
	Distance float64 `json:"distance"`
}

// Odometer handles GET /api/v0/:provider/users/:id/vehicles/:vehicleId/odometer
func (h *VehicleHandler) Odometer(c *gin.Context) {
	odometer, err := h.accountService.VehicleOdometer(
		c.Request.Context(), c.Param("provider"), c.Param("id"), c.Param("vehicleId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, OdometerResponse{Distance: odometer.Distance})
}

// LocationResponse is the HTTP response for a vehicle GPS position.
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location handles GET /api/v0/:provider/users/:id/vehicles/:vehicleId/location
func (h *VehicleHandler) Location(c *gin.Context) {
	location, err := h.accountService.VehicleLocation(
		c.Request.Context(), c.Param("provider"), c.Param("id"), c.Param("vehicleId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, LocationResponse{
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	})
}
