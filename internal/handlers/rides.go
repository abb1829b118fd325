package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/Parth-05/RideShare/internal/engine"
	"github.com/Parth-05/RideShare/internal/models"
	"github.com/Parth-05/RideShare/internal/observability"
	"github.com/Parth-05/RideShare/internal/services"
	"github.com/Parth-05/RideShare/pkg/utils"
	"github.com/gin-gonic/gin"
)

// RequestRide creates a new ride for the calling customer and broadcasts the
// open request to the driver pool.
func RequestRide(store engine.RideStore, dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := c.GetUint("userId")
		role := c.GetString("userRole")

		if role != string(models.RoleCustomer) {
			c.JSON(403, gin.H{"error": "Only customers can request rides"})
			return
		}

		var input struct {
			PickupAddr  string   `json:"pickup_destination"`
			PickupLat   *float64 `json:"pickup_latitude" binding:"required"`
			PickupLng   *float64 `json:"pickup_longitude" binding:"required"`
			DropoffAddr string   `json:"dropoff_destination"`
			DropoffLat  *float64 `json:"dropoff_latitude" binding:"required"`
			DropoffLng  *float64 `json:"dropoff_longitude" binding:"required"`
			Price       *float64 `json:"price"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// Validate coordinates
		if *input.PickupLat < -90 || *input.PickupLat > 90 ||
			*input.DropoffLat < -90 || *input.DropoffLat > 90 {
			c.JSON(400, gin.H{"error": "Invalid latitude"})
			return
		}
		if *input.PickupLng < -180 || *input.PickupLng > 180 ||
			*input.DropoffLng < -180 || *input.DropoffLng > 180 {
			c.JSON(400, gin.H{"error": "Invalid longitude"})
			return
		}

		// Use the client's estimate when provided, otherwise price by distance
		var price float64
		if input.Price != nil {
			price = *input.Price
		} else {
			distance := utils.HaversineDistance(
				*input.PickupLat, *input.PickupLng,
				*input.DropoffLat, *input.DropoffLng,
			)
			price = utils.CalculatePrice(distance, 2.0) // 2.0 per km
		}

		ride := models.Ride{
			CustomerID:  customerID,
			Status:      models.RideStatusRequested,
			PickupAddr:  input.PickupAddr,
			PickupLat:   *input.PickupLat,
			PickupLng:   *input.PickupLng,
			DropoffAddr: input.DropoffAddr,
			DropoffLat:  *input.DropoffLat,
			DropoffLng:  *input.DropoffLng,
			Price:       price,
			RequestedAt: time.Now(),
		}

		if err := store.Create(c.Request.Context(), &ride); err != nil {
			c.JSON(500, gin.H{"error": "Failed to create ride request"})
			return
		}

		observability.RideRequestsTotal.Inc()
		dispatcher.PublishNewRideRequest(&ride)

		c.JSON(201, gin.H{
			"message": "Ride request created",
			"data":    ride,
		})
	}
}

// UpdateRideStatus drives requested -> confirmed -> ongoing -> completed via
// the transition engine. Exactly one event is published per applied
// transition; the idempotent path replays the ride without re-emitting.
func UpdateRideStatus(eng *engine.Engine, dispatcher *services.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideIDStr := c.Param("rideId")
		userID := c.GetUint("userId")
		role := c.GetString("userRole")

		rideID, err := strconv.ParseUint(rideIDStr, 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		res, err := eng.AttemptTransition(c.Request.Context(), uint(rideID), models.RideStatus(input.Status), userID, role)
		if err != nil {
			if errors.Is(err, engine.ErrAlreadyClaimed) {
				observability.ClaimConflictsTotal.Inc()
			}
			c.JSON(statusForTransitionError(err), gin.H{"error": err.Error()})
			return
		}

		if res.Applied {
			observability.RideTransitionsTotal.WithLabelValues(input.Status).Inc()
			dispatcher.PublishRideEvent(res.Event, res.Ride)
		}

		c.JSON(200, gin.H{
			"message": "Ride " + input.Status,
			"data":    res.Ride,
		})
	}
}

func statusForTransitionError(err error) int {
	switch {
	case errors.Is(err, engine.ErrRideNotFound):
		return 404
	case errors.Is(err, engine.ErrRoleNotAllowed), errors.Is(err, engine.ErrNotYourRide):
		return 403
	case errors.Is(err, engine.ErrInvalidTarget), errors.Is(err, engine.ErrInvalidStatusTransition):
		return 400
	case errors.Is(err, engine.ErrAlreadyClaimed), errors.Is(err, engine.ErrUpdateConflict):
		return 409
	default:
		return 500
	}
}

// GetRide returns a single ride by id.
func GetRide(store engine.RideStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, err := strconv.ParseUint(c.Param("rideId"), 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid ride ID"})
			return
		}

		ride, err := store.Get(c.Request.Context(), uint(rideID))
		if err != nil && !errors.Is(err, engine.ErrRideNotFound) {
			// One retry on a transient storage error; reads are safe to repeat
			ride, err = store.Get(c.Request.Context(), uint(rideID))
		}
		if errors.Is(err, engine.ErrRideNotFound) {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ride"})
			return
		}

		c.JSON(200, gin.H{"data": ride})
	}
}

// GetRideHistory returns the caller's rides, newest first, scoped by role.
func GetRideHistory(store engine.RideStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		role := c.GetString("userRole")

		var rides []models.Ride
		var err error
		switch role {
		case string(models.RoleCustomer):
			rides, err = store.ListByCustomer(c.Request.Context(), userID)
		case string(models.RoleDriver):
			rides, err = store.ListByDriver(c.Request.Context(), userID)
		default:
			c.JSON(400, gin.H{"error": "Invalid user role"})
			return
		}
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ride history"})
			return
		}

		c.JSON(200, gin.H{"data": rides})
	}
}
