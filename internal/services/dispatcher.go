package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Parth-05/RideShare/internal/engine"
	"github.com/Parth-05/RideShare/internal/models"
	"github.com/Parth-05/RideShare/internal/observability"
)

// Registry maps logical audiences to live delivery channels. The hub
// implements it; tests swap in a fake.
type Registry interface {
	BroadcastToDrivers(message []byte)
	SendToCustomer(customerID uint, message []byte)
}

// Dispatcher translates ride-state changes into addressed notifications.
// Delivery is best-effort and fire-and-forget: a missing or slow channel
// never fails the state transition that triggered it.
type Dispatcher struct {
	registry Registry
}

func NewDispatcher(registry Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// RidePayload is the normalized event body shared by customer and driver
// channels.
type RidePayload struct {
	RideID      uint              `json:"ride_id"`
	CustomerID  uint              `json:"customer_id"`
	DriverID    *uint             `json:"driver_id"`
	Status      models.RideStatus `json:"status"`
	Price       float64           `json:"price"`
	RequestedAt time.Time         `json:"requested_at"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty"`
	PickupAt    *time.Time        `json:"pickup_at,omitempty"`
	DropoffAt   *time.Time        `json:"dropoff_at,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func buildRidePayload(ride *models.Ride) RidePayload {
	return RidePayload{
		RideID:      ride.ID,
		CustomerID:  ride.CustomerID,
		DriverID:    ride.DriverID,
		Status:      ride.Status,
		Price:       ride.Price,
		RequestedAt: ride.RequestedAt,
		ConfirmedAt: ride.ConfirmedAt,
		PickupAt:    ride.PickupAt,
		DropoffAt:   ride.DropoffAt,
		UpdatedAt:   ride.UpdatedAt,
	}
}

// RideTaken tells the rest of the driver pool that an open request is gone,
// without leaking full ride detail.
type RideTaken struct {
	RideID   uint  `json:"ride_id"`
	DriverID *uint `json:"driver_id"`
}

// NewRideRequest is broadcast to the driver pool only. Customers are not yet
// bound to a driver, so it carries pickup/dropoff detail but no price and no
// identity beyond the ride id.
type NewRideRequest struct {
	RideID      uint    `json:"ride_id"`
	PickupAddr  string  `json:"pickup_destination,omitempty"`
	PickupLat   float64 `json:"pickup_latitude"`
	PickupLng   float64 `json:"pickup_longitude"`
	DropoffAddr string  `json:"dropoff_destination,omitempty"`
	DropoffLat  float64 `json:"dropoff_latitude"`
	DropoffLng  float64 `json:"dropoff_longitude"`
}

// PublishRideEvent fans a transition out to the driver pool and the owning
// customer's channel. On ride_confirmed the pool additionally gets a
// ride_taken notice so stale views of the open request clear out.
func (d *Dispatcher) PublishRideEvent(event string, ride *models.Ride) {
	payload := buildRidePayload(ride)
	message, err := json.Marshal(WebSocketMessage{Type: event, Data: payload})
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event, err)
		return
	}

	d.registry.BroadcastToDrivers(message)
	d.registry.SendToCustomer(ride.CustomerID, message)
	observability.EventsPublishedTotal.WithLabelValues(event).Inc()

	if event == engine.EventRideConfirmed {
		taken, err := json.Marshal(WebSocketMessage{
			Type: engine.EventRideTaken,
			Data: RideTaken{RideID: ride.ID, DriverID: ride.DriverID},
		})
		if err == nil {
			d.registry.BroadcastToDrivers(taken)
			observability.EventsPublishedTotal.WithLabelValues(engine.EventRideTaken).Inc()
		}
	}

	d.mirrorToRedis(event, payload)
}

// PublishNewRideRequest announces a freshly created ride to the driver pool.
func (d *Dispatcher) PublishNewRideRequest(ride *models.Ride) {
	message, err := json.Marshal(WebSocketMessage{
		Type: engine.EventNewRideRequest,
		Data: NewRideRequest{
			RideID:      ride.ID,
			PickupAddr:  ride.PickupAddr,
			PickupLat:   ride.PickupLat,
			PickupLng:   ride.PickupLng,
			DropoffAddr: ride.DropoffAddr,
			DropoffLat:  ride.DropoffLat,
			DropoffLng:  ride.DropoffLng,
		},
	})
	if err != nil {
		log.Printf("Error marshaling new ride request: %v", err)
		return
	}

	d.registry.BroadcastToDrivers(message)
	observability.EventsPublishedTotal.WithLabelValues(engine.EventNewRideRequest).Inc()

	d.mirrorToRedis(engine.EventNewRideRequest, buildRidePayload(ride))
}

// mirrorToRedis republishes the event on the ride:updates channel for
// cross-instance observers. Best effort only.
func (d *Dispatcher) mirrorToRedis(event string, payload RidePayload) {
	if RedisClient == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := PublishRideUpdate(ctx, event, payload); err != nil {
			log.Printf("Redis mirror for %s failed: %v", event, err)
		}
	}()
}
