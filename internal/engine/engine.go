package engine

import (
	"context"
	"errors"
	"time"

	"github.com/Parth-05/RideShare/internal/models"
)

// Outbound event names carried alongside a successful transition.
const (
	EventNewRideRequest = "new_ride_request"
	EventRideConfirmed  = "ride_confirmed"
	EventRideTaken      = "ride_taken"
	EventRideOngoing    = "ride_ongoing"
	EventRideCompleted  = "ride_completed"
)

var (
	ErrInvalidTarget           = errors.New("invalid target status")
	ErrRoleNotAllowed          = errors.New("driver access required")
	ErrRideNotFound            = errors.New("ride not found")
	ErrAlreadyClaimed          = errors.New("ride already accepted by another driver")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotYourRide             = errors.New("not your ride")
	ErrUpdateConflict          = errors.New("ride update conflict")
)

// Plan is the single conditional write for one transition: update the ride
// where the status (and, past the claim, the bound driver) still match, set
// the target fields. The store must apply it atomically so that of N racing
// claims exactly one matches a row.
type Plan struct {
	From          models.RideStatus
	To            models.RideStatus
	RequireDriver bool // condition the write on driver_id = DriverID
	DriverID      uint
	Updates       map[string]interface{}
	Event         string
}

// RideStore is the durable keyed ride storage the engine decides against.
// ApplyTransition must execute the plan as one atomic conditional update and
// return (nil, nil) when no row matched; a plain read-modify-write is not an
// acceptable implementation.
type RideStore interface {
	Create(ctx context.Context, ride *models.Ride) error
	Get(ctx context.Context, id uint) (*models.Ride, error)
	ApplyTransition(ctx context.Context, id uint, plan Plan) (*models.Ride, error)
	ListByCustomer(ctx context.Context, customerID uint) ([]models.Ride, error)
	ListByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)
}

// Result is a successful transition outcome. Applied is false on the
// idempotent path (the ride already carried the target status for the same
// driver); callers must not re-publish events in that case.
type Result struct {
	Ride    *models.Ride
	Event   string
	Applied bool
}

// Engine owns the ride status state machine. It keeps no ride state across
// calls; every decision is a conditional write against the store.
type Engine struct {
	store RideStore
	now   func() time.Time
}

func New(store RideStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// AttemptTransition tries to move a ride to target on behalf of the caller.
// Only drivers advance rides past requested. Races between drivers are
// resolved by the store's conditional-update atomicity, never by locks here.
func (e *Engine) AttemptTransition(ctx context.Context, rideID uint, target models.RideStatus, callerID uint, callerRole string) (*Result, error) {
	plan, ok := planFor(target, callerID, e.now())
	if !ok {
		return nil, ErrInvalidTarget
	}
	if callerRole != string(models.RoleDriver) {
		return nil, ErrRoleNotAllowed
	}

	ride, err := e.store.ApplyTransition(ctx, rideID, plan)
	if err != nil {
		return nil, err
	}
	if ride != nil {
		return &Result{Ride: ride, Event: plan.Event, Applied: true}, nil
	}

	return e.diagnose(ctx, rideID, plan, callerID)
}

func planFor(target models.RideStatus, driverID uint, now time.Time) (Plan, bool) {
	switch target {
	case models.RideStatusConfirmed:
		// First claim: binds the driver.
		return Plan{
			From:     models.RideStatusRequested,
			To:       models.RideStatusConfirmed,
			DriverID: driverID,
			Updates: map[string]interface{}{
				"status":       models.RideStatusConfirmed,
				"driver_id":    driverID,
				"confirmed_at": now,
			},
			Event: EventRideConfirmed,
		}, true
	case models.RideStatusOngoing:
		return Plan{
			From:          models.RideStatusConfirmed,
			To:            models.RideStatusOngoing,
			RequireDriver: true,
			DriverID:      driverID,
			Updates: map[string]interface{}{
				"status":    models.RideStatusOngoing,
				"pickup_at": now,
			},
			Event: EventRideOngoing,
		}, true
	case models.RideStatusCompleted:
		return Plan{
			From:          models.RideStatusOngoing,
			To:            models.RideStatusCompleted,
			RequireDriver: true,
			DriverID:      driverID,
			Updates: map[string]interface{}{
				"status":     models.RideStatusCompleted,
				"dropoff_at": now,
			},
			Event: EventRideCompleted,
		}, true
	}
	return Plan{}, false
}

// diagnose reads current ride state after a failed conditional write to turn
// "no row matched" into a precise error. The read is unconditioned and may be
// slightly stale under a concurrent writer; a stale classification is accepted
// since the write itself already failed.
func (e *Engine) diagnose(ctx context.Context, rideID uint, plan Plan, callerID uint) (*Result, error) {
	existing, err := e.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}

	sameDriver := existing.DriverID != nil && *existing.DriverID == callerID
	if existing.Status == plan.To && sameDriver {
		// Duplicate of an already-applied transition, e.g. a network retry.
		return &Result{Ride: existing, Event: plan.Event, Applied: false}, nil
	}

	if plan.To == models.RideStatusConfirmed {
		if existing.Status != models.RideStatusRequested {
			return nil, ErrAlreadyClaimed
		}
		return nil, ErrUpdateConflict
	}

	if existing.Status != plan.From {
		return nil, ErrInvalidStatusTransition
	}
	if !sameDriver {
		return nil, ErrNotYourRide
	}
	return nil, ErrUpdateConflict
}
