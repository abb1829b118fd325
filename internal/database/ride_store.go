package database

import (
	"context"
	"errors"

	"github.com/Parth-05/RideShare/internal/engine"
	"github.com/Parth-05/RideShare/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RideStore is the Postgres-backed ride record store. Status changes go
// through ApplyTransition only; the predicate lives inside the UPDATE itself
// so concurrent engine instances race safely at the database.
type RideStore struct {
	db *gorm.DB
}

func NewRideStore(db *gorm.DB) *RideStore {
	return &RideStore{db: db}
}

func (s *RideStore) Create(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Create(ride).Error
}

func (s *RideStore) Get(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	err := s.db.WithContext(ctx).First(&ride, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

// ApplyTransition executes the plan as one conditional UPDATE ... RETURNING.
// A nil ride with nil error means no row matched the predicate.
func (s *RideStore) ApplyTransition(ctx context.Context, id uint, plan engine.Plan) (*models.Ride, error) {
	var ride models.Ride
	q := s.db.WithContext(ctx).Model(&ride).
		Clauses(clause.Returning{}).
		Where("id = ? AND status = ?", id, plan.From)
	if plan.RequireDriver {
		q = q.Where("driver_id = ?", plan.DriverID)
	}

	res := q.Updates(plan.Updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &ride, nil
}

func (s *RideStore) ListByCustomer(ctx context.Context, customerID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rides).Error
	return rides, err
}

func (s *RideStore) ListByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&rides).Error
	return rides, err
}
