package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusRequested RideStatus = "requested"
	RideStatusConfirmed RideStatus = "confirmed"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// Ride tracks one trip from request to completion. DriverID stays nil until a
// driver claims the ride and is never reassigned afterwards.
type Ride struct {
	gorm.Model
	CustomerID  uint       `json:"customerId" gorm:"not null;index"`
	DriverID    *uint      `json:"driverId,omitempty" gorm:"index"`
	Status      RideStatus `json:"status" gorm:"not null;default:'requested'"`
	PickupAddr  string     `json:"pickupAddress"`
	PickupLat   float64    `json:"pickupLat" gorm:"not null"`
	PickupLng   float64    `json:"pickupLng" gorm:"not null"`
	DropoffAddr string     `json:"dropoffAddress"`
	DropoffLat  float64    `json:"dropoffLat" gorm:"not null"`
	DropoffLng  float64    `json:"dropoffLng" gorm:"not null"`
	Price       float64    `json:"price,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	PickupAt    *time.Time `json:"pickupAt,omitempty"`
	DropoffAt   *time.Time `json:"dropoffAt,omitempty"`
	Customer    *User      `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Driver      *User      `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}
