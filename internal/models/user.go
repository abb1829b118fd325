package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleDriver   UserRole = "driver"
)

type User struct {
	gorm.Model          // This embeds ID, CreatedAt, UpdatedAt, and DeletedAt
	FirstName    string `json:"firstName" gorm:"column:first_name;not null"`
	LastName     string `json:"lastName" gorm:"column:last_name"`
	Email        string `json:"email" gorm:"column:email;unique;not null"`
	Password     string `json:"-" gorm:"-:migration"` // Temporary field for password handling
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Phone        string `json:"phone" gorm:"column:phone"`
	Role         string `json:"role" gorm:"column:role;not null"`
	CarName      string `json:"carName,omitempty" gorm:"column:car_name"`
	CarType      string `json:"carType,omitempty" gorm:"column:car_type"`
	CarNumber    string `json:"carNumber,omitempty" gorm:"column:car_number"`
	PhotoURL     string `json:"photoUrl,omitempty" gorm:"column:photo_url"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
