package handlers

import (
	"github.com/Parth-05/RideShare/internal/models"
	"github.com/Parth-05/RideShare/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterInput struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone"`
	Role      string `json:"role" binding:"required,oneof=customer driver"`
	CarName   string `json:"car_name"`
	CarType   string `json:"car_type" binding:"omitempty,oneof=Standard Premium XL"`
	CarNumber string `json:"car_number"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		// Drivers must register a vehicle
		if input.Role == string(models.RoleDriver) {
			if input.CarName == "" || input.CarNumber == "" {
				c.JSON(400, gin.H{"error": "Drivers must provide car name and car number"})
				return
			}
			if input.CarType == "" {
				input.CarType = "Standard"
			}
		}

		user := models.User{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			Password:  input.Password,
			Phone:     input.Phone,
			Role:      input.Role,
			CarName:   input.CarName,
			CarType:   input.CarType,
			CarNumber: input.CarNumber,
		}

		if err := user.HashPassword(); err != nil {
			c.JSON(500, gin.H{"error": "Failed to hash password"})
			return
		}

		if result := db.Create(&user); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to create user: " + result.Error.Error()})
			return
		}

		c.JSON(201, gin.H{
			"message": "User created successfully",
			"user": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
				"phone":     user.Phone,
				"role":      user.Role,
			},
		})
	}
}

func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.Where("email = ?", input.Email).First(&user); result.Error != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(&user)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(200, gin.H{
			"token": token,
			"user": gin.H{
				"id":        user.ID,
				"email":     user.Email,
				"firstName": user.FirstName,
				"lastName":  user.LastName,
				"role":      user.Role,
			},
		})
	}
}
