package handlers

import (
	"github.com/Parth-05/RideShare/internal/models"
	"github.com/Parth-05/RideShare/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func profileResponse(user *models.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"phone":     user.Phone,
		"role":      user.Role,
		"carName":   user.CarName,
		"carType":   user.CarType,
		"carNumber": user.CarNumber,
		"photoUrl":  user.PhotoURL,
	}
}

// GetProfile retrieves the user's profile
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, profileResponse(&user))
	}
}

// UpdateProfile updates the user's profile information
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input struct {
			FirstName *string `json:"firstName"`
			LastName  *string `json:"lastName"`
			Phone     *string `json:"phone"`
			CarName   *string `json:"carName"`
			CarType   *string `json:"carType"`
			CarNumber *string `json:"carNumber"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		// Update fields individually to handle empty strings properly
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.CarName != nil {
			user.CarName = *input.CarName
		}
		if input.CarType != nil {
			user.CarType = *input.CarType
		}
		if input.CarNumber != nil {
			user.CarNumber = *input.CarNumber
		}

		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to update profile"})
			return
		}

		c.JSON(200, profileResponse(&user))
	}
}

// UploadProfilePhoto stores a profile photo and records its URL
func UploadProfilePhoto(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"error": "Photo file is required"})
			return
		}

		var user models.User
		if err := db.First(&user, userId).Error; err != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		path, err := services.UploadImage(file, "profiles")
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to upload photo: " + err.Error()})
			return
		}

		user.PhotoURL = services.GetImageURL(path)
		if err := db.Save(&user).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to save photo URL"})
			return
		}

		c.JSON(200, gin.H{"photoUrl": user.PhotoURL})
	}
}
