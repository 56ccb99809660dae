package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dandanshan/meal-selection-app/database"
	"github.com/dandanshan/meal-selection-app/model"
)

// GetHistory lists the last rolling month of outings, newest first,
// with restaurant and payment joined in.
func GetHistory(c *gin.Context) {
	oneMonthAgo := time.Now().AddDate(0, -1, 0)

	var entries []model.History
	if err := database.DB.
		Where("date >= ?", oneMonthAgo).
		Preload("Restaurant").
		Preload("Payment").
		Order("date DESC").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch history",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}

type confirmRequest struct {
	RestaurantID string    `json:"restaurantId" binding:"required"`
	PeopleCount  int       `json:"peopleCount" binding:"required,gt=0"`
	Weather      string    `json:"weather"`
	IsRaining    *bool     `json:"isRaining" binding:"required"`
	Date         time.Time `json:"date" binding:"required"`
}

// CreateHistory turns a tentative pick into a confirmed outing. The
// entry is born confirmed; there is no persisted pending state.
func CreateHistory(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid history payload: " + err.Error(),
		})
		return
	}

	var restaurant model.Restaurant
	if err := database.DB.Where("id = ?", req.RestaurantID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Restaurant not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to fetch restaurant",
			})
		}
		return
	}

	entry := model.History{
		Date:         req.Date,
		RestaurantID: req.RestaurantID,
		PeopleCount:  req.PeopleCount,
		Weather:      req.Weather,
		IsRaining:    *req.IsRaining,
		Confirmed:    true,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create history record",
		})
		return
	}
	entry.Restaurant = &restaurant

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// ConfirmHistory re-confirms an existing entry. Kept for clients that
// still call the two-step flow; POST /api/history already confirms.
func ConfirmHistory(c *gin.Context) {
	id := c.Param("id")

	var entry model.History
	if err := database.DB.Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "History record not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to fetch history record",
			})
		}
		return
	}

	entry.Confirmed = true
	if err := database.DB.Save(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to confirm history record",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// DeleteHistory removes one entry together with its payment.
func DeleteHistory(c *gin.Context) {
	id := c.Param("id")

	var entry model.History
	if err := database.DB.Preload("Payment").Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "History record not found",
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to fetch history record",
			})
		}
		return
	}

	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Unexpected error occurred",
			})
		}
	}()

	if entry.Payment != nil {
		if err := tx.Where("id = ?", entry.Payment.ID).Delete(&model.Payment{}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Failed to delete payment record",
			})
			return
		}
	}
	if err := tx.Where("id = ?", entry.ID).Delete(&model.History{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete history record",
		})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Transaction failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearHistory wipes the whole log. Payments go first so the
// history foreign key is never violated.
func ClearHistory(c *gin.Context) {
	tx := database.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Unexpected error occurred",
			})
		}
	}()

	if err := tx.Where("1 = 1").Delete(&model.Payment{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to clear payments",
		})
		return
	}
	if err := tx.Where("1 = 1").Delete(&model.History{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to clear history",
		})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Transaction failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
