package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dandanshan/meal-selection-app/database"
	"github.com/dandanshan/meal-selection-app/selector"
)

var sel *selector.Selector

// Selector returns the process-wide selector, created on first use so
// the database connection exists by then. Tests swap it out.
func Selector() *selector.Selector {
	if sel == nil {
		sel = selector.New(database.DB)
	}
	return sel
}

type selectRequest struct {
	PeopleCount *int     `json:"peopleCount" binding:"required"`
	IsRaining   *bool    `json:"isRaining" binding:"required"`
	Weather     string   `json:"weather"`
	Temperature float64  `json:"temperature"`
	Radius      *float64 `json:"radius"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// SelectRestaurant runs one tentative draw. Nothing is persisted here;
// the client confirms through POST /api/history.
func SelectRestaurant(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "peopleCount and isRaining are required",
		})
		return
	}
	if *req.PeopleCount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "peopleCount must be a positive number",
		})
		return
	}

	restaurant, err := Selector().Select(selector.Criteria{
		PeopleCount: *req.PeopleCount,
		IsRaining:   *req.IsRaining,
		Weather:     req.Weather,
		Temperature: req.Temperature,
		Radius:      req.Radius,
		Latitude:    req.Lat,
		Longitude:   req.Lng,
	})
	if err != nil {
		if errors.Is(err, selector.ErrNoMatch) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "沒有符合條件的餐廳",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to select restaurant",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"restaurant": restaurant,
		"selectionData": gin.H{
			"peopleCount": *req.PeopleCount,
			"weather":     req.Weather,
			"isRaining":   *req.IsRaining,
			"date":        time.Now(),
		},
	})
}
