package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dandanshan/meal-selection-app/database"
	"github.com/dandanshan/meal-selection-app/model"
)

func GetColleagues(c *gin.Context) {
	var colleagues []model.Colleague
	if err := database.DB.Order("name ASC").Find(&colleagues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch colleagues",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    colleagues,
	})
}

func AddColleague(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Colleague name is required",
		})
		return
	}

	colleague := model.Colleague{Name: req.Name}
	if err := database.DB.Create(&colleague).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create colleague",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    colleague,
	})
}
