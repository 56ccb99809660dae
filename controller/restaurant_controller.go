package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/dandanshan/meal-selection-app/database"
	"github.com/dandanshan/meal-selection-app/model"
)

type restaurantRequest struct {
	Name                 string             `json:"name" binding:"required"`
	Type                 string             `json:"type"`
	SuggestedPeople      model.PartySize    `json:"suggestedPeople"`
	Phone                string             `json:"phone"`
	Address              string             `json:"address"`
	BusinessDays         model.BusinessDays `json:"businessDays"`
	NotSuitableForSummer bool               `json:"notSuitableForSummer"`
	NotSuitableForWinter bool               `json:"notSuitableForWinter"`
	NotSuitableForRainy  bool               `json:"notSuitableForRainy"`
	Distance             float64            `json:"distance"`
	Latitude             *float64           `json:"latitude"`
	Longitude            *float64           `json:"longitude"`
}

func (r restaurantRequest) apply(m *model.Restaurant) {
	m.Name = r.Name
	m.Type = r.Type
	m.SuggestedPeople = r.SuggestedPeople
	m.Phone = r.Phone
	m.Address = r.Address
	m.BusinessDays = r.BusinessDays
	m.NotSuitableForSummer = r.NotSuitableForSummer
	m.NotSuitableForWinter = r.NotSuitableForWinter
	m.NotSuitableForRainy = r.NotSuitableForRainy
	m.Distance = r.Distance
	m.Latitude = r.Latitude
	m.Longitude = r.Longitude
}

func GetRestaurants(c *gin.Context) {
	var restaurants []model.Restaurant
	if err := database.DB.Order("created_at DESC").Find(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to fetch restaurants",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    restaurants,
	})
}

func CreateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid restaurant payload: " + err.Error(),
		})
		return
	}

	var restaurant model.Restaurant
	req.apply(&restaurant)

	if err := database.DB.Create(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create restaurant",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    restaurant,
	})
}

func UpdateRestaurant(c *gin.Context) {
	id := c.Param("id")

	var restaurant model.Restaurant
	if err := database.DB.Where("id = ?", id).First(&restaurant).Error; err != nil {
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

	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid restaurant payload: " + err.Error(),
		})
		return
	}
	req.apply(&restaurant)

	if err := database.DB.Save(&restaurant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to update restaurant",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    restaurant,
	})
}

// DeleteRestaurant removes a catalog entry unconditionally. History
// entries that reference it keep the dangling id.
func DeleteRestaurant(c *gin.Context) {
	id := c.Param("id")

	result := database.DB.Where("id = ?", id).Delete(&model.Restaurant{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to delete restaurant",
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Restaurant not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

var validDayTokens = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// BulkImportRestaurants loads catalog entries from an uploaded Excel
// sheet. Columns: name, cuisine type, party-size band, business days
// (comma-separated weekday tokens), distance, phone, address, then the
// three unsuitability flags. Bad rows are skipped, not fatal.
func BulkImportRestaurants(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Excel file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unable to open Excel file"})
		return
	}
	defer file.Close()

	xl, err := excelize.OpenReader(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse Excel file"})
		return
	}

	rows, err := xl.GetRows("Sheet1")
	if err != nil || len(rows) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Excel must have at least one row of data"})
		return
	}

	var restaurants []model.Restaurant
	for rowIndex, row := range rows[1:] {
		if len(row) < 5 {
			slog.Warn("incomplete import row skipped", "row", rowIndex+2)
			continue
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			slog.Warn("import row without a name skipped", "row", rowIndex+2)
			continue
		}

		days := parseDayList(row[3])
		if len(days) == 0 {
			slog.Warn("import row without valid business days skipped", "row", rowIndex+2)
			continue
		}

		distance, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil || distance < 0 {
			slog.Warn("invalid distance in import row", "row", rowIndex+2, "value", row[4])
			continue
		}

		restaurant := model.Restaurant{
			Name:            name,
			Type:            strings.TrimSpace(row[1]),
			SuggestedPeople: model.PartySize{Spec: strings.TrimSpace(row[2])},
			BusinessDays:    days,
			Distance:        distance,
		}
		if len(row) > 5 {
			restaurant.Phone = strings.TrimSpace(row[5])
		}
		if len(row) > 6 {
			restaurant.Address = strings.TrimSpace(row[6])
		}
		if len(row) > 7 {
			restaurant.NotSuitableForSummer = parseFlag(row[7])
		}
		if len(row) > 8 {
			restaurant.NotSuitableForWinter = parseFlag(row[8])
		}
		if len(row) > 9 {
			restaurant.NotSuitableForRainy = parseFlag(row[9])
		}

		restaurants = append(restaurants, restaurant)
	}

	if len(restaurants) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No valid rows found"})
		return
	}

	if err := database.DB.Create(&restaurants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to insert restaurants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bulk restaurant import successful",
		"count":   len(restaurants),
	})
}

func parseDayList(raw string) model.BusinessDays {
	var days model.BusinessDays
	for _, part := range strings.Split(raw, ",") {
		day := strings.ToLower(strings.TrimSpace(part))
		if validDayTokens[day] && !days.Contains(day) {
			days = append(days, day)
		}
	}
	return days
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
