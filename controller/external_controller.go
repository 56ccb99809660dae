package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dandanshan/meal-selection-app/stocks"
	"github.com/dandanshan/meal-selection-app/weather"
)

var (
	weatherClient = weather.NewClient()
	stocksClient  = stocks.NewClient()
)

// GetWeather always answers 200, with either the live station reading
// or the fallback.
func GetWeather(c *gin.Context) {
	c.JSON(http.StatusOK, weatherClient.Fetch())
}

// GetStocks always answers 200, with either live quotes or the
// placeholder basket.
func GetStocks(c *gin.Context) {
	c.JSON(http.StatusOK, stocksClient.Fetch())
}
