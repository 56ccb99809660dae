package route

import (
	"github.com/gin-gonic/gin"

	"github.com/dandanshan/meal-selection-app/controller"
)

func APIRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/restaurants", controller.GetRestaurants)
		api.POST("/restaurants", controller.CreateRestaurant)
		api.POST("/restaurants/import", controller.BulkImportRestaurants)
		api.PUT("/restaurants/:id", controller.UpdateRestaurant)
		api.DELETE("/restaurants/:id", controller.DeleteRestaurant)

		api.POST("/select", controller.SelectRestaurant)

		api.GET("/history", controller.GetHistory)
		api.POST("/history", controller.CreateHistory)
		api.DELETE("/history", controller.ClearHistory)
		api.PUT("/history/:id/confirm", controller.ConfirmHistory)
		api.DELETE("/history/:id", controller.DeleteHistory)

		api.POST("/payment", controller.CreatePayment)
		api.PUT("/payment", controller.UpsertPayment)

		api.GET("/colleagues", controller.GetColleagues)
		api.POST("/colleagues", controller.AddColleague)

		api.GET("/weather", controller.GetWeather)
		api.GET("/stocks", controller.GetStocks)
	}
}
