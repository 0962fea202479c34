package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/estimate", handler.EstimatePrice)
		api.POST("/analyze", handler.AnalyzeProperty)
		api.POST("/compare", handler.CompareProperties)

		market := api.Group("/market")
		{
			market.GET("/land-price", handler.GetLandPrice)
			market.GET("/yield", handler.GetAreaYield)
			market.GET("/comparables", handler.GetComparables)
			market.GET("/trends", handler.GetMarketTrends)
		}

		api.POST("/properties", handler.RegisterProperty)
		api.GET("/properties", handler.ListProperties)
		api.GET("/properties/:id", handler.GetProperty)

		api.POST("/investors", handler.RegisterInvestor)
		api.GET("/investors/:id", handler.GetInvestor)

		api.GET("/portfolio/:investor_id", handler.AnalyzePortfolio)
	}
}
