package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the handler onto a gin engine.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.GET("/types", h.ListTypes)
		api.POST("/types", h.CreateType)
		api.PUT("/types/:id", h.UpdateType)
		api.DELETE("/types/:id", h.DeleteType)

		api.GET("/tags", h.ListTags)
		api.POST("/tags", h.CreateTag)
		api.PUT("/tags/:id", h.UpdateTag)
		api.DELETE("/tags/:id", h.DeleteTag)

		api.GET("/properties", h.ListProperties)
		api.POST("/properties", h.CreateProperty)
		api.GET("/properties/:id", h.GetProperty)
		api.PUT("/properties/:id", h.UpdateProperty)
		api.DELETE("/properties/:id", h.DeleteProperty)
		api.POST("/properties/:id/sold", h.MarkPropertySold)
		api.POST("/properties/:id/cancel", h.MarkPropertyCanceled)

		// Batch transitions are all-or-nothing
		api.POST("/batch/properties/sold", h.MarkPropertiesSold)
		api.POST("/batch/properties/cancel", h.MarkPropertiesCanceled)

		api.GET("/offers", h.ListOffers)
		api.POST("/offers", h.CreateOffer)
		api.POST("/offers/:id/accept", h.AcceptOffer)
		api.POST("/offers/:id/refuse", h.RefuseOffer)
		api.PUT("/offers/:id/deadline", h.SetOfferDeadline)
	}
}
