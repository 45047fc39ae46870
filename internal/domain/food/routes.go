package food

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the food endpoints under r.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	foods := r.Group("/foods")
	{
		foods.GET("", h.List)
		foods.POST("", h.Create)
		foods.GET("/count", h.Count)
		foods.GET("/types", h.ListTypes)
		foods.GET("/search", h.Search)
		foods.GET("/by-slugs", h.ListBySlugs)
		foods.GET("/by-type/:type", h.ListByType)
		foods.GET("/by-slug/:slug", h.GetBySlug)
		foods.PATCH("/price", h.EditPrice)
		foods.DELETE("/by-slug/:slug", h.Delete)
	}
}
