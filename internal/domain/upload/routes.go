package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the upload endpoint under r.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/uploads", h.Upload)
}
