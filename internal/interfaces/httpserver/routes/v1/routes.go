package v1

import (
	"github.com/gin-gonic/gin"

	"chapel-server/media-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	group.POST("/uploads", r.handlers.Uploads.Batch)

	group.POST("/records", r.handlers.Records.Create)
	group.GET("/records", r.handlers.Records.List)
	group.GET("/records/:id", r.handlers.Records.Get)
	group.PUT("/records/:id", r.handlers.Records.Update)
	group.PATCH("/records/:id", r.handlers.Records.Update)
	group.DELETE("/records/:id", r.handlers.Records.Delete)
}
