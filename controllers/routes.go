package controllers

import (
	"log/slog"

	_ "github.com/YagooSRV/Azure-Partiel-2a3/docs"
	"github.com/YagooSRV/Azure-Partiel-2a3/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with middleware, item routes, the health
// check and the Swagger UI.
func NewRouter(h *Handler, allowedOrigins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORS(allowedOrigins),
	)

	router.GET("/health", h.Check)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.RegisterRoutes(router)

	return router
}

// RegisterRoutes mounts the five item routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	items := r.Group("/items")
	items.GET("", h.ListItems)
	items.POST("", h.CreateItem)
	items.GET("/:id", h.GetItem)
	items.PUT("/:id", h.UpdateItem)
	items.DELETE("/:id", h.DeleteItem)
}
