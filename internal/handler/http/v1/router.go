package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.root)

	// Маршрут Health-check
	router.GET("/system/health", h.healthCheck)

	// Маршруты аутентификации
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", h.SessionMiddleware(), h.me)
		auth.GET("/users", h.SessionMiddleware(), h.RequireAdmin(), h.listUsers)
	}

	// Маршруты для управления инцидентами, только для вошедших пользователей
	incidents := router.Group("/incidents", h.SessionMiddleware())
	{
		incidents.GET("/", h.listIncidents)
		incidents.POST("/", h.createIncident)
		incidents.GET("/urgent", h.listUrgent)
		incidents.GET("/stats", h.getStats)
		incidents.GET("/priority/:priority", h.listByPriority)
		incidents.GET("/search/", h.searchIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.PATCH("/:id", h.updateStatus)
		incidents.DELETE("/:id", h.deleteIncident)
	}
}
