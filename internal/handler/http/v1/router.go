package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.liveness)

	incidents := router.Group("/api/incidents")
	{
		// Подача инцидента открыта для всех
		incidents.POST("", h.createIncident)

		admin := incidents.Group("", AdminSecretMiddleware(h.cfg, h.logger))
		admin.GET("", h.listIncidents)
		admin.GET("/:id", h.getIncident)
		admin.PATCH("/:id/status", h.updateStatus)
	}
}
