package v1

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_reporting/internal/config"
	"github.com/sirupsen/logrus"
)

// AdminSecretMiddleware пропускает запрос только при точном совпадении заголовка с секретом администратора
func AdminSecretMiddleware(cfg *config.Config, log *logrus.Logger) gin.HandlerFunc {
	expected := []byte(cfg.AdminSecret)

	return func(c *gin.Context) {
		provided := c.GetHeader(cfg.AdminHeader)

		if provided == "" {
			log.WithField("path", c.FullPath()).Warn("Admin secret missing from request")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		// Пустой секрет в конфигурации закрывает доступ полностью
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			log.WithField("path", c.FullPath()).Warn("Invalid admin secret provided")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
