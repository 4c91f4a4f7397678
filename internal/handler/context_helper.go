package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-network-api/internal/middleware"
	"github.com/noah-isme/alumni-network-api/internal/models"
)

func principalFromContext(c *gin.Context) *models.Principal {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return nil
	}
	return principal
}
