package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Carlostavo/residuos-api/services"
)

// respondError maps a service error to the JSON envelope. Every
// operation failure leaves through here; nothing is re-thrown.
func respondError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *services.AuthorizationError:
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": e.Code, "message": e.Message},
		})
	case *services.ValidationError:
		status := http.StatusBadRequest
		if e.Code == "EMAIL_EXISTS" {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   gin.H{"code": e.Code, "message": e.Message},
		})
	case *services.ProviderError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": e.Code, "message": e.Message},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   gin.H{"code": "INTERNAL_ERROR", "message": err.Error()},
		})
	}
}

// respondBindingError reports a malformed request body
func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Datos de la solicitud inválidos",
			"details": err.Error(),
		},
	})
}
