package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// idParam lit le paramètre :id et vérifie que c'est un UUID valide.
// Sans cette vérification, un id malformé ferait échouer le cast côté
// Postgres et remonterait en 500 au lieu d'un 400.
func idParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return "", false
	}
	return id, true
}
