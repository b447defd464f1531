package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
	"github.com/microgestion/gestion-api/services"
)

type SettingsHandler struct {
	DB *sql.DB
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, loadSettings(h.DB, userID))
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tvaRate := services.FallbackTVARate
	if req.DefaultTVARate != nil {
		tvaRate = *req.DefaultTVARate
	}

	_, err := h.DB.Exec(`
		INSERT INTO settings (user_id, company_name, siret, address, postal_code, city,
		                      default_tva_rate, invoice_footer, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET company_name = EXCLUDED.company_name,
		    siret = EXCLUDED.siret,
		    address = EXCLUDED.address,
		    postal_code = EXCLUDED.postal_code,
		    city = EXCLUDED.city,
		    default_tva_rate = EXCLUDED.default_tva_rate,
		    invoice_footer = EXCLUDED.invoice_footer,
		    updated_at = NOW()
	`, userID, req.CompanyName, req.Siret, req.Address, req.PostalCode, req.City,
		tvaRate, req.InvoiceFooter)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}
