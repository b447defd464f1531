package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/services"
)

type DashboardHandler struct {
	DB *sql.DB
}

// GetSummary retourne le chiffre d'affaires, les charges projetées et la
// marge de l'année (ou du couple année+mois) demandée.
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, month, ok := parseWindow(c)
	if !ok {
		return
	}

	var caHt, caTtc float64
	var saleCount int
	query := `
		SELECT COALESCE(SUM(ca_ht), 0), COALESCE(SUM(total_ttc), 0), COUNT(*)
		FROM sales
		WHERE user_id = $1 AND year = $2 AND status != 'cancelled'`
	args := []interface{}{userID, year}
	if month != nil {
		query += ` AND EXTRACT(MONTH FROM sale_date) = $3`
		args = append(args, *month)
	}
	if err := h.DB.QueryRow(query, args...).Scan(&caHt, &caTtc, &saleCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	chargeHandler := &ChargeHandler{DB: h.DB}
	charges, err := chargeHandler.chargesForYear(userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch charges"})
		return
	}
	chargeTotals := services.GetTotalCharges(charges, year, month)

	c.JSON(http.StatusOK, gin.H{
		"year":       year,
		"ca_ht":      caHt,
		"ca_ttc":     caTtc,
		"sale_count": saleCount,
		"charges":    chargeTotals,
		"margin_ht":  caHt - chargeTotals.TotalHt,
	})
}
