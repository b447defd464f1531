package handlers

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
	"github.com/microgestion/gestion-api/services"
)

type ExportHandler struct {
	DB *sql.DB
}

// ExportSales renvoie les ventes de l'année en CSV.
func (h *ExportHandler) ExportSales(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, _, ok := parseWindow(c)
	if !ok {
		return
	}

	rows, err := h.DB.Query(`
		SELECT `+saleColumns+` FROM sales WHERE user_id = $1 AND year = $2
		ORDER BY invoice_number
	`, userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan sale"})
			return
		}
		sales = append(sales, sale)
	}

	data, err := services.ExportSalesCSV(sales)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build CSV"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ventes-%d.csv"`, year))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportCharges renvoie les charges de l'année en CSV.
func (h *ExportHandler) ExportCharges(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, _, ok := parseWindow(c)
	if !ok {
		return
	}

	rows, err := h.DB.Query(`
		SELECT `+chargeColumns+` FROM charges WHERE user_id = $1 AND year = $2
		ORDER BY expense_date
	`, userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch charges"})
		return
	}
	defer rows.Close()

	var charges []models.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan charge"})
			return
		}
		charges = append(charges, charge)
	}

	data, err := services.ExportChargesCSV(charges)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build CSV"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="charges-%d.csv"`, year))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
