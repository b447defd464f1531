package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
	"github.com/microgestion/gestion-api/services"
)

type ChargeHandler struct {
	DB *sql.DB
	WS *WSHandler
}

const chargeColumns = `
	id, user_id, label, COALESCE(category, ''), COALESCE(vendor, ''),
	COALESCE(description, ''), COALESCE(payment_method, ''), COALESCE(notes, ''),
	article_id, expense_date, amount, recurring, recurring_type, year,
	created_at, updated_at`

func scanCharge(row interface{ Scan(...interface{}) error }) (models.Charge, error) {
	var charge models.Charge
	err := row.Scan(
		&charge.ID, &charge.UserID, &charge.Label, &charge.Category, &charge.Vendor,
		&charge.Description, &charge.PaymentMethod, &charge.Notes,
		&charge.ArticleID, &charge.ExpenseDate, &charge.Amount, &charge.Recurring,
		&charge.RecurringType, &charge.Year, &charge.CreatedAt, &charge.UpdatedAt,
	)
	return charge, err
}

func (h *ChargeHandler) chargesForYear(userID string, year int) ([]models.Charge, error) {
	rows, err := h.DB.Query(`
		SELECT `+chargeColumns+`
		FROM charges
		WHERE user_id = $1 AND (year <= $2 OR NOT recurring)
		ORDER BY expense_date, created_at
	`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []models.Charge
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}
	return charges, rows.Err()
}

// parseWindow lit year (défaut : année courante) et month (optionnel) de la
// query string.
func parseWindow(c *gin.Context) (int, *int, bool) {
	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return 0, nil, false
		}
		year = parsed
	}

	var month *int
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return 0, nil, false
		}
		month = &parsed
	}

	return year, month, true
}

// deriveRecurring applique la règle de création : le flag recurring découle
// du type fourni, jamais du client.
func deriveRecurring(recurringType string) (bool, string) {
	switch recurringType {
	case models.RecurringMonthly, models.RecurringYearly:
		return true, recurringType
	default:
		return false, models.RecurringNone
	}
}

func (h *ChargeHandler) ListCharges(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT `+chargeColumns+`
		FROM charges
		WHERE user_id = $1
		ORDER BY expense_date DESC, created_at DESC
	`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch charges"})
		return
	}
	defer rows.Close()

	charges := []models.Charge{}
	for rows.Next() {
		charge, err := scanCharge(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan charge"})
			return
		}
		charges = append(charges, charge)
	}

	c.JSON(http.StatusOK, charges)
}

func (h *ChargeHandler) GetCharge(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	charge, err := scanCharge(h.DB.QueryRow(`
		SELECT `+chargeColumns+` FROM charges WHERE id = $1 AND user_id = $2
	`, id, userID))

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, charge)
}

// GetCalculatedCharges projette les charges de l'utilisateur sur la fenêtre
// demandée (année, ou année+mois).
func (h *ChargeHandler) GetCalculatedCharges(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, month, ok := parseWindow(c)
	if !ok {
		return
	}

	charges, err := h.chargesForYear(userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch charges"})
		return
	}

	c.JSON(http.StatusOK, services.CalculateRecurringCharges(charges, year, month))
}

// GetTotals agrège les charges projetées de la fenêtre demandée.
func (h *ChargeHandler) GetTotals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, month, ok := parseWindow(c)
	if !ok {
		return
	}

	charges, err := h.chargesForYear(userID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch charges"})
		return
	}

	c.JSON(http.StatusOK, services.GetTotalCharges(charges, year, month))
}

func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense_date, expected YYYY-MM-DD"})
		return
	}

	recurring, recurringType := deriveRecurring(req.RecurringType)

	var chargeID string
	err = h.DB.QueryRow(`
		INSERT INTO charges (user_id, label, category, vendor, description, payment_method,
		                     notes, article_id, expense_date, amount, recurring, recurring_type, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, userID, req.Label, req.Category, req.Vendor, req.Description, req.PaymentMethod,
		req.Notes, req.ArticleID, expenseDate, req.Amount, recurring, recurringType,
		expenseDate.Year()).Scan(&chargeID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create charge"})
		return
	}

	h.WS.BroadcastUpdate(userID, "charge_created")
	c.JSON(http.StatusCreated, gin.H{"id": chargeID})
}

func (h *ChargeHandler) UpdateCharge(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense_date, expected YYYY-MM-DD"})
		return
	}

	recurring, recurringType := deriveRecurring(req.RecurringType)

	result, err := h.DB.Exec(`
		UPDATE charges
		SET label = $1, category = $2, vendor = $3, description = $4, payment_method = $5,
		    notes = $6, article_id = $7, expense_date = $8, amount = $9, recurring = $10,
		    recurring_type = $11, year = $12, updated_at = NOW()
		WHERE id = $13 AND user_id = $14
	`, req.Label, req.Category, req.Vendor, req.Description, req.PaymentMethod,
		req.Notes, req.ArticleID, expenseDate, req.Amount, recurring, recurringType,
		expenseDate.Year(), id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update charge"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
		return
	}

	h.WS.BroadcastUpdate(userID, "charge_updated")
	c.JSON(http.StatusOK, gin.H{"message": "Charge updated"})
}

func (h *ChargeHandler) DeleteCharge(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	result, err := h.DB.Exec(`
		DELETE FROM charges WHERE id = $1 AND user_id = $2
	`, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete charge"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
		return
	}

	h.WS.BroadcastUpdate(userID, "charge_deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Charge deleted"})
}
