package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/microgestion/gestion-api/middleware"
	"github.com/microgestion/gestion-api/models"
	"github.com/microgestion/gestion-api/services"
	"github.com/microgestion/gestion-api/utils"
)

type SaleHandler struct {
	DB      *sql.DB
	Billing *services.BillingService
	Email   *services.EmailService
	WS      *WSHandler
}

const saleColumns = `
	id, user_id, client_id, article_id, invoice_number, quantity, unit_price_ht,
	COALESCE(options, '[]'), tva_rate, ca_ht, tva_amount, total_ttc, year,
	sale_date, COALESCE(status, 'issued'), COALESCE(notes, ''), created_at, updated_at`

func scanSale(row interface{ Scan(...interface{}) error }) (models.Sale, error) {
	var sale models.Sale
	err := row.Scan(
		&sale.ID, &sale.UserID, &sale.ClientID, &sale.ArticleID, &sale.InvoiceNumber,
		&sale.Quantity, &sale.UnitPriceHt, &sale.Options, &sale.TVARate,
		&sale.CaHt, &sale.TVAAmount, &sale.TotalTtc, &sale.Year,
		&sale.SaleDate, &sale.Status, &sale.Notes, &sale.CreatedAt, &sale.UpdatedAt,
	)
	return sale, err
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := `SELECT ` + saleColumns + ` FROM sales WHERE user_id = $1`
	args := []interface{}{userID}
	if year := c.Query("year"); year != "" {
		query += ` AND year = $2`
		args = append(args, year)
	}
	query += ` ORDER BY sale_date DESC, invoice_number DESC`

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan sale"})
			return
		}
		sales = append(sales, sale)
	}

	c.JSON(http.StatusOK, sales)
}

func (h *SaleHandler) GetSale(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	sale, err := scanSale(h.DB.QueryRow(`
		SELECT `+saleColumns+` FROM sales WHERE id = $1 AND user_id = $2
	`, id, userID))

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options, err := models.ParseOptions(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	optionsJSON := req.Options
	if len(optionsJSON) == 0 {
		optionsJSON = []byte("[]")
	}

	saleDate := time.Now()
	if req.SaleDate != "" {
		parsed, err := time.Parse("2006-01-02", req.SaleDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale_date, expected YYYY-MM-DD"})
			return
		}
		saleDate = parsed
	}

	ctx := c.Request.Context()
	tvaRate := h.Billing.ResolveTVARate(ctx, userID, req.TVARate)
	amounts := services.CalculateSaleAmounts(req.Quantity, req.UnitPriceHt, models.OptionsTotal(options), tvaRate)

	// L'attribution du numéro n'est pas verrouillée ; la contrainte
	// UNIQUE(user_id, invoice_number) tranche, et on retente sur collision
	// tant que le numéro était auto-attribué.
	var saleID, invoiceNumber string
	for attempt := 0; attempt < 3; attempt++ {
		invoiceNumber = req.InvoiceNumber
		if invoiceNumber == "" {
			invoiceNumber, err = h.Billing.NextInvoiceNumber(ctx, userID, 0)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate invoice number"})
				return
			}
		}

		err = h.DB.QueryRowContext(ctx, `
			INSERT INTO sales (user_id, client_id, article_id, invoice_number, quantity,
			                   unit_price_ht, options, tva_rate, ca_ht, tva_amount,
			                   total_ttc, year, sale_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`, userID, req.ClientID, req.ArticleID, invoiceNumber, req.Quantity,
			req.UnitPriceHt, []byte(optionsJSON), tvaRate, amounts.CaHt, amounts.TVAAmount,
			amounts.TotalTtc, amounts.Year, saleDate, req.Notes).Scan(&saleID)

		if err == nil {
			break
		}
		if services.IsUniqueViolation(err) {
			if req.InvoiceNumber != "" {
				c.JSON(http.StatusConflict, gin.H{"error": "Invoice number already used"})
				return
			}
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale"})
		return
	}

	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not allocate a unique invoice number"})
		return
	}

	utils.LogDocumentAction("invoice_created", invoiceNumber, userID)
	h.WS.BroadcastUpdate(userID, "sale_created")
	h.notifyClient(userID, req.ClientID, invoiceNumber, amounts.TotalTtc)

	c.JSON(http.StatusCreated, gin.H{
		"id":             saleID,
		"invoice_number": invoiceNumber,
		"ca_ht":          amounts.CaHt,
		"tva_amount":     amounts.TVAAmount,
		"total_ttc":      amounts.TotalTtc,
		"year":           amounts.Year,
	})
}

// notifyClient envoie la notification de facture émise quand le client a une
// adresse email. Best effort, en arrière-plan.
func (h *SaleHandler) notifyClient(userID string, clientID *string, invoiceNumber string, totalTtc float64) {
	if clientID == nil {
		return
	}

	var name, email string
	err := h.DB.QueryRow(`
		SELECT name, COALESCE(email, '') FROM clients WHERE id = $1 AND user_id = $2
	`, *clientID, userID).Scan(&name, &email)
	if err != nil || email == "" {
		return
	}

	go func() {
		if err := h.Email.SendInvoiceIssued(email, name, invoiceNumber, totalTtc); err != nil {
			log.Printf("⚠️ Failed to send invoice email for %s: %v", invoiceNumber, err)
		}
	}()
}

func (h *SaleHandler) UpdateSale(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options, err := models.ParseOptions(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	optionsJSON := req.Options
	if len(optionsJSON) == 0 {
		optionsJSON = []byte("[]")
	}

	ctx := c.Request.Context()
	tvaRate := h.Billing.ResolveTVARate(ctx, userID, req.TVARate)
	amounts := services.CalculateSaleAmounts(req.Quantity, req.UnitPriceHt, models.OptionsTotal(options), tvaRate)

	// Le numéro de facture est immuable après émission
	result, err := h.DB.ExecContext(ctx, `
		UPDATE sales
		SET client_id = $1, article_id = $2, quantity = $3, unit_price_ht = $4,
		    options = $5, tva_rate = $6, ca_ht = $7, tva_amount = $8, total_ttc = $9,
		    notes = $10, updated_at = NOW()
		WHERE id = $11 AND user_id = $12
	`, req.ClientID, req.ArticleID, req.Quantity, req.UnitPriceHt,
		[]byte(optionsJSON), tvaRate, amounts.CaHt, amounts.TVAAmount, amounts.TotalTtc,
		req.Notes, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sale"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	h.WS.BroadcastUpdate(userID, "sale_updated")
	c.JSON(http.StatusOK, gin.H{"message": "Sale updated"})
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
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
		DELETE FROM sales WHERE id = $1 AND user_id = $2
	`, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sale"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}

	h.WS.BroadcastUpdate(userID, "sale_deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted"})
}

// GetSalePDF rend la facture en PDF.
func (h *SaleHandler) GetSalePDF(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	sale, err := scanSale(h.DB.QueryRow(`
		SELECT `+saleColumns+` FROM sales WHERE id = $1 AND user_id = $2
	`, id, userID))

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	pdfBytes, err := h.buildSalePDF(sale, userID)
	if err != nil {
		log.Printf("❌ Failed to build invoice PDF %s: %v", sale.InvoiceNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+sale.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (h *SaleHandler) buildSalePDF(sale models.Sale, userID string) ([]byte, error) {
	options, err := models.ParseOptions(sale.Options)
	if err != nil {
		options = nil
	}

	var client *models.Client
	if sale.ClientID != nil {
		var cl models.Client
		err := h.DB.QueryRow(`
			SELECT name, COALESCE(address, ''), COALESCE(postal_code, ''), COALESCE(city, '')
			FROM clients WHERE id = $1 AND user_id = $2
		`, *sale.ClientID, userID).Scan(&cl.Name, &cl.Address, &cl.PostalCode, &cl.City)
		if err == nil {
			client = &cl
		}
	}

	var articleName string
	if sale.ArticleID != nil {
		_ = h.DB.QueryRow(`
			SELECT name FROM articles WHERE id = $1 AND user_id = $2
		`, *sale.ArticleID, userID).Scan(&articleName)
	}

	settings := loadSettings(h.DB, userID)
	return services.BuildInvoicePDF(sale, client, settings, options, articleName)
}

// loadSettings lit le profil de facturation, avec des valeurs neutres si
// aucun réglage n'existe encore.
func loadSettings(db *sql.DB, userID string) models.Settings {
	settings := models.Settings{UserID: userID, DefaultTVARate: services.FallbackTVARate}
	_ = db.QueryRow(`
		SELECT COALESCE(company_name, ''), COALESCE(siret, ''), COALESCE(address, ''),
		       COALESCE(postal_code, ''), COALESCE(city, ''), default_tva_rate,
		       COALESCE(invoice_footer, '')
		FROM settings WHERE user_id = $1
	`, userID).Scan(
		&settings.CompanyName, &settings.Siret, &settings.Address,
		&settings.PostalCode, &settings.City, &settings.DefaultTVARate,
		&settings.InvoiceFooter,
	)
	return settings
}
