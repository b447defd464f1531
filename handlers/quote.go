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

type QuoteHandler struct {
	DB      *sql.DB
	Billing *services.BillingService
	WS      *WSHandler
}

const quoteColumns = `
	id, user_id, client_id, article_id, quote_number, quantity, unit_price_ht,
	COALESCE(options, '[]'), tva_rate, ca_ht, tva_amount, total_ttc, year,
	quote_date, valid_until, COALESCE(status, 'draft'), COALESCE(notes, ''),
	converted_sale_id, created_at, updated_at`

func scanQuote(row interface{ Scan(...interface{}) error }) (models.Quote, error) {
	var quote models.Quote
	err := row.Scan(
		&quote.ID, &quote.UserID, &quote.ClientID, &quote.ArticleID, &quote.QuoteNumber,
		&quote.Quantity, &quote.UnitPriceHt, &quote.Options, &quote.TVARate,
		&quote.CaHt, &quote.TVAAmount, &quote.TotalTtc, &quote.Year,
		&quote.QuoteDate, &quote.ValidUntil, &quote.Status, &quote.Notes,
		&quote.ConvertedSaleID, &quote.CreatedAt, &quote.UpdatedAt,
	)
	return quote, err
}

func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT `+quoteColumns+` FROM quotes WHERE user_id = $1
		ORDER BY quote_date DESC, quote_number DESC
	`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotes"})
		return
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quote"})
			return
		}
		quotes = append(quotes, quote)
	}

	c.JSON(http.StatusOK, quotes)
}

func (h *QuoteHandler) GetQuote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	quote, err := scanQuote(h.DB.QueryRow(`
		SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND user_id = $2
	`, id, userID))

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateQuoteRequest
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

	quoteDate := time.Now()
	if req.QuoteDate != "" {
		parsed, err := time.Parse("2006-01-02", req.QuoteDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote_date, expected YYYY-MM-DD"})
			return
		}
		quoteDate = parsed
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		parsed, err := time.Parse("2006-01-02", req.ValidUntil)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid valid_until, expected YYYY-MM-DD"})
			return
		}
		validUntil = &parsed
	}

	ctx := c.Request.Context()
	tvaRate := h.Billing.ResolveTVARate(ctx, userID, req.TVARate)
	amounts := services.CalculateSaleAmounts(req.Quantity, req.UnitPriceHt, models.OptionsTotal(options), tvaRate)

	var quoteID, quoteNumber string
	for attempt := 0; attempt < 3; attempt++ {
		quoteNumber, err = h.Billing.NextQuoteNumber(ctx, userID, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate quote number"})
			return
		}

		err = h.DB.QueryRowContext(ctx, `
			INSERT INTO quotes (user_id, client_id, article_id, quote_number, quantity,
			                    unit_price_ht, options, tva_rate, ca_ht, tva_amount,
			                    total_ttc, year, quote_date, valid_until, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id
		`, userID, req.ClientID, req.ArticleID, quoteNumber, req.Quantity,
			req.UnitPriceHt, []byte(optionsJSON), tvaRate, amounts.CaHt, amounts.TVAAmount,
			amounts.TotalTtc, amounts.Year, quoteDate, validUntil, req.Notes).Scan(&quoteID)

		if err == nil {
			break
		}
		if services.IsUniqueViolation(err) {
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quote"})
		return
	}

	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not allocate a unique quote number"})
		return
	}

	utils.LogDocumentAction("quote_created", quoteNumber, userID)
	h.WS.BroadcastUpdate(userID, "quote_created")

	c.JSON(http.StatusCreated, gin.H{
		"id":           quoteID,
		"quote_number": quoteNumber,
		"ca_ht":        amounts.CaHt,
		"tva_amount":   amounts.TVAAmount,
		"total_ttc":    amounts.TotalTtc,
	})
}

func (h *QuoteHandler) UpdateQuoteStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	var req models.UpdateQuoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE quotes SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND converted_sale_id IS NULL
	`, req.Status, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quote"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found or already converted"})
		return
	}

	h.WS.BroadcastUpdate(userID, "quote_updated")
	c.JSON(http.StatusOK, gin.H{"message": "Quote updated"})
}

func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
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
		DELETE FROM quotes WHERE id = $1 AND user_id = $2
	`, id, userID)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quote"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return
	}

	h.WS.BroadcastUpdate(userID, "quote_deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Quote deleted"})
}

// ConvertQuote transforme un devis en vente. Un nouveau numéro de facture est
// attribué ; les montants du devis sont repris tels quels.
func (h *QuoteHandler) ConvertQuote(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	quote, err := scanQuote(h.DB.QueryRow(`
		SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND user_id = $2
	`, id, userID))

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if quote.ConvertedSaleID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Quote already converted"})
		return
	}

	ctx := c.Request.Context()
	var saleID, invoiceNumber string
	for attempt := 0; attempt < 3; attempt++ {
		invoiceNumber, err = h.Billing.NextInvoiceNumber(ctx, userID, 0)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate invoice number"})
			return
		}

		err = h.DB.QueryRowContext(ctx, `
			INSERT INTO sales (user_id, client_id, article_id, invoice_number, quantity,
			                   unit_price_ht, options, tva_rate, ca_ht, tva_amount,
			                   total_ttc, year, sale_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_DATE, $13)
			RETURNING id
		`, userID, quote.ClientID, quote.ArticleID, invoiceNumber, quote.Quantity,
			quote.UnitPriceHt, []byte(quote.Options), quote.TVARate, quote.CaHt,
			quote.TVAAmount, quote.TotalTtc, time.Now().Year(), quote.Notes).Scan(&saleID)

		if err == nil {
			break
		}
		if services.IsUniqueViolation(err) {
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sale from quote"})
		return
	}

	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Could not allocate a unique invoice number"})
		return
	}

	_, err = h.DB.ExecContext(ctx, `
		UPDATE quotes SET status = $1, converted_sale_id = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`, models.QuoteAccepted, saleID, quote.ID, userID)
	if err != nil {
		log.Printf("⚠️ Quote %s converted but status update failed: %v", quote.QuoteNumber, err)
	}

	utils.LogDocumentAction("quote_converted", quote.QuoteNumber, userID)
	h.WS.BroadcastUpdate(userID, "quote_converted")

	c.JSON(http.StatusCreated, gin.H{
		"sale_id":        saleID,
		"invoice_number": invoiceNumber,
	})
}

// GetQuotePDF rend le devis en PDF.
func (h *QuoteHandler) GetQuotePDF(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	quote, err := scanQuote(h.DB.QueryRow(`
		SELECT `+quoteColumns+` FROM quotes WHERE id = $1 AND user_id = $2
	`, id, userID))

	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	options, err := models.ParseOptions(quote.Options)
	if err != nil {
		options = nil
	}

	var client *models.Client
	if quote.ClientID != nil {
		var cl models.Client
		err := h.DB.QueryRow(`
			SELECT name, COALESCE(address, ''), COALESCE(postal_code, ''), COALESCE(city, '')
			FROM clients WHERE id = $1 AND user_id = $2
		`, *quote.ClientID, userID).Scan(&cl.Name, &cl.Address, &cl.PostalCode, &cl.City)
		if err == nil {
			client = &cl
		}
	}

	var articleName string
	if quote.ArticleID != nil {
		_ = h.DB.QueryRow(`
			SELECT name FROM articles WHERE id = $1 AND user_id = $2
		`, *quote.ArticleID, userID).Scan(&articleName)
	}

	settings := loadSettings(h.DB, userID)
	pdfBytes, err := services.BuildQuotePDF(quote, client, settings, options, articleName)
	if err != nil {
		log.Printf("❌ Failed to build quote PDF %s: %v", quote.QuoteNumber, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+quote.QuoteNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
