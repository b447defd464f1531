package models

import (
	"encoding/json"
	"time"
)

// Quote statuses.
const (
	QuoteDraft    = "draft"
	QuoteSent     = "sent"
	QuoteAccepted = "accepted"
	QuoteDeclined = "declined"
)

// Quote représente un devis, convertible en vente
type Quote struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ClientID        *string         `json:"client_id,omitempty"`
	ArticleID       *string         `json:"article_id,omitempty"`
	QuoteNumber     string          `json:"quote_number"`
	Quantity        float64         `json:"quantity"`
	UnitPriceHt     float64         `json:"unit_price_ht"`
	Options         json.RawMessage `json:"options"`
	TVARate         float64         `json:"tva_rate"`
	CaHt            float64         `json:"ca_ht"`
	TVAAmount       float64         `json:"tva_amount"`
	TotalTtc        float64         `json:"total_ttc"`
	Year            int             `json:"year"`
	QuoteDate       time.Time       `json:"quote_date"`
	ValidUntil      *time.Time      `json:"valid_until,omitempty"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	ConvertedSaleID *string         `json:"converted_sale_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type CreateQuoteRequest struct {
	ClientID    *string         `json:"client_id"`
	ArticleID   *string         `json:"article_id"`
	Quantity    float64         `json:"quantity" binding:"required,gt=0"`
	UnitPriceHt float64         `json:"unit_price_ht" binding:"gte=0"`
	Options     json.RawMessage `json:"options"`
	TVARate     *float64        `json:"tva_rate"`
	QuoteDate   string          `json:"quote_date"`
	ValidUntil  string          `json:"valid_until"`
	Notes       string          `json:"notes"`
}

type UpdateQuoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent accepted declined"`
}
