package models

import (
	"encoding/json"
	"time"
)

// Sale représente une vente facturée
type Sale struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ClientID      *string         `json:"client_id,omitempty"`
	ArticleID     *string         `json:"article_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	Quantity      float64         `json:"quantity"`
	UnitPriceHt   float64         `json:"unit_price_ht"`
	Options       json.RawMessage `json:"options"`
	TVARate       float64         `json:"tva_rate"`
	CaHt          float64         `json:"ca_ht"`
	TVAAmount     float64         `json:"tva_amount"`
	TotalTtc      float64         `json:"total_ttc"`
	Year          int             `json:"year"`
	SaleDate      time.Time       `json:"sale_date"`
	Status        string          `json:"status"` // "issued", "paid", "cancelled"
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SaleAmounts holds the amounts derived from a sale's inputs.
type SaleAmounts struct {
	CaHt      float64 `json:"ca_ht"`
	TVAAmount float64 `json:"tva_amount"`
	TotalTtc  float64 `json:"total_ttc"`
	Year      int     `json:"year"`
}

type CreateSaleRequest struct {
	ClientID      *string         `json:"client_id"`
	ArticleID     *string         `json:"article_id"`
	InvoiceNumber string          `json:"invoice_number"` // vide = numéro auto
	Quantity      float64         `json:"quantity" binding:"required,gt=0"`
	UnitPriceHt   float64         `json:"unit_price_ht" binding:"gte=0"`
	Options       json.RawMessage `json:"options"`
	TVARate       *float64        `json:"tva_rate"` // nil = taux par défaut
	SaleDate      string          `json:"sale_date"`
	Notes         string          `json:"notes"`
}
