package models

import "time"

// Settings regroupe le profil de l'entreprise et le taux de TVA par défaut
type Settings struct {
	UserID         string    `json:"user_id"`
	CompanyName    string    `json:"company_name,omitempty"`
	Siret          string    `json:"siret,omitempty"`
	Address        string    `json:"address,omitempty"`
	PostalCode     string    `json:"postal_code,omitempty"`
	City           string    `json:"city,omitempty"`
	DefaultTVARate float64   `json:"default_tva_rate"`
	InvoiceFooter  string    `json:"invoice_footer,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	CompanyName    string   `json:"company_name"`
	Siret          string   `json:"siret"`
	Address        string   `json:"address"`
	PostalCode     string   `json:"postal_code"`
	City           string   `json:"city"`
	DefaultTVARate *float64 `json:"default_tva_rate" binding:"omitempty,gte=0"`
	InvoiceFooter  string   `json:"invoice_footer"`
}
