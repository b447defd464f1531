package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Article représente un produit ou service vendu
type Article struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	UnitPriceHt float64         `json:"unit_price_ht"`
	TVARate     *float64        `json:"tva_rate,omitempty"` // nil = taux par défaut de l'utilisateur
	Options     json.RawMessage `json:"options"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ArticleOption is one selectable add-on of an article. Options travel as a
// JSON array on articles, sales and quotes.
type ArticleOption struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PriceHt  float64 `json:"price_ht"`
	Selected bool    `json:"selected"`
}

type CreateArticleRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	UnitPriceHt float64         `json:"unit_price_ht"`
	TVARate     *float64        `json:"tva_rate"`
	Options     json.RawMessage `json:"options"`
}

// ParseOptions decodes and validates a JSON options payload. A nil or empty
// payload is treated as no options. Every entry must carry an id, a name and
// a non-negative net price.
func ParseOptions(raw json.RawMessage) ([]ArticleOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var options []ArticleOption
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, fmt.Errorf("invalid options payload: %w", err)
	}

	for i, opt := range options {
		if opt.ID == "" {
			return nil, fmt.Errorf("option %d: missing id", i)
		}
		if opt.Name == "" {
			return nil, fmt.Errorf("option %d: missing name", i)
		}
		if opt.PriceHt < 0 {
			return nil, fmt.Errorf("option %d: negative price", i)
		}
	}

	return options, nil
}

// OptionsTotal sums the net price of the selected options.
func OptionsTotal(options []ArticleOption) float64 {
	var total float64
	for _, opt := range options {
		if opt.Selected {
			total += opt.PriceHt
		}
	}
	return total
}
