package models

import "time"

// Recurrence types stored on a charge. A charge whose recurring flag is
// false always carries RecurringNone.
const (
	RecurringMonthly = "monthly"
	RecurringYearly  = "yearly"
	RecurringNone    = "none"
)

// Charge représente une dépense (ponctuelle ou récurrente)
type Charge struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Label         string    `json:"label"`
	Category      string    `json:"category"` // ex: "ENERGY", "MOBILE", "SOFTWARE"
	Vendor        string    `json:"vendor,omitempty"`
	Description   string    `json:"description,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ArticleID     *string   `json:"article_id,omitempty"`
	ExpenseDate   time.Time `json:"expense_date"`
	Amount        *float64  `json:"amount"`
	Recurring     bool      `json:"recurring"`
	RecurringType string    `json:"recurring_type"`
	Year          int       `json:"year"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CalculatedCharge is a Charge projected onto a year or year+month window.
// It is computed on every read of the calculated-charges view, never stored.
type CalculatedCharge struct {
	Charge
	CalculatedAmountHt  float64 `json:"calculated_amount_ht"`
	CalculatedAmountTtc float64 `json:"calculated_amount_ttc"`
	IsRecurring         bool    `json:"is_recurring"`
	RecurringPeriod     string  `json:"recurring_period"` // "monthly", "yearly" ou "one-time"
}

// ChargeTotals agrège les charges projetées d'une période
type ChargeTotals struct {
	TotalHt   float64         `json:"total_ht"`
	TotalTtc  float64         `json:"total_ttc"`
	Breakdown ChargeBreakdown `json:"breakdown"`
}

type ChargeBreakdown struct {
	Recurring float64 `json:"recurring"`
	OneTime   float64 `json:"one_time"`
}

type CreateChargeRequest struct {
	Label         string   `json:"label" binding:"required"`
	Category      string   `json:"category"`
	Vendor        string   `json:"vendor"`
	Description   string   `json:"description"`
	PaymentMethod string   `json:"payment_method"`
	Notes         string   `json:"notes"`
	ArticleID     *string  `json:"article_id"`
	ExpenseDate   string   `json:"expense_date" binding:"required"` // YYYY-MM-DD
	Amount        *float64 `json:"amount"`
	RecurringType string   `json:"recurring_type"` // "monthly", "yearly" ou vide
}
