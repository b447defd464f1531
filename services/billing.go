package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/microgestion/gestion-api/models"
)

// Taux de TVA appliqué quand l'utilisateur n'a pas de réglage en base.
const FallbackTVARate = 20.0

// Document number prefixes: F = facture, D = devis.
const (
	InvoicePrefix = "F"
	QuotePrefix   = "D"
)

// BillingService calcule les montants de vente et attribue les numéros de
// documents (factures, devis).
type BillingService struct {
	db *sql.DB
}

func NewBillingService(db *sql.DB) *BillingService {
	return &BillingService{db: db}
}

// CalculateSaleAmounts computes the net, VAT and gross amounts of a line.
// Pure arithmetic, no rounding; display rounding is the caller's concern.
func CalculateSaleAmounts(quantity, unitPriceHt, optionsTotal, tvaRate float64) models.SaleAmounts {
	caHt := quantity*unitPriceHt + optionsTotal
	tvaAmount := caHt * tvaRate / 100

	return models.SaleAmounts{
		CaHt:      caHt,
		TVAAmount: tvaAmount,
		TotalTtc:  caHt + tvaAmount,
		Year:      time.Now().Year(),
	}
}

// DefaultTVARate lit le taux de TVA par défaut de l'utilisateur. Toute erreur
// (ligne absente comprise) retombe sur FallbackTVARate plutôt que d'échouer.
func (s *BillingService) DefaultTVARate(ctx context.Context, userID string) float64 {
	var rate float64
	err := s.db.QueryRowContext(ctx, `
		SELECT default_tva_rate FROM settings WHERE user_id = $1
	`, userID).Scan(&rate)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("⚠️ Failed to read default TVA rate for user %s: %v", userID, err)
		}
		return FallbackTVARate
	}

	return rate
}

// ResolveTVARate returns the explicit rate when provided, otherwise the
// user's configured default.
func (s *BillingService) ResolveTVARate(ctx context.Context, userID string, rate *float64) float64 {
	if rate != nil {
		return *rate
	}
	return s.DefaultTVARate(ctx, userID)
}

// NextInvoiceNumber attribue le prochain numéro de facture F<année>-<seq>
// pour un utilisateur. year à 0 = année courante.
func (s *BillingService) NextInvoiceNumber(ctx context.Context, userID string, year int) (string, error) {
	return s.nextDocumentNumber(ctx, userID, "sales", "invoice_number", InvoicePrefix, year)
}

// NextQuoteNumber attribue le prochain numéro de devis D<année>-<seq>.
func (s *BillingService) NextQuoteNumber(ctx context.Context, userID string, year int) (string, error) {
	return s.nextDocumentNumber(ctx, userID, "quotes", "quote_number", QuotePrefix, year)
}

func (s *BillingService) nextDocumentNumber(ctx context.Context, userID, table, column, prefix string, year int) (string, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	// Pas de verrou ici : deux attributions concurrentes peuvent produire le
	// même numéro. La contrainte UNIQUE(user_id, numéro) en base est le seul
	// garde-fou ; l'appelant réessaie sur violation.
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND %s LIKE $2`, column, table, column)
	rows, err := s.db.QueryContext(ctx, query, userID, fmt.Sprintf("%s%d-%%", prefix, year))
	if err != nil {
		return "", fmt.Errorf("failed to scan existing %s numbers: %w", table, err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", err
		}
		existing = append(existing, number)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return NextFromExisting(existing, prefix, year), nil
}

// NextFromExisting derives the next document number from the numbers already
// allocated for a (user, year) scope. Strings that do not match
// <prefix><year>-<seq> are ignored. The sequence is max+1, zero-padded to six
// digits, starting at 000001 when nothing matches.
func NextFromExisting(existing []string, prefix string, year int) string {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d{4})-(\d+)$`)

	maxSeq := 0
	for _, number := range existing {
		matches := pattern.FindStringSubmatch(number)
		if matches == nil {
			continue
		}
		if matches[1] != strconv.Itoa(year) {
			continue
		}
		seq, err := strconv.Atoi(matches[2])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s%d-%06d", prefix, year, maxSeq+1)
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, the signal to retry a document-number allocation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
