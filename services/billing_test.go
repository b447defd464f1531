package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestCalculateSaleAmounts(t *testing.T) {
	amounts := CalculateSaleAmounts(2, 500, 0, 20)

	assert.Equal(t, 1000.0, amounts.CaHt)
	assert.Equal(t, 200.0, amounts.TVAAmount)
	assert.Equal(t, 1200.0, amounts.TotalTtc)
	assert.Equal(t, time.Now().Year(), amounts.Year)
}

func TestCalculateSaleAmounts_WithOptions(t *testing.T) {
	amounts := CalculateSaleAmounts(1, 800, 150, 10)

	assert.Equal(t, 950.0, amounts.CaHt)
	assert.InDelta(t, 95.0, amounts.TVAAmount, 1e-9)
	assert.InDelta(t, 1045.0, amounts.TotalTtc, 1e-9)
}

func TestCalculateSaleAmounts_ZeroRate(t *testing.T) {
	amounts := CalculateSaleAmounts(3, 100, 0, 0)

	assert.Equal(t, 300.0, amounts.CaHt)
	assert.Zero(t, amounts.TVAAmount)
	assert.Equal(t, 300.0, amounts.TotalTtc)
}

func TestCalculateSaleAmounts_Identity(t *testing.T) {
	cases := []struct {
		quantity, price, options, rate float64
	}{
		{1, 99.99, 0, 20},
		{7, 123.45, 67.89, 5.5},
		{0, 0, 0, 20},
		{2.5, 40, 10, 8.5},
	}

	for _, tc := range cases {
		amounts := CalculateSaleAmounts(tc.quantity, tc.price, tc.options, tc.rate)
		assert.InDelta(t, amounts.CaHt+amounts.TVAAmount, amounts.TotalTtc, 1e-9)
		assert.InDelta(t, amounts.CaHt*tc.rate/100, amounts.TVAAmount, 1e-9)
	}
}

func TestNextFromExisting(t *testing.T) {
	existing := []string{"F2024-000001", "F2024-000003", "F2023-000005"}

	assert.Equal(t, "F2024-000004", NextFromExisting(existing, "F", 2024))
}

func TestNextFromExisting_NoMatch(t *testing.T) {
	assert.Equal(t, "F2025-000001", NextFromExisting(nil, "F", 2025))
	assert.Equal(t, "F2025-000001", NextFromExisting([]string{"F2024-000009"}, "F", 2025))
}

func TestNextFromExisting_IgnoresMalformed(t *testing.T) {
	existing := []string{
		"F2024-000002",
		"FACTURE-2024",
		"F2024-",
		"F24-000099",
		"F2024-abc",
		"",
	}

	assert.Equal(t, "F2024-000003", NextFromExisting(existing, "F", 2024))
}

func TestNextFromExisting_QuotePrefix(t *testing.T) {
	existing := []string{"D2024-000007", "F2024-000099"}

	assert.Equal(t, "D2024-000008", NextFromExisting(existing, "D", 2024))
}

func TestNextFromExisting_NoGapFilling(t *testing.T) {
	// Les numéros supprimés ne sont pas réutilisés : seul le maximum compte
	existing := []string{"F2024-000001", "F2024-000005"}

	assert.Equal(t, "F2024-000006", NextFromExisting(existing, "F", 2024))
}

func TestNextFromExisting_PaddingBeyondSixDigits(t *testing.T) {
	existing := []string{"F2024-999999"}

	assert.Equal(t, "F2024-1000000", NextFromExisting(existing, "F", 2024))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
