package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microgestion/gestion-api/models"
)

func TestExportSalesCSV(t *testing.T) {
	saleDate, _ := time.Parse("2006-01-02", "2024-03-15")
	sales := []models.Sale{{
		InvoiceNumber: "F2024-000001",
		SaleDate:      saleDate,
		Quantity:      2,
		UnitPriceHt:   500,
		TVARate:       20,
		CaHt:          1000,
		TVAAmount:     200,
		TotalTtc:      1200,
		Status:        "issued",
	}}

	data, err := ExportSalesCSV(sales)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Numéro")
	assert.Equal(t, "F2024-000001;2024-03-15;2.00;500.00;20.00;1000.00;200.00;1200.00;issued", lines[1])
}

func TestExportChargesCSV(t *testing.T) {
	expenseDate, _ := time.Parse("2006-01-02", "2024-02-01")
	amount := 49.9
	charges := []models.Charge{
		{
			Label:         "Hébergement",
			Category:      "SOFTWARE",
			Vendor:        "OVH",
			ExpenseDate:   expenseDate,
			Amount:        &amount,
			Recurring:     true,
			RecurringType: models.RecurringMonthly,
			Year:          2024,
		},
		{
			Label:       "Matériel",
			ExpenseDate: expenseDate,
			// montant absent
			RecurringType: models.RecurringNone,
			Year:          2024,
		},
	}

	data, err := ExportChargesCSV(charges)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Hébergement;SOFTWARE;OVH;2024-02-01;49.90;true;monthly;2024", lines[1])
	assert.Equal(t, "Matériel;;;2024-02-01;;false;none;2024", lines[2])
}
