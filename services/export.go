package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/microgestion/gestion-api/models"
)

// ExportSalesCSV sérialise des ventes en CSV (séparateur point-virgule,
// convention des tableurs français).
func ExportSalesCSV(sales []models.Sale) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	header := []string{"Numéro", "Date", "Quantité", "PU HT", "Taux TVA", "CA HT", "TVA", "Total TTC", "Statut"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, sale := range sales {
		record := []string{
			sale.InvoiceNumber,
			sale.SaleDate.Format("2006-01-02"),
			formatFloat(sale.Quantity),
			formatFloat(sale.UnitPriceHt),
			formatFloat(sale.TVARate),
			formatFloat(sale.CaHt),
			formatFloat(sale.TVAAmount),
			formatFloat(sale.TotalTtc),
			sale.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportChargesCSV sérialise des charges en CSV.
func ExportChargesCSV(charges []models.Charge) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	header := []string{"Libellé", "Catégorie", "Fournisseur", "Date", "Montant", "Récurrente", "Type", "Année"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, charge := range charges {
		amount := ""
		if charge.Amount != nil {
			amount = formatFloat(*charge.Amount)
		}
		record := []string{
			charge.Label,
			charge.Category,
			charge.Vendor,
			charge.ExpenseDate.Format("2006-01-02"),
			amount,
			fmt.Sprintf("%t", charge.Recurring),
			charge.RecurringType,
			strconv.Itoa(charge.Year),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
