package services

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/microgestion/gestion-api/models"
)

// BuildInvoicePDF rend une facture au format A4.
func BuildInvoicePDF(sale models.Sale, client *models.Client, settings models.Settings, options []models.ArticleOption, articleName string) ([]byte, error) {
	return buildDocumentPDF(documentData{
		Title:       "FACTURE",
		Number:      sale.InvoiceNumber,
		Date:        sale.SaleDate.Format("02/01/2006"),
		Quantity:    sale.Quantity,
		UnitPriceHt: sale.UnitPriceHt,
		TVARate:     sale.TVARate,
		CaHt:        sale.CaHt,
		TVAAmount:   sale.TVAAmount,
		TotalTtc:    sale.TotalTtc,
		Notes:       sale.Notes,
		ArticleName: articleName,
		Client:      client,
		Settings:    settings,
		Options:     options,
	})
}

// BuildQuotePDF rend un devis au format A4.
func BuildQuotePDF(quote models.Quote, client *models.Client, settings models.Settings, options []models.ArticleOption, articleName string) ([]byte, error) {
	data := documentData{
		Title:       "DEVIS",
		Number:      quote.QuoteNumber,
		Date:        quote.QuoteDate.Format("02/01/2006"),
		Quantity:    quote.Quantity,
		UnitPriceHt: quote.UnitPriceHt,
		TVARate:     quote.TVARate,
		CaHt:        quote.CaHt,
		TVAAmount:   quote.TVAAmount,
		TotalTtc:    quote.TotalTtc,
		Notes:       quote.Notes,
		ArticleName: articleName,
		Client:      client,
		Settings:    settings,
		Options:     options,
	}
	if quote.ValidUntil != nil {
		data.ValidUntil = quote.ValidUntil.Format("02/01/2006")
	}
	return buildDocumentPDF(data)
}

type documentData struct {
	Title       string
	Number      string
	Date        string
	ValidUntil  string
	Quantity    float64
	UnitPriceHt float64
	TVARate     float64
	CaHt        float64
	TVAAmount   float64
	TotalTtc    float64
	Notes       string
	ArticleName string
	Client      *models.Client
	Settings    models.Settings
	Options     []models.ArticleOption
}

func buildDocumentPDF(data documentData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s %s", data.Title, data.Number), false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// En-tête entreprise
	pdf.SetFont("Helvetica", "B", 16)
	companyName := data.Settings.CompanyName
	if companyName == "" {
		companyName = "Micro Gestion"
	}
	pdf.Cell(0, 8, tr(companyName))
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	if data.Settings.Address != "" {
		pdf.Cell(0, 5, tr(data.Settings.Address))
		pdf.Ln(5)
	}
	if data.Settings.PostalCode != "" || data.Settings.City != "" {
		pdf.Cell(0, 5, tr(fmt.Sprintf("%s %s", data.Settings.PostalCode, data.Settings.City)))
		pdf.Ln(5)
	}
	if data.Settings.Siret != "" {
		pdf.Cell(0, 5, tr("SIRET : "+data.Settings.Siret))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Titre du document
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(fmt.Sprintf("%s %s", data.Title, data.Number)))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr("Date : "+data.Date))
	pdf.Ln(6)
	if data.ValidUntil != "" {
		pdf.Cell(0, 6, tr("Valable jusqu'au : "+data.ValidUntil))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Bloc client
	if data.Client != nil {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, tr("Client"))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, tr(data.Client.Name))
		pdf.Ln(5)
		if data.Client.Address != "" {
			pdf.Cell(0, 5, tr(data.Client.Address))
			pdf.Ln(5)
		}
		if data.Client.PostalCode != "" || data.Client.City != "" {
			pdf.Cell(0, 5, tr(fmt.Sprintf("%s %s", data.Client.PostalCode, data.Client.City)))
			pdf.Ln(5)
		}
		pdf.Ln(6)
	}

	// Tableau des lignes
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(80, 7, tr("Désignation"))
	pdf.Cell(25, 7, tr("Quantité"))
	pdf.Cell(35, 7, tr("PU HT"))
	pdf.Cell(35, 7, tr("Total HT"))
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	designation := data.ArticleName
	if designation == "" {
		designation = "Prestation"
	}
	pdf.Cell(80, 7, tr(designation))
	pdf.Cell(25, 7, fmt.Sprintf("%.0f", data.Quantity))
	pdf.Cell(35, 7, tr(fmt.Sprintf("%.2f €", data.UnitPriceHt)))
	pdf.Cell(35, 7, tr(fmt.Sprintf("%.2f €", data.Quantity*data.UnitPriceHt)))
	pdf.Ln(7)

	for _, opt := range data.Options {
		if !opt.Selected {
			continue
		}
		pdf.Cell(80, 7, tr("Option : "+opt.Name))
		pdf.Cell(25, 7, "1")
		pdf.Cell(35, 7, tr(fmt.Sprintf("%.2f €", opt.PriceHt)))
		pdf.Cell(35, 7, tr(fmt.Sprintf("%.2f €", opt.PriceHt)))
		pdf.Ln(7)
	}
	pdf.Ln(6)

	// Totaux
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(140, 7, "")
	pdf.Cell(35, 7, tr(fmt.Sprintf("Total HT : %.2f €", data.CaHt)))
	pdf.Ln(7)
	pdf.Cell(140, 7, "")
	pdf.Cell(35, 7, tr(fmt.Sprintf("TVA %.0f%% : %.2f €", data.TVARate, data.TVAAmount)))
	pdf.Ln(7)
	pdf.Cell(140, 7, "")
	pdf.Cell(35, 7, tr(fmt.Sprintf("Total TTC : %.2f €", data.TotalTtc)))
	pdf.Ln(12)

	if data.Notes != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(data.Notes), "", "L", false)
		pdf.Ln(4)
	}

	if data.Settings.InvoiceFooter != "" {
		pdf.SetY(-30)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 4, tr(data.Settings.InvoiceFooter), "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
