// Package reports renders printable documents.
package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"shop-management-backend/models"
	"shop-management-backend/services"
)

// Shop is the header printed on every receipt.
type Shop struct {
	Name    string
	Address string
	Phone   string
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// VoicerPDF renders an A4 sales receipt for a stored voicer.
func VoicerPDF(shop Shop, v *models.Voicer) ([]byte, error) {
	receipt := services.ReceiptFor(v)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle("Invoice "+receipt.InvoiceID, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	if shop.Address != "" || shop.Phone != "" {
		pdf.CellFormat(190, 6, fmt.Sprintf("%s  %s", shop.Address, shop.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(95, 8, "Invoice #"+receipt.InvoiceID, "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 8, "Date: "+receipt.Date, "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, "Customer: "+receipt.CustomerName, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Phone: "+v.CustomerPhone, "RB", 1, "L", false, 0, "")
	if v.CustomerAddress != "" {
		pdf.CellFormat(190, 7, "Address: "+v.CustomerAddress, "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	// Lines
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(80, 7, "Product", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Quantity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Unit price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, line := range receipt.Products {
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 6, truncate(line.ProductName, 40), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, line.Quantity.String()+" "+line.Unit, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(line.SellingPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(line.LineTotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals
	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total", receipt.TotalPrice},
		{"Labour cost", receipt.LabourCost},
		{"Discount", receipt.Discount},
		{"Paid now", receipt.NowPaying},
		{"Previous due", receipt.BeforeDue},
	}
	for _, r := range rows {
		if r.value.IsZero() && r.label != "Total" && r.label != "Paid now" {
			continue
		}
		pdf.CellFormat(155, 7, r.label, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(r.value), "1", 1, "R", false, 0, "")
	}

	if receipt.RemainingDue.IsPositive() {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(155, 9, "Remaining due", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 9, money(receipt.RemainingDue), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
