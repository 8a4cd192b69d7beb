package services

import "fmt"

// FormatInvoiceNumber renders an invoice number zero-padded to 6 digits.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%06d", n)
}
