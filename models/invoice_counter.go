package models

import "time"

// InvoiceCounter holds the last issued invoice number of one shop owner.
type InvoiceCounter struct {
	ShopOwnerID       string    `json:"shop_owner_id" gorm:"primaryKey;type:varchar(36)"`
	LastInvoiceNumber int64     `json:"last_invoice_number" gorm:"not null;default:0"`
	UpdatedAt         time.Time `json:"updated_at"`
}
