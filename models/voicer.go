package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Voicer is an immutable sales invoice. Customer details are copied at sale time.
type Voicer struct {
	Base
	ShopOwnerID     string  `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_voicers_owner_number,priority:1;index:idx_voicers_owner_date,priority:1"`
	InvoiceNumber   string  `json:"invoice_id" gorm:"type:varchar(20);not null;uniqueIndex:idx_voicers_owner_number,priority:2"`
	CustomerID      *string `json:"customer_id,omitempty" gorm:"type:varchar(36);index"`
	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerAddress string  `json:"customer_address"`

	Lines []VoicerLine `json:"products" gorm:"foreignKey:VoicerID;constraint:OnDelete:RESTRICT"`

	TotalBillAmount decimal.Decimal `json:"total_price" gorm:"type:numeric(14,2);not null"`
	PaidAmount      decimal.Decimal `json:"now_paying" gorm:"type:numeric(14,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" gorm:"type:numeric(14,2);not null;default:0"`
	LabourCost      decimal.Decimal `json:"labour_cost" gorm:"type:numeric(14,2);not null;default:0"`
	BeforeDue       decimal.Decimal `json:"before_due" gorm:"type:numeric(14,2);not null;default:0"`
	InvoiceDue      decimal.Decimal `json:"invoice_due" gorm:"type:numeric(14,2);not null;default:0"`
	RemainingDue    decimal.Decimal `json:"remaining_due" gorm:"type:numeric(14,2);not null;default:0"`

	TotalProfit     decimal.Decimal `json:"total_profit" gorm:"type:numeric(14,2);not null;default:0"`
	TotalLoss       decimal.Decimal `json:"total_loss" gorm:"type:numeric(14,2);not null;default:0"`
	TotalInvestment decimal.Decimal `json:"total_investment" gorm:"type:numeric(14,2);not null;default:0"`
	TotalUnits      decimal.Decimal `json:"total_units" gorm:"type:numeric(14,3);not null;default:0"`

	Date time.Time `json:"date" gorm:"type:date;not null;index:idx_voicers_owner_date,priority:2"`
}

// VoicerLine is a costed sale line. Allocations holds the consumed lots as JSON.
type VoicerLine struct {
	Base
	VoicerID     string          `json:"-" gorm:"type:varchar(36);not null;index"`
	Position     int             `json:"position"`
	ProductID    string          `json:"product_id" gorm:"type:varchar(36);not null;index"`
	ProductName  string          `json:"product_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3);not null"`
	SellingPrice decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2);not null"`
	LineTotal    decimal.Decimal `json:"line_total" gorm:"type:numeric(14,2);not null"`
	Profit       decimal.Decimal `json:"profit" gorm:"type:numeric(14,2);not null;default:0"`
	Loss         decimal.Decimal `json:"loss" gorm:"type:numeric(14,2);not null;default:0"`
	Investment   decimal.Decimal `json:"investment" gorm:"type:numeric(14,2);not null;default:0"`
	Allocations  datatypes.JSON  `json:"allocations" gorm:"type:jsonb"`
}
