package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RawMaterial struct {
	Base
	ShopOwnerID     string          `json:"-" gorm:"type:varchar(36);not null;index"`
	Name            string          `json:"name" gorm:"not null"`
	Unit            string          `json:"unit"`
	StockAmount     decimal.Decimal `json:"stock_amount" gorm:"type:numeric(14,3);not null;default:0"`
	TotalInvestment decimal.Decimal `json:"total_investment" gorm:"type:numeric(14,2);not null;default:0"`
}

const (
	MovementIn  = "in"
	MovementOut = "out"
)

// RawMaterialMovement is an immutable row of the raw material stock ledger.
type RawMaterialMovement struct {
	Base
	ShopOwnerID   string          `json:"-" gorm:"type:varchar(36);not null;index"`
	RawMaterialID string          `json:"raw_material_id" gorm:"type:varchar(36);not null;index"`
	SupplierID    *string         `json:"supplier_id,omitempty" gorm:"type:varchar(36)"`
	Direction     string          `json:"direction" gorm:"type:varchar(8);not null"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3);not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null;default:0"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null;default:0"`
	Note          string          `json:"note"`
	Date          time.Time       `json:"date" gorm:"type:date;not null"`
}
