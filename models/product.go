package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product holds aggregate counters maintained by stock intake and sales.
type Product struct {
	Base
	ShopOwnerID      string          `json:"-" gorm:"type:varchar(36);not null;index"`
	Name             string          `json:"name" gorm:"not null"`
	Unit             string          `json:"unit"`
	SellingPrice     decimal.Decimal `json:"selling_price" gorm:"type:numeric(12,2);not null;default:0"`
	TotalInvestment  decimal.Decimal `json:"total_investment" gorm:"type:numeric(14,2);not null;default:0"`
	TotalStockAmount decimal.Decimal `json:"total_stock_amount" gorm:"type:numeric(14,3);not null;default:0"`
	TotalProfit      decimal.Decimal `json:"total_profit" gorm:"type:numeric(14,2);not null;default:0"`
	TotalLoss        decimal.Decimal `json:"total_loss" gorm:"type:numeric(14,2);not null;default:0"`
	TotalSold        decimal.Decimal `json:"total_sold" gorm:"type:numeric(14,3);not null;default:0"`
}

// InventoryLot is one stock intake batch. Lots are consumed oldest first and never deleted.
type InventoryLot struct {
	Base
	ShopOwnerID       string          `json:"-" gorm:"type:varchar(36);not null;index"`
	ProductID         string          `json:"product_id" gorm:"type:varchar(36);not null;index:idx_lots_product_intake,priority:1"`
	SupplierID        *string         `json:"supplier_id,omitempty" gorm:"type:varchar(36)"`
	Quantity          decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3);not null"`
	QuantityRemaining decimal.Decimal `json:"quantity_remaining" gorm:"type:numeric(14,3);not null"`
	UnitBuyingPrice   decimal.Decimal `json:"unit_buying_price" gorm:"type:numeric(12,2);not null"`
	IntakeAt          time.Time       `json:"intake_at" gorm:"not null;index:idx_lots_product_intake,priority:2"`
}
