package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardTotals are the running aggregates of one dashboard row.
type DashboardTotals struct {
	TotalSales            decimal.Decimal `json:"total_sales" gorm:"type:numeric(14,2);not null;default:0"`
	TotalProfit           decimal.Decimal `json:"total_profit" gorm:"type:numeric(14,2);not null;default:0"`
	TotalLosses           decimal.Decimal `json:"total_losses" gorm:"type:numeric(14,2);not null;default:0"`
	TotalInvestments      decimal.Decimal `json:"total_investments" gorm:"type:numeric(14,2);not null;default:0"`
	TotalProductsSold     decimal.Decimal `json:"total_products_sold" gorm:"type:numeric(14,3);not null;default:0"`
	TotalDueFromCustomers decimal.Decimal `json:"total_due_from_customers" gorm:"type:numeric(14,2);not null;default:0"`
	TotalDueToSuppliers   decimal.Decimal `json:"total_due_to_suppliers" gorm:"type:numeric(14,2);not null;default:0"`
	TotalProductsOnStock  decimal.Decimal `json:"total_products_on_stock" gorm:"type:numeric(14,3);not null;default:0"`
	TotalOrders           int64           `json:"total_orders" gorm:"not null;default:0"`
	TotalInvoices         int64           `json:"total_invoices" gorm:"not null;default:0"`
}

// Add returns the field-wise sum of t and d.
func (t DashboardTotals) Add(d DashboardTotals) DashboardTotals {
	return DashboardTotals{
		TotalSales:            t.TotalSales.Add(d.TotalSales),
		TotalProfit:           t.TotalProfit.Add(d.TotalProfit),
		TotalLosses:           t.TotalLosses.Add(d.TotalLosses),
		TotalInvestments:      t.TotalInvestments.Add(d.TotalInvestments),
		TotalProductsSold:     t.TotalProductsSold.Add(d.TotalProductsSold),
		TotalDueFromCustomers: t.TotalDueFromCustomers.Add(d.TotalDueFromCustomers),
		TotalDueToSuppliers:   t.TotalDueToSuppliers.Add(d.TotalDueToSuppliers),
		TotalProductsOnStock:  t.TotalProductsOnStock.Add(d.TotalProductsOnStock),
		TotalOrders:           t.TotalOrders + d.TotalOrders,
		TotalInvoices:         t.TotalInvoices + d.TotalInvoices,
	}
}

// Dashboard is one per shop owner per calendar date.
type Dashboard struct {
	Base
	ShopOwnerID string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_dashboards_owner_date,priority:1"`
	Date        time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_dashboards_owner_date,priority:2"`
	DashboardTotals
}
