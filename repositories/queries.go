package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop-management-backend/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return db.Limit(p.Limit).Offset(p.Offset)
}

// ListVoicers returns voicers newest first, without lines. customerID filters when set.
func (s *GormStore) ListVoicers(ctx context.Context, ownerID, customerID string, page Page) ([]models.Voicer, int64, error) {
	q := s.conn(ctx).Model(&models.Voicer{}).Where("shop_owner_id = ?", ownerID)
	if customerID != "" {
		q = q.Where("customer_id = ?", customerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Voicer
	err := page.apply(q).Order("invoice_number DESC").Find(&out).Error
	return out, total, err
}

func (s *GormStore) ListLots(ctx context.Context, ownerID, productID string, page Page) ([]models.InventoryLot, error) {
	var lots []models.InventoryLot
	err := page.apply(s.conn(ctx)).
		Where("shop_owner_id = ? AND product_id = ?", ownerID, productID).
		Order("intake_at ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (s *GormStore) ListDueHistory(ctx context.Context, ownerID string, kind models.PartyKind, partyID string, page Page) ([]models.DueHistory, error) {
	var rows []models.DueHistory
	err := page.apply(s.conn(ctx)).
		Where("shop_owner_id = ? AND party_kind = ? AND party_id = ?", ownerID, kind, partyID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) ListCashHistory(ctx context.Context, ownerID string, from, to time.Time, page Page) ([]models.CashHistory, error) {
	var rows []models.CashHistory
	err := page.apply(s.conn(ctx)).
		Where("shop_owner_id = ? AND date BETWEEN ? AND ?", ownerID, from, to).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *GormStore) ListRawMaterialMovements(ctx context.Context, ownerID, rawID string, page Page) ([]models.RawMaterialMovement, error) {
	var rows []models.RawMaterialMovement
	err := page.apply(s.conn(ctx)).
		Where("shop_owner_id = ? AND raw_material_id = ?", ownerID, rawID).
		Order("date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

// SalesDay is one row of the sales report.
type SalesDay struct {
	Date     time.Time       `json:"date"`
	Invoices int64           `json:"invoices"`
	Sales    decimal.Decimal `json:"sales"`
	Paid     decimal.Decimal `json:"paid"`
	Discount decimal.Decimal `json:"discount"`
	Profit   decimal.Decimal `json:"profit"`
	Loss     decimal.Decimal `json:"loss"`
	Units    decimal.Decimal `json:"units"`
}

// SalesByDay sums voicers per sale date in [from, to].
func (s *GormStore) SalesByDay(ctx context.Context, ownerID string, from, to time.Time) ([]SalesDay, error) {
	var rows []SalesDay
	err := s.conn(ctx).Model(&models.Voicer{}).
		Select(`date,
			COUNT(*) AS invoices,
			COALESCE(SUM(total_bill_amount), 0) AS sales,
			COALESCE(SUM(paid_amount), 0) AS paid,
			COALESCE(SUM(discount_amount), 0) AS discount,
			COALESCE(SUM(total_profit), 0) AS profit,
			COALESCE(SUM(total_loss), 0) AS loss,
			COALESCE(SUM(total_units), 0) AS units`).
		Where("shop_owner_id = ? AND date BETWEEN ? AND ?", ownerID, from, to).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// StockLine is one product of the stock report.
type StockLine struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	Stock           decimal.Decimal `json:"stock"`
	Investment      decimal.Decimal `json:"investment"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
	OpenLots        int64           `json:"open_lots"`
}

// StockSummary lists every product with its stock, investment and open lot count.
func (s *GormStore) StockSummary(ctx context.Context, ownerID string) ([]StockLine, error) {
	var rows []StockLine
	err := s.conn(ctx).Table("products AS p").
		Select(`p.id AS product_id, p.name, p.unit,
			p.total_stock_amount AS stock,
			p.total_investment AS investment,
			(SELECT COUNT(*) FROM inventory_lots l
				WHERE l.product_id = p.id AND l.quantity_remaining > 0) AS open_lots`).
		Where("p.shop_owner_id = ?", ownerID).
		Order("p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Stock.IsPositive() {
			rows[i].AverageUnitCost = rows[i].Investment.DivRound(rows[i].Stock, 2)
		}
	}
	return rows, nil
}
