// Package repositories implements the ledger persistence on PostgreSQL through gorm.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop-management-backend/models"
	"shop-management-backend/services"
)

// GormStore runs every call on the *gorm.DB it was built with, normally the
// request transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ services.Store = (*GormStore)(nil)

func (s *GormStore) conn(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}

// increments turns column deltas into "col = col + ?" assignments, skipping zeros.
func increments(deltas map[string]decimal.Decimal) map[string]any {
	out := make(map[string]any, len(deltas))
	for col, d := range deltas {
		if d.IsZero() {
			continue
		}
		out[col] = gorm.Expr(col+" + ?", d)
	}
	return out
}

func partyTable(kind models.PartyKind) (string, error) {
	switch kind {
	case models.PartyCustomer:
		return "customers", nil
	case models.PartySupplier:
		return "suppliers", nil
	case models.PartyLoneProvider:
		return "lone_providers", nil
	}
	return "", fmt.Errorf("unknown party kind %q", kind)
}

// ---- products and lots

func (s *GormStore) FindProduct(ctx context.Context, ownerID, productID string) (*models.Product, error) {
	var p models.Product
	if err := s.conn(ctx).Where("shop_owner_id = ?", ownerID).First(&p, "id = ?", productID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *GormStore) LockLots(ctx context.Context, ownerID, productID string) ([]models.InventoryLot, error) {
	var lots []models.InventoryLot
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("shop_owner_id = ? AND product_id = ? AND quantity_remaining > 0", ownerID, productID).
		Order("intake_at ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (s *GormStore) CreateLot(ctx context.Context, lot *models.InventoryLot) error {
	return s.conn(ctx).Create(lot).Error
}

func (s *GormStore) ConsumeLot(ctx context.Context, lotID string, qty decimal.Decimal) error {
	res := s.conn(ctx).Model(&models.InventoryLot{}).
		Where("id = ? AND quantity_remaining >= ?", lotID, qty).
		Update("quantity_remaining", gorm.Expr("quantity_remaining - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrStockExhausted
	}
	return nil
}

func (s *GormStore) ApplyProductDelta(ctx context.Context, ownerID, productID string, d services.ProductDelta) error {
	updates := increments(map[string]decimal.Decimal{
		"total_stock_amount": d.Stock,
		"total_investment":   d.Investment,
		"total_profit":       d.Profit,
		"total_loss":         d.Loss,
		"total_sold":         d.Sold,
	})
	return s.apply(ctx, "products", ownerID, productID, updates)
}

// apply runs one UPDATE on a tenant row and reports ErrNotFound when nothing matched.
func (s *GormStore) apply(ctx context.Context, table, ownerID, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.conn(ctx).Table(table).Where("id = ? AND shop_owner_id = ?", id, ownerID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

// ---- parties

// FindParty row-locks the party so concurrent settlements see each other's balance.
func (s *GormStore) FindParty(ctx context.Context, ownerID string, kind models.PartyKind, id string) (*models.Party, error) {
	q := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("shop_owner_id = ?", ownerID)
	var party models.Party
	switch kind {
	case models.PartyCustomer:
		var c models.Customer
		if err := q.First(&c, "id = ?", id).Error; err != nil {
			return nil, notFound(err)
		}
		party = c.Party()
	case models.PartySupplier:
		var sup models.Supplier
		if err := q.First(&sup, "id = ?", id).Error; err != nil {
			return nil, notFound(err)
		}
		party = sup.Party()
	case models.PartyLoneProvider:
		var lp models.LoneProvider
		if err := q.First(&lp, "id = ?", id).Error; err != nil {
			return nil, notFound(err)
		}
		party = lp.Party()
	default:
		return nil, fmt.Errorf("unknown party kind %q", kind)
	}
	return &party, nil
}

func (s *GormStore) ApplyDueDelta(ctx context.Context, ownerID string, kind models.PartyKind, id string, d services.DueDelta) error {
	table, err := partyTable(kind)
	if err != nil {
		return err
	}
	updates := increments(map[string]decimal.Decimal{
		"due_amount":  d.Due,
		"total_taken": d.Taken,
		"total_paid":  d.Paid,
	})
	return s.apply(ctx, table, ownerID, id, updates)
}

func (s *GormStore) AppendDueHistory(ctx context.Context, h *models.DueHistory) error {
	return s.conn(ctx).Create(h).Error
}

// ---- cash

func (s *GormStore) ApplyCash(ctx context.Context, ownerID string, delta decimal.Decimal) error {
	row := models.CashLedger{ShopOwnerID: ownerID, CashBalance: delta}
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_owner_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"cash_balance": gorm.Expr("cash_ledgers.cash_balance + ?", delta),
			"updated_at":   time.Now().UTC(),
		}),
	}).Create(&row).Error
}

func (s *GormStore) AppendCashHistory(ctx context.Context, h *models.CashHistory) error {
	return s.conn(ctx).Create(h).Error
}

func (s *GormStore) CashBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	var ledger models.CashLedger
	err := s.conn(ctx).Where("shop_owner_id = ?", ownerID).First(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.CashBalance, nil
}

// ---- dashboards

func (s *GormStore) FindDashboard(ctx context.Context, ownerID string, day time.Time) (*models.Dashboard, error) {
	var d models.Dashboard
	err := s.conn(ctx).Where("shop_owner_id = ? AND date = ?", ownerID, day).First(&d).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *GormStore) LatestDashboardBefore(ctx context.Context, ownerID string, day time.Time) (*models.Dashboard, error) {
	var d models.Dashboard
	err := s.conn(ctx).Where("shop_owner_id = ? AND date < ?", ownerID, day).Order("date DESC").First(&d).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

type productSums struct {
	Investment decimal.Decimal
	Stock      decimal.Decimal
	Profit     decimal.Decimal
	Loss       decimal.Decimal
	Sold       decimal.Decimal
}

type voicerSums struct {
	Sales decimal.Decimal
	Count int64
}

// LiveTotals sums the owner's current ledgers. It seeds the first dashboard row.
func (s *GormStore) LiveTotals(ctx context.Context, ownerID string) (models.DashboardTotals, error) {
	db := s.conn(ctx)
	var t models.DashboardTotals

	var ps productSums
	err := db.Model(&models.Product{}).
		Select(`COALESCE(SUM(total_investment), 0) AS investment,
			COALESCE(SUM(total_stock_amount), 0) AS stock,
			COALESCE(SUM(total_profit), 0) AS profit,
			COALESCE(SUM(total_loss), 0) AS loss,
			COALESCE(SUM(total_sold), 0) AS sold`).
		Where("shop_owner_id = ?", ownerID).
		Scan(&ps).Error
	if err != nil {
		return t, fmt.Errorf("sum products: %w", err)
	}

	var customerDue, supplierDue decimal.Decimal
	if err := db.Model(&models.Customer{}).Select("COALESCE(SUM(due_amount), 0)").
		Where("shop_owner_id = ?", ownerID).Scan(&customerDue).Error; err != nil {
		return t, fmt.Errorf("sum customer due: %w", err)
	}
	if err := db.Model(&models.Supplier{}).Select("COALESCE(SUM(due_amount), 0)").
		Where("shop_owner_id = ?", ownerID).Scan(&supplierDue).Error; err != nil {
		return t, fmt.Errorf("sum supplier due: %w", err)
	}

	var vs voicerSums
	if err := db.Model(&models.Voicer{}).
		Select("COALESCE(SUM(total_bill_amount), 0) AS sales, COUNT(*) AS count").
		Where("shop_owner_id = ?", ownerID).
		Scan(&vs).Error; err != nil {
		return t, fmt.Errorf("sum voicers: %w", err)
	}

	t.TotalInvestments = ps.Investment
	t.TotalProductsOnStock = ps.Stock
	t.TotalProfit = ps.Profit
	t.TotalLosses = ps.Loss
	t.TotalProductsSold = ps.Sold
	t.TotalDueFromCustomers = customerDue
	t.TotalDueToSuppliers = supplierDue
	t.TotalSales = vs.Sales
	t.TotalOrders = vs.Count
	t.TotalInvoices = vs.Count
	return t, nil
}

func (s *GormStore) CreateDashboard(ctx context.Context, d *models.Dashboard) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_owner_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(d).Error
}

func (s *GormStore) ApplyDashboardDelta(ctx context.Context, ownerID string, day time.Time, d models.DashboardTotals) error {
	updates := increments(map[string]decimal.Decimal{
		"total_sales":              d.TotalSales,
		"total_profit":             d.TotalProfit,
		"total_losses":             d.TotalLosses,
		"total_investments":        d.TotalInvestments,
		"total_products_sold":      d.TotalProductsSold,
		"total_due_from_customers": d.TotalDueFromCustomers,
		"total_due_to_suppliers":   d.TotalDueToSuppliers,
		"total_products_on_stock":  d.TotalProductsOnStock,
	})
	if d.TotalOrders != 0 {
		updates["total_orders"] = gorm.Expr("total_orders + ?", d.TotalOrders)
	}
	if d.TotalInvoices != 0 {
		updates["total_invoices"] = gorm.Expr("total_invoices + ?", d.TotalInvoices)
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	res := s.conn(ctx).Model(&models.Dashboard{}).
		Where("shop_owner_id = ? AND date >= ?", ownerID, day).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return nil
}

// ---- voicers

func (s *GormStore) CreateVoicer(ctx context.Context, v *models.Voicer) error {
	return s.conn(ctx).Create(v).Error
}

func (s *GormStore) FindVoicer(ctx context.Context, ownerID, id string) (*models.Voicer, error) {
	var v models.Voicer
	err := s.conn(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("shop_owner_id = ?", ownerID).
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// ---- raw materials

func (s *GormStore) FindRawMaterial(ctx context.Context, ownerID, id string) (*models.RawMaterial, error) {
	var r models.RawMaterial
	if err := s.conn(ctx).Where("shop_owner_id = ?", ownerID).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *GormStore) ApplyRawMaterialDelta(ctx context.Context, ownerID, id string, d services.RawMaterialDelta) error {
	updates := increments(map[string]decimal.Decimal{
		"stock_amount":     d.Stock,
		"total_investment": d.Investment,
	})
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()

	q := s.conn(ctx).Model(&models.RawMaterial{}).Where("id = ? AND shop_owner_id = ?", id, ownerID)
	if d.Stock.IsNegative() {
		q = q.Where("stock_amount >= ?", d.Stock.Neg())
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if d.Stock.IsNegative() {
			return services.ErrStockExhausted
		}
		return services.ErrNotFound
	}
	return nil
}

func (s *GormStore) AppendRawMaterialMovement(ctx context.Context, m *models.RawMaterialMovement) error {
	return s.conn(ctx).Create(m).Error
}
