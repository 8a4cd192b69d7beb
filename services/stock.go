package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shop-management-backend/models"
	"shop-management-backend/utils"
)

type IntakeRequest struct {
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0"`
	UnitBuyingPrice decimal.Decimal `json:"unit_buying_price" validate:"gte=0"`
	SupplierID      string          `json:"supplier_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount" validate:"gte=0"`
	Note            string          `json:"note" validate:"max=500"`
	Date            string          `json:"date"`
}

type UsageRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	Note     string          `json:"note" validate:"max=500"`
	Date     string          `json:"date"`
}

// StockService records product lot intake and the raw material stock ledger.
type StockService struct {
	Ledger     *LedgerService
	Dashboards *DashboardService
	now        clock
}

func NewStockService(ledger *LedgerService, dashboards *DashboardService, now func() time.Time) *StockService {
	return &StockService{Ledger: ledger, Dashboards: dashboards, now: orNow(now)}
}

// purchase is a validated intake, shared by products and raw materials.
type purchase struct {
	day      time.Time
	qty      decimal.Decimal
	price    decimal.Decimal
	cost     decimal.Decimal
	paid     decimal.Decimal
	supplier *models.Party
}

func (s *StockService) validateIntake(ctx context.Context, store Store, ownerID string, req IntakeRequest) (*purchase, error) {
	day, err := ParseDay("date", req.Date, s.now())
	if err != nil {
		return nil, err
	}
	p := &purchase{
		day:   day,
		qty:   utils.RoundQty(req.Quantity),
		price: utils.Round2(req.UnitBuyingPrice),
		paid:  utils.Round2(req.PaidAmount),
	}
	if !p.qty.IsPositive() {
		return nil, invalid("quantity", "must be positive")
	}
	if p.price.IsNegative() {
		return nil, invalid("unit_buying_price", "must not be negative")
	}
	if p.paid.IsNegative() {
		return nil, invalid("paid_amount", "must not be negative")
	}
	p.cost = utils.Round2(p.qty.Mul(p.price))

	if id := strings.TrimSpace(req.SupplierID); id != "" {
		p.supplier, err = findParty(ctx, store, ownerID, models.PartySupplier, id, "supplier_id")
		if err != nil {
			return nil, err
		}
		if p.paid.GreaterThan(p.cost) {
			return nil, invalid("paid_amount", "paid %s exceeds cost %s", p.paid.StringFixed(2), p.cost.StringFixed(2))
		}
	} else {
		// without a supplier the whole purchase is paid in cash
		p.paid = p.cost
	}
	return p, nil
}

// settle moves the paid part out of cash and posts the rest as supplier due.
func (s *StockService) settle(ctx context.Context, store Store, ownerID string, p *purchase, source, refID, note string) error {
	cash := &models.CashHistory{
		ShopOwnerID: ownerID,
		Direction:   models.CashOut,
		Amount:      p.paid,
		Source:      source,
		ReferenceID: &refID,
		Date:        p.day,
	}
	if err := s.Ledger.Cash.Record(ctx, store, cash); err != nil {
		return failed("cash", err)
	}
	if p.supplier == nil {
		return nil
	}

	entries := []*models.DueHistory{{
		Direction: models.DirectionShopOwnerReceived,
		Amount:    p.cost,
		Method:    "purchase",
		Note:      note,
	}}
	if p.paid.IsPositive() {
		entries = append(entries, &models.DueHistory{
			Direction: models.DirectionShopOwnerGive,
			Amount:    p.paid,
			Method:    MethodCash,
			Note:      note,
		})
	}
	delta := DueDelta{Due: p.cost.Sub(p.paid), Taken: p.cost, Paid: p.paid}
	return s.Ledger.post(ctx, store, ownerID, p.supplier, p.day, delta, entries...)
}

// AddProductStock creates a new inventory lot and grows the product and dashboard totals.
func (s *StockService) AddProductStock(ctx context.Context, store Store, ownerID, productID string, req IntakeRequest) (*models.InventoryLot, error) {
	product, err := store.FindProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	p, err := s.validateIntake(ctx, store, ownerID, req)
	if err != nil {
		return nil, err
	}
	if err := s.Dashboards.Ensure(ctx, store, ownerID, p.day); err != nil {
		return nil, failed("dashboard", err)
	}

	lot := &models.InventoryLot{
		ShopOwnerID:       ownerID,
		ProductID:         product.ID,
		Quantity:          p.qty,
		QuantityRemaining: p.qty,
		UnitBuyingPrice:   p.price,
		IntakeAt:          s.now().UTC(),
	}
	if p.supplier != nil {
		lot.SupplierID = &p.supplier.ID
	}
	if err := store.CreateLot(ctx, lot); err != nil {
		return nil, failed("lot", err)
	}
	if err := store.ApplyProductDelta(ctx, ownerID, product.ID, ProductDelta{Stock: p.qty, Investment: p.cost}); err != nil {
		return nil, failed("product "+product.ID, err)
	}
	dash := models.DashboardTotals{TotalInvestments: p.cost, TotalProductsOnStock: p.qty}
	if err := s.Dashboards.Apply(ctx, store, ownerID, p.day, dash); err != nil {
		return nil, failed("dashboard", err)
	}
	if err := s.settle(ctx, store, ownerID, p, "stock: "+product.Name, lot.ID, strings.TrimSpace(req.Note)); err != nil {
		return nil, err
	}
	return lot, nil
}

// AddRawMaterialStock records a raw material purchase.
func (s *StockService) AddRawMaterialStock(ctx context.Context, store Store, ownerID, rawID string, req IntakeRequest) (*models.RawMaterialMovement, error) {
	raw, err := store.FindRawMaterial(ctx, ownerID, rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.validateIntake(ctx, store, ownerID, req)
	if err != nil {
		return nil, err
	}
	if p.supplier != nil {
		if err := s.Dashboards.Ensure(ctx, store, ownerID, p.day); err != nil {
			return nil, failed("dashboard", err)
		}
	}

	if err := store.ApplyRawMaterialDelta(ctx, ownerID, raw.ID, RawMaterialDelta{Stock: p.qty, Investment: p.cost}); err != nil {
		return nil, failed("raw material", err)
	}
	move := &models.RawMaterialMovement{
		ShopOwnerID:   ownerID,
		RawMaterialID: raw.ID,
		Direction:     models.MovementIn,
		Quantity:      p.qty,
		UnitPrice:     p.price,
		Amount:        p.cost,
		Note:          strings.TrimSpace(req.Note),
		Date:          p.day,
	}
	if p.supplier != nil {
		move.SupplierID = &p.supplier.ID
	}
	if err := store.AppendRawMaterialMovement(ctx, move); err != nil {
		return nil, failed("raw material movement", err)
	}
	if err := s.settle(ctx, store, ownerID, p, "raw material: "+raw.Name, move.ID, move.Note); err != nil {
		return nil, err
	}
	return move, nil
}

// UseRawMaterial consumes raw stock at its weighted average cost.
func (s *StockService) UseRawMaterial(ctx context.Context, store Store, ownerID, rawID string, req UsageRequest) (*models.RawMaterialMovement, error) {
	raw, err := store.FindRawMaterial(ctx, ownerID, rawID)
	if err != nil {
		return nil, err
	}
	day, err := ParseDay("date", req.Date, s.now())
	if err != nil {
		return nil, err
	}
	qty := utils.RoundQty(req.Quantity)
	if !qty.IsPositive() {
		return nil, invalid("quantity", "must be positive")
	}
	if raw.StockAmount.LessThan(qty) {
		return nil, invalid("quantity", "only %s %s in stock", raw.StockAmount.String(), raw.Unit)
	}

	// average cost; the last unit takes whatever investment is left
	cost := raw.TotalInvestment
	avg := decimal.Zero
	if raw.StockAmount.IsPositive() {
		avg = raw.TotalInvestment.Div(raw.StockAmount)
	}
	if qty.LessThan(raw.StockAmount) {
		cost = utils.Round2(avg.Mul(qty))
	}

	err = store.ApplyRawMaterialDelta(ctx, ownerID, raw.ID, RawMaterialDelta{Stock: qty.Neg(), Investment: cost.Neg()})
	if errors.Is(err, ErrStockExhausted) {
		return nil, invalid("quantity", "raw material stock changed concurrently")
	}
	if err != nil {
		return nil, failed("raw material", err)
	}
	move := &models.RawMaterialMovement{
		ShopOwnerID:   ownerID,
		RawMaterialID: raw.ID,
		Direction:     models.MovementOut,
		Quantity:      qty,
		UnitPrice:     utils.Round2(avg),
		Amount:        cost,
		Note:          strings.TrimSpace(req.Note),
		Date:          day,
	}
	if err := store.AppendRawMaterialMovement(ctx, move); err != nil {
		return nil, failed("raw material movement", err)
	}
	return move, nil
}
