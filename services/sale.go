package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"shop-management-backend/inventory"
	"shop-management-backend/models"
	"shop-management-backend/utils"
)

const quickInvoiceSource = "quick invoice"

type SaleLine struct {
	ProductID    string          `json:"product_id" validate:"required"`
	ProductName  string          `json:"product_name" validate:"max=255"`
	Unit         string          `json:"unit" validate:"max=32"`
	Quantity     decimal.Decimal `json:"quantity" validate:"gt=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gte=0"`
}

type SaleRequest struct {
	SellingProducts []SaleLine      `json:"selling_products" validate:"required,min=1,dive"`
	CustomerID      string          `json:"customer_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount" validate:"gte=0"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	LabourCost      decimal.Decimal `json:"labour_cost" validate:"gte=0"`
	Date            string          `json:"date"`
}

// SaleReceipt is the response of a sale; it is rebuilt from the stored voicer on reads.
type SaleReceipt struct {
	VoicerID     string              `json:"voicer_id"`
	InvoiceID    string              `json:"invoice_id"`
	CustomerName string              `json:"customer_name"`
	Products     []models.VoicerLine `json:"products"`
	TotalPrice   decimal.Decimal     `json:"total_price"`
	BeforeDue    decimal.Decimal     `json:"before_due"`
	LabourCost   decimal.Decimal     `json:"labour_cost"`
	Discount     decimal.Decimal     `json:"discount_amount"`
	NowPaying    decimal.Decimal     `json:"now_paying"`
	RemainingDue decimal.Decimal     `json:"remaining_due"`
	TotalProfit  decimal.Decimal     `json:"total_profit"`
	TotalLoss    decimal.Decimal     `json:"total_loss"`
	Date         string              `json:"date"`
}

func ReceiptFor(v *models.Voicer) *SaleReceipt {
	name := v.CustomerName
	if v.CustomerID == nil {
		name = quickInvoiceSource
	}
	return &SaleReceipt{
		VoicerID:     v.ID,
		InvoiceID:    v.InvoiceNumber,
		CustomerName: name,
		Products:     v.Lines,
		TotalPrice:   v.TotalBillAmount,
		BeforeDue:    v.BeforeDue,
		LabourCost:   v.LabourCost,
		Discount:     v.DiscountAmount,
		NowPaying:    v.PaidAmount,
		RemainingDue: v.RemainingDue,
		TotalProfit:  v.TotalProfit,
		TotalLoss:    v.TotalLoss,
		Date:         v.Date.Format(DateLayout),
	}
}

// SaleService costs a sale against inventory lots and propagates it to the
// product, dashboard, cash and customer ledgers.
type SaleService struct {
	Sequencer  InvoiceSequencer
	Ledger     *LedgerService
	Dashboards *DashboardService
	now        clock
}

func NewSaleService(seq InvoiceSequencer, ledger *LedgerService, dashboards *DashboardService, now func() time.Time) *SaleService {
	return &SaleService{Sequencer: seq, Ledger: ledger, Dashboards: dashboards, now: orNow(now)}
}

// plannedLine is a sale line costed against the in-memory pools.
type plannedLine struct {
	product *models.Product
	line    models.VoicerLine
	alloc   inventory.Allocation
}

// CreateVoicer runs one sale. Validation and costing happen before the first
// write; once writing starts any failure is a *TransactionFailedError and the
// caller must roll the store's transaction back.
func (s *SaleService) CreateVoicer(ctx context.Context, store Store, ownerID string, req SaleRequest) (*models.Voicer, error) {
	day, err := ParseDay("date", req.Date, s.now())
	if err != nil {
		return nil, err
	}
	if len(req.SellingProducts) == 0 {
		return nil, invalid("selling_products", "at least one product is required")
	}
	paid := utils.Round2(req.PaidAmount)
	discount := utils.Round2(req.DiscountAmount)
	labour := utils.Round2(req.LabourCost)
	if paid.IsNegative() || discount.IsNegative() || labour.IsNegative() {
		return nil, invalid("", "paid, discount and labour amounts must not be negative")
	}

	var customer *models.Party
	if id := strings.TrimSpace(req.CustomerID); id != "" {
		customer, err = findParty(ctx, store, ownerID, models.PartyCustomer, id, "customer_id")
		if err != nil {
			return nil, err
		}
	}

	planned, err := s.plan(ctx, store, ownerID, req.SellingProducts)
	if err != nil {
		return nil, err
	}
	allocs := make([]inventory.Allocation, len(planned))
	for i, p := range planned {
		allocs[i] = p.alloc
	}
	totals := inventory.Sum(allocs)

	if discount.GreaterThan(totals.Bill.Add(labour)) {
		return nil, invalid("discount_amount", "discount %s exceeds bill plus labour %s", discount.StringFixed(2), totals.Bill.Add(labour).StringFixed(2))
	}

	// bill − (paid + discount) + labour
	invoiceDue := totals.Bill.Sub(paid.Add(discount)).Add(labour)
	if customer == nil && invoiceDue.IsPositive() {
		return nil, invalid("paid_amount", "a sale without customer must be fully paid (due %s)", invoiceDue.StringFixed(2))
	}

	if err := s.Dashboards.Ensure(ctx, store, ownerID, day); err != nil {
		return nil, failed("dashboard", err)
	}

	number, err := s.Sequencer.Next(ctx, ownerID)
	if err != nil {
		return nil, failed("invoice number", err)
	}

	voicer := &models.Voicer{
		Base:            models.Base{ID: uuid.NewString()},
		ShopOwnerID:     ownerID,
		InvoiceNumber:   FormatInvoiceNumber(number),
		TotalBillAmount: totals.Bill,
		PaidAmount:      paid,
		DiscountAmount:  discount,
		LabourCost:      labour,
		InvoiceDue:      invoiceDue,
		TotalProfit:     totals.Profit,
		TotalLoss:       totals.Loss,
		TotalInvestment: totals.Investment,
		TotalUnits:      totals.Units,
		Date:            day,
	}
	if customer != nil {
		voicer.CustomerID = &customer.ID
		voicer.CustomerName = customer.Name
		voicer.CustomerPhone = customer.Phone
		voicer.CustomerAddress = customer.Address
		voicer.BeforeDue = customer.DueAmount
		voicer.RemainingDue = customer.DueAmount.Add(invoiceDue)
	}
	for _, p := range planned {
		voicer.Lines = append(voicer.Lines, p.line)
	}

	for _, p := range planned {
		for _, c := range p.alloc.Consumptions {
			if err := store.ConsumeLot(ctx, c.LotID, c.Quantity); err != nil {
				return nil, failed("consume lot "+c.LotID, err)
			}
		}
	}

	// 1. product totals
	for _, productID := range productOrder(planned) {
		var d ProductDelta
		for _, p := range planned {
			if p.product.ID != productID {
				continue
			}
			d.Profit = d.Profit.Add(p.alloc.Profit)
			d.Loss = d.Loss.Add(p.alloc.Loss)
			d.Stock = d.Stock.Sub(p.alloc.Quantity)
			d.Sold = d.Sold.Add(p.alloc.Quantity)
			d.Investment = d.Investment.Sub(p.alloc.Investment)
		}
		if err := store.ApplyProductDelta(ctx, ownerID, productID, d); err != nil {
			return nil, failed("product "+productID, err)
		}
	}

	// 2. dashboard; the customer due part is posted by the ledger below
	dash := models.DashboardTotals{
		TotalSales:           totals.Bill,
		TotalProfit:          totals.Profit,
		TotalLosses:          totals.Loss,
		TotalInvestments:     totals.Investment.Neg(),
		TotalProductsSold:    totals.Units,
		TotalProductsOnStock: totals.Units.Neg(),
		TotalOrders:          1,
		TotalInvoices:        1,
	}
	if err := s.Dashboards.Apply(ctx, store, ownerID, day, dash); err != nil {
		return nil, failed("dashboard", err)
	}

	// 3. cash
	source := quickInvoiceSource
	if customer != nil {
		source = customer.Name
	}
	cash := &models.CashHistory{
		ShopOwnerID: ownerID,
		Direction:   models.CashIn,
		Amount:      paid,
		Source:      source,
		ReferenceID: &voicer.ID,
		Date:        day,
	}
	if err := s.Ledger.Cash.Record(ctx, store, cash); err != nil {
		return nil, failed("cash", err)
	}

	// 4. customer due
	if customer != nil {
		taken := totals.Bill.Add(labour).Sub(discount)
		note := "voicer " + voicer.InvoiceNumber
		entries := []*models.DueHistory{{
			Direction: models.DirectionShopOwnerGive,
			Amount:    taken,
			Method:    "sale",
			Note:      note,
			VoicerID:  &voicer.ID,
		}}
		if paid.IsPositive() {
			entries = append(entries, &models.DueHistory{
				Direction: models.DirectionShopOwnerReceived,
				Amount:    paid,
				Method:    MethodCash,
				Note:      note,
				VoicerID:  &voicer.ID,
			})
		}
		delta := DueDelta{Due: invoiceDue, Taken: taken, Paid: paid}
		if err := s.Ledger.post(ctx, store, ownerID, customer, day, delta, entries...); err != nil {
			return nil, err
		}
	}

	// 5. the voicer itself
	if err := store.CreateVoicer(ctx, voicer); err != nil {
		return nil, failed("voicer", err)
	}
	return voicer, nil
}

// plan validates every line, locks each product's lots once in product ID order
// and costs the lines in request order. Nothing is written.
func (s *SaleService) plan(ctx context.Context, store Store, ownerID string, lines []SaleLine) ([]plannedLine, error) {
	type parsed struct {
		productID string
		qty       decimal.Decimal
		price     decimal.Decimal
	}
	parsedLines := make([]parsed, len(lines))
	firstSeen := make(map[string]int)
	for i, line := range lines {
		field := fmt.Sprintf("selling_products[%d]", i)
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return nil, invalid(field+".product_id", "is required")
		}
		qty := utils.RoundQty(line.Quantity)
		price := utils.Round2(line.SellingPrice)
		if !qty.IsPositive() {
			return nil, invalid(field+".quantity", "must be positive")
		}
		if price.IsNegative() {
			return nil, invalid(field+".selling_price", "must not be negative")
		}
		parsedLines[i] = parsed{productID: productID, qty: qty, price: price}
		if _, ok := firstSeen[productID]; !ok {
			firstSeen[productID] = i
		}
	}

	// a fixed lock order keeps concurrent multi-product sales from deadlocking
	ids := make([]string, 0, len(firstSeen))
	for id := range firstSeen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	products := make(map[string]*models.Product, len(ids))
	pools := make(map[string]*inventory.Pool, len(ids))
	for _, productID := range ids {
		p, err := store.FindProduct(ctx, ownerID, productID)
		if errors.Is(err, ErrNotFound) {
			field := fmt.Sprintf("selling_products[%d].product_id", firstSeen[productID])
			return nil, invalid(field, "unknown product %s", productID)
		}
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", productID, err)
		}
		lots, err := store.LockLots(ctx, ownerID, productID)
		if err != nil {
			return nil, fmt.Errorf("load lots of %s: %w", productID, err)
		}
		products[productID] = p
		pools[productID] = inventory.NewPool(productID, toPoolLots(lots))
	}

	planned := make([]plannedLine, 0, len(lines))
	for i, line := range lines {
		pl := parsedLines[i]
		product := products[pl.productID]

		alloc, err := pools[pl.productID].Take(pl.qty, pl.price)
		if err != nil {
			return nil, err
		}
		allocations, err := json.Marshal(alloc.Consumptions)
		if err != nil {
			return nil, fmt.Errorf("encode allocations: %w", err)
		}

		name := strings.TrimSpace(line.ProductName)
		if name == "" {
			name = product.Name
		}
		unit := strings.TrimSpace(line.Unit)
		if unit == "" {
			unit = product.Unit
		}
		planned = append(planned, plannedLine{
			product: product,
			alloc:   alloc,
			line: models.VoicerLine{
				Position:     i,
				ProductID:    pl.productID,
				ProductName:  name,
				Unit:         unit,
				Quantity:     pl.qty,
				SellingPrice: pl.price,
				LineTotal:    alloc.Revenue,
				Profit:       alloc.Profit,
				Loss:         alloc.Loss,
				Investment:   alloc.Investment,
				Allocations:  datatypes.JSON(allocations),
			},
		})
	}
	return planned, nil
}

func toPoolLots(lots []models.InventoryLot) []inventory.Lot {
	out := make([]inventory.Lot, len(lots))
	for i, l := range lots {
		out[i] = inventory.Lot{ID: l.ID, Remaining: l.QuantityRemaining, UnitCost: l.UnitBuyingPrice}
	}
	return out
}

// productOrder lists product IDs in first-seen order.
func productOrder(planned []plannedLine) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range planned {
		if !seen[p.product.ID] {
			seen[p.product.ID] = true
			ids = append(ids, p.product.ID)
		}
	}
	return ids
}
