package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-management-backend/models"
)

// memStore is an in-memory Store. Every method takes the lock, mirroring the
// single-statement atomicity of the SQL implementation.
type memStore struct {
	mu sync.Mutex

	products   map[string]*models.Product
	lots       []*models.InventoryLot
	parties    map[string]*models.Party
	dueHistory []models.DueHistory
	cash       map[string]decimal.Decimal
	cashLog    []models.CashHistory
	dashboards map[string]*models.Dashboard
	voicers    map[string]*models.Voicer
	raws       map[string]*models.RawMaterial
	moves      []models.RawMaterialMovement
	lockOrder  []string

	failOn string // method name that returns errBoom
}

var errBoom = errors.New("boom")

func newMemStore() *memStore {
	return &memStore{
		products:   map[string]*models.Product{},
		parties:    map[string]*models.Party{},
		cash:       map[string]decimal.Decimal{},
		dashboards: map[string]*models.Dashboard{},
		voicers:    map[string]*models.Voicer{},
		raws:       map[string]*models.RawMaterial{},
	}
}

func newID(b *models.Base) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
}

func (m *memStore) fail(name string) error {
	if m.failOn == name {
		return errBoom
	}
	return nil
}

func dashKey(ownerID string, day time.Time) string { return ownerID + "|" + day.Format(DateLayout) }

func partyKey(kind models.PartyKind, id string) string { return string(kind) + "|" + id }

// seeding helpers

func (m *memStore) addProduct(ownerID, id, name string) {
	m.products[id] = &models.Product{Base: models.Base{ID: id}, ShopOwnerID: ownerID, Name: name, Unit: "pcs"}
}

func (m *memStore) addLot(ownerID, productID, id string, qty, cost string, at time.Time) {
	q := decimal.RequireFromString(qty)
	c := decimal.RequireFromString(cost)
	m.lots = append(m.lots, &models.InventoryLot{
		Base: models.Base{ID: id}, ShopOwnerID: ownerID, ProductID: productID,
		Quantity: q, QuantityRemaining: q, UnitBuyingPrice: c, IntakeAt: at,
	})
	p := m.products[productID]
	p.TotalStockAmount = p.TotalStockAmount.Add(q)
	p.TotalInvestment = p.TotalInvestment.Add(q.Mul(c))
}

func (m *memStore) addParty(ownerID string, kind models.PartyKind, id, name, due string) {
	p := &models.Party{Kind: kind, ID: id, Name: name, Phone: "0100", Address: "Main road"}
	p.DueAmount = decimal.RequireFromString(due)
	m.parties[ownerID+"|"+partyKey(kind, id)] = p
}

func (m *memStore) party(ownerID string, kind models.PartyKind, id string) *models.Party {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parties[ownerID+"|"+partyKey(kind, id)]
}

func (m *memStore) lot(id string) *models.InventoryLot {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lots {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (m *memStore) cashOf(ownerID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash[ownerID]
}

// Store implementation

func (m *memStore) FindProduct(ctx context.Context, ownerID, productID string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok || p.ShopOwnerID != ownerID {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) LockLots(ctx context.Context, ownerID, productID string) ([]models.InventoryLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockOrder = append(m.lockOrder, productID)
	var out []models.InventoryLot
	for _, l := range m.lots {
		if l.ShopOwnerID == ownerID && l.ProductID == productID && l.QuantityRemaining.IsPositive() {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IntakeAt.Equal(out[j].IntakeAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].IntakeAt.Before(out[j].IntakeAt)
	})
	return out, nil
}

func (m *memStore) CreateLot(ctx context.Context, lot *models.InventoryLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateLot"); err != nil {
		return err
	}
	newID(&lot.Base)
	cp := *lot
	m.lots = append(m.lots, &cp)
	return nil
}

func (m *memStore) ConsumeLot(ctx context.Context, lotID string, qty decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ConsumeLot"); err != nil {
		return err
	}
	for _, l := range m.lots {
		if l.ID == lotID {
			if l.QuantityRemaining.LessThan(qty) {
				return ErrStockExhausted
			}
			l.QuantityRemaining = l.QuantityRemaining.Sub(qty)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) ApplyProductDelta(ctx context.Context, ownerID, productID string, d ProductDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ApplyProductDelta"); err != nil {
		return err
	}
	p, ok := m.products[productID]
	if !ok || p.ShopOwnerID != ownerID {
		return ErrNotFound
	}
	p.TotalStockAmount = p.TotalStockAmount.Add(d.Stock)
	p.TotalInvestment = p.TotalInvestment.Add(d.Investment)
	p.TotalProfit = p.TotalProfit.Add(d.Profit)
	p.TotalLoss = p.TotalLoss.Add(d.Loss)
	p.TotalSold = p.TotalSold.Add(d.Sold)
	return nil
}

func (m *memStore) FindParty(ctx context.Context, ownerID string, kind models.PartyKind, id string) (*models.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[ownerID+"|"+partyKey(kind, id)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ApplyDueDelta(ctx context.Context, ownerID string, kind models.PartyKind, id string, d DueDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ApplyDueDelta"); err != nil {
		return err
	}
	p, ok := m.parties[ownerID+"|"+partyKey(kind, id)]
	if !ok {
		return ErrNotFound
	}
	p.DueAmount = p.DueAmount.Add(d.Due)
	p.TotalTaken = p.TotalTaken.Add(d.Taken)
	p.TotalPaid = p.TotalPaid.Add(d.Paid)
	return nil
}

func (m *memStore) AppendDueHistory(ctx context.Context, h *models.DueHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// chk_due_histories_amount_pos
	if !h.Amount.IsPositive() {
		return fmt.Errorf("due history amount must be positive, got %s", h.Amount)
	}
	newID(&h.Base)
	m.dueHistory = append(m.dueHistory, *h)
	return nil
}

func (m *memStore) ApplyCash(ctx context.Context, ownerID string, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ApplyCash"); err != nil {
		return err
	}
	m.cash[ownerID] = m.cash[ownerID].Add(delta)
	return nil
}

func (m *memStore) AppendCashHistory(ctx context.Context, h *models.CashHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newID(&h.Base)
	m.cashLog = append(m.cashLog, *h)
	return nil
}

func (m *memStore) CashBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash[ownerID], nil
}

func (m *memStore) FindDashboard(ctx context.Context, ownerID string, day time.Time) (*models.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dashboards[dashKey(ownerID, day)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) LatestDashboardBefore(ctx context.Context, ownerID string, day time.Time) (*models.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.Dashboard
	for _, d := range m.dashboards {
		if d.ShopOwnerID != ownerID || !d.Date.Before(day) {
			continue
		}
		if best == nil || d.Date.After(best.Date) {
			best = d
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *memStore) LiveTotals(ctx context.Context, ownerID string) (models.DashboardTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var t models.DashboardTotals
	for _, p := range m.products {
		if p.ShopOwnerID != ownerID {
			continue
		}
		t.TotalInvestments = t.TotalInvestments.Add(p.TotalInvestment)
		t.TotalProductsOnStock = t.TotalProductsOnStock.Add(p.TotalStockAmount)
		t.TotalProfit = t.TotalProfit.Add(p.TotalProfit)
		t.TotalLosses = t.TotalLosses.Add(p.TotalLoss)
		t.TotalProductsSold = t.TotalProductsSold.Add(p.TotalSold)
	}
	for key, p := range m.parties {
		if len(key) < len(ownerID) || key[:len(ownerID)] != ownerID {
			continue
		}
		switch p.Kind {
		case models.PartyCustomer:
			t.TotalDueFromCustomers = t.TotalDueFromCustomers.Add(p.DueAmount)
		case models.PartySupplier:
			t.TotalDueToSuppliers = t.TotalDueToSuppliers.Add(p.DueAmount)
		}
	}
	for _, v := range m.voicers {
		if v.ShopOwnerID == ownerID {
			t.TotalSales = t.TotalSales.Add(v.TotalBillAmount)
			t.TotalInvoices++
			t.TotalOrders++
		}
	}
	return t, nil
}

func (m *memStore) CreateDashboard(ctx context.Context, d *models.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dashKey(d.ShopOwnerID, d.Date)
	if _, exists := m.dashboards[key]; exists {
		return nil
	}
	newID(&d.Base)
	cp := *d
	m.dashboards[key] = &cp
	return nil
}

func (m *memStore) ApplyDashboardDelta(ctx context.Context, ownerID string, day time.Time, delta models.DashboardTotals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ApplyDashboardDelta"); err != nil {
		return err
	}
	if _, ok := m.dashboards[dashKey(ownerID, day)]; !ok {
		return ErrNotFound
	}
	for _, d := range m.dashboards {
		if d.ShopOwnerID == ownerID && !d.Date.Before(day) {
			d.DashboardTotals = d.DashboardTotals.Add(delta)
		}
	}
	return nil
}

func (m *memStore) CreateVoicer(ctx context.Context, v *models.Voicer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateVoicer"); err != nil {
		return err
	}
	for _, existing := range m.voicers {
		if existing.ShopOwnerID == v.ShopOwnerID && existing.InvoiceNumber == v.InvoiceNumber {
			return errors.New("duplicate invoice number")
		}
	}
	newID(&v.Base)
	for i := range v.Lines {
		newID(&v.Lines[i].Base)
		v.Lines[i].VoicerID = v.ID
	}
	cp := *v
	cp.Lines = append([]models.VoicerLine(nil), v.Lines...)
	m.voicers[v.ID] = &cp
	return nil
}

func (m *memStore) FindVoicer(ctx context.Context, ownerID, id string) (*models.Voicer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voicers[id]
	if !ok || v.ShopOwnerID != ownerID {
		return nil, ErrNotFound
	}
	cp := *v
	cp.Lines = append([]models.VoicerLine(nil), v.Lines...)
	return &cp, nil
}

func (m *memStore) FindRawMaterial(ctx context.Context, ownerID, id string) (*models.RawMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raws[id]
	if !ok || r.ShopOwnerID != ownerID {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ApplyRawMaterialDelta(ctx context.Context, ownerID, id string, d RawMaterialDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raws[id]
	if !ok || r.ShopOwnerID != ownerID {
		return ErrNotFound
	}
	if d.Stock.IsNegative() && r.StockAmount.LessThan(d.Stock.Neg()) {
		return ErrStockExhausted
	}
	r.StockAmount = r.StockAmount.Add(d.Stock)
	r.TotalInvestment = r.TotalInvestment.Add(d.Investment)
	return nil
}

func (m *memStore) AppendRawMaterialMovement(ctx context.Context, mv *models.RawMaterialMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newID(&mv.Base)
	m.moves = append(m.moves, *mv)
	return nil
}

// memSequencer mimics the atomic upsert-increment of the invoice counter.
type memSequencer struct {
	mu       sync.Mutex
	counters map[string]int64
	err      error
}

func newMemSequencer() *memSequencer { return &memSequencer{counters: map[string]int64{}} }

func (s *memSequencer) Next(ctx context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counters[ownerID]++
	return s.counters[ownerID], nil
}
