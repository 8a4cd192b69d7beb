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

const MethodCash = "cash"

type DueRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"omitempty,oneof=cash bank mobile cheque other"`
	Note   string          `json:"note" validate:"max=500"`
	Date   string          `json:"date"`
}

// dueRule describes how one party kind moves through the due ledger.
// An empty cash direction means the transition never touches cash.
type dueRule struct {
	increaseDirection string
	increaseCash      string
	settleDirection   string
	settleCash        string
}

var dueRules = map[models.PartyKind]dueRule{
	// shop sells or lends to the customer, customer pays back
	models.PartyCustomer: {
		increaseDirection: models.DirectionShopOwnerGive,
		increaseCash:      models.CashOut,
		settleDirection:   models.DirectionShopOwnerReceived,
		settleCash:        models.CashIn,
	},
	// goods arrive on credit, shop pays later
	models.PartySupplier: {
		increaseDirection: models.DirectionShopOwnerReceived,
		settleDirection:   models.DirectionShopOwnerGive,
		settleCash:        models.CashOut,
	},
	// loan received, shop repays
	models.PartyLoneProvider: {
		increaseDirection: models.DirectionShopOwnerReceived,
		increaseCash:      models.CashIn,
		settleDirection:   models.DirectionShopOwnerGive,
		settleCash:        models.CashOut,
	},
}

// LedgerService runs the increase-due and settle-due transitions shared by
// customers, suppliers and lone providers.
type LedgerService struct {
	Cash       *CashService
	Dashboards *DashboardService
	now        clock
}

func NewLedgerService(cash *CashService, dashboards *DashboardService, now func() time.Time) *LedgerService {
	return &LedgerService{Cash: cash, Dashboards: dashboards, now: orNow(now)}
}

func (s *LedgerService) IncreaseDue(ctx context.Context, store Store, ownerID string, kind models.PartyKind, partyID string, req DueRequest) (*models.DueHistory, error) {
	return s.transition(ctx, store, ownerID, kind, partyID, req, false)
}

// SettleDue records a payment against the party's due. Paying more than is due is rejected.
func (s *LedgerService) SettleDue(ctx context.Context, store Store, ownerID string, kind models.PartyKind, partyID string, req DueRequest) (*models.DueHistory, error) {
	return s.transition(ctx, store, ownerID, kind, partyID, req, true)
}

func (s *LedgerService) transition(ctx context.Context, store Store, ownerID string, kind models.PartyKind, partyID string, req DueRequest, settle bool) (*models.DueHistory, error) {
	rule, ok := dueRules[kind]
	if !ok {
		return nil, invalid("kind", "unknown party kind %q", kind)
	}
	amount := utils.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be positive")
	}
	day, err := ParseDay("date", req.Date, s.now())
	if err != nil {
		return nil, err
	}
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = MethodCash
	}

	party, err := store.FindParty(ctx, ownerID, kind, partyID)
	if err != nil {
		return nil, err
	}
	if settle && amount.GreaterThan(party.DueAmount) {
		return nil, invalid("amount", "payment %s exceeds due %s", amount.StringFixed(2), party.DueAmount.StringFixed(2))
	}

	if err := s.Dashboards.Ensure(ctx, store, ownerID, day); err != nil {
		return nil, failed("dashboard", err)
	}

	entry := &models.DueHistory{Amount: amount, Method: method, Note: strings.TrimSpace(req.Note)}
	delta := DueDelta{Due: amount, Taken: amount, Paid: decimal.Zero}
	cashDirection := rule.increaseCash
	entry.Direction = rule.increaseDirection
	if settle {
		delta = DueDelta{Due: amount.Neg(), Taken: decimal.Zero, Paid: amount}
		cashDirection = rule.settleCash
		entry.Direction = rule.settleDirection
	}

	if err := s.post(ctx, store, ownerID, party, day, delta, entry); err != nil {
		return nil, err
	}

	if method == MethodCash && cashDirection != "" {
		ref := entry.ID
		cash := &models.CashHistory{
			ShopOwnerID: ownerID,
			Direction:   cashDirection,
			Amount:      amount,
			Source:      string(kind) + ": " + party.Name,
			ReferenceID: &ref,
			Date:        day,
		}
		if err := s.Cash.Record(ctx, store, cash); err != nil {
			return nil, failed("cash", err)
		}
	}
	return entry, nil
}

// post applies delta to the party, appends its history rows and moves the
// matching dashboard due total. The dashboard row for day must be ensured.
func (s *LedgerService) post(ctx context.Context, store Store, ownerID string, party *models.Party, day time.Time, delta DueDelta, entries ...*models.DueHistory) error {
	if err := store.ApplyDueDelta(ctx, ownerID, party.Kind, party.ID, delta); err != nil {
		return failed("due balance", err)
	}
	for _, e := range entries {
		if e.Amount.IsZero() {
			continue
		}
		e.ShopOwnerID = ownerID
		e.PartyKind = party.Kind
		e.PartyID = party.ID
		e.Date = Day(day)
		if err := store.AppendDueHistory(ctx, e); err != nil {
			return failed("due history", err)
		}
	}

	var dash models.DashboardTotals
	switch party.Kind {
	case models.PartyCustomer:
		dash.TotalDueFromCustomers = delta.Due
	case models.PartySupplier:
		dash.TotalDueToSuppliers = delta.Due
	default:
		return nil
	}
	if delta.Due.IsZero() {
		return nil
	}
	if err := s.Dashboards.Apply(ctx, store, ownerID, day, dash); err != nil {
		return failed("dashboard", err)
	}
	return nil
}

// findParty turns a missing party into a validation error on field.
func findParty(ctx context.Context, store Store, ownerID string, kind models.PartyKind, id, field string) (*models.Party, error) {
	party, err := store.FindParty(ctx, ownerID, kind, id)
	if errors.Is(err, ErrNotFound) {
		return nil, invalid(field, "unknown %s %s", kind, id)
	}
	return party, err
}
