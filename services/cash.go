package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shop-management-backend/models"
	"shop-management-backend/utils"
)

type CashRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Source string          `json:"source" validate:"max=255"`
	Date   string          `json:"date"`
}

// CashService moves money in and out of the owner's cash ledger.
type CashService struct {
	now clock
}

func NewCashService(now func() time.Time) *CashService { return &CashService{now: orNow(now)} }

// Record adds a signed cash movement and its history row. Zero amounts are ignored.
func (s *CashService) Record(ctx context.Context, store Store, entry *models.CashHistory) error {
	if entry.Amount.IsZero() {
		return nil
	}
	delta := entry.Amount
	if entry.Direction == models.CashOut {
		delta = delta.Neg()
	}
	if err := store.ApplyCash(ctx, entry.ShopOwnerID, delta); err != nil {
		return err
	}
	entry.Date = Day(entry.Date)
	return store.AppendCashHistory(ctx, entry)
}

// Deposit and Withdraw are the manual cash-in and cash-out operations.
func (s *CashService) Deposit(ctx context.Context, store Store, ownerID string, req CashRequest) (*models.CashHistory, error) {
	return s.manual(ctx, store, ownerID, models.CashIn, req)
}

func (s *CashService) Withdraw(ctx context.Context, store Store, ownerID string, req CashRequest) (*models.CashHistory, error) {
	return s.manual(ctx, store, ownerID, models.CashOut, req)
}

func (s *CashService) manual(ctx context.Context, store Store, ownerID, direction string, req CashRequest) (*models.CashHistory, error) {
	amount := utils.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be positive")
	}
	day, err := ParseDay("date", req.Date, s.now())
	if err != nil {
		return nil, err
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "manual"
	}
	entry := &models.CashHistory{ShopOwnerID: ownerID, Direction: direction, Amount: amount, Source: source, Date: day}
	if err := s.Record(ctx, store, entry); err != nil {
		return nil, failed("cash", err)
	}
	return entry, nil
}
