package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"shop-management-backend/models"
)

// ProductDelta is applied to a product with single-statement increments.
type ProductDelta struct {
	Stock      decimal.Decimal
	Investment decimal.Decimal
	Profit     decimal.Decimal
	Loss       decimal.Decimal
	Sold       decimal.Decimal
}

// DueDelta is applied to a party's DueBalance with single-statement increments.
type DueDelta struct {
	Due   decimal.Decimal
	Taken decimal.Decimal
	Paid  decimal.Decimal
}

// RawMaterialDelta changes raw material stock. A negative Stock is only applied
// when the row still holds at least that much.
type RawMaterialDelta struct {
	Stock      decimal.Decimal
	Investment decimal.Decimal
}

// Store is the persistence the ledgers need. Implementations run every call on
// the request transaction; all counters change through atomic increments.
// Lookups return ErrNotFound when the row is missing or owned by someone else.
type Store interface {
	FindProduct(ctx context.Context, ownerID, productID string) (*models.Product, error)
	// LockLots returns the product's lots with stock left, oldest intake first, row-locked.
	LockLots(ctx context.Context, ownerID, productID string) ([]models.InventoryLot, error)
	CreateLot(ctx context.Context, lot *models.InventoryLot) error
	// ConsumeLot decrements a lot and returns ErrStockExhausted if it holds less than qty.
	ConsumeLot(ctx context.Context, lotID string, qty decimal.Decimal) error
	ApplyProductDelta(ctx context.Context, ownerID, productID string, d ProductDelta) error

	FindParty(ctx context.Context, ownerID string, kind models.PartyKind, id string) (*models.Party, error)
	ApplyDueDelta(ctx context.Context, ownerID string, kind models.PartyKind, id string, d DueDelta) error
	AppendDueHistory(ctx context.Context, h *models.DueHistory) error

	// ApplyCash upserts the owner's cash ledger and adds delta to the balance.
	ApplyCash(ctx context.Context, ownerID string, delta decimal.Decimal) error
	AppendCashHistory(ctx context.Context, h *models.CashHistory) error
	CashBalance(ctx context.Context, ownerID string) (decimal.Decimal, error)

	FindDashboard(ctx context.Context, ownerID string, day time.Time) (*models.Dashboard, error)
	LatestDashboardBefore(ctx context.Context, ownerID string, day time.Time) (*models.Dashboard, error)
	LiveTotals(ctx context.Context, ownerID string) (models.DashboardTotals, error)
	// CreateDashboard inserts the row unless one already exists for (owner, date).
	CreateDashboard(ctx context.Context, d *models.Dashboard) error
	// ApplyDashboardDelta adds d to the row for day and to every later row, since
	// later rows carry the running totals forward. ErrNotFound when day has no row.
	ApplyDashboardDelta(ctx context.Context, ownerID string, day time.Time, d models.DashboardTotals) error

	CreateVoicer(ctx context.Context, v *models.Voicer) error
	FindVoicer(ctx context.Context, ownerID, id string) (*models.Voicer, error)

	FindRawMaterial(ctx context.Context, ownerID, id string) (*models.RawMaterial, error)
	ApplyRawMaterialDelta(ctx context.Context, ownerID, id string, d RawMaterialDelta) error
	AppendRawMaterialMovement(ctx context.Context, m *models.RawMaterialMovement) error
}

// InvoiceSequencer hands out per-owner invoice numbers. Numbers are strictly
// increasing and never reused, gaps are allowed.
type InvoiceSequencer interface {
	Next(ctx context.Context, ownerID string) (int64, error)
}
