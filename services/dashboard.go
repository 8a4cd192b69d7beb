package services

import (
	"context"
	"errors"
	"time"

	"shop-management-backend/models"
)

// DashboardService keeps one running-aggregate row per owner per day.
//
// Ensure must run before an operation mutates any ledger: a first row is derived
// from live sums, and deriving it after the mutation would count the mutation twice.
type DashboardService struct{}

func NewDashboardService() *DashboardService { return &DashboardService{} }

// Ensure creates the row for day by copying the latest earlier row, or from live
// sums when the owner has no dashboard yet.
func (s *DashboardService) Ensure(ctx context.Context, store Store, ownerID string, day time.Time) error {
	day = Day(day)
	_, err := store.FindDashboard(ctx, ownerID, day)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	totals, err := s.carryForward(ctx, store, ownerID, day)
	if err != nil {
		return err
	}
	return store.CreateDashboard(ctx, &models.Dashboard{ShopOwnerID: ownerID, Date: day, DashboardTotals: totals})
}

// Apply adds delta to an ensured row. A back-dated delta also reaches the
// rows after day, which were copied forward before it happened.
func (s *DashboardService) Apply(ctx context.Context, store Store, ownerID string, day time.Time, delta models.DashboardTotals) error {
	return store.ApplyDashboardDelta(ctx, ownerID, Day(day), delta)
}

// Snapshot reads the totals for day without creating anything.
func (s *DashboardService) Snapshot(ctx context.Context, store Store, ownerID string, day time.Time) (*models.Dashboard, error) {
	day = Day(day)
	row, err := store.FindDashboard(ctx, ownerID, day)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	totals, err := s.carryForward(ctx, store, ownerID, day)
	if err != nil {
		return nil, err
	}
	return &models.Dashboard{ShopOwnerID: ownerID, Date: day, DashboardTotals: totals}, nil
}

func (s *DashboardService) carryForward(ctx context.Context, store Store, ownerID string, day time.Time) (models.DashboardTotals, error) {
	prev, err := store.LatestDashboardBefore(ctx, ownerID, day)
	switch {
	case err == nil:
		return prev.DashboardTotals, nil
	case errors.Is(err, ErrNotFound):
		return store.LiveTotals(ctx, ownerID)
	default:
		return models.DashboardTotals{}, err
	}
}
