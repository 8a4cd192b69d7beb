package controllers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shop-management-backend/cache"
	"shop-management-backend/database"
	"shop-management-backend/messaging"
	"shop-management-backend/metrics"
	"shop-management-backend/middlewares"
	"shop-management-backend/repositories"
	"shop-management-backend/services"
	"shop-management-backend/utils"
)

// Controller holds everything the HTTP handlers need. It is built once in main.
type Controller struct {
	DB         *gorm.DB
	Auth       *middlewares.Auth
	Sequencer  *repositories.GormSequencer
	Sales      *services.SaleService
	Ledger     *services.LedgerService
	Stock      *services.StockService
	Cash       *services.CashService
	Dashboards *services.DashboardService
	Cache      *cache.Cache
	Publisher  messaging.Publisher
	EventTopic string
	Now        func() time.Time
}

func (h *Controller) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// tenant returns the request's DB handle and the authenticated owner.
func (h *Controller) tenant(c *fiber.Ctx) (*gorm.DB, string, error) {
	ownerID, err := database.ShopOwnerID(c)
	if err != nil {
		return nil, "", fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
	}
	db, err := database.GetTenantDB(c, h.DB)
	if err != nil {
		return nil, "", err
	}
	return db, ownerID, nil
}

func (h *Controller) store(c *fiber.Ctx) (*repositories.GormStore, string, error) {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return nil, "", err
	}
	return repositories.NewGormStore(db), ownerID, nil
}

// ledgerChanged drops the owner's cached dashboards once the request commits.
func (h *Controller) ledgerChanged(c *fiber.Ctx, ownerID string) {
	middlewares.AfterCommit(c, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.Cache.InvalidateDashboards(ctx, ownerID)
	})
}

// publish sends event in the background once the request commits.
func (h *Controller) publish(c *fiber.Ctx, key string, event any) {
	if h.Publisher == nil {
		return
	}
	middlewares.AfterCommit(c, func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.Publisher.PublishEvent(ctx, h.EventTopic, key, event); err != nil {
				metrics.EventPublishFailures.WithLabelValues(h.EventTopic).Inc()
				slog.Warn("event publish failed", "topic", h.EventTopic, "key", key, "err", err)
			}
		}()
	})
}

func pageOf(c *fiber.Ctx) repositories.Page {
	return repositories.Page{
		Limit:  utils.ParseIntDefault(c.Query("limit"), 0),
		Offset: utils.ParseIntDefault(c.Query("offset"), 0),
	}.Normalize()
}

// dateRange reads ?from=&to= (YYYY-MM-DD). Defaults to the 30 days ending today.
func (h *Controller) dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := h.now()
	to, err := services.ParseDay("to", c.Query("to"), now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, err := services.ParseDay("from", c.Query("from"), to.AddDate(0, 0, -29))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, &services.ValidationError{Field: "from", Message: "must not be after to"}
	}
	return from, to, nil
}

// findOwned loads one row of T owned by ownerID.
func findOwned[T any](db *gorm.DB, ownerID, id string) (*T, error) {
	var row T
	if err := db.Scopes(database.OwnedBy(ownerID)).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// updateOwned applies a partial update built from a pointer DTO and reloads the row.
func updateOwned[T any](db *gorm.DB, ownerID, id string, dto any) (*T, error) {
	utils.NormalizePtrDTO(dto)
	updates, err := utils.PatchColumns(dto)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		res := db.Model(new(T)).Scopes(database.OwnedBy(ownerID)).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, services.ErrNotFound
		}
	}
	return findOwned[T](db, ownerID, id)
}

func listOwned[T any](db *gorm.DB, ownerID string, page repositories.Page, order string) ([]T, error) {
	var rows []T
	err := db.Scopes(database.OwnedBy(ownerID)).Order(order).Limit(page.Limit).Offset(page.Offset).Find(&rows).Error
	return rows, err
}
