package database

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	// LocalTx holds the per-request transaction set by middlewares.RequestTx.
	LocalTx = "tx"
	// LocalShopOwner holds the authenticated shop owner ID.
	LocalShopOwner = "shopOwnerID"
)

var ErrNoShopOwner = errors.New("shop owner missing")

// ShopOwnerID returns the authenticated owner of the request.
func ShopOwnerID(c *fiber.Ctx) (string, error) {
	id, _ := c.Locals(LocalShopOwner).(string)
	if strings.TrimSpace(id) == "" {
		return "", ErrNoShopOwner
	}
	return id, nil
}

// GetTenantDB returns the request's transaction when one is open, else a
// plain session on base. Callers still scope every query by shop_owner_id.
func GetTenantDB(c *fiber.Ctx, base *gorm.DB) (*gorm.DB, error) {
	if v := c.Locals(LocalTx); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if base == nil {
		return nil, errors.New("database not initialized")
	}
	return base.Session(&gorm.Session{Context: c.UserContext()}), nil
}

// OwnedBy scopes a query to one shop owner.
func OwnedBy(ownerID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("shop_owner_id = ?", ownerID)
	}
}
