package middlewares

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"gorm.io/gorm"

	"shop-management-backend/database"
)

const localAfterCommit = "afterCommit"

// RequestDeadline bounds the rest of the chain by d. Pool waits, lock waits and
// statements all observe the deadline through c.UserContext(), and a chain that
// runs out of time answers 408. A non-positive d disables the bound.
func RequestDeadline(d time.Duration) fiber.Handler {
	next := func(c *fiber.Ctx) error { return c.Next() }
	if d <= 0 {
		return next
	}
	return timeout.NewWithContext(next, d)
}

// RequestTx opens a per-request DB transaction.
// Order: run AFTER IsAuthenticatedHeader() (so the shop owner is present),
// and AFTER Idempotency() (so idempotency records aren't tied to the handler TX).
// The transaction commits when the handler chain returns nil and rolls back otherwise.
func RequestTx(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		if _, e := database.ShopOwnerID(c); e != nil {
			// Public endpoints (e.g., /login) have no owner; just proceed.
			return c.Next()
		}

		tx := db.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		hooks := &[]func(){}
		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so the recover middleware can catch
			}
			if err != nil {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				slog.Error("tx commit failed", "path", c.Path(), "err", e)
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
				return
			}
			for _, fn := range *hooks {
				fn()
			}
		}()

		c.Locals(database.LocalTx, tx)
		c.Locals(localAfterCommit, hooks)

		err = c.Next()
		return err
	}
}

// AfterCommit runs fn once the request transaction has committed, and never
// when it rolls back. Without a request transaction fn runs immediately.
func AfterCommit(c *fiber.Ctx, fn func()) {
	hooks, _ := c.Locals(localAfterCommit).(*[]func())
	if hooks == nil {
		fn()
		return
	}
	*hooks = append(*hooks, fn)
}
