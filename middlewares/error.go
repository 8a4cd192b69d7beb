package middlewares

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shop-management-backend/inventory"
	"shop-management-backend/services"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 0) A failed write step is reported as one outcome, whatever it wraps
	var txErr *services.TransactionFailedError
	if errors.As(err, &txErr) {
		slog.Error("transaction failed", "path", c.Path(), "step", txErr.Step, "err", txErr.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "transaction failed"})
	}

	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fieldPath(fe)] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}
	var sve *services.ValidationError
	if errors.As(err, &sve) {
		body := fiber.Map{"message": sve.Error()}
		if sve.Field != "" {
			body["errors"] = map[string]string{sve.Field: sve.Message}
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}

	// 3) Domain outcomes
	var stock *inventory.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "insufficient stock",
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	}
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "already exists"})
	}

	// 4) Unknown errors (500)
	slog.Error("internal error", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

// fieldPath drops the struct name from the namespace: "SaleRequest.selling_products[0].quantity"
// becomes "selling_products[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
