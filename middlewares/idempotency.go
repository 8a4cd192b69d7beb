package middlewares

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shop-management-backend/database"
	"shop-management-backend/models"
)

const maxIdempotencyKey = 128

// Idempotency processes Idempotency-Key for mutating HTTP methods, scoped to the shop owner.
// It uses its own short transactions so the stored key survives a rolled back handler TX.
func Idempotency(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKey {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		ownerID, err := database.ShopOwnerID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "auth context missing"})
		}

		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body(), ownerID)

		// ---- Phase 1: read or create the "pending" record
		var existing models.IdempotencyKey
		created := false
		err = db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
			err := tx.Where("shop_owner_id = ? AND key = ?", ownerID, key).First(&existing).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
			}
			rec := models.IdempotencyKey{
				ShopOwnerID: ownerID,
				Key:         key,
				RequestHash: reqHash,
				Method:      method,
				Path:        path,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
			if res.Error != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
			}
			if res.RowsAffected == 0 {
				// lost the race to a concurrent request with the same key
				if e := tx.Where("shop_owner_id = ? AND key = ?", ownerID, key).First(&existing).Error; e != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
				}
				return nil
			}
			existing = rec
			created = true
			return nil
		})
		if err != nil {
			return err
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 {
			// completed earlier: replay without running the handler
			c.Set("Idempotent-Replayed", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}
		if !created {
			return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is still in progress")
		}

		// We own the key; run the handler once.
		if err := c.Next(); err != nil {
			// free the key so the client can retry
			releaseKey(c.UserContext(), db, existing.ID)
			return err
		}

		// ---- Phase 2: store the response (best-effort)
		storeResponse(c.UserContext(), db, existing.ID, c.Response().StatusCode(), c.Response().Body())
		return nil
	}
}

func releaseKey(ctx context.Context, db *gorm.DB, id uint) {
	err := db.WithContext(ctx).
		Where("id = ? AND response_status = 0", id).
		Delete(&models.IdempotencyKey{}).Error
	if err != nil {
		slog.Warn("idempotency key release failed", "id", id, "err", err)
	}
}

// storeResponse copies body; fiber reuses the response buffer.
func storeResponse(ctx context.Context, db *gorm.DB, id uint, status int, body []byte) {
	now := time.Now().UTC()
	blob := make([]byte, len(body))
	copy(blob, body)
	err := db.WithContext(ctx).Model(&models.IdempotencyKey{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   blob,
			"completed_at":    &now,
		}).Error
	if err != nil {
		slog.Warn("idempotency response store failed", "id", id, "status", status, "err", err)
	}
}

// requestHash is sha256 of method|path|body|owner.
func requestHash(method, path string, body []byte, ownerID string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(ownerID))
	return hex.EncodeToString(h.Sum(nil))
}
