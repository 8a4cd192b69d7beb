package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/services"
)

// IncreaseDue returns the handler that adds to the due balance of one party kind.
func (h *Controller) IncreaseDue(kind models.PartyKind) fiber.Handler {
	return h.dueTransition(kind, false)
}

// SettleDue returns the handler that records a payment against a party's due balance.
func (h *Controller) SettleDue(kind models.PartyKind) fiber.Handler {
	return h.dueTransition(kind, true)
}

func (h *Controller) dueTransition(kind models.PartyKind, settle bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.DueRequest
		if err := middlewares.BindAndValidate(c, &req); err != nil {
			return err
		}
		store, ownerID, err := h.store(c)
		if err != nil {
			return err
		}

		var entry *models.DueHistory
		if settle {
			entry, err = h.Ledger.SettleDue(c.UserContext(), store, ownerID, kind, c.Params("id"), req)
		} else {
			entry, err = h.Ledger.IncreaseDue(c.UserContext(), store, ownerID, kind, c.Params("id"), req)
		}
		if err != nil {
			return err
		}
		h.ledgerChanged(c, ownerID)
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

func (h *Controller) GetDueHistory(kind models.PartyKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store, ownerID, err := h.store(c)
		if err != nil {
			return err
		}
		partyID := c.Params("id")
		if _, err := store.FindParty(c.UserContext(), ownerID, kind, partyID); err != nil {
			return err
		}
		history, err := store.ListDueHistory(c.UserContext(), ownerID, kind, partyID, pageOf(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"history": history})
	}
}
