package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/services"
)

type cashMove func(ctx context.Context, store services.Store, ownerID string, req services.CashRequest) (*models.CashHistory, error)

func (h *Controller) GetCash(c *fiber.Ctx) error {
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	balance, err := store.CashBalance(c.UserContext(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cash_balance": balance})
}

func (h *Controller) CashIn(c *fiber.Ctx) error {
	return h.moveCash(c, h.Cash.Deposit)
}

func (h *Controller) CashOut(c *fiber.Ctx) error {
	return h.moveCash(c, h.Cash.Withdraw)
}

func (h *Controller) moveCash(c *fiber.Ctx, move cashMove) error {
	var req services.CashRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	entry, err := move(c.UserContext(), store, ownerID, req)
	if err != nil {
		return err
	}
	h.ledgerChanged(c, ownerID)
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// GetCashHistory lists cash movements in ?from=&to=, newest first.
func (h *Controller) GetCashHistory(c *fiber.Ctx) error {
	from, to, err := h.dateRange(c)
	if err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	history, err := store.ListCashHistory(c.UserContext(), ownerID, from, to, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"from":    from.Format(services.DateLayout),
		"to":      to.Format(services.DateLayout),
		"history": history,
	})
}
