package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-management-backend/services"
)

// SalesReport sums voicers per day over ?from=&to=.
func (h *Controller) SalesReport(c *fiber.Ctx) error {
	from, to, err := h.dateRange(c)
	if err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	days, err := store.SalesByDay(c.UserContext(), ownerID, from, to)
	if err != nil {
		return err
	}

	var sales, profit, loss decimal.Decimal
	var invoices int64
	for _, d := range days {
		sales = sales.Add(d.Sales)
		profit = profit.Add(d.Profit)
		loss = loss.Add(d.Loss)
		invoices += d.Invoices
	}
	return c.JSON(fiber.Map{
		"from": from.Format(services.DateLayout),
		"to":   to.Format(services.DateLayout),
		"days": days,
		"summary": fiber.Map{
			"invoices": invoices,
			"sales":    sales,
			"profit":   profit,
			"loss":     loss,
		},
	})
}

func (h *Controller) StockReport(c *fiber.Ctx) error {
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	lines, err := store.StockSummary(c.UserContext(), ownerID)
	if err != nil {
		return err
	}

	var investment decimal.Decimal
	for _, l := range lines {
		investment = investment.Add(l.Investment)
	}
	return c.JSON(fiber.Map{"products": lines, "total_investment": investment})
}
