package controllers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"shop-management-backend/services"
)

// GetDashboard returns the totals for ?date= (default today). Reads never create a row.
func (h *Controller) GetDashboard(c *fiber.Ctx) error {
	day, err := services.ParseDay("date", c.Query("date"), h.now())
	if err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	date := day.Format(services.DateLayout)

	if cached, ok := h.Cache.GetDashboard(c.UserContext(), ownerID, date); ok {
		c.Set("X-Cache", "HIT")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(cached)
	}

	dashboard, err := h.Dashboards.Snapshot(c.UserContext(), store, ownerID, day)
	if err != nil {
		return err
	}
	body, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	h.Cache.SetDashboard(c.UserContext(), ownerID, date, body)
	c.Set("X-Cache", "MISS")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}
