package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-management-backend/database"
	"shop-management-backend/middlewares"
	"shop-management-backend/services"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestApp(h *Controller, withOwner bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	if withOwner {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(database.LocalShopOwner, "owner-1")
			return c.Next()
		})
	}
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestHandlersRequireAuthContext(t *testing.T) {
	h := &Controller{Now: func() time.Time { return fixedNow }}
	app := newTestApp(h, false)
	app.Get("/products", h.GetProducts)
	app.Get("/cash", h.GetCash)

	for _, path := range []string{"/products", "/cash"} {
		resp, body := do(t, app, "GET", path, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "auth context missing", body["message"])
	}
}

func TestDateRange(t *testing.T) {
	h := &Controller{Now: func() time.Time { return fixedNow }}
	app := newTestApp(h, true)
	app.Get("/range", func(c *fiber.Ctx) error {
		from, to, err := h.dateRange(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"from": from.Format(services.DateLayout), "to": to.Format(services.DateLayout)})
	})

	resp, body := do(t, app, "GET", "/range", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2026-02-09", body["from"])
	assert.Equal(t, "2026-03-10", body["to"])

	resp, body = do(t, app, "GET", "/range?from=2026-01-01&to=2026-01-31", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2026-01-01", body["from"])

	resp, body = do(t, app, "GET", "/range?from=2026-02-01&to=2026-01-31", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, map[string]any{"from": "must not be after to"}, body["errors"])

	resp, _ = do(t, app, "GET", "/range?to=31.01.2026", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRequestsAreValidatedBeforeStorage(t *testing.T) {
	h := &Controller{Now: func() time.Time { return fixedNow }}
	app := newTestApp(h, true)
	app.Post("/voicer", h.CreateVoicer)
	app.Post("/cash/in", h.CashIn)
	app.Post("/customer/:id/payment", h.SettleDue("customer"))
	app.Get("/dashboard", h.GetDashboard)

	resp, body := do(t, app, "POST", "/voicer", `{"selling_products":[],"paid_amount":0}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["errors"], "selling_products")

	resp, body = do(t, app, "POST", "/voicer", `{"selling_products":[{"product_id":"p1","quantity":0,"selling_price":20}],"paid_amount":0}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "gt", body["errors"].(map[string]any)["selling_products[0].quantity"])

	resp, _ = do(t, app, "POST", "/cash/in", `{"amount":-5}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/customer/c1/payment", `{"amount":10,"method":"barter"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = do(t, app, "POST", "/cash/in", `{"amount":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, app, "GET", "/dashboard?date=yesterday", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["errors"], "date")
}

func TestPageOf(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.JSON(pageOf(c)) })

	resp, body := do(t, app, "GET", "/?limit=500&offset=20", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 200, body["Limit"])
	assert.EqualValues(t, 20, body["Offset"])

	_, body = do(t, app, "GET", "/?limit=abc", "")
	assert.EqualValues(t, 50, body["Limit"])
}
