package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"shop-management-backend/controllers"
	"shop-management-backend/middlewares"
	"shop-management-backend/models"
)

// Register wires all HTTP routes. Protected requests are bounded by requestTimeout.
func Register(app *fiber.App, h *controllers.Controller, db *gorm.DB, requestTimeout time.Duration) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", h.Register)
	api.Post("/login", h.Login)
	api.Post("/logout", h.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(h.Auth.IsAuthenticatedHeader())

	// Deadline before anything touches the database
	protected.Use(middlewares.RequestDeadline(requestTimeout))

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency(db))

	// Then the per-request transaction (commits on success, rolls back on error)
	protected.Use(middlewares.RequestTx(db))

	protected.Get("/me", h.Me)

	// Voicers (immutable sales invoices)
	protected.Post("/voicer", h.CreateVoicer)
	protected.Get("/voicers", h.GetVoicers)
	protected.Get("/voicer/:id", h.GetVoicer)
	protected.Get("/voicer/:id/pdf", h.GetVoicerPDF)

	// Products and their inventory lots
	protected.Post("/product", h.CreateProducts) // batch create
	protected.Get("/products", h.GetProducts)
	protected.Get("/product/:id", h.GetProduct)
	protected.Put("/product/:id", h.UpdateProduct)
	protected.Post("/product/:id/stock", h.AddProductStock)
	protected.Get("/product/:id/lots", h.GetProductLots)

	// Customers
	protected.Post("/customer", h.CreateCustomer)
	protected.Get("/customers", h.GetCustomers)
	protected.Get("/customer/:id", h.GetCustomer)
	protected.Put("/customer/:id", h.UpdateCustomer)

	// Suppliers
	protected.Post("/supplier", h.CreateSupplier)
	protected.Get("/suppliers", h.GetSuppliers)
	protected.Get("/supplier/:id", h.GetSupplier)
	protected.Put("/supplier/:id", h.UpdateSupplier)

	// Lone providers
	protected.Post("/lone-provider", h.CreateLoneProvider)
	protected.Get("/lone-providers", h.GetLoneProviders)
	protected.Get("/lone-provider/:id", h.GetLoneProvider)
	protected.Put("/lone-provider/:id", h.UpdateLoneProvider)

	// Due ledgers
	for prefix, kind := range map[string]models.PartyKind{
		"/customer":      models.PartyCustomer,
		"/supplier":      models.PartySupplier,
		"/lone-provider": models.PartyLoneProvider,
	} {
		protected.Post(prefix+"/:id/due", h.IncreaseDue(kind))
		protected.Post(prefix+"/:id/payment", h.SettleDue(kind))
		protected.Get(prefix+"/:id/due-history", h.GetDueHistory(kind))
	}

	// Cash
	protected.Get("/cash", h.GetCash)
	protected.Post("/cash/in", h.CashIn)
	protected.Post("/cash/out", h.CashOut)
	protected.Get("/cash/history", h.GetCashHistory)

	// Raw materials
	protected.Post("/raw-material", h.CreateRawMaterial)
	protected.Get("/raw-materials", h.GetRawMaterials)
	protected.Get("/raw-material/:id", h.GetRawMaterial)
	protected.Put("/raw-material/:id", h.UpdateRawMaterial)
	protected.Post("/raw-material/:id/stock", h.AddRawMaterialStock)
	protected.Post("/raw-material/:id/use", h.UseRawMaterial)
	protected.Get("/raw-material/:id/movements", h.GetRawMaterialMovements)

	// Notes
	protected.Post("/note", h.CreateNote)
	protected.Get("/notes", h.GetNotes)
	protected.Get("/note/:id", h.GetNote)
	protected.Put("/note/:id", h.UpdateNote)
	protected.Delete("/note/:id", h.DeleteNote)

	// Dashboard and reports (read-only)
	protected.Get("/dashboard", h.GetDashboard)
	protected.Get("/reports/sales", h.SalesReport)
	protected.Get("/reports/stock", h.StockReport)
}
