package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"shop-management-backend/inventory"
	"shop-management-backend/messaging"
	"shop-management-backend/metrics"
	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/reports"
	"shop-management-backend/services"
)

// CreateVoicer runs a sale inside the request transaction and replies with its receipt.
func (h *Controller) CreateVoicer(c *fiber.Ctx) error {
	var req services.SaleRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}

	voicer, err := h.Sales.CreateVoicer(c.UserContext(), store, ownerID, req)
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			metrics.StockRejections.Inc()
		}
		return err
	}

	billed := voicer.TotalBillAmount.InexactFloat64()
	middlewares.AfterCommit(c, func() {
		metrics.VoicersCreated.Inc()
		metrics.SalesAmount.Add(billed)
	})
	h.ledgerChanged(c, ownerID)
	h.publish(c, ownerID, messaging.VoicerCreated{
		ShopOwnerID:   ownerID,
		VoicerID:      voicer.ID,
		InvoiceNumber: voicer.InvoiceNumber,
		CustomerID:    voicer.CustomerID,
		TotalPrice:    voicer.TotalBillAmount,
		NowPaying:     voicer.PaidAmount,
		TotalProfit:   voicer.TotalProfit,
		Date:          voicer.Date.Format(services.DateLayout),
		OccurredAt:    h.now().UTC(),
	})

	return c.Status(fiber.StatusCreated).JSON(services.ReceiptFor(voicer))
}

func (h *Controller) GetVoicer(c *fiber.Ctx) error {
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	voicer, err := store.FindVoicer(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(services.ReceiptFor(voicer))
}

// GetVoicers lists voicers newest first. ?customer_id= narrows to one customer.
func (h *Controller) GetVoicers(c *fiber.Ctx) error {
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	voicers, total, err := store.ListVoicers(c.UserContext(), ownerID, c.Query("customer_id"), pageOf(c))
	if err != nil {
		return err
	}
	last, err := h.Sequencer.Current(c.UserContext(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"voicers":             voicers,
		"total":               total,
		"last_invoice_number": services.FormatInvoiceNumber(last),
	})
}

func (h *Controller) GetVoicerPDF(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var owner models.ShopOwner
	if err := db.Where("id = ?", ownerID).First(&owner).Error; err != nil {
		return err
	}
	store, _, err := h.store(c)
	if err != nil {
		return err
	}
	voicer, err := store.FindVoicer(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return err
	}

	pdf, err := reports.VoicerPDF(reports.Shop{Name: owner.ShopName, Address: owner.Address, Phone: owner.Phone}, voicer)
	if err != nil {
		return fmt.Errorf("render voicer %s: %w", voicer.InvoiceNumber, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="voicer-%s.pdf"`, voicer.InvoiceNumber))
	return c.Send(pdf)
}
