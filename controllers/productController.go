package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/services"
	"shop-management-backend/utils"
)

type CreateProductDTO struct {
	Name         string          `json:"name" validate:"required,max=255"`
	Unit         string          `json:"unit" validate:"max=32"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gte=0"`
}

type UpdateProductDTO struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Unit         *string          `json:"unit" validate:"omitempty,max=32"`
	SellingPrice *decimal.Decimal `json:"selling_price" validate:"omitempty,gte=0"`
}

// CreateProducts accepts a single product or an array (batch create).
func (h *Controller) CreateProducts(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}

	var inputs []CreateProductDTO
	body := strings.TrimSpace(string(c.Body()))
	if strings.HasPrefix(body, "[") {
		if err := c.BodyParser(&inputs); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	} else {
		var one CreateProductDTO
		if err := c.BodyParser(&one); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		inputs = append(inputs, one)
	}
	if len(inputs) == 0 {
		return &services.ValidationError{Message: "at least one product is required"}
	}

	created := make([]models.Product, 0, len(inputs))
	for i := range inputs {
		utils.NormalizeDTO(&inputs[i])
		if err := middlewares.ValidateStruct(inputs[i]); err != nil {
			return err
		}
		product := models.Product{
			ShopOwnerID:  ownerID,
			Name:         inputs[i].Name,
			Unit:         inputs[i].Unit,
			SellingPrice: inputs[i].SellingPrice,
		}
		if err := db.Create(&product).Error; err != nil {
			return err
		}
		created = append(created, product)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Controller) GetProducts(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	products, err := listOwned[models.Product](db, ownerID, pageOf(c), "name ASC")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products, "message": "success"})
}

func (h *Controller) GetProduct(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	product, err := findOwned[models.Product](db, ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// UpdateProduct changes descriptive fields only; stock and totals move through intake and sales.
func (h *Controller) UpdateProduct(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto UpdateProductDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	product, err := updateOwned[models.Product](db, ownerID, c.Params("id"), &dto)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// AddProductStock records a new inventory lot, optionally bought on supplier credit.
func (h *Controller) AddProductStock(c *fiber.Ctx) error {
	var req services.IntakeRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	lot, err := h.Stock.AddProductStock(c.UserContext(), store, ownerID, c.Params("id"), req)
	if err != nil {
		return err
	}
	h.ledgerChanged(c, ownerID)
	return c.Status(fiber.StatusCreated).JSON(lot)
}

func (h *Controller) GetProductLots(c *fiber.Ctx) error {
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	productID := c.Params("id")
	if _, err := store.FindProduct(c.UserContext(), ownerID, productID); err != nil {
		return err
	}
	lots, err := store.ListLots(c.UserContext(), ownerID, productID, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"lots": lots})
}
