package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/services"
	"shop-management-backend/utils"
)

type CreateRawMaterialDTO struct {
	Name string `json:"name" validate:"required,max=255"`
	Unit string `json:"unit" validate:"max=32"`
}

type UpdateRawMaterialDTO struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Unit *string `json:"unit" validate:"omitempty,max=32"`
}

// CreateRawMaterial registers a material with empty stock. Stock moves through AddRawMaterialStock and UseRawMaterial.
func (h *Controller) CreateRawMaterial(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto CreateRawMaterialDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	raw := models.RawMaterial{ShopOwnerID: ownerID, Name: dto.Name, Unit: dto.Unit}
	if err := db.Create(&raw).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(raw)
}

func (h *Controller) GetRawMaterials(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	materials, err := listOwned[models.RawMaterial](db, ownerID, pageOf(c), "name ASC")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"raw_materials": materials})
}

func (h *Controller) GetRawMaterial(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	raw, err := findOwned[models.RawMaterial](db, ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(raw)
}

func (h *Controller) UpdateRawMaterial(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto UpdateRawMaterialDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	raw, err := updateOwned[models.RawMaterial](db, ownerID, c.Params("id"), &dto)
	if err != nil {
		return err
	}
	return c.JSON(raw)
}

func (h *Controller) AddRawMaterialStock(c *fiber.Ctx) error {
	var req services.IntakeRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	movement, err := h.Stock.AddRawMaterialStock(c.UserContext(), store, ownerID, c.Params("id"), req)
	if err != nil {
		return err
	}
	h.ledgerChanged(c, ownerID)
	return c.Status(fiber.StatusCreated).JSON(movement)
}

func (h *Controller) UseRawMaterial(c *fiber.Ctx) error {
	var req services.UsageRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	movement, err := h.Stock.UseRawMaterial(c.UserContext(), store, ownerID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(movement)
}

func (h *Controller) GetRawMaterialMovements(c *fiber.Ctx) error {
	store, ownerID, err := h.store(c)
	if err != nil {
		return err
	}
	rawID := c.Params("id")
	if _, err := store.FindRawMaterial(c.UserContext(), ownerID, rawID); err != nil {
		return err
	}
	movements, err := store.ListRawMaterialMovements(c.UserContext(), ownerID, rawID, pageOf(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"movements": movements})
}
