package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/utils"
)

type CreateLoneProviderDTO struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

type UpdateLoneProviderDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

func (h *Controller) CreateLoneProvider(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto CreateLoneProviderDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	provider := models.LoneProvider{
		ShopOwnerID: ownerID,
		Name:        dto.Name,
		Phone:       dto.Phone,
		Address:     dto.Address,
	}
	if err := db.Create(&provider).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(provider)
}

func (h *Controller) GetLoneProviders(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	providers, err := listOwned[models.LoneProvider](db, ownerID, pageOf(c), "name ASC")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"lone_providers": providers})
}

func (h *Controller) GetLoneProvider(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	provider, err := findOwned[models.LoneProvider](db, ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(provider)
}

func (h *Controller) UpdateLoneProvider(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto UpdateLoneProviderDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	provider, err := updateOwned[models.LoneProvider](db, ownerID, c.Params("id"), &dto)
	if err != nil {
		return err
	}
	return c.JSON(provider)
}
