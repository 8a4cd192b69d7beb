package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/utils"
)

type CreateSupplierDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	CompanyName string `json:"company_name" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=50"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Address     string `json:"address" validate:"max=500"`
}

type UpdateSupplierDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
}

func (h *Controller) CreateSupplier(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto CreateSupplierDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	supplier := models.Supplier{
		ShopOwnerID: ownerID,
		Name:        dto.Name,
		CompanyName: dto.CompanyName,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Address:     dto.Address,
	}
	if err := db.Create(&supplier).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

func (h *Controller) GetSuppliers(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	suppliers, err := listOwned[models.Supplier](db, ownerID, pageOf(c), "name ASC")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"suppliers": suppliers})
}

func (h *Controller) GetSupplier(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	supplier, err := findOwned[models.Supplier](db, ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(supplier)
}

func (h *Controller) UpdateSupplier(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto UpdateSupplierDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	supplier, err := updateOwned[models.Supplier](db, ownerID, c.Params("id"), &dto)
	if err != nil {
		return err
	}
	return c.JSON(supplier)
}
