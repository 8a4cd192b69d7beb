package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/utils"
)

type CreateCustomerDTO struct {
	Name    string `json:"name" validate:"required,max=255"`
	Phone   string `json:"phone" validate:"max=50"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Address string `json:"address" validate:"max=500"`
}

type UpdateCustomerDTO struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone   *string `json:"phone" validate:"omitempty,max=50"`
	Email   *string `json:"email" validate:"omitempty,email,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

// CreateCustomer opens a customer with a zero due balance. Dues only move through sales and payments.
func (h *Controller) CreateCustomer(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto CreateCustomerDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	customer := models.Customer{
		ShopOwnerID: ownerID,
		Name:        dto.Name,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Address:     dto.Address,
	}
	if err := db.Create(&customer).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *Controller) GetCustomers(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	customers, err := listOwned[models.Customer](db, ownerID, pageOf(c), "name ASC")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"customers": customers})
}

func (h *Controller) GetCustomer(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	customer, err := findOwned[models.Customer](db, ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(customer)
}

func (h *Controller) UpdateCustomer(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto UpdateCustomerDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	customer, err := updateOwned[models.Customer](db, ownerID, c.Params("id"), &dto)
	if err != nil {
		return err
	}
	return c.JSON(customer)
}
