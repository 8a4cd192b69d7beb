package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"shop-management-backend/middlewares"
	"shop-management-backend/models"
)

type RegisterDTO struct {
	Name            string `json:"name" validate:"required,max=255"`
	ShopName        string `json:"shop_name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"max=32"`
	Address         string `json:"address" validate:"max=500"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Controller) tokenResponse(owner *models.ShopOwner) (fiber.Map, error) {
	token, err := h.Auth.GenerateJWT(owner.ID, owner.ShopName)
	if err != nil {
		return nil, err
	}
	return fiber.Map{
		"token": token,
		"shop_owner": fiber.Map{
			"id":        owner.ID,
			"name":      owner.Name,
			"shop_name": owner.ShopName,
			"email":     owner.Email,
		},
	}, nil
}

func (h *Controller) Register(c *fiber.Ctx) error {
	var dto RegisterDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	var count int64
	if err := h.DB.Model(&models.ShopOwner{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	owner := models.ShopOwner{
		Name:     strings.TrimSpace(dto.Name),
		ShopName: strings.TrimSpace(dto.ShopName),
		Email:    email,
		Phone:    strings.TrimSpace(dto.Phone),
		Address:  strings.TrimSpace(dto.Address),
	}
	if err := owner.SetPassword(dto.Password); err != nil {
		return err
	}
	if err := h.DB.WithContext(c.UserContext()).Create(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "email already exists")
		}
		return err
	}

	resp, err := h.tokenResponse(&owner)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Controller) Login(c *fiber.Ctx) error {
	var dto LoginDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	var owner models.ShopOwner
	err := h.DB.WithContext(c.UserContext()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(dto.Email))).
		First(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}
	if err != nil {
		return err
	}
	if err := owner.ComparePassword(dto.Password); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	resp, err := h.tokenResponse(&owner)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Logout clears a legacy cookie; bearer tokens simply expire.
func (h *Controller) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"message": "success"})
}

func (h *Controller) Me(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var owner models.ShopOwner
	if err := db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "shop owner no longer exists")
		}
		return err
	}
	return c.JSON(owner)
}
