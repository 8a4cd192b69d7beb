package controllers

import (
	"github.com/gofiber/fiber/v2"

	"shop-management-backend/database"
	"shop-management-backend/middlewares"
	"shop-management-backend/models"
	"shop-management-backend/services"
	"shop-management-backend/utils"
)

type CreateNoteDTO struct {
	Title string `json:"title" validate:"required,max=255"`
	Body  string `json:"body" validate:"max=5000"`
}

type UpdateNoteDTO struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=255"`
	Body  *string `json:"body" validate:"omitempty,max=5000"`
}

func (h *Controller) CreateNote(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto CreateNoteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	utils.NormalizeDTO(&dto)

	note := models.Note{ShopOwnerID: ownerID, Title: dto.Title, Body: dto.Body}
	if err := db.Create(&note).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *Controller) GetNotes(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	notes, err := listOwned[models.Note](db, ownerID, pageOf(c), "created_at DESC")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"notes": notes})
}

func (h *Controller) GetNote(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	note, err := findOwned[models.Note](db, ownerID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (h *Controller) UpdateNote(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	var dto UpdateNoteDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	note, err := updateOwned[models.Note](db, ownerID, c.Params("id"), &dto)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (h *Controller) DeleteNote(c *fiber.Ctx) error {
	db, ownerID, err := h.tenant(c)
	if err != nil {
		return err
	}
	res := db.Scopes(database.OwnedBy(ownerID)).Where("id = ?", c.Params("id")).Delete(&models.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}
