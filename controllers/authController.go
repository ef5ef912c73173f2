package controllers

import (
	"errors"

	"salesassistant-backend/database"
	"salesassistant-backend/middlewares"
	"salesassistant-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name         string `json:"name" validate:"required,min=2,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Phone        string `json:"phone"`
	BusinessType string `json:"business_type"`
	Description  string `json:"description"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a new business (tenant) account and returns a signed token.
func Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	var existing models.Business
	err := database.DB.Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "email already registered",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusInternalServerError, "registration lookup failed")
	}

	business := models.Business{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		BusinessType: input.BusinessType,
		Description:  input.Description,
		Active:       true,
	}
	business.SetPassword(input.Password)

	if err := database.DB.Create(&business).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not create business",
			"error":   err.Error(),
		})
	}

	token, err := middlewares.GenerateJWT(business.Id, business.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not sign token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "business registered successfully",
		"business": business,
		"token":    token,
	})
}

// Login checks credentials and returns a signed token.
func Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	var business models.Business
	err := database.DB.Where("email = ?", input.Email).First(&business).Error
	if err != nil {
		// Same answer whether the account exists or not.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}

	if err := business.ComparePassword(input.Password); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(business.Id, business.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not sign token")
	}

	return c.JSON(fiber.Map{
		"message":  "login successful",
		"business": business,
		"token":    token,
	})
}

// Profile returns the authenticated business row.
func Profile(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)

	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	business, err := database.GetBusinessById(db, businessID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "business not found",
		})
	}

	return c.JSON(fiber.Map{"business": business})
}
