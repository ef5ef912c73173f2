package controllers

import (
	"salesassistant-backend/database"
	"salesassistant-backend/middlewares"
	"salesassistant-backend/models"
	"salesassistant-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"min=0"`
	Description string  `json:"description"`
	ImageUrl    string  `json:"image_url" validate:"omitempty,url"`
}

type ProductUpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,min=0"`
	Description *string  `json:"description"`
	ImageUrl    *string  `json:"image_url" validate:"omitempty,url"`
	Active      *bool    `json:"active"`
}

func CreateProduct(c *fiber.Ctx) error {
	var input ProductInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	product := models.Product{
		BusinessId:  businessID,
		Name:        input.Name,
		Price:       utils.Round2(input.Price),
		Stock:       input.Stock,
		Description: input.Description,
		ImageUrl:    input.ImageUrl,
		Active:      true,
	}
	if err := db.Create(&product).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not create product",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "product created successfully",
		"product": product,
	})
}

func GetProducts(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	query := db.Where("business_id = ?", businessID)
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list products")
	}

	return c.JSON(fiber.Map{"products": products})
}

func GetProduct(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	var product models.Product
	if err := db.Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		First(&product).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "product not found",
		})
	}

	return c.JSON(fiber.Map{"product": product})
}

func UpdateProduct(c *fiber.Ctx) error {
	var input ProductUpdateInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	updates := utils.UpdatesFromPtrDTO(&input, nil)
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "no fields to update",
		})
	}
	if price, ok := updates["price"].(float64); ok {
		updates["price"] = utils.Round2(price)
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		Updates(updates)
	if res.Error != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "could not update product",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "product not found",
		})
	}

	var product models.Product
	db.Where("id = ? AND business_id = ?", c.Params("id"), businessID).First(&product)
	return c.JSON(fiber.Map{
		"message": "product updated successfully",
		"product": product,
	})
}

// DeleteProduct soft-deactivates; catalog rows are never physically removed.
func DeleteProduct(c *fiber.Ctx) error {
	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		Update("active", false)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not deactivate product")
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "product not found",
		})
	}

	return c.JSON(fiber.Map{"message": "product deactivated successfully"})
}

type StockInput struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

// UpdateStock sets an absolute stock level (manual correction, not checkout).
func UpdateStock(c *fiber.Ctx) error {
	var input StockInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND business_id = ?", c.Params("id"), businessID).
		Update("stock", *input.Stock)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not update stock")
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "product not found",
		})
	}

	return c.JSON(fiber.Map{"message": "stock updated successfully"})
}

// ImportProducts batch-creates products; invalid entries are skipped rather
// than aborting the whole import.
func ImportProducts(c *fiber.Ctx) error {
	var payload struct {
		Products []ProductInput `json:"products"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	businessID, _ := c.Locals("businessID").(string)
	db, err := database.GetRequestDB(c)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "database error")
	}

	var created []models.Product
	for _, input := range payload.Products {
		if err := middlewares.ValidateStruct(input); err != nil {
			continue
		}
		product := models.Product{
			BusinessId:  businessID,
			Name:        input.Name,
			Price:       utils.Round2(input.Price),
			Stock:       input.Stock,
			Description: input.Description,
			ImageUrl:    input.ImageUrl,
			Active:      true,
		}
		if err := db.Create(&product).Error; err != nil {
			continue
		}
		created = append(created, product)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "products imported",
		"imported": len(created),
		"products": created,
	})
}
