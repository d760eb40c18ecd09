package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"dealkart/internal/products"
)

// ProductsIndexAction lists the catalog for the public storefront, newest
// first.
func (h *Handler) ProductsIndexAction(c *fiber.Ctx) error {
	list, err := products.List(h.db)
	if err != nil {
		h.logger.Error("Failed to list products", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch products",
			"code":  "INTERNAL_ERROR",
		})
	}
	return c.Status(http.StatusOK).JSON(list)
}

// ProductCreateAction adds a product to the catalog.
func (h *Handler) ProductCreateAction(c *fiber.Ctx) error {
	var product products.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	if err := products.Create(h.db, &product); err != nil {
		h.logger.Error("Failed to create product", slog.Any("error", err))
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "VALIDATION_ERROR",
		})
	}

	h.logger.Info("Product created",
		slog.String("product_id", product.ID),
		slog.String("platform", product.Platform))
	return c.Status(http.StatusCreated).JSON(product)
}

// ProductUpdateAction applies partial updates to an existing product.
func (h *Handler) ProductUpdateAction(c *fiber.Ctx) error {
	id := c.Params("id")

	var input products.UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
			"code":  "INVALID_REQUEST",
		})
	}

	product, err := products.Update(h.db, id, &input)
	if err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
				"code":  "NOT_FOUND",
			})
		}
		h.logger.Error("Failed to update product", slog.String("product_id", id), slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update product",
			"code":  "INTERNAL_ERROR",
		})
	}

	return c.Status(http.StatusOK).JSON(product)
}

// ProductDeleteAction removes a product. Past click events keep their
// denormalized snapshot, so analytics are unaffected.
func (h *Handler) ProductDeleteAction(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := products.Delete(h.db, id); err != nil {
		if errors.Is(err, products.ErrProductNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
				"code":  "NOT_FOUND",
			})
		}
		h.logger.Error("Failed to delete product", slog.String("product_id", id), slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete product",
			"code":  "INTERNAL_ERROR",
		})
	}

	h.logger.Info("Product deleted", slog.String("product_id", id))
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}
