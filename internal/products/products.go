// Package products manages the curated affiliate product catalog.
package products

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is one curated catalog entry. Click events store their own
// title/platform/price snapshot, so deleting a product never invalidates
// recorded analytics.
type Product struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Image         string    `json:"image"`
	Price         int       `json:"price"`
	OriginalPrice int       `json:"originalPrice"`
	Description   string    `gorm:"type:text" json:"description"`
	Platform      string    `gorm:"index" json:"platform"`
	AffiliateLink string    `gorm:"not null" json:"affiliateLink"`
	Category      string    `gorm:"index" json:"category"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"-"`
}

// ErrProductNotFound is returned when a product lookup fails.
var ErrProductNotFound = errors.New("product not found")

// UpdateInput holds the mutable product fields. Pointers distinguish
// "leave unchanged" from "set to zero value".
type UpdateInput struct {
	Title         *string `json:"title"`
	Image         *string `json:"image"`
	Price         *int    `json:"price"`
	OriginalPrice *int    `json:"originalPrice"`
	Description   *string `json:"description"`
	Platform      *string `json:"platform"`
	AffiliateLink *string `json:"affiliateLink"`
	Category      *string `json:"category"`
}

// List returns the catalog, newest first.
func List(db *gorm.DB) ([]Product, error) {
	products := []Product{}
	if err := db.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID retrieves a product by id.
func FindByID(db *gorm.DB, id string) (*Product, error) {
	var product Product
	if err := db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create stores a new product, assigning its id.
func Create(db *gorm.DB, product *Product) error {
	if product.Title == "" {
		return errors.New("title cannot be empty")
	}
	if product.AffiliateLink == "" {
		return errors.New("affiliate link cannot be empty")
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Category == "" {
		product.Category = "General"
	}
	return db.Create(product).Error
}

// Update applies the provided fields to an existing product and returns the
// updated record.
func Update(db *gorm.DB, id string, input *UpdateInput) (*Product, error) {
	product, err := FindByID(db, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = *input.OriginalPrice
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Platform != nil {
		product.Platform = *input.Platform
	}
	if input.AffiliateLink != nil {
		product.AffiliateLink = *input.AffiliateLink
	}
	if input.Category != nil {
		product.Category = *input.Category
	}

	if err := db.Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product by id.
func Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
