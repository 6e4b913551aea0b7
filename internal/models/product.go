package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ProductColor is a single color variant of a product.
type ProductColor struct {
	Color    string   `json:"color" validate:"required"`
	Images   []string `json:"images" validate:"dive,url"`
	Quantity int      `json:"quantity" validate:"gte=0"`
}

// Product represents a catalog item. IDs are integers assigned monotonically
// at creation time and never reused after deletion.
type Product struct {
	ID            int            `json:"id" gorm:"primaryKey"`
	Title         string         `json:"title" validate:"required,min=7"`
	Price         float64        `json:"price" validate:"required,gt=0"`
	DiscountPrice *float64       `json:"discountPrice,omitempty" validate:"omitempty,gt=0"`
	RatingCount   int            `json:"ratingCount" validate:"gte=0"`
	AvgRate       float64        `json:"avgRate" validate:"gte=0,lte=5"`
	MainImgSRC    string         `json:"mainImgSRC" validate:"required,url"`
	Description   string         `json:"description" validate:"required,min=10"`
	Category      string         `json:"category" validate:"required"`
	SubCategory   string         `json:"subCategory" gorm:"column:sub_category" validate:"required"`
	IsFeatured    *bool          `json:"isFeatured,omitempty"`
	IsFlash       *bool          `json:"isFlash,omitempty"`
	Colors        []ProductColor `json:"colors" gorm:"serializer:json" validate:"required,min=1,dive"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Validate enforces the product schema. It covers the tag rules plus the
// cross-field constraint that tags cannot express: a discount price must be
// strictly below the regular price.
func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
		return fmt.Errorf("discountPrice %.2f must be less than price %.2f", *p.DiscountPrice, p.Price)
	}
	return nil
}

// ProductPatch is the explicit partial-update type for a product. Nil fields
// are left untouched; set fields overwrite the existing value (shallow
// overwrite, the colors list is replaced as a whole, not merged).
type ProductPatch struct {
	Title         *string        `json:"title"`
	Price         *float64       `json:"price"`
	DiscountPrice *float64       `json:"discountPrice"`
	RatingCount   *int           `json:"ratingCount"`
	AvgRate       *float64       `json:"avgRate"`
	MainImgSRC    *string        `json:"mainImgSRC"`
	Description   *string        `json:"description"`
	Category      *string        `json:"category"`
	SubCategory   *string        `json:"subCategory"`
	IsFeatured    *bool          `json:"isFeatured"`
	IsFlash       *bool          `json:"isFlash"`
	Colors        []ProductColor `json:"colors"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *ProductPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Price == nil &&
		p.DiscountPrice == nil &&
		p.RatingCount == nil &&
		p.AvgRate == nil &&
		p.MainImgSRC == nil &&
		p.Description == nil &&
		p.Category == nil &&
		p.SubCategory == nil &&
		p.IsFeatured == nil &&
		p.IsFlash == nil &&
		p.Colors == nil
}

// ApplyTo merges the patch onto an existing product, field by field.
func (p *ProductPatch) ApplyTo(product *Product) {
	if p.Title != nil {
		product.Title = *p.Title
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.DiscountPrice != nil {
		product.DiscountPrice = p.DiscountPrice
	}
	if p.RatingCount != nil {
		product.RatingCount = *p.RatingCount
	}
	if p.AvgRate != nil {
		product.AvgRate = *p.AvgRate
	}
	if p.MainImgSRC != nil {
		product.MainImgSRC = *p.MainImgSRC
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.SubCategory != nil {
		product.SubCategory = *p.SubCategory
	}
	if p.IsFeatured != nil {
		product.IsFeatured = p.IsFeatured
	}
	if p.IsFlash != nil {
		product.IsFlash = p.IsFlash
	}
	if p.Colors != nil {
		product.Colors = p.Colors
	}
}
