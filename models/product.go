package models

import (
	"context"
	"strings"
	"time"
)

type Product struct {
	ID          int              `gorm:"primary_key" json:"id"`
	Name        string           `gorm:"size:255;not null;index" json:"name"`
	CategoryId  int              `gorm:"index;not null" json:"category_id"`
	Description string           `gorm:"type:text" json:"description"`
	Brand       string           `gorm:"size:100" json:"brand"`
	ImageUrl    string           `gorm:"size:500" json:"image_url"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductId" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name        string `json:"name" validate:"required,max=255"`
	CategoryId  int    `json:"category_id" validate:"required,gt=0"`
	Description string `json:"description"`
	Brand       string `json:"brand" validate:"max=100"`
	ImageUrl    string `json:"image_url" validate:"omitempty,url,max=500"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := requireExists[Category](ctx, "category", input.CategoryId); err != nil {
		return nil, err
	}
	return createModel(ctx, &Product{
		Name:        strings.TrimSpace(input.Name),
		CategoryId:  input.CategoryId,
		Description: input.Description,
		Brand:       input.Brand,
		ImageUrl:    input.ImageUrl,
	})
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return fetchModel[Product](ctx, "product", id, "Variants")
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	return listModels[Product](ctx, "name")
}
