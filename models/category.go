package models

import (
	"context"
	"strings"
	"time"
)

type Category struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Name        string    `gorm:"size:255;not null;unique" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return createModel(ctx, &Category{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	})
}

func GetCategory(ctx context.Context, id int) (*Category, error) {
	return fetchModel[Category](ctx, "category", id)
}

func GetCategories(ctx context.Context) ([]*Category, error) {
	return listModels[Category](ctx, "name")
}
