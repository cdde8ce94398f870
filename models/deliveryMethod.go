package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/utils"
)

type DeliveryMethod struct {
	ID                       int       `gorm:"primary_key" json:"id"`
	DeliveryName             string    `gorm:"size:255;not null" json:"delivery_name"`
	CarNumber                string    `gorm:"size:50" json:"car_number"`
	DeliveryNumber           string    `gorm:"size:50" json:"delivery_number"`
	EstimatedDeliveryMinutes *int      `json:"estimated_delivery_minutes"`
	IsActive                 *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDeliveryMethod struct {
	DeliveryName             string `json:"delivery_name" validate:"required,max=255"`
	CarNumber                string `json:"car_number" validate:"max=50"`
	DeliveryNumber           string `json:"delivery_number" validate:"max=50"`
	EstimatedDeliveryMinutes *int   `json:"estimated_delivery_minutes" validate:"omitempty,min=0"`
}

func CreateDeliveryMethod(ctx context.Context, input *NewDeliveryMethod) (*DeliveryMethod, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return createModel(ctx, &DeliveryMethod{
		DeliveryName:             strings.TrimSpace(input.DeliveryName),
		CarNumber:                input.CarNumber,
		DeliveryNumber:           input.DeliveryNumber,
		EstimatedDeliveryMinutes: input.EstimatedDeliveryMinutes,
		IsActive:                 utils.NewTrue(),
	})
}

func GetDeliveryMethod(ctx context.Context, id int) (*DeliveryMethod, error) {
	return fetchModel[DeliveryMethod](ctx, "delivery_method", id)
}

func GetDeliveryMethods(ctx context.Context) ([]*DeliveryMethod, error) {
	return listModels[DeliveryMethod](ctx, "delivery_name")
}
