package models

import (
	"context"
	"strings"
	"time"
)

type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	ContactPerson *string   `gorm:"size:255" json:"contact_person"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Email         *string   `gorm:"size:100" json:"email"`
	Address       string    `gorm:"type:text" json:"address"`
	Country       string    `gorm:"size:100" json:"country"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name          string  `json:"name" validate:"required,max=255"`
	ContactPerson *string `json:"contact_person"`
	Phone         string  `json:"phone" validate:"max=20"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Address       string  `json:"address"`
	Country       string  `json:"country" validate:"max=100"`
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return createModel(ctx, &Supplier{
		Name:          strings.TrimSpace(input.Name),
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		Address:       input.Address,
		Country:       input.Country,
	})
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return fetchModel[Supplier](ctx, "supplier", id)
}

func GetSuppliers(ctx context.Context) ([]*Supplier, error) {
	return listModels[Supplier](ctx, "name")
}
