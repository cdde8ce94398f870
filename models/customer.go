package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/utils"
)

type Customer struct {
	ID               int       `gorm:"primary_key" json:"id"`
	FirstName        string    `gorm:"size:100;not null" json:"first_name"`
	LastName         string    `gorm:"size:100" json:"last_name"`
	Email            *string   `gorm:"size:100" json:"email"`
	PhoneNumber      string    `gorm:"size:20" json:"phone_number"`
	PhoneNumber2     string    `gorm:"size:20" json:"phone_number2"`
	Address          string    `gorm:"type:text" json:"address"`
	City             string    `gorm:"size:100" json:"city"`
	Country          string    `gorm:"size:100" json:"country"`
	IsActive         *bool     `gorm:"not null;default:true" json:"is_active"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type NewCustomer struct {
	FirstName    string  `json:"first_name" validate:"required,max=100"`
	LastName     string  `json:"last_name" validate:"max=100"`
	Email        *string `json:"email" validate:"omitempty,email"`
	PhoneNumber  string  `json:"phone_number" validate:"max=20"`
	PhoneNumber2 string  `json:"phone_number2" validate:"max=20"`
	Address      string  `json:"address"`
	City         string  `json:"city" validate:"max=100"`
	Country      string  `json:"country" validate:"max=100"`
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return createModel(ctx, &Customer{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PhoneNumber2: input.PhoneNumber2,
		Address:      input.Address,
		City:         input.City,
		Country:      input.Country,
		IsActive:     utils.NewTrue(),
	})
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	return fetchModel[Customer](ctx, "customer", id)
}

func GetCustomers(ctx context.Context) ([]*Customer, error) {
	return listModels[Customer](ctx, "first_name, last_name")
}
