package models

import (
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/utils"
)

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

func (c Category) GetId() int {
	return c.ID
}

func (c Category) GetDefault(id int) Data {
	return Category{ID: id}
}

func (c Customer) GetId() int {
	return c.ID
}

func (c Customer) GetDefault(id int) Data {
	return Customer{
		ID:               id,
		IsActive:         utils.NewFalse(),
		RegistrationDate: time.Now(),
	}
}

func (d DeliveryMethod) GetId() int {
	return d.ID
}

func (d DeliveryMethod) GetDefault(id int) Data {
	return DeliveryMethod{ID: id, IsActive: utils.NewFalse()}
}

func (p Product) GetId() int {
	return p.ID
}

func (p Product) GetDefault(id int) Data {
	return Product{ID: id}
}

func (v ProductVariant) GetId() int {
	return v.ID
}

func (v ProductVariant) GetDefault(id int) Data {
	return ProductVariant{ID: id}
}

func (s Shelf) GetId() int {
	return s.ID
}

func (s Shelf) GetDefault(id int) Data {
	return Shelf{ID: id}
}

func (s Supplier) GetId() int {
	return s.ID
}

func (s Supplier) GetDefault(id int) Data {
	return Supplier{ID: id}
}

func (w Warehouse) GetId() int {
	return w.ID
}

func (w Warehouse) GetDefault(id int) Data {
	return Warehouse{ID: id}
}
