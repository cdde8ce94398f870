package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
)

type Warehouse struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:255;not null;unique" json:"name"`
	Location      string    `gorm:"size:255" json:"location"`
	Owner         string    `gorm:"size:255" json:"owner"`
	ContactPerson string    `gorm:"size:255" json:"contact_person"`
	ContactNumber string    `gorm:"size:20" json:"contact_number"`
	Capacity      int       `gorm:"not null;default:0" json:"capacity"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWarehouse struct {
	Name          string `json:"name" validate:"required,max=255"`
	Location      string `json:"location" validate:"max=255"`
	Owner         string `json:"owner" validate:"max=255"`
	ContactPerson string `json:"contact_person" validate:"max=255"`
	ContactNumber string `json:"contact_number" validate:"max=20"`
	Capacity      int    `json:"capacity" validate:"min=0"`
}

type Shelf struct {
	ID          int       `gorm:"primary_key" json:"id"`
	WarehouseId int       `gorm:"index;not null" json:"warehouse_id"`
	ShelfName   string    `gorm:"size:100;not null" json:"shelf_name"`
	Section     string    `gorm:"size:100" json:"section"`
	Capacity    int       `gorm:"not null;default:0" json:"capacity"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShelf struct {
	WarehouseId int    `json:"warehouse_id" validate:"required,gt=0"`
	ShelfName   string `json:"shelf_name" validate:"required,max=100"`
	Section     string `json:"section" validate:"max=100"`
	Capacity    int    `json:"capacity" validate:"min=0"`
}

func CreateWarehouse(ctx context.Context, input *NewWarehouse) (*Warehouse, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return createModel(ctx, &Warehouse{
		Name:          strings.TrimSpace(input.Name),
		Location:      input.Location,
		Owner:         input.Owner,
		ContactPerson: input.ContactPerson,
		ContactNumber: input.ContactNumber,
		Capacity:      input.Capacity,
	})
}

func GetWarehouse(ctx context.Context, id int) (*Warehouse, error) {
	return fetchModel[Warehouse](ctx, "warehouse", id)
}

func GetWarehouses(ctx context.Context) ([]*Warehouse, error) {
	return listModels[Warehouse](ctx, "name")
}

func CreateShelf(ctx context.Context, input *NewShelf) (*Shelf, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := requireExists[Warehouse](ctx, "warehouse", input.WarehouseId); err != nil {
		return nil, err
	}
	return createModel(ctx, &Shelf{
		WarehouseId: input.WarehouseId,
		ShelfName:   strings.TrimSpace(input.ShelfName),
		Section:     input.Section,
		Capacity:    input.Capacity,
	})
}

func GetShelf(ctx context.Context, id int) (*Shelf, error) {
	return fetchModel[Shelf](ctx, "shelf", id)
}

func GetShelves(ctx context.Context, warehouseId *int) ([]*Shelf, error) {
	db := config.GetDB()
	var results []*Shelf
	dbCtx := db.WithContext(ctx)
	if warehouseId != nil {
		dbCtx = dbCtx.Where("warehouse_id = ?", *warehouseId)
	}
	if err := dbCtx.Order("warehouse_id, shelf_name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// validateLocation checks that the optional warehouse and shelf exist and agree.
func validateLocation(ctx context.Context, warehouseId *int, shelfId *int) error {
	if err := requireExistsOptional[Warehouse](ctx, "warehouse", warehouseId); err != nil {
		return err
	}
	if shelfId == nil {
		return nil
	}
	shelf, err := GetShelf(ctx, *shelfId)
	if err != nil {
		return err
	}
	if warehouseId == nil || shelf.WarehouseId != *warehouseId {
		return newValidationError("shelf_id", "shelf %d does not belong to the given warehouse", shelf.ID)
	}
	return nil
}
