package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
)

// ReferenceIds collects the foreign keys found on one page of rows.
type ReferenceIds struct {
	Categories      []int
	Products        []int
	Variants        []int
	Warehouses      []int
	Shelves         []int
	Suppliers       []int
	Customers       []int
	DeliveryMethods []int
}

func appendId(ids []int, id *int) []int {
	if id == nil || *id <= 0 {
		return ids
	}
	return append(ids, *id)
}

func (r *ReferenceIds) AddCategory(id int) { r.Categories = appendId(r.Categories, &id) }
func (r *ReferenceIds) AddProduct(id int) { r.Products = appendId(r.Products, &id) }
func (r *ReferenceIds) AddVariant(id *int) { r.Variants = appendId(r.Variants, id) }
func (r *ReferenceIds) AddWarehouse(id *int) { r.Warehouses = appendId(r.Warehouses, id) }
func (r *ReferenceIds) AddShelf(id *int) { r.Shelves = appendId(r.Shelves, id) }
func (r *ReferenceIds) AddSupplier(id int) { r.Suppliers = appendId(r.Suppliers, &id) }
func (r *ReferenceIds) AddCustomer(id int) { r.Customers = appendId(r.Customers, &id) }
func (r *ReferenceIds) AddDeliveryMethod(id *int) { r.DeliveryMethods = appendId(r.DeliveryMethods, id) }

// ReferenceNames maps ids to display names for the rows of a list response.
type ReferenceNames struct {
	Categories      map[int]string `json:"categories,omitempty"`
	Products        map[int]string `json:"products,omitempty"`
	Variants        map[int]string `json:"variants,omitempty"`
	Warehouses      map[int]string `json:"warehouses,omitempty"`
	Shelves         map[int]string `json:"shelves,omitempty"`
	Suppliers       map[int]string `json:"suppliers,omitempty"`
	Customers       map[int]string `json:"customers,omitempty"`
	DeliveryMethods map[int]string `json:"delivery_methods,omitempty"`
}

// NameMap turns a LoadMany result into id -> name. Placeholder rows for missing ids
// come back with an empty name and are left out.
func NameMap[T models.Identifier](items []*T, errs []error, name func(T) string) (map[int]string, error) {
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, nil
	}
	names := make(map[int]string, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if n := name(*item); n != "" {
			names[(*item).GetId()] = n
		}
	}
	return names, nil
}

func loadNames[T models.Identifier](ctx context.Context, ids []int, load func(context.Context, []int) ([]*T, []error), name func(T) string) (map[int]string, error) {
	ids = utils.UniqueSlice(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	items, errs := load(ctx, ids)
	return NameMap(items, errs, name)
}

// ResolveNames batches one loader call per entity kind through the request's loaders.
func ResolveNames(ctx context.Context, ids ReferenceIds) (*ReferenceNames, error) {
	var names ReferenceNames
	var err error
	if names.Categories, err = loadNames(ctx, ids.Categories, GetCategories, func(c models.Category) string { return c.Name }); err != nil {
		return nil, err
	}
	if names.Products, err = loadNames(ctx, ids.Products, GetProducts, func(p models.Product) string { return p.Name }); err != nil {
		return nil, err
	}
	if names.Variants, err = loadNames(ctx, ids.Variants, GetProductVariants, func(v models.ProductVariant) string { return v.Label() }); err != nil {
		return nil, err
	}
	if names.Warehouses, err = loadNames(ctx, ids.Warehouses, GetWarehouses, func(w models.Warehouse) string { return w.Name }); err != nil {
		return nil, err
	}
	if names.Shelves, err = loadNames(ctx, ids.Shelves, GetShelves, func(s models.Shelf) string { return s.ShelfName }); err != nil {
		return nil, err
	}
	if names.Suppliers, err = loadNames(ctx, ids.Suppliers, GetSuppliers, func(s models.Supplier) string { return s.Name }); err != nil {
		return nil, err
	}
	if names.Customers, err = loadNames(ctx, ids.Customers, GetCustomers, func(c models.Customer) string { return c.FullName() }); err != nil {
		return nil, err
	}
	if names.DeliveryMethods, err = loadNames(ctx, ids.DeliveryMethods, GetDeliveryMethods, func(d models.DeliveryMethod) string { return d.DeliveryName }); err != nil {
		return nil, err
	}
	return &names, nil
}
