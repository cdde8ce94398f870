package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"gorm.io/gorm"
)

// StockMovement is one immutable ledger entry. Rows are only ever inserted;
// corrections are expressed as an offsetting movement of the opposite type.
type StockMovement struct {
	ID                 int            `gorm:"primary_key" json:"id"`
	MovementType       MovementType   `gorm:"size:3;not null;index;uniqueIndex:uniq_sm_purchase,priority:2;uniqueIndex:uniq_sm_invoice_item,priority:2" json:"movement_type"`
	Reason             MovementReason `gorm:"size:20;not null" json:"reason"`
	Quantity           int64          `gorm:"not null" json:"quantity"`
	ProductId          int            `gorm:"not null;index:idx_sm_subject,priority:1" json:"product_id"`
	VariantId          *int           `gorm:"index:idx_sm_subject,priority:2" json:"variant_id"`
	WarehouseId        *int           `gorm:"index" json:"warehouse_id"`
	ShelfId            *int           `gorm:"index" json:"shelf_id"`
	PurchaseId         *int           `gorm:"uniqueIndex:uniq_sm_purchase,priority:1" json:"purchase_id"`
	InvoiceItemId      *int           `gorm:"uniqueIndex:uniq_sm_invoice_item,priority:1" json:"invoice_item_id"`
	InvoiceId          *int           `gorm:"index" json:"invoice_id"`
	ReversesMovementId *int           `gorm:"index" json:"reverses_movement_id"`
	MovementDate       time.Time      `gorm:"not null;index" json:"movement_date"`
	CorrelationId      string         `gorm:"size:64" json:"correlation_id"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// validateMovement checks the ledger-level invariants. It never touches storage.
func validateMovement(m *StockMovement) error {
	if m == nil {
		return &InvalidMovementError{Reason: "movement is nil"}
	}
	if !m.MovementType.IsValid() {
		return &InvalidMovementError{Reason: "movement type must be IN or OUT"}
	}
	if m.Quantity <= 0 {
		return &InvalidMovementError{Reason: "quantity must be greater than 0"}
	}
	if m.ProductId <= 0 {
		return &InvalidMovementError{Reason: "product is required"}
	}
	if m.PurchaseId != nil && m.InvoiceItemId != nil {
		return &InvalidMovementError{Reason: "a movement cannot be caused by both a purchase and an invoice item"}
	}
	if m.Reason != "" && m.Reason.Direction() != m.MovementType {
		return &InvalidMovementError{Reason: "reason " + string(m.Reason) + " does not match movement type " + string(m.MovementType)}
	}
	if m.ReversesMovementId != nil && m.MovementType != MovementTypeIn {
		return &InvalidMovementError{Reason: "only an IN movement can reverse another movement"}
	}
	return nil
}

// AppendStockMovement inserts m and its outbox event inside tx.
// It is the only write path into stock_movements.
func AppendStockMovement(tx *gorm.DB, m *StockMovement) error {
	if err := validateMovement(m); err != nil {
		return err
	}
	if m.MovementDate.IsZero() {
		m.MovementDate = time.Now().UTC()
	}
	if m.CorrelationId == "" && tx.Statement != nil && tx.Statement.Context != nil {
		if cid, ok := utils.GetCorrelationIdFromContext(tx.Statement.Context); ok {
			m.CorrelationId = cid
		}
	}
	if err := tx.Create(m).Error; err != nil {
		return err
	}
	return tx.Create(newStockEventRecord(m)).Error
}

// StockMovementFilter narrows a ledger query. Nil fields are wildcards; ProductId 0 matches any product.
type StockMovementFilter struct {
	ProductId    int           `json:"product_id"`
	VariantId    *int          `json:"variant_id"`
	WarehouseId  *int          `json:"warehouse_id"`
	ShelfId      *int          `json:"shelf_id"`
	MovementType *MovementType `json:"movement_type"`
	From         *time.Time    `json:"from"`
	To           *time.Time    `json:"to"`
}

func (f StockMovementFilter) apply(dbCtx *gorm.DB) *gorm.DB {
	if f.ProductId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", f.ProductId)
	}
	if f.VariantId != nil {
		dbCtx = dbCtx.Where("variant_id = ?", *f.VariantId)
	}
	if f.WarehouseId != nil {
		dbCtx = dbCtx.Where("warehouse_id = ?", *f.WarehouseId)
	}
	if f.ShelfId != nil {
		dbCtx = dbCtx.Where("shelf_id = ?", *f.ShelfId)
	}
	if f.MovementType != nil {
		dbCtx = dbCtx.Where("movement_type = ?", *f.MovementType)
	}
	if f.From != nil {
		dbCtx = dbCtx.Where("movement_date >= ?", *f.From)
	}
	if f.To != nil {
		dbCtx = dbCtx.Where("movement_date <= ?", *f.To)
	}
	return dbCtx
}

// StockMovementQuery is a lazy view over the ledger. Nothing is read until Each
// is called, and every call re-runs the query from the first matching row.
type StockMovementQuery struct {
	db     *gorm.DB
	filter StockMovementFilter
}

// QueryStockMovements builds a query for one product; the other filters are optional.
func QueryStockMovements(productId int, variantId *int, warehouseId *int, shelfId *int) (*StockMovementQuery, error) {
	if productId <= 0 {
		return nil, newValidationError("product_id", "is required")
	}
	return NewStockMovementQuery(config.GetDB(), StockMovementFilter{
		ProductId:   productId,
		VariantId:   variantId,
		WarehouseId: warehouseId,
		ShelfId:     shelfId,
	}), nil
}

func NewStockMovementQuery(db *gorm.DB, filter StockMovementFilter) *StockMovementQuery {
	return &StockMovementQuery{db: db, filter: filter}
}

// Each streams matching movements in ledger order. Returning an error from fn stops the scan.
func (q *StockMovementQuery) Each(ctx context.Context, fn func(*StockMovement) error) error {
	rows, err := q.filter.apply(q.db.WithContext(ctx).Model(&StockMovement{})).Order("id").Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m StockMovement
		if err := q.db.ScanRows(rows, &m); err != nil {
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Collect materialises the whole sequence.
func (q *StockMovementQuery) Collect(ctx context.Context) ([]*StockMovement, error) {
	results := make([]*StockMovement, 0)
	err := q.Each(ctx, func(m *StockMovement) error {
		results = append(results, m)
		return nil
	})
	return results, err
}

type StockMovementsConnection struct {
	Edges    []*StockMovement `json:"data"`
	PageInfo PageInfo         `json:"page_info"`
}

func ListStockMovements(ctx context.Context, filter StockMovementFilter, after *string, limit int) (*StockMovementsConnection, error) {
	afterId, err := DecodeCursor(after)
	if err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	db := config.GetDB()
	dbCtx := filter.apply(db.WithContext(ctx).Model(&StockMovement{}))
	if afterId > 0 {
		dbCtx = dbCtx.Where("id > ?", afterId)
	}
	var rows []*StockMovement
	if err := dbCtx.Order("id").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, err
	}
	edges, info := pageOf(rows, limit, func(m *StockMovement) int { return m.ID })
	return &StockMovementsConnection{Edges: edges, PageInfo: info}, nil
}

func GetStockMovement(ctx context.Context, id int) (*StockMovement, error) {
	return fetchModel[StockMovement](ctx, "stock_movement", id)
}

// movementsForInvoiceItems returns every movement caused by the given items, in ledger order.
func movementsForInvoiceItems(tx *gorm.DB, itemIds []int) ([]StockMovement, error) {
	var movements []StockMovement
	if len(itemIds) == 0 {
		return movements, nil
	}
	err := tx.Model(&StockMovement{}).Where("invoice_item_id IN ?", itemIds).Order("id").Find(&movements).Error
	return movements, err
}
