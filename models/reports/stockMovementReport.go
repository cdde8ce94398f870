package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
)

// StockMovementReportRow is a movement with its references resolved to display names.
type StockMovementReportRow struct {
	ID            int                   `json:"id"`
	MovementType  models.MovementType   `json:"movement_type"`
	Reason        models.MovementReason `json:"reason"`
	Quantity      int64                 `json:"quantity"`
	MovementDate  time.Time             `json:"movement_date"`
	ProductName   string                `json:"product_name"`
	VariantSize   *string               `json:"-"`
	VariantColor  *string               `json:"-"`
	VariantId     *int                  `json:"variant_id"`
	VariantInfo   string                `json:"variant_info" gorm:"-"`
	WarehouseName *string               `json:"warehouse_name"`
	ShelfName     *string               `json:"shelf_name"`
	PurchaseId    *int                  `json:"purchase"`
	InvoiceId     *int                  `json:"invoice"`
}

// GetStockMovementReport lists movements in ledger order. The row cap keeps exports bounded.
func GetStockMovementReport(ctx context.Context, filter models.StockMovementFilter, maxRows int) ([]*StockMovementReportRow, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Table("stock_movements sm").
		Select(`sm.id, sm.movement_type, sm.reason, sm.quantity, sm.movement_date, sm.variant_id,
			sm.purchase_id, sm.invoice_id,
			p.name AS product_name, pv.size AS variant_size, pv.color AS variant_color,
			w.name AS warehouse_name, s.shelf_name`).
		Joins("LEFT JOIN products p ON p.id = sm.product_id").
		Joins("LEFT JOIN product_variants pv ON pv.id = sm.variant_id").
		Joins("LEFT JOIN warehouses w ON w.id = sm.warehouse_id").
		Joins("LEFT JOIN shelves s ON s.id = sm.shelf_id")

	if filter.ProductId > 0 {
		query = query.Where("sm.product_id = ?", filter.ProductId)
	}
	if filter.VariantId != nil {
		query = query.Where("sm.variant_id = ?", *filter.VariantId)
	}
	if filter.WarehouseId != nil {
		query = query.Where("sm.warehouse_id = ?", *filter.WarehouseId)
	}
	if filter.ShelfId != nil {
		query = query.Where("sm.shelf_id = ?", *filter.ShelfId)
	}
	if filter.MovementType != nil {
		query = query.Where("sm.movement_type = ?", *filter.MovementType)
	}
	if filter.From != nil {
		query = query.Where("sm.movement_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sm.movement_date <= ?", *filter.To)
	}
	if maxRows > 0 {
		query = query.Limit(maxRows)
	}

	var rows []*StockMovementReportRow
	if err := query.Order("sm.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.VariantId != nil {
			r.VariantInfo = models.ProductVariant{ID: *r.VariantId, Size: r.VariantSize, Color: r.VariantColor}.Label()
		}
	}
	return rows, nil
}
