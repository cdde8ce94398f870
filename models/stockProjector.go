package models

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"gorm.io/gorm"
)

var ErrNegativeProjection = errors.New("negative stock projection")

// StockProjection is the fold of a set of movements. Available is Raw floored at 0;
// a negative Raw means the ledger holds more OUT than IN for the filter.
type StockProjection struct {
	In        int64 `json:"in"`
	Out       int64 `json:"out"`
	Raw       int64 `json:"raw"`
	Available int64 `json:"available"`
}

func (p StockProjection) IsNegative() bool {
	return p.Raw < 0
}

// ProjectQuantity folds IN and OUT totals into a projection.
func ProjectQuantity(in int64, out int64) StockProjection {
	raw := in - out
	available := raw
	if available < 0 {
		available = 0
	}
	return StockProjection{In: in, Out: out, Raw: raw, Available: available}
}

// FoldMovements projects an in-memory slice of movements.
func FoldMovements(movements []StockMovement) StockProjection {
	var in, out int64
	for _, m := range movements {
		switch m.MovementType {
		case MovementTypeIn:
			in += m.Quantity
		case MovementTypeOut:
			out += m.Quantity
		}
	}
	return ProjectQuantity(in, out)
}

type NegativeProjectionError struct {
	Filter     StockMovementFilter
	Projection StockProjection
}

func (e *NegativeProjectionError) Error() string {
	return fmt.Sprintf("ledger projection for product %d is %d", e.Filter.ProductId, e.Projection.Raw)
}

func (e *NegativeProjectionError) Is(target error) bool {
	return target == ErrNegativeProjection
}

const projectionSelect = "COALESCE(SUM(CASE WHEN movement_type = 'IN' THEN quantity ELSE 0 END), 0) AS total_in, " +
	"COALESCE(SUM(CASE WHEN movement_type = 'OUT' THEN quantity ELSE 0 END), 0) AS total_out"

// foldLedger sums the ledger in the database. Inside a transaction it sees the
// transaction's own appends.
func foldLedger(dbCtx *gorm.DB, filter StockMovementFilter) (StockProjection, error) {
	var totals struct {
		TotalIn  int64
		TotalOut int64
	}
	if err := filter.apply(dbCtx.Model(&StockMovement{})).Select(projectionSelect).Scan(&totals).Error; err != nil {
		return StockProjection{}, err
	}
	return ProjectQuantity(totals.TotalIn, totals.TotalOut), nil
}

// projectStock is foldLedger plus the STOCK_PROJECTOR_STRICT check.
func projectStock(dbCtx *gorm.DB, filter StockMovementFilter) (StockProjection, error) {
	p, err := foldLedger(dbCtx, filter)
	if err != nil {
		return p, err
	}
	if p.IsNegative() && config.StrictStockProjection() {
		return p, &NegativeProjectionError{Filter: filter, Projection: p}
	}
	return p, nil
}

// CurrentStock returns IN minus OUT for the filter, floored at zero.
func CurrentStock(ctx context.Context, productId int, variantId *int, warehouseId *int, shelfId *int) (int64, error) {
	if productId <= 0 {
		return 0, newValidationError("product_id", "is required")
	}
	p, err := ProjectStock(ctx, StockMovementFilter{
		ProductId:   productId,
		VariantId:   variantId,
		WarehouseId: warehouseId,
		ShelfId:     shelfId,
	})
	if err != nil {
		return 0, err
	}
	return p.Available, nil
}

func ProjectStock(ctx context.Context, filter StockMovementFilter) (StockProjection, error) {
	db := config.GetDB()
	return projectStock(db.WithContext(ctx), filter)
}

// VariantStock is one row of a grouped projection.
type VariantStock struct {
	ProductId   int   `json:"product_id"`
	VariantId   *int  `json:"variant_id"`
	WarehouseId *int  `json:"warehouse_id,omitempty"`
	In          int64 `json:"in"`
	Out         int64 `json:"out"`
	Raw         int64 `json:"raw"`
	Quantity    int64 `json:"quantity"`
}

// ProjectStockByVariant groups the fold by (product, variant), optionally within one warehouse or shelf.
func ProjectStockByVariant(ctx context.Context, warehouseId *int, shelfId *int) ([]*VariantStock, error) {
	type row struct {
		ProductId int
		VariantId *int
		TotalIn   int64
		TotalOut  int64
	}
	var rows []row
	db := config.GetDB()
	filter := StockMovementFilter{WarehouseId: warehouseId, ShelfId: shelfId}
	if err := filter.apply(db.WithContext(ctx).Model(&StockMovement{})).
		Select("product_id, variant_id, " + projectionSelect).
		Group("product_id, variant_id").
		Order("product_id, variant_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	results := make([]*VariantStock, 0, len(rows))
	for _, r := range rows {
		p := ProjectQuantity(r.TotalIn, r.TotalOut)
		results = append(results, &VariantStock{
			ProductId:   r.ProductId,
			VariantId:   r.VariantId,
			WarehouseId: warehouseId,
			In:          p.In,
			Out:         p.Out,
			Raw:         p.Raw,
			Quantity:    p.Available,
		})
	}
	return results, nil
}

// GetWarehouseStock is the per-variant projection for one warehouse. Only movements tagged
// with the warehouse count: an invoice created without warehouse_id issues untagged OUTs,
// which lower the variant total but no warehouse figure. Tag invoices with a warehouse
// when per-warehouse stock has to balance.
func GetWarehouseStock(ctx context.Context, warehouseId int) ([]*VariantStock, error) {
	if err := requireExists[Warehouse](ctx, "warehouse", warehouseId); err != nil {
		return nil, err
	}
	return ProjectStockByVariant(ctx, &warehouseId, nil)
}
