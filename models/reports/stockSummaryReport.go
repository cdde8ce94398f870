package reports

import (
	"context"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
)

type StockSummaryReportResponse struct {
	ProductId      int    `json:"product_id"`
	ProductName    string `json:"product_name"`
	VariantId      int    `json:"variant_id"`
	VariantInfo    string `json:"variant_info"`
	QtyIn          int64  `json:"qty_in"`
	QtyOut         int64  `json:"qty_out"`
	Projected      int64  `json:"projected"`
	RawProjected   int64  `json:"raw_projected"`
	CachedQuantity int64  `json:"cached_quantity"`
	// only meaningful for the unfiltered report: the counter is not kept per warehouse
	Drift bool `json:"drift"`
}

type stockSummaryRow struct {
	ProductId      int
	ProductName    string
	VariantId      int
	Size           *string
	Color          *string
	CachedQuantity int64
	QtyIn          int64
	QtyOut         int64
}

func GetStockSummaryReport(ctx context.Context, warehouseId *int) ([]*StockSummaryReportResponse, error) {

	sqlT := `
SELECT
    pv.product_id,
    p.name AS product_name,
    pv.id AS variant_id,
    pv.size,
    pv.color,
    pv.stock_quantity AS cached_quantity,
    COALESCE(l.qty_in, 0) AS qty_in,
    COALESCE(l.qty_out, 0) AS qty_out
FROM product_variants pv
JOIN products p ON p.id = pv.product_id
LEFT JOIN (
    SELECT
        sm.variant_id,
        SUM(CASE WHEN sm.movement_type = 'IN' THEN sm.quantity ELSE 0 END) AS qty_in,
        SUM(CASE WHEN sm.movement_type = 'OUT' THEN sm.quantity ELSE 0 END) AS qty_out
    FROM stock_movements sm
    WHERE sm.variant_id IS NOT NULL
      {{- if .warehouseId }} AND sm.warehouse_id = @warehouseId {{- end }}
    GROUP BY sm.variant_id
) l ON l.variant_id = pv.id
ORDER BY p.name, pv.id;
`
	if warehouseId != nil && *warehouseId > 0 {
		if err := utils.ValidateResourceId[models.Warehouse](ctx, *warehouseId); err != nil {
			return nil, &models.NotFoundError{Resource: "warehouse", Id: *warehouseId}
		}
	}

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"warehouseId": utils.DereferencePtr(warehouseId),
	})
	if err != nil {
		return nil, err
	}

	// only pass named params that survive the template
	args := map[string]interface{}{}
	if warehouseId != nil && *warehouseId != 0 {
		args["warehouseId"] = *warehouseId
	}
	var rows []stockSummaryRow
	db := config.GetDB()
	query := db.WithContext(ctx)
	if len(args) > 0 {
		query = query.Raw(sql, args)
	} else {
		query = query.Raw(sql)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	filtered := warehouseId != nil && *warehouseId != 0
	results := make([]*StockSummaryReportResponse, 0, len(rows))
	for _, r := range rows {
		p := models.ProjectQuantity(r.QtyIn, r.QtyOut)
		variant := models.ProductVariant{ID: r.VariantId, Size: r.Size, Color: r.Color}
		results = append(results, &StockSummaryReportResponse{
			ProductId:      r.ProductId,
			ProductName:    r.ProductName,
			VariantId:      r.VariantId,
			VariantInfo:    variant.Label(),
			QtyIn:          p.In,
			QtyOut:         p.Out,
			Projected:      p.Available,
			RawProjected:   p.Raw,
			CachedQuantity: r.CachedQuantity,
			Drift:          !filtered && (p.Raw != r.CachedQuantity),
		})
	}
	return results, nil
}
