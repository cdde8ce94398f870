package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"gorm.io/gorm"
)

// StockDriftReport records a variant whose cached counter disagreed with the ledger.
type StockDriftReport struct {
	ID                int       `gorm:"primary_key" json:"id"`
	ProductId         int       `gorm:"index;not null" json:"product_id"`
	VariantId         int       `gorm:"index;not null" json:"variant_id"`
	CachedQuantity    int64     `gorm:"not null" json:"cached_quantity"`
	ProjectedQuantity int64     `gorm:"not null" json:"projected_quantity"`
	Difference        int64     `gorm:"not null" json:"difference"`
	SourceMessageId   string    `gorm:"size:255" json:"source_message_id"`
	CorrelationId     string    `gorm:"size:64" json:"correlation_id"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// VariantStockCheck compares one variant's counter with its ledger fold.
type VariantStockCheck struct {
	ProductId  int             `json:"product_id"`
	VariantId  int             `json:"variant_id"`
	Cached     int64           `json:"cached"`
	Projection StockProjection `json:"projection"`
	Applied    bool            `json:"applied"`
}

// InSync is true when the counter equals the (floored) projection.
func (c VariantStockCheck) InSync() bool {
	return c.Cached == c.Projection.Available && !c.Projection.IsNegative()
}

func (c VariantStockCheck) Difference() int64 {
	return c.Cached - c.Projection.Raw
}

func checkLockedVariant(tx *gorm.DB, v *ProductVariant) (VariantStockCheck, error) {
	variantId := v.ID
	p, err := foldLedger(tx, StockMovementFilter{ProductId: v.ProductId, VariantId: &variantId})
	if err != nil {
		return VariantStockCheck{}, err
	}
	return VariantStockCheck{ProductId: v.ProductId, VariantId: v.ID, Cached: v.StockQuantity, Projection: p}, nil
}

// CheckVariantDrift compares the counter with the ledger under the variant row lock and
// stores a StockDriftReport when they differ. The report is nil when the variant is in sync.
func CheckVariantDrift(ctx context.Context, variantId int, sourceMessageId string, correlationId string) (check *VariantStockCheck, report *StockDriftReport, err error) {
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		check, report, err = CheckVariantDriftTx(tx, variantId, sourceMessageId, correlationId)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return check, report, nil
}

func CheckVariantDriftTx(tx *gorm.DB, variantId int, sourceMessageId string, correlationId string) (*VariantStockCheck, *StockDriftReport, error) {
	variants, err := lockVariants(tx, []int{variantId})
	if err != nil {
		return nil, nil, err
	}
	check, err := checkLockedVariant(tx, variants[variantId])
	if err != nil {
		return nil, nil, err
	}
	if check.InSync() {
		return &check, nil, nil
	}
	report := &StockDriftReport{
		ProductId:         check.ProductId,
		VariantId:         check.VariantId,
		CachedQuantity:    check.Cached,
		ProjectedQuantity: check.Projection.Raw,
		Difference:        check.Difference(),
		SourceMessageId:   sourceMessageId,
		CorrelationId:     correlationId,
	}
	if err := tx.Create(report).Error; err != nil {
		return nil, nil, err
	}
	return &check, report, nil
}

// RebuildVariantStock checks every variant (or one) against the ledger. With apply set,
// a drifted counter is overwritten with the floored projection under the row lock.
// This repair path is the only writer of stock_quantity outside purchases and invoices.
func RebuildVariantStock(ctx context.Context, variantId *int, apply bool) ([]VariantStockCheck, error) {
	db := config.GetDB()
	var ids []int
	dbCtx := db.WithContext(ctx).Model(&ProductVariant{})
	if variantId != nil {
		dbCtx = dbCtx.Where("id = ?", *variantId)
	}
	if err := dbCtx.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if variantId != nil && len(ids) == 0 {
		return nil, &NotFoundError{Resource: "product_variant", Id: *variantId}
	}

	checks := make([]VariantStockCheck, 0, len(ids))
	for _, id := range ids {
		var check VariantStockCheck
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			variants, err := lockVariants(tx, []int{id})
			if err != nil {
				return err
			}
			check, err = checkLockedVariant(tx, variants[id])
			if err != nil {
				return err
			}
			if check.InSync() || !apply {
				return nil
			}
			if err := tx.Model(&ProductVariant{}).Where("id = ?", id).
				UpdateColumn("stock_quantity", check.Projection.Available).Error; err != nil {
				return err
			}
			check.Applied = true
			return nil
		})
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				// deleted between listing and locking
				continue
			}
			return checks, err
		}
		checks = append(checks, check)
	}
	return checks, nil
}

func ListStockDriftReports(ctx context.Context, variantId *int, limit int) ([]*StockDriftReport, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&StockDriftReport{})
	if variantId != nil {
		dbCtx = dbCtx.Where("variant_id = ?", *variantId)
	}
	var results []*StockDriftReport
	if err := dbCtx.Order("id DESC").Limit(normalizeLimit(limit)).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
