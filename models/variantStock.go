package models

import (
	"sort"

	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// lockVariants row-locks the variants in ascending id order so concurrent
// writers touching overlapping sets cannot deadlock.
func lockVariants(tx *gorm.DB, variantIds []int) (map[int]*ProductVariant, error) {
	ids := utils.UniqueSlice(variantIds)
	sort.Ints(ids)
	locked := make(map[int]*ProductVariant, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}
	var variants []*ProductVariant
	if err := tx.Clauses(lockForUpdate()).Where("id IN ?", ids).Order("id").Find(&variants).Error; err != nil {
		return nil, err
	}
	for _, v := range variants {
		locked[v.ID] = v
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, &NotFoundError{Resource: "product_variant", Id: id}
		}
	}
	return locked, nil
}

// adjustVariantStock moves the cached counter of a locked variant by delta.
// A result below zero is rejected, never clamped.
func adjustVariantStock(tx *gorm.DB, v *ProductVariant, delta int64) error {
	if delta == 0 {
		return nil
	}
	next := v.StockQuantity + delta
	if next < 0 {
		return &InsufficientStockError{
			ProductId: v.ProductId,
			VariantId: v.ID,
			Requested: -delta,
			Available: v.StockQuantity,
		}
	}
	if err := tx.Model(&ProductVariant{}).Where("id = ?", v.ID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		return err
	}
	v.StockQuantity = next
	return nil
}

func variantIdsOf[T any](items []T, variantOf func(T) *int) []int {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		if id := variantOf(it); id != nil {
			ids = append(ids, *id)
		}
	}
	return utils.UniqueSlice(ids)
}
