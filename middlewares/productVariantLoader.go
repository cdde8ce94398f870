package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type productVariantReader struct {
	db *gorm.DB
}

func (r *productVariantReader) getProductVariants(ctx context.Context, ids []int) []*dataloader.Result[*models.ProductVariant] {
	var results []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.ProductVariant](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetProductVariants(ctx context.Context, ids []int) ([]*models.ProductVariant, []error) {
	loaders := For(ctx)
	return loaders.productVariantLoader.LoadMany(ctx, ids)()
}
