package middlewares

import (
	"context"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type shelfReader struct {
	db *gorm.DB
}

func (r *shelfReader) getShelves(ctx context.Context, ids []int) []*dataloader.Result[*models.Shelf] {
	var results []models.Shelf
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Shelf](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetShelves(ctx context.Context, ids []int) ([]*models.Shelf, []error) {
	loaders := For(ctx)
	return loaders.shelfLoader.LoadMany(ctx, ids)()
}
