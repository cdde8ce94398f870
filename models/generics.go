package models

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
)

// fetchModel loads T by id and reports a missing row as *NotFoundError.
func fetchModel[T any](ctx context.Context, resource string, id int, associations ...string) (*T, error) {
	result, err := utils.FetchSingleModel[T](ctx, id, associations...)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, &NotFoundError{Resource: resource, Id: id}
		}
		return nil, err
	}
	return result, nil
}

// requireExists is the foreign-key check used by input validation.
func requireExists[T any](ctx context.Context, resource string, id int) error {
	if id <= 0 {
		return newValidationError(resource+"_id", "is required")
	}
	if err := utils.ValidateResourceId[T](ctx, id); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return &NotFoundError{Resource: resource, Id: id}
		}
		return err
	}
	return nil
}

func requireExistsOptional[T any](ctx context.Context, resource string, id *int) error {
	if id == nil {
		return nil
	}
	return requireExists[T](ctx, resource, *id)
}

// validateInput runs struct tags and reports the first failure as *ValidationError.
func validateInput(input any) error {
	if err := utils.ValidateStruct(input); err != nil {
		fields := utils.ProcessValidationErrors(err)
		for field, tag := range fields {
			return newValidationError(field, "failed %s", tag)
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func createModel[T any](ctx context.Context, m *T) (*T, error) {
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func listModels[T any](ctx context.Context, orderBy string) ([]*T, error) {
	db := config.GetDB()
	var results []*T
	if err := db.WithContext(ctx).Order(orderBy).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
