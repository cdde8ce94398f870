package middlewares

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceIdsSkipsEmpty(t *testing.T) {
	var ids ReferenceIds
	zero, seven := 0, 7
	ids.AddProduct(0)
	ids.AddProduct(3)
	ids.AddVariant(nil)
	ids.AddVariant(&zero)
	ids.AddVariant(&seven)
	ids.AddDeliveryMethod(nil)

	assert.Equal(t, []int{3}, ids.Products)
	assert.Equal(t, []int{7}, ids.Variants)
	assert.Empty(t, ids.DeliveryMethods)
}

func TestNameMap(t *testing.T) {
	items := []*models.Warehouse{{ID: 1, Name: "Main"}, {ID: 2}, nil}
	names, err := NameMap(items, nil, func(w models.Warehouse) string { return w.Name })
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Main"}, names)

	_, err = NameMap(items, []error{nil, errors.New("db down")}, func(w models.Warehouse) string { return w.Name })
	assert.EqualError(t, err, "db down")
}

func TestResolveNamesWithoutIdsSkipsLoaders(t *testing.T) {
	// no loaders in the context: nothing may be loaded
	names, err := ResolveNames(context.Background(), ReferenceIds{})
	require.NoError(t, err)
	assert.Nil(t, names.Products)
	assert.Nil(t, names.Customers)
}
