package middlewares

import (
	"context"
	"reflect"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap your data loaders to inject via middleware
type Loaders struct {
	categoryLoader       *dataloader.Loader[int, *models.Category]
	customerLoader       *dataloader.Loader[int, *models.Customer]
	deliveryMethodLoader *dataloader.Loader[int, *models.DeliveryMethod]
	productLoader        *dataloader.Loader[int, *models.Product]
	productVariantLoader *dataloader.Loader[int, *models.ProductVariant]
	shelfLoader          *dataloader.Loader[int, *models.Shelf]
	supplierLoader       *dataloader.Loader[int, *models.Supplier]
	warehouseLoader      *dataloader.Loader[int, *models.Warehouse]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	// define the data loader
	categoryReader := &categoryReader{db: conn}
	customerReader := &customerReader{db: conn}
	deliveryMethodReader := &deliveryMethodReader{db: conn}
	productReader := &productReader{db: conn}
	productVariantReader := &productVariantReader{db: conn}
	shelfReader := &shelfReader{db: conn}
	supplierReader := &supplierReader{db: conn}
	warehouseReader := &warehouseReader{db: conn}

	return &Loaders{
		categoryLoader:       dataloader.NewBatchedLoader(categoryReader.getCategories, dataloader.WithWait[int, *models.Category](time.Millisecond)),
		customerLoader:       dataloader.NewBatchedLoader(customerReader.getCustomers, dataloader.WithWait[int, *models.Customer](time.Millisecond)),
		deliveryMethodLoader: dataloader.NewBatchedLoader(deliveryMethodReader.getDeliveryMethods, dataloader.WithWait[int, *models.DeliveryMethod](time.Millisecond)),
		productLoader:        dataloader.NewBatchedLoader(productReader.getProducts, dataloader.WithWait[int, *models.Product](time.Millisecond)),
		productVariantLoader: dataloader.NewBatchedLoader(productVariantReader.getProductVariants, dataloader.WithWait[int, *models.ProductVariant](time.Millisecond)),
		shelfLoader:          dataloader.NewBatchedLoader(shelfReader.getShelves, dataloader.WithWait[int, *models.Shelf](time.Millisecond)),
		supplierLoader:       dataloader.NewBatchedLoader(supplierReader.getSuppliers, dataloader.WithWait[int, *models.Supplier](time.Millisecond)),
		warehouseLoader:      dataloader.NewBatchedLoader(warehouseReader.getWarehouses, dataloader.WithWait[int, *models.Warehouse](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results
// (T must be a struct)
func generateLoaderResults[T models.Data](results []T, ids []int) []*dataloader.Result[*T] {
	// generate resultMap from results
	resultMap := make(map[int]T)
	var resultZero T
	resultMap[0] = resultZero.GetDefault(0).(T)
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data := resultMap[id]
		if reflect.ValueOf(data).IsZero() {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}
