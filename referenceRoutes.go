package main

import (
	"context"
	"net/http"

	"bitbucket.org/mmdatafocus/stock_backend/middlewares"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
)

func registerReferenceRoutes(api *gin.RouterGroup) {
	api.POST("/categories", createHandler(models.CreateCategory))
	api.GET("/categories", listHandler(models.GetCategories))
	api.GET("/categories/:id", getHandler(models.GetCategory))

	api.POST("/products", createHandler(models.CreateProduct))
	api.GET("/products", listProductsHandler)
	api.GET("/products/:id", getHandler(models.GetProduct))

	api.POST("/variants", createHandler(models.CreateProductVariant))
	api.GET("/variants", listVariantsHandler)
	api.GET("/variants/:id", getHandler(models.GetProductVariant))

	api.POST("/warehouses", createHandler(models.CreateWarehouse))
	api.GET("/warehouses", listHandler(models.GetWarehouses))
	api.GET("/warehouses/:id", getHandler(models.GetWarehouse))
	api.GET("/warehouses/:id/stock", warehouseStockHandler)

	api.POST("/shelves", createHandler(models.CreateShelf))
	api.GET("/shelves", listShelvesHandler)
	api.GET("/shelves/:id", getHandler(models.GetShelf))

	api.POST("/suppliers", createHandler(models.CreateSupplier))
	api.GET("/suppliers", listHandler(models.GetSuppliers))
	api.GET("/suppliers/:id", getHandler(models.GetSupplier))

	api.POST("/customers", createHandler(models.CreateCustomer))
	api.GET("/customers", listHandler(models.GetCustomers))
	api.GET("/customers/:id", getHandler(models.GetCustomer))

	api.POST("/delivery-methods", createHandler(models.CreateDeliveryMethod))
	api.GET("/delivery-methods", listHandler(models.GetDeliveryMethods))
	api.GET("/delivery-methods/:id", getHandler(models.GetDeliveryMethod))
}

func createHandler[In any, Out any](create func(context.Context, *In) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			writeError(c, &models.ValidationError{Message: "invalid request body: " + err.Error()})
			return
		}
		result, err := create(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

func getHandler[Out any](get func(context.Context, int) (*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathId(c)
		if err != nil {
			writeError(c, err)
			return
		}
		result, err := get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listHandler[Out any](list func(context.Context) ([]*Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := list(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	}
}

func listVariantsHandler(c *gin.Context) {
	productId, err := queryInt(c, "product_id")
	if err != nil {
		writeError(c, err)
		return
	}
	results, err := models.GetProductVariants(c.Request.Context(), productId)
	if err != nil {
		writeError(c, err)
		return
	}
	var ids middlewares.ReferenceIds
	for _, v := range results {
		ids.AddProduct(v.ProductId)
	}
	writePage(c, results, nil, ids)
}

func listProductsHandler(c *gin.Context) {
	results, err := models.GetProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	var ids middlewares.ReferenceIds
	for _, p := range results {
		ids.AddCategory(p.CategoryId)
	}
	writePage(c, results, nil, ids)
}

func listShelvesHandler(c *gin.Context) {
	warehouseId, err := queryInt(c, "warehouse_id")
	if err != nil {
		writeError(c, err)
		return
	}
	results, err := models.GetShelves(c.Request.Context(), warehouseId)
	if err != nil {
		writeError(c, err)
		return
	}
	var ids middlewares.ReferenceIds
	for _, s := range results {
		ids.AddWarehouse(&s.WarehouseId)
	}
	writePage(c, results, nil, ids)
}

func warehouseStockHandler(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	shelfId, err := queryInt(c, "shelf_id")
	if err != nil {
		writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	var rows []*models.VariantStock
	if shelfId != nil {
		var shelf *models.Shelf
		if shelf, err = models.GetShelf(ctx, *shelfId); err == nil && shelf.WarehouseId != id {
			err = &models.ValidationError{Field: "shelf_id", Message: "shelf does not belong to this warehouse"}
		}
		if err == nil {
			rows, err = models.ProjectStockByVariant(ctx, &id, shelfId)
		}
	} else {
		rows, err = models.GetWarehouseStock(ctx, id)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"warehouse_id": id, "shelf_id": shelfId, "data": rows})
}
