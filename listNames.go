package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/stock_backend/middlewares"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
)

func movementReferenceIds(rows []*models.StockMovement) middlewares.ReferenceIds {
	var ids middlewares.ReferenceIds
	for _, m := range rows {
		ids.AddProduct(m.ProductId)
		ids.AddVariant(m.VariantId)
		ids.AddWarehouse(m.WarehouseId)
		ids.AddShelf(m.ShelfId)
	}
	return ids
}

func purchaseReferenceIds(rows []*models.Purchase) middlewares.ReferenceIds {
	var ids middlewares.ReferenceIds
	for _, p := range rows {
		ids.AddSupplier(p.SupplierId)
		ids.AddProduct(p.ProductId)
		ids.AddVariant(p.VariantId)
		ids.AddWarehouse(p.WarehouseId)
		ids.AddShelf(p.ShelfId)
	}
	return ids
}

func invoiceReferenceIds(rows []*models.Invoice) middlewares.ReferenceIds {
	var ids middlewares.ReferenceIds
	for _, inv := range rows {
		ids.AddCustomer(inv.CustomerId)
		ids.AddDeliveryMethod(inv.DeliveryMethodId)
		ids.AddWarehouse(inv.WarehouseId)
		for _, item := range inv.Items {
			ids.AddProduct(item.ProductId)
			ids.AddVariant(item.VariantId)
		}
	}
	return ids
}

// writePage answers a list request with the rows plus the display names they reference.
func writePage(c *gin.Context, data any, pageInfo *models.PageInfo, ids middlewares.ReferenceIds) {
	names, err := middlewares.ResolveNames(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	body := gin.H{"data": data, "names": names}
	if pageInfo != nil {
		body["page_info"] = pageInfo
	}
	c.JSON(http.StatusOK, body)
}
