package main

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/models/reports"
	"github.com/gin-gonic/gin"
)

const maxExportRows = 50000

func registerStockRoutes(api *gin.RouterGroup) {
	api.GET("/stock-movements", listStockMovementsHandler)
	api.GET("/stock-movements/export", exportStockMovementsHandler)
	api.GET("/stock-movements/:id", getHandler(models.GetStockMovement))

	api.GET("/stock", currentStockHandler)
	api.GET("/stock/drift-reports", listDriftReportsHandler)

	api.GET("/reports/stock-summary", stockSummaryHandler)
	api.GET("/reports/stock-summary/export", exportStockSummaryHandler)
}

func listStockMovementsHandler(c *gin.Context) {
	filter, err := queryMovementFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	after, limit, err := queryCursor(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := models.ListStockMovements(c.Request.Context(), filter, after, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, result.Edges, &result.PageInfo, movementReferenceIds(result.Edges))
}

// currentStockHandler answers get_current_stock for a product and optional variant/location.
func currentStockHandler(c *gin.Context) {
	filter, err := queryMovementFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if filter.ProductId == 0 {
		writeError(c, &models.ValidationError{Field: "product_id", Message: "is required"})
		return
	}
	projection, err := models.ProjectStock(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id":   filter.ProductId,
		"variant_id":   filter.VariantId,
		"warehouse_id": filter.WarehouseId,
		"shelf_id":     filter.ShelfId,
		"in":           projection.In,
		"out":          projection.Out,
		"quantity":     projection.Available,
	})
}

func listDriftReportsHandler(c *gin.Context) {
	variantId, err := queryInt(c, "variant_id")
	if err != nil {
		writeError(c, err)
		return
	}
	_, limit, err := queryCursor(c)
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := models.ListStockDriftReports(c.Request.Context(), variantId, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func stockSummaryHandler(c *gin.Context) {
	warehouseId, err := queryInt(c, "warehouse_id")
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := reports.GetStockSummaryReport(c.Request.Context(), warehouseId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

func exportStockSummaryHandler(c *gin.Context) {
	warehouseId, err := queryInt(c, "warehouse_id")
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := reports.GetStockSummaryReport(c.Request.Context(), warehouseId)
	if err != nil {
		writeError(c, err)
		return
	}
	setAttachment(c, "stock-summary")
	if err := reports.WriteStockSummaryExcel(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

func exportStockMovementsHandler(c *gin.Context) {
	filter, err := queryMovementFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}
	rows, err := reports.GetStockMovementReport(c.Request.Context(), filter, maxExportRows)
	if err != nil {
		writeError(c, err)
		return
	}
	setAttachment(c, "stock-movements")
	if err := reports.WriteStockMovementsExcel(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

func setAttachment(c *gin.Context, name string) {
	fileName := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102-150405"))
	c.Header("Content-Type", reports.ExcelContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Status(http.StatusOK)
}
