package main

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20

type bulkPurchaseRequest struct {
	Purchases []*models.NewPurchase `json:"purchases"`
}

func registerPurchaseRoutes(api *gin.RouterGroup) {
	api.POST("/purchases", createPurchaseHandler)
	api.POST("/purchases/bulk", bulkPurchaseHandler)
	api.POST("/purchases/import", importPurchasesHandler)
	api.GET("/purchases", listPurchasesHandler)
	api.GET("/purchases/:id", getHandler(models.GetPurchase))
}

func createPurchaseHandler(c *gin.Context) {
	var input models.NewPurchase
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, &models.ValidationError{Message: "invalid request body: " + err.Error()})
		return
	}
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		input.IdempotencyKey = key
	}
	purchase, replayed, err := models.RecordPurchase(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	if replayed {
		c.Header("Idempotent-Replayed", "true")
		c.JSON(http.StatusOK, purchase)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func bulkPurchaseHandler(c *gin.Context) {
	var req bulkPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &models.ValidationError{Message: "invalid request body: " + err.Error()})
		return
	}
	results, err := models.BulkRecordPurchases(c.Request.Context(), req.Purchases)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": results})
}

func importPurchasesHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, &models.ValidationError{Field: "file", Message: "an .xlsx file is required"})
		return
	}
	if err := checkXlsxFilename(fileHeader.Filename); err != nil {
		writeError(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer file.Close()

	inputs, err := parsePurchaseSheet(file)
	if err != nil {
		writeError(c, err)
		return
	}
	results, err := models.BulkRecordPurchases(c.Request.Context(), inputs)
	if err != nil {
		writeError(c, err)
		return
	}
	config.GetLogger().WithFields(logrus.Fields{
		"field":    "importPurchasesHandler",
		"filename": fileHeader.Filename,
		"rows":     len(results),
	}).Info("purchases imported")
	c.JSON(http.StatusCreated, gin.H{"data": results})
}

func listPurchasesHandler(c *gin.Context) {
	var filter models.PurchaseFilter
	var err error
	if filter.SupplierId, err = queryInt(c, "supplier_id"); err != nil {
		writeError(c, err)
		return
	}
	if filter.ProductId, err = queryInt(c, "product_id"); err != nil {
		writeError(c, err)
		return
	}
	if filter.VariantId, err = queryInt(c, "variant_id"); err != nil {
		writeError(c, err)
		return
	}
	if filter.From, err = queryDate(c, "from", false); err != nil {
		writeError(c, err)
		return
	}
	if filter.To, err = queryDate(c, "to", true); err != nil {
		writeError(c, err)
		return
	}
	after, limit, err := queryCursor(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := models.ListPurchases(c.Request.Context(), filter, after, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, result.Edges, &result.PageInfo, purchaseReferenceIds(result.Edges))
}
