package main

import (
	"io"
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/middlewares"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type invoiceDetail struct {
	*models.Invoice
	Customer       *models.Customer       `json:"customer"`
	DeliveryMethod *models.DeliveryMethod `json:"delivery_method"`
}

func registerInvoiceRoutes(api *gin.RouterGroup) {
	api.POST("/invoices", createInvoiceHandler)
	api.GET("/invoices", listInvoicesHandler)
	api.GET("/invoices/:id", getInvoiceHandler)
	api.PATCH("/invoices/:id", patchInvoiceHandler)
	api.DELETE("/invoices/:id", deleteInvoiceHandler)
}

func createInvoiceHandler(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, &models.ValidationError{Message: "invalid request body: " + err.Error()})
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func getInvoiceHandler(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	ctx := c.Request.Context()
	invoice, err := models.GetInvoice(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	detail := invoiceDetail{Invoice: invoice}
	if detail.Customer, err = middlewares.GetCustomer(ctx, invoice.CustomerId); err != nil {
		writeError(c, err)
		return
	}
	if invoice.DeliveryMethodId != nil {
		if detail.DeliveryMethod, err = middlewares.GetDeliveryMethod(ctx, *invoice.DeliveryMethodId); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, detail)
}

func patchInvoiceHandler(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, &models.ValidationError{Message: "invalid request body"})
		return
	}
	status, err := models.ParseInvoicePatch(body)
	if err != nil {
		writeError(c, err)
		return
	}

	policy := config.InvoiceStockPolicy()
	result, err := models.UpdateInvoiceStatusWithPolicy(c.Request.Context(), id, status, policy)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(result.Skipped) > 0 {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger := config.GetLogger()
		for _, skipped := range result.Skipped {
			logger.WithFields(logrus.Fields{
				"field":           "patchInvoiceHandler",
				"invoice_id":      id,
				"invoice_item_id": skipped.InvoiceItemId,
				"variant_id":      skipped.VariantId,
				"requested":       skipped.Requested,
				"available":       skipped.Available,
				"correlation_id":  cid,
			}).Warn("insufficient stock; item not issued")
		}
	}
	c.JSON(http.StatusOK, result)
}

func deleteInvoiceHandler(c *gin.Context) {
	id, err := pathId(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := models.DeleteInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listInvoicesHandler(c *gin.Context) {
	var filter models.InvoiceFilter
	var err error
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := models.InvoiceStatus(raw)
		if !status.IsValid() {
			writeError(c, &models.ValidationError{Field: "status", Message: "invalid status " + raw})
			return
		}
		filter.Status = &status
	}
	if filter.CustomerId, err = queryInt(c, "customer_id"); err != nil {
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
	result, err := models.ListInvoices(c.Request.Context(), filter, after, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, result.Edges, &result.PageInfo, invoiceReferenceIds(result.Edges))
}
