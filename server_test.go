package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&models.InsufficientStockError{VariantId: 1, Requested: 3, Available: 1}, http.StatusConflict},
		{&models.ValidationError{Field: "quantity", Message: "must be positive"}, http.StatusBadRequest},
		{&models.InvalidMovementError{Reason: "quantity must be positive"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("load: %w", &models.NotFoundError{Resource: "invoice", Id: 9}), http.StatusNotFound},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestHealthzAndReadinessGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("RATE_LIMIT_ENABLED", "")
	require.Nil(t, config.GetDB())
	r := newRouter(config.GetLogger())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("x-correlation-id"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stock?product_id=1", nil)
	req.Header.Set("x-correlation-id", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("x-correlation-id"))
}

func TestDecodeStockEvent(t *testing.T) {
	data := []byte(`{"event_id":4,"movement_id":11,"movement_type":"OUT","reason":"INVOICE_ISSUE","quantity":2,"product_id":5,"variant_id":8}`)
	body := fmt.Sprintf(`{"message":{"data":%q,"id":"msg-1"},"subscription":"projects/p/subscriptions/stock"}`,
		base64.StdEncoding.EncodeToString(data))

	msg, m, err := decodeStockEvent([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.Message.ID)
	assert.Equal(t, 11, m.MovementId)
	assert.Equal(t, int64(2), m.Quantity)
	require.NotNil(t, m.VariantId)
	assert.Equal(t, 8, *m.VariantId)

	_, _, err = decodeStockEvent([]byte(`not json`))
	assert.Error(t, err)

	empty := fmt.Sprintf(`{"message":{"data":%q,"id":"msg-2"}}`, base64.StdEncoding.EncodeToString([]byte(`{"product_id":5}`)))
	_, _, err = decodeStockEvent([]byte(empty))
	assert.Error(t, err)
}

func TestQueryDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctxFor := func(query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/x?"+query, nil)
		return c
	}

	got, err := queryDate(ctxFor(""), "from", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = queryDate(ctxFor("to=2026-03-01"), "to", true)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)), got.String())

	got, err = queryDate(ctxFor("from=2026-03-01T08:00:00Z"), "from", false)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = queryDate(ctxFor("from=yesterday"), "from", false)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func purchaseSheet(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParsePurchaseSheet(t *testing.T) {
	buf := purchaseSheet(t,
		[]interface{}{"Supplier_ID", "product_id", "variant_id", "quantity", "purchase_price", "batch_number"},
		[]interface{}{1, 2, 3, "1,200", "USD 3.50", "B-01"},
		[]interface{}{},
		[]interface{}{1, 4, "", 5, "12", ""},
	)

	inputs, err := parsePurchaseSheet(buf)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, 1, inputs[0].SupplierId)
	require.NotNil(t, inputs[0].VariantId)
	assert.Equal(t, 3, *inputs[0].VariantId)
	assert.Equal(t, int64(1200), inputs[0].Quantity)
	assert.True(t, inputs[0].PurchasePrice.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, "B-01", inputs[0].BatchNumber)

	assert.Nil(t, inputs[1].VariantId)
	assert.Equal(t, 4, inputs[1].ProductId)
}

func TestParsePurchaseSheet_Rejects(t *testing.T) {
	missing := purchaseSheet(t,
		[]interface{}{"supplier_id", "product_id", "quantity"},
		[]interface{}{1, 2, 3},
	)
	_, err := parsePurchaseSheet(missing)
	assert.ErrorContains(t, err, `missing column "purchase_price"`)

	badRow := purchaseSheet(t,
		[]interface{}{"supplier_id", "product_id", "quantity", "purchase_price"},
		[]interface{}{1, 2, 3, "4"},
		[]interface{}{1, "two", 3, "4"},
	)
	_, err = parsePurchaseSheet(badRow)
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "row 3", validationErr.Field)

	_, err = parsePurchaseSheet(bytes.NewBufferString("not a workbook"))
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.NoError(t, checkXlsxFilename("Purchases.XLSX"))
	assert.Error(t, checkXlsxFilename("purchases.csv"))
}

func TestListReferenceIds(t *testing.T) {
	variant, warehouse := 4, 9
	movements := []*models.StockMovement{
		{ProductId: 1, VariantId: &variant, WarehouseId: &warehouse},
		{ProductId: 2},
	}
	ids := movementReferenceIds(movements)
	assert.Equal(t, []int{1, 2}, ids.Products)
	assert.Equal(t, []int{4}, ids.Variants)
	assert.Equal(t, []int{9}, ids.Warehouses)
	assert.Empty(t, ids.Shelves)

	delivery := 3
	invoices := []*models.Invoice{{
		CustomerId:       5,
		DeliveryMethodId: &delivery,
		Items:            []models.InvoiceItem{{ProductId: 1, VariantId: &variant}},
	}}
	ids = invoiceReferenceIds(invoices)
	assert.Equal(t, []int{5}, ids.Customers)
	assert.Equal(t, []int{3}, ids.DeliveryMethods)
	assert.Equal(t, []int{1}, ids.Products)

	ids = purchaseReferenceIds([]*models.Purchase{{SupplierId: 8, ProductId: 1}})
	assert.Equal(t, []int{8}, ids.Suppliers)
}
