package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func pathId(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

func queryInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil, &models.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return &v, nil
}

// queryDate accepts RFC3339 or a plain date; a plain "to" date covers the whole day.
func queryDate(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Message: fmt.Sprintf("invalid date %q", raw)}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func queryCursor(c *gin.Context) (after *string, limit int, err error) {
	if v, ok := c.GetQuery("after"); ok && v != "" {
		after = &v
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, 0, &models.ValidationError{Field: "limit", Message: "must be a non-negative integer"}
		}
	}
	return after, limit, nil
}

func queryMovementFilter(c *gin.Context) (models.StockMovementFilter, error) {
	var filter models.StockMovementFilter
	productId, err := queryInt(c, "product_id")
	if err != nil {
		return filter, err
	}
	if productId != nil {
		filter.ProductId = *productId
	}
	if filter.VariantId, err = queryInt(c, "variant_id"); err != nil {
		return filter, err
	}
	if filter.WarehouseId, err = queryInt(c, "warehouse_id"); err != nil {
		return filter, err
	}
	if filter.ShelfId, err = queryInt(c, "shelf_id"); err != nil {
		return filter, err
	}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("movement_type"))); raw != "" {
		mt := models.MovementType(raw)
		if !mt.IsValid() {
			return filter, &models.ValidationError{Field: "movement_type", Message: fmt.Sprintf("invalid movement type %q", raw)}
		}
		filter.MovementType = &mt
	}
	if filter.From, err = queryDate(c, "from", false); err != nil {
		return filter, err
	}
	if filter.To, err = queryDate(c, "to", true); err != nil {
		return filter, err
	}
	return filter, nil
}
