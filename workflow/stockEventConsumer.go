package workflow

import (
	"context"
	"errors"
	"strconv"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const StockDriftHandlerName = "stock_drift_check"

// ProcessStockEvent runs the drift check for one delivered stock event, at most once per
// message id. A found drift is stored and logged; it is not an error.
func ProcessStockEvent(ctx context.Context, logger *logrus.Logger, messageId string, msg config.StockEventMessage) error {
	if messageId == "" {
		messageId = "event:" + strconv.Itoa(msg.EventId)
	}
	db := config.GetDB()

	var report *models.StockDriftReport
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip, err := BeginIdempotency(tx, StockDriftHandlerName, messageId)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		if msg.VariantId != nil {
			_, report, err = models.CheckVariantDriftTx(tx, *msg.VariantId, messageId, msg.CorrelationId)
			if err != nil {
				var nf *models.NotFoundError
				if !errors.As(err, &nf) {
					return err
				}
				// variant is gone; nothing to compare
			}
		}
		if msg.EventId > 0 {
			if err := models.MarkStockEventProcessed(tx, msg.EventId, nil); err != nil {
				return err
			}
		}
		return MarkIdempotencySucceeded(tx, StockDriftHandlerName, messageId)
	})
	if err != nil {
		if !errors.Is(err, ErrIdempotencyInProgress) {
			_ = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return MarkIdempotencyFailed(tx, StockDriftHandlerName, messageId, err)
			})
		}
		return err
	}

	if report != nil && logger != nil {
		logger.WithFields(logrus.Fields{
			"field":              "StockEventConsumer",
			"variant_id":         report.VariantId,
			"cached_quantity":    report.CachedQuantity,
			"projected_quantity": report.ProjectedQuantity,
			"message_id":         messageId,
			"correlation_id":     msg.CorrelationId,
		}).Warn("stock counter drift detected")
	}
	return nil
}
