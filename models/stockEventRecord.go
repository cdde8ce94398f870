package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"gorm.io/gorm"
)

// StockEventRecord is the transactional outbox row written next to every movement.
// The dispatcher publishes it after commit.
type StockEventRecord struct {
	ID            int            `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	MovementId    int            `gorm:"not null;uniqueIndex" json:"movement_id"`
	MovementType  MovementType   `gorm:"size:3;not null" json:"movement_type"`
	Reason        MovementReason `gorm:"size:20;not null" json:"reason"`
	Quantity      int64          `gorm:"not null" json:"quantity"`
	ProductId     int            `gorm:"not null" json:"product_id"`
	VariantId     *int           `json:"variant_id"`
	WarehouseId   *int           `json:"warehouse_id"`
	ShelfId       *int           `json:"shelf_id"`
	OccurredAt    time.Time      `gorm:"not null" json:"occurred_at"`
	IsProcessed   bool           `gorm:"index;not null" json:"is_processed"`
	// publish happens after commit via dispatcher
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`
	// consumer side
	LastProcessError *string   `gorm:"type:text" json:"last_process_error"`
	ProcessedAt      *time.Time `gorm:"index" json:"processed_at"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func newStockEventRecord(m *StockMovement) *StockEventRecord {
	now := time.Now().UTC()
	return &StockEventRecord{
		MovementId:    m.ID,
		MovementType:  m.MovementType,
		Reason:        m.Reason,
		Quantity:      m.Quantity,
		ProductId:     m.ProductId,
		VariantId:     m.VariantId,
		WarehouseId:   m.WarehouseId,
		ShelfId:       m.ShelfId,
		OccurredAt:    m.MovementDate,
		PublishStatus: OutboxPublishStatusPending,
		NextAttemptAt: &now,
		CorrelationId: m.CorrelationId,
	}
}

func ConvertToStockEventMessage(record StockEventRecord) config.StockEventMessage {
	return config.StockEventMessage{
		EventId:       record.ID,
		MovementId:    record.MovementId,
		MovementType:  string(record.MovementType),
		Reason:        string(record.Reason),
		Quantity:      record.Quantity,
		ProductId:     record.ProductId,
		VariantId:     record.VariantId,
		WarehouseId:   record.WarehouseId,
		ShelfId:       record.ShelfId,
		OccurredAt:    record.OccurredAt,
		CorrelationId: record.CorrelationId,
	}
}

// MarkStockEventProcessed records the consumer outcome on the outbox row.
func MarkStockEventProcessed(tx *gorm.DB, eventId int, processErr error) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"is_processed": processErr == nil,
		"processed_at": now,
	}
	if processErr != nil {
		msg := processErr.Error()
		updates["last_process_error"] = msg
	} else {
		updates["last_process_error"] = nil
	}
	return tx.Model(&StockEventRecord{}).Where("id = ?", eventId).Updates(updates).Error
}

// ReplayStockEvent re-queues a FAILED or DEAD outbox row for the dispatcher.
func ReplayStockEvent(ctx context.Context, eventId int) (*StockEventRecord, error) {
	db := config.GetDB()
	var rec StockEventRecord
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).Where("id = ?", eventId).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "stock_event", Id: eventId}
			}
			return err
		}
		if rec.PublishStatus != OutboxPublishStatusDead && rec.PublishStatus != OutboxPublishStatusFailed {
			return newValidationError("publish_status", "only FAILED or DEAD events can be replayed, got %s", rec.PublishStatus)
		}
		now := time.Now().UTC()
		return tx.Model(&rec).Updates(map[string]interface{}{
			"publish_status":   OutboxPublishStatusFailed,
			"publish_attempts": 0,
			"next_attempt_at":  now,
			"locked_at":        nil,
			"locked_by":        nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
