package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"bitbucket.org/mmdatafocus/stock_backend/config"
	"bitbucket.org/mmdatafocus/stock_backend/utils"
	"bitbucket.org/mmdatafocus/stock_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PubSubMessage is the push subscription envelope.
type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// decodeStockEvent unwraps a push request. Any error means the request can never succeed.
func decodeStockEvent(body []byte) (PubSubMessage, config.StockEventMessage, error) {
	var msg PubSubMessage
	var m config.StockEventMessage
	// byte slice unmarshalling handles base64 decoding.
	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, m, fmt.Errorf("unmarshal body: %w", err)
	}
	if err := json.Unmarshal(msg.Message.Data, &m); err != nil {
		return msg, m, fmt.Errorf("unmarshal pubsub message: %w", err)
	}
	if m.MovementId <= 0 || m.ProductId <= 0 {
		return msg, m, errors.New("movement_id/product_id required")
	}
	return msg, m, nil
}

func stockEventPubSubHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "pubsubHandler.go", "stockEventPubSubHandler", "io.ReadAll", nil, err)
			// Malformed request body: ack/drop to avoid infinite retries.
			c.Status(http.StatusNoContent)
			return
		}
		msg, m, err := decodeStockEvent(body)
		if err != nil {
			config.LogError(logger, "pubsubHandler.go", "stockEventPubSubHandler", "decode", string(body), err)
			c.Status(http.StatusNoContent)
			return
		}

		// Prefer payload correlation_id; fall back to the Pub/Sub message ID.
		correlationID := m.CorrelationId
		if correlationID == "" {
			correlationID = msg.Message.ID
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationID)
		ctx = utils.SetUserIdInContext(ctx, 0)
		ctx = utils.SetUsernameInContext(ctx, "System")

		var lockIds []int
		if m.VariantId != nil {
			lockIds = []int{*m.VariantId}
		}
		release := utils.ObtainStockLocks(ctx, lockIds, "pubsubHandler.go", "stockEventPubSubHandler")
		defer release()

		if err := workflow.ProcessStockEvent(ctx, logger, msg.Message.ID, m); err != nil {
			logger.WithFields(logrus.Fields{
				"field":          "stockEventPubSubHandler",
				"event_id":       m.EventId,
				"movement_id":    m.MovementId,
				"message_id":     msg.Message.ID,
				"correlation_id": correlationID,
			}).Error("pubsub processing failed: " + err.Error())
			// Non-2xx tells Pub/Sub to retry (and potentially route to DLQ).
			c.Status(http.StatusInternalServerError)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
