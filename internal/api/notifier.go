package api

import (
	"context"

	"deliwaste/server/internal/events"
	"deliwaste/server/internal/models"
	"deliwaste/server/internal/services"

	"go.uber.org/zap"
)

// MessageWasteLogged is the websocket message type pushed after new waste.
const MessageWasteLogged = "waste_logged"

// WasteEventHandler drops cached analytics and tells connected dashboards to
// refresh. It is used by the Kafka consumer and by the direct publisher.
func WasteEventHandler(hub *Hub, cache services.ResultCache, log *zap.Logger) events.Handler {
	return func(ctx context.Context, event models.WasteEvent) {
		if cache != nil {
			cache.Invalidate(ctx)
		}
		hub.Broadcast(MessageWasteLogged, map[string]interface{}{
			"entry_id":   event.EntryID,
			"item_id":    event.ItemID,
			"entry_date": event.EntryDate,
			"quantity":   event.Quantity,
		})
		log.Debug("waste event delivered",
			zap.String("event_id", event.ID),
			zap.Int("clients", hub.ClientsCount()))
	}
}
