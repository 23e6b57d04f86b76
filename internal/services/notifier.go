package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/sse"
)

// Notifier emits wishlist-room events after mutations. Emission is
// best-effort: failures are logged and never fail the enclosing request.
type Notifier interface {
	Notify(ctx context.Context, wishlistID uuid.UUID, event sse.SSEEvent, senderID uuid.UUID, payload any)
}

type notifier struct {
	log *logger.Logger
	hub *sse.SSEHub
	bus SSEBus
}

func NewNotifier(log *logger.Logger, hub *sse.SSEHub, bus SSEBus) Notifier {
	return &notifier{
		log: log.With("service", "Notifier"),
		hub: hub,
		bus: bus,
	}
}

func (n *notifier) Notify(ctx context.Context, wishlistID uuid.UUID, event sse.SSEEvent, senderID uuid.UUID, payload any) {
	msg := sse.SSEMessage{
		Channel:  sse.WishlistChannel(wishlistID),
		Event:    event,
		Data:     payload,
		SenderID: senderID,
	}
	if n.bus != nil {
		// The bus forwarder feeds every process hub, this one included.
		if err := n.bus.Publish(ctx, msg); err != nil {
			n.log.Warn("Failed to publish realtime event, falling back to local hub", "event", event, "error", err)
			n.hub.Broadcast(msg)
		}
		return
	}
	n.hub.Broadcast(msg)
}
