package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/sse"
)

func TestNotifier_BroadcastsToRoomWithoutBus(t *testing.T) {
	log := testLogger(t)
	hub := sse.NewSSEHub(log)
	wishlistID := uuid.New()
	sender := uuid.New()
	receiver := uuid.New()

	receiverClient := hub.NewSSEClient(receiver)
	hub.AddChannel(receiverClient, sse.WishlistChannel(wishlistID))

	n := NewNotifier(log, hub, nil)
	n.Notify(context.Background(), wishlistID, sse.SSEEventProductAdded, sender, map[string]string{"name": "Socks"})

	select {
	case msg := <-receiverClient.Outbound:
		if msg.Event != sse.SSEEventProductAdded {
			t.Fatalf("expected event %q, got %q", sse.SSEEventProductAdded, msg.Event)
		}
		if msg.Channel != sse.WishlistChannel(wishlistID) {
			t.Fatalf("expected channel %q, got %q", sse.WishlistChannel(wishlistID), msg.Channel)
		}
	default:
		t.Fatalf("expected message delivered to room member")
	}
}

func TestNotifier_SkipsSender(t *testing.T) {
	log := testLogger(t)
	hub := sse.NewSSEHub(log)
	wishlistID := uuid.New()
	sender := uuid.New()

	senderClient := hub.NewSSEClient(sender)
	hub.AddChannel(senderClient, sse.WishlistChannel(wishlistID))

	n := NewNotifier(log, hub, nil)
	n.Notify(context.Background(), wishlistID, sse.SSEEventCommentAdded, sender, nil)

	select {
	case msg := <-senderClient.Outbound:
		t.Fatalf("sender should not receive its own event, got %q", msg.Event)
	default:
	}
}
