package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/requestdata"
	"github.com/yungbote/wishlink-backend/internal/services"
	"github.com/yungbote/wishlink-backend/internal/sse"
)

// RealtimeHandler owns the SSE stream lifecycle. Clients are keyed by the
// auth session id so subscribe/unsubscribe calls from the same session
// find the stream they belong to.
type RealtimeHandler struct {
	log             *logger.Logger
	hub             *sse.SSEHub
	wishlistService services.WishlistService

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub, wishlistService services.WishlistService) *RealtimeHandler {
	return &RealtimeHandler{
		log:             log.With("handler", "RealtimeHandler"),
		hub:             hub,
		wishlistService: wishlistService,
		clients:         make(map[uuid.UUID]*sse.SSEClient),
	}
}

func sessionID(c *gin.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		return uuid.Nil, apperr.New(apperr.KindAuthentication, "not authenticated")
	}
	return rd.SessionID, nil
}

// Stream opens the long-lived event stream for the calling session. A new
// stream for the same session replaces the old one.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}
	session, err := sessionID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}

	client := rh.hub.NewSSEClient(actor)

	rh.mu.Lock()
	if old, ok := rh.clients[session]; ok {
		rh.hub.CloseClient(old)
	}
	rh.clients[session] = client
	rh.mu.Unlock()

	defer func() {
		rh.mu.Lock()
		if rh.clients[session] == client {
			delete(rh.clients, session)
		}
		rh.mu.Unlock()
		rh.hub.RemoveClient(client)
	}()

	rh.hub.ServeHTTP(c.Writer, c.Request, client)
}

func bindWishlistID(c *gin.Context) (uuid.UUID, error) {
	var req struct {
		WishlistID string `json:"wishlist_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "invalid request body")
	}
	id, err := uuid.Parse(req.WishlistID)
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "invalid wishlist_id")
	}
	return id, nil
}

// Subscribe joins the session's stream to a wishlist room. The wishlist
// lookup doubles as the visibility check.
func (rh *RealtimeHandler) Subscribe(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}
	session, err := sessionID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}
	wishlistID, err := bindWishlistID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}
	if _, err := rh.wishlistService.Get(c.Request.Context(), actor, wishlistID); err != nil {
		RespondError(c, rh.log, err)
		return
	}

	rh.mu.RLock()
	client, ok := rh.clients[session]
	rh.mu.RUnlock()
	if !ok {
		RespondError(c, rh.log, apperr.New(apperr.KindNotFound, "no active event stream for this session"))
		return
	}
	rh.hub.AddChannel(client, sse.WishlistChannel(wishlistID))
	RespondOK(c, gin.H{"message": "subscribed"})
}

func (rh *RealtimeHandler) Unsubscribe(c *gin.Context) {
	session, err := sessionID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}
	wishlistID, err := bindWishlistID(c)
	if err != nil {
		RespondError(c, rh.log, err)
		return
	}

	rh.mu.RLock()
	client, ok := rh.clients[session]
	rh.mu.RUnlock()
	if !ok {
		RespondError(c, rh.log, apperr.New(apperr.KindNotFound, "no active event stream for this session"))
		return
	}
	rh.hub.RemoveChannel(client, sse.WishlistChannel(wishlistID))
	RespondOK(c, gin.H{"message": "unsubscribed"})
}
