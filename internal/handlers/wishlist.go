package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/requestdata"
	"github.com/yungbote/wishlink-backend/internal/services"
)

type WishlistHandler struct {
	log             *logger.Logger
	wishlistService services.WishlistService
}

func NewWishlistHandler(log *logger.Logger, wishlistService services.WishlistService) *WishlistHandler {
	return &WishlistHandler{log: log, wishlistService: wishlistService}
}

func actorID(c *gin.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apperr.New(apperr.KindAuthentication, "not authenticated")
	}
	return rd.UserID, nil
}

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.KindValidation, "invalid %s", name)
	}
	return id, nil
}

func (wh *WishlistHandler) List(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlists, err := wh.wishlistService.ListForUser(c.Request.Context(), actor)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondOK(c, gin.H{"wishlists": wishlists})
}

func (wh *WishlistHandler) Create(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		IsPublic    bool     `json:"is_public"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, wh.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	wishlist, err := wh.wishlistService.Create(c.Request.Context(), actor, services.WishlistCreate{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondCreated(c, gin.H{"wishlist": wishlist})
}

func (wh *WishlistHandler) Get(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlistID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlist, err := wh.wishlistService.Get(c.Request.Context(), actor, wishlistID)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondOK(c, gin.H{"wishlist": wishlist})
}

func (wh *WishlistHandler) Update(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlistID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	var req struct {
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		IsPublic    *bool    `json:"is_public"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, wh.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	wishlist, err := wh.wishlistService.Update(c.Request.Context(), actor, wishlistID, services.WishlistUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondOK(c, gin.H{"wishlist": wishlist})
}

func (wh *WishlistHandler) Delete(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlistID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	if err := wh.wishlistService.Delete(c.Request.Context(), actor, wishlistID); err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "wishlist deleted"})
}

func (wh *WishlistHandler) GenerateInvite(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlistID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	code, err := wh.wishlistService.GenerateInvite(c.Request.Context(), actor, wishlistID)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondOK(c, gin.H{"invite_code": code})
}

func (wh *WishlistHandler) Join(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	wishlist, err := wh.wishlistService.Join(c.Request.Context(), actor, c.Param("inviteCode"))
	if err != nil {
		RespondError(c, wh.log, err)
		return
	}
	RespondOK(c, gin.H{"wishlist": wishlist})
}
