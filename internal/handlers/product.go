package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/services"
)

type ProductHandler struct {
	log            *logger.Logger
	productService services.ProductService
}

func NewProductHandler(log *logger.Logger, productService services.ProductService) *ProductHandler {
	return &ProductHandler{log: log, productService: productService}
}

func (ph *ProductHandler) ListByWishlist(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	wishlistID, err := pathID(c, "wishlistId")
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	products, err := ph.productService.ListByWishlist(c.Request.Context(), actor, wishlistID)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}

func (ph *ProductHandler) Create(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	var req struct {
		WishlistID  string   `json:"wishlist_id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Price       *float64 `json:"price"`
		Currency    string   `json:"currency"`
		ImageURL    string   `json:"image_url"`
		ProductURL  string   `json:"product_url"`
		Category    string   `json:"category"`
		Brand       string   `json:"brand"`
		Priority    string   `json:"priority"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ph.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	wishlistID, err := uuid.Parse(req.WishlistID)
	if err != nil {
		RespondError(c, ph.log, apperr.New(apperr.KindValidation, "invalid wishlist_id"))
		return
	}
	product, err := ph.productService.Create(c.Request.Context(), actor, services.ProductCreate{
		WishlistID:  wishlistID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		ProductURL:  req.ProductURL,
		Category:    req.Category,
		Brand:       req.Brand,
		Priority:    req.Priority,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondCreated(c, gin.H{"product": product})
}

func (ph *ProductHandler) Update(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	productID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		ClearPrice  bool     `json:"clear_price"`
		Currency    *string  `json:"currency"`
		ImageURL    *string  `json:"image_url"`
		ProductURL  *string  `json:"product_url"`
		Category    *string  `json:"category"`
		Brand       *string  `json:"brand"`
		Priority    *string  `json:"priority"`
		Status      *string  `json:"status"`
		Tags        []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ph.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	product, err := ph.productService.Update(c.Request.Context(), actor, productID, services.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ClearPrice:  req.ClearPrice,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		ProductURL:  req.ProductURL,
		Category:    req.Category,
		Brand:       req.Brand,
		Priority:    req.Priority,
		Status:      req.Status,
		Tags:        req.Tags,
	})
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"product": product})
}

func (ph *ProductHandler) Delete(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	productID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	if err := ph.productService.Delete(c.Request.Context(), actor, productID); err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "product deleted"})
}

func (ph *ProductHandler) AddComment(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	productID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ph.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	comment, err := ph.productService.AddComment(c.Request.Context(), actor, productID, req.Text)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondCreated(c, gin.H{"comment": comment})
}

func (ph *ProductHandler) AddReaction(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	productID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, ph.log, apperr.New(apperr.KindValidation, "invalid request body"))
		return
	}
	reaction, err := ph.productService.AddReaction(c.Request.Context(), actor, productID, req.Emoji)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"reaction": reaction})
}

func (ph *ProductHandler) RemoveReaction(c *gin.Context) {
	actor, err := actorID(c)
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	productID, err := pathID(c, "id")
	if err != nil {
		RespondError(c, ph.log, err)
		return
	}
	if err := ph.productService.RemoveReaction(c.Request.Context(), actor, productID); err != nil {
		RespondError(c, ph.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "reaction removed"})
}
