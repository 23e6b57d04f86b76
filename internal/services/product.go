package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/access"
	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/repos"
	"github.com/yungbote/wishlink-backend/internal/sse"
	"github.com/yungbote/wishlink-backend/internal/types"
)

type ProductCreate struct {
	WishlistID  uuid.UUID
	Name        string
	Description string
	Price       *float64
	Currency    string
	ImageURL    string
	ProductURL  string
	Category    string
	Brand       string
	Priority    string
	Tags        []string
}

type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	ClearPrice  bool
	Currency    *string
	ImageURL    *string
	ProductURL  *string
	Category    *string
	Brand       *string
	Priority    *string
	Status      *string
	Tags        []string
}

type ProductService interface {
	ListByWishlist(ctx context.Context, actorID, wishlistID uuid.UUID) ([]*types.Product, error)
	Create(ctx context.Context, actorID uuid.UUID, in ProductCreate) (*types.Product, error)
	Update(ctx context.Context, actorID, productID uuid.UUID, in ProductUpdate) (*types.Product, error)
	Delete(ctx context.Context, actorID, productID uuid.UUID) error
	AddComment(ctx context.Context, actorID, productID uuid.UUID, text string) (*types.ProductComment, error)
	AddReaction(ctx context.Context, actorID, productID uuid.UUID, emoji string) (*types.ProductReaction, error)
	RemoveReaction(ctx context.Context, actorID, productID uuid.UUID) error
}

type productService struct {
	db            *gorm.DB
	log           *logger.Logger
	wishlistRepo  repos.WishlistRepo
	productRepo   repos.ProductRepo
	bucketService BucketService
	notifier      Notifier
}

func NewProductService(
	db *gorm.DB,
	log *logger.Logger,
	wishlistRepo repos.WishlistRepo,
	productRepo repos.ProductRepo,
	bucketService BucketService,
	notifier Notifier,
) ProductService {
	serviceLog := log.With("service", "ProductService")
	return &productService{
		db:            db,
		log:           serviceLog,
		wishlistRepo:  wishlistRepo,
		productRepo:   productRepo,
		bucketService: bucketService,
		notifier:      notifier,
	}
}

func (ps *productService) ListByWishlist(ctx context.Context, actorID, wishlistID uuid.UUID) ([]*types.Product, error) {
	wishlist, err := ps.loadWishlist(ctx, nil, wishlistID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(wishlist, actorID) {
		return nil, apperr.New(apperr.KindAuthorization, "you do not have access to this wishlist")
	}
	products, err := ps.productRepo.ListByWishlistID(ctx, nil, wishlistID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to list products", err)
	}
	return products, nil
}

func (ps *productService) Create(ctx context.Context, actorID uuid.UUID, in ProductCreate) (*types.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "a product name is required")
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, apperr.New(apperr.KindValidation, "price cannot be negative")
	}
	priority := types.PriorityMedium
	if in.Priority != "" {
		priority = types.ProductPriority(in.Priority)
		if !priority.Valid() {
			return nil, apperr.New(apperr.KindValidation, "invalid priority")
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	var product *types.Product
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wishlist, err := ps.loadWishlist(ctx, tx, in.WishlistID)
		if err != nil {
			return err
		}
		if !access.CanAddProduct(wishlist, actorID) {
			return apperr.New(apperr.KindAuthorization, "you cannot add products to this wishlist")
		}
		product = &types.Product{
			ID:          uuid.New(),
			WishlistID:  wishlist.ID,
			CreatorID:   actorID,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price,
			Currency:    currency,
			ImageURL:    strings.TrimSpace(in.ImageURL),
			ProductURL:  strings.TrimSpace(in.ProductURL),
			Category:    strings.TrimSpace(in.Category),
			Brand:       strings.TrimSpace(in.Brand),
			Priority:    priority,
			Status:      types.StatusWanted,
			Tags:        datatypes.NewJSONSlice(in.Tags),
		}
		if ps.bucketService != nil && product.ImageURL != "" {
			product.ImageBucketKey = ps.bucketService.DeriveKeyFromURL(product.ImageURL)
		}
		if _, err := ps.productRepo.Create(ctx, tx, []*types.Product{product}); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to create product", err)
		}
		if _, err := ps.wishlistRepo.RecomputeTotalValue(ctx, tx, wishlist.ID); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to recompute wishlist total", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.notifier.Notify(ctx, product.WishlistID, sse.SSEEventProductAdded, actorID, product)
	return product, nil
}

func (ps *productService) Update(ctx context.Context, actorID, productID uuid.UUID, in ProductUpdate) (*types.Product, error) {
	var product *types.Product
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = ps.loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		wishlist, err := ps.loadWishlist(ctx, tx, product.WishlistID)
		if err != nil {
			return err
		}
		if !access.CanEditProduct(wishlist, product, actorID) {
			return apperr.New(apperr.KindAuthorization, "you cannot edit this product")
		}

		priceChanged := false
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.New(apperr.KindValidation, "product name cannot be empty")
			}
			product.Name = name
		}
		if in.Description != nil {
			product.Description = strings.TrimSpace(*in.Description)
		}
		if in.ClearPrice {
			product.Price = nil
			priceChanged = true
		} else if in.Price != nil {
			if *in.Price < 0 {
				return apperr.New(apperr.KindValidation, "price cannot be negative")
			}
			product.Price = in.Price
			priceChanged = true
		}
		if in.Currency != nil {
			product.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
		}
		if in.ImageURL != nil {
			oldKey := product.ImageBucketKey
			product.ImageURL = strings.TrimSpace(*in.ImageURL)
			product.ImageBucketKey = ""
			if ps.bucketService != nil {
				product.ImageBucketKey = ps.bucketService.DeriveKeyFromURL(product.ImageURL)
				if oldKey != "" && oldKey != product.ImageBucketKey {
					if dErr := ps.bucketService.DeleteFile(ctx, oldKey); dErr != nil {
						ps.log.Warn("Failed to delete replaced product image", "key", oldKey, "error", dErr)
					}
				}
			}
		}
		if in.ProductURL != nil {
			product.ProductURL = strings.TrimSpace(*in.ProductURL)
		}
		if in.Category != nil {
			product.Category = strings.TrimSpace(*in.Category)
		}
		if in.Brand != nil {
			product.Brand = strings.TrimSpace(*in.Brand)
		}
		if in.Priority != nil {
			priority := types.ProductPriority(*in.Priority)
			if !priority.Valid() {
				return apperr.New(apperr.KindValidation, "invalid priority")
			}
			product.Priority = priority
		}
		if in.Status != nil {
			status := types.ProductStatus(*in.Status)
			if !status.Valid() {
				return apperr.New(apperr.KindValidation, "invalid status")
			}
			if status != product.Status {
				product.Status = status
				if status == types.StatusPurchased {
					now := time.Now()
					product.PurchasedByID = &actorID
					product.PurchasedAt = &now
				} else {
					product.PurchasedByID = nil
					product.PurchasedAt = nil
				}
			}
		}
		if in.Tags != nil {
			product.Tags = datatypes.NewJSONSlice(in.Tags)
		}

		if err := ps.productRepo.Update(ctx, tx, product); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to update product", err)
		}
		if priceChanged {
			if _, err := ps.wishlistRepo.RecomputeTotalValue(ctx, tx, product.WishlistID); err != nil {
				return apperr.Wrap(apperr.KindUnexpected, "failed to recompute wishlist total", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.notifier.Notify(ctx, product.WishlistID, sse.SSEEventProductUpdated, actorID, product)
	return product, nil
}

func (ps *productService) Delete(ctx context.Context, actorID, productID uuid.UUID) error {
	var product *types.Product
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = ps.loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		wishlist, err := ps.loadWishlist(ctx, tx, product.WishlistID)
		if err != nil {
			return err
		}
		if !access.CanDeleteProduct(wishlist, product, actorID) {
			return apperr.New(apperr.KindAuthorization, "you cannot delete this product")
		}
		if err := ps.productRepo.DeleteByIDs(ctx, tx, []uuid.UUID{productID}); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to delete product", err)
		}
		if _, err := ps.wishlistRepo.RecomputeTotalValue(ctx, tx, product.WishlistID); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to recompute wishlist total", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Best-effort image cleanup after the transaction commits.
	if ps.bucketService != nil {
		key := product.ImageBucketKey
		if key == "" {
			key = ps.bucketService.DeriveKeyFromURL(product.ImageURL)
		}
		if key != "" {
			if dErr := ps.bucketService.DeleteFile(ctx, key); dErr != nil {
				ps.log.Warn("Failed to delete product image", "key", key, "error", dErr)
			}
		}
	}
	ps.notifier.Notify(ctx, product.WishlistID, sse.SSEEventProductDeleted, actorID, product)
	return nil
}

func (ps *productService) AddComment(ctx context.Context, actorID, productID uuid.UUID, text string) (*types.ProductComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.New(apperr.KindValidation, "a comment cannot be empty")
	}
	if len([]rune(text)) > types.MaxCommentLength {
		return nil, apperr.Newf(apperr.KindValidation, "a comment cannot exceed %d characters", types.MaxCommentLength)
	}

	var comment *types.ProductComment
	var wishlistID uuid.UUID
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := ps.loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		wishlist, err := ps.loadWishlist(ctx, tx, product.WishlistID)
		if err != nil {
			return err
		}
		if !access.CanView(wishlist, actorID) {
			return apperr.New(apperr.KindAuthorization, "you do not have access to this wishlist")
		}
		wishlistID = wishlist.ID
		comment = &types.ProductComment{
			ID:        uuid.New(),
			ProductID: productID,
			AuthorID:  actorID,
			Text:      text,
			CreatedAt: time.Now(),
		}
		if err := ps.productRepo.AddComment(ctx, tx, comment); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to add comment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.notifier.Notify(ctx, wishlistID, sse.SSEEventCommentAdded, actorID, comment)
	return comment, nil
}

// AddReaction replaces any existing reaction from the same author; the
// original insertion position is lost, which is acceptable.
func (ps *productService) AddReaction(ctx context.Context, actorID, productID uuid.UUID, emoji string) (*types.ProductReaction, error) {
	if !types.ReactionAllowed(emoji) {
		return nil, apperr.New(apperr.KindValidation, "unsupported reaction emoji")
	}

	var reaction *types.ProductReaction
	var wishlistID uuid.UUID
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := ps.loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		wishlist, err := ps.loadWishlist(ctx, tx, product.WishlistID)
		if err != nil {
			return err
		}
		if !access.CanView(wishlist, actorID) {
			return apperr.New(apperr.KindAuthorization, "you do not have access to this wishlist")
		}
		wishlistID = wishlist.ID
		if err := ps.productRepo.DeleteReactionByAuthor(ctx, tx, productID, actorID); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to replace existing reaction", err)
		}
		reaction = &types.ProductReaction{
			ID:        uuid.New(),
			ProductID: productID,
			AuthorID:  actorID,
			Emoji:     emoji,
			CreatedAt: time.Now(),
		}
		if err := ps.productRepo.AddReaction(ctx, tx, reaction); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to add reaction", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ps.notifier.Notify(ctx, wishlistID, sse.SSEEventReactionAdded, actorID, reaction)
	return reaction, nil
}

// RemoveReaction is idempotent: removing a reaction that does not exist
// succeeds.
func (ps *productService) RemoveReaction(ctx context.Context, actorID, productID uuid.UUID) error {
	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := ps.loadProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		wishlist, err := ps.loadWishlist(ctx, tx, product.WishlistID)
		if err != nil {
			return err
		}
		if !access.CanView(wishlist, actorID) {
			return apperr.New(apperr.KindAuthorization, "you do not have access to this wishlist")
		}
		if err := ps.productRepo.DeleteReactionByAuthor(ctx, tx, productID, actorID); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to remove reaction", err)
		}
		return nil
	})
}

func (ps *productService) loadProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	product, err := ps.productRepo.GetByID(ctx, tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "product not found")
		}
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to load product", err)
	}
	return product, nil
}

func (ps *productService) loadWishlist(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (*types.Wishlist, error) {
	wishlist, err := ps.wishlistRepo.GetByID(ctx, tx, wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "wishlist not found")
		}
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to load wishlist", err)
	}
	return wishlist, nil
}
