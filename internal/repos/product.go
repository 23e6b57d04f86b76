package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/types"
)

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
	GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
	ListByWishlistID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) ([]*types.Product, error)
	Update(ctx context.Context, tx *gorm.DB, product *types.Product) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error
	DeleteByWishlistID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error
	AddComment(ctx context.Context, tx *gorm.DB, comment *types.ProductComment) error
	GetReactionByAuthor(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) (*types.ProductReaction, error)
	AddReaction(ctx context.Context, tx *gorm.DB, reaction *types.ProductReaction) error
	DeleteReactionByAuthor(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	repoLog := baseLog.With("repo", "ProductRepo")
	return &productRepo{db: db, log: repoLog}
}

func (pr *productRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(products) == 0 {
		return []*types.Product{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

func (pr *productRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.Product

	err := transaction.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_comment.created_at ASC")
		}).
		Preload("Comments.Author").
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_reaction.created_at ASC")
		}).
		Where("id = ?", productID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *productRepo) ListByWishlistID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) ([]*types.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Product

	err := transaction.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_comment.created_at ASC")
		}).
		Preload("Comments.Author").
		Preload("Reactions").
		Where("wishlist_id = ?", wishlistID).
		Order("created_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) Update(ctx context.Context, tx *gorm.DB, product *types.Product) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if product == nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Omit("Comments", "Reactions", "Wishlist", "Creator").
		Save(product).Error
}

func (pr *productRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(productIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Delete(&types.ProductComment{}).Error; err != nil {
		return err
	}
	if err := transaction.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Delete(&types.ProductReaction{}).Error; err != nil {
		return err
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", productIDs).
		Delete(&types.Product{}).Error
}

func (pr *productRepo) DeleteByWishlistID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var productIDs []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.Product{}).
		Where("wishlist_id = ?", wishlistID).
		Pluck("id", &productIDs).Error; err != nil {
		return err
	}

	return pr.DeleteByIDs(ctx, transaction, productIDs)
}

func (pr *productRepo) AddComment(ctx context.Context, tx *gorm.DB, comment *types.ProductComment) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).Create(comment).Error
}

func (pr *productRepo) GetReactionByAuthor(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) (*types.ProductReaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var result types.ProductReaction

	err := transaction.WithContext(ctx).
		Where("product_id = ? AND author_id = ?", productID, authorID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *productRepo) AddReaction(ctx context.Context, tx *gorm.DB, reaction *types.ProductReaction) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).Create(reaction).Error
}

func (pr *productRepo) DeleteReactionByAuthor(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).
		Where("product_id = ? AND author_id = ?", productID, authorID).
		Delete(&types.ProductReaction{}).Error
}
