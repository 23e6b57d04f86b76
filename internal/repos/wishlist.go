package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/types"
)

type WishlistRepo interface {
	Create(ctx context.Context, tx *gorm.DB, wishlists []*types.Wishlist) ([]*types.Wishlist, error)
	GetByID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (*types.Wishlist, error)
	GetByInviteCode(ctx context.Context, tx *gorm.DB, inviteCode string) (*types.Wishlist, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Wishlist, error)
	Update(ctx context.Context, tx *gorm.DB, wishlist *types.Wishlist) error
	Delete(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error
	AddCollaborator(ctx context.Context, tx *gorm.DB, collaborator *types.WishlistCollaborator) error
	RecomputeTotalValue(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (float64, error)
}

type wishlistRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWishlistRepo(db *gorm.DB, baseLog *logger.Logger) WishlistRepo {
	repoLog := baseLog.With("repo", "WishlistRepo")
	return &wishlistRepo{db: db, log: repoLog}
}

func (wr *wishlistRepo) Create(ctx context.Context, tx *gorm.DB, wishlists []*types.Wishlist) ([]*types.Wishlist, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	if len(wishlists) == 0 {
		return []*types.Wishlist{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&wishlists).Error; err != nil {
		return nil, err
	}

	return wishlists, nil
}

func (wr *wishlistRepo) GetByID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (*types.Wishlist, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	var result types.Wishlist

	err := transaction.WithContext(ctx).
		Preload("Collaborators").
		Preload("Collaborators.User").
		Where("id = ?", wishlistID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (wr *wishlistRepo) GetByInviteCode(ctx context.Context, tx *gorm.DB, inviteCode string) (*types.Wishlist, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	var result types.Wishlist

	err := transaction.WithContext(ctx).
		Preload("Collaborators").
		Where("invite_code = ?", inviteCode).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (wr *wishlistRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Wishlist, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	var results []*types.Wishlist

	err := transaction.WithContext(ctx).
		Preload("Collaborators").
		Where("owner_id = ?", userID).
		Or("id IN (?)", transaction.
			Model(&types.WishlistCollaborator{}).
			Select("wishlist_id").
			Where("user_id = ?", userID)).
		Order("updated_at DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (wr *wishlistRepo) Update(ctx context.Context, tx *gorm.DB, wishlist *types.Wishlist) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	if wishlist == nil {
		return nil
	}

	return transaction.WithContext(ctx).
		Omit("Collaborators", "Products", "Owner").
		Save(wishlist).Error
}

func (wr *wishlistRepo) Delete(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	if err := transaction.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Delete(&types.WishlistCollaborator{}).Error; err != nil {
		return err
	}

	return transaction.WithContext(ctx).
		Where("id = ?", wishlistID).
		Delete(&types.Wishlist{}).Error
}

func (wr *wishlistRepo) AddCollaborator(ctx context.Context, tx *gorm.DB, collaborator *types.WishlistCollaborator) error {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	return transaction.WithContext(ctx).Create(collaborator).Error
}

// RecomputeTotalValue sums the price of every product on the wishlist
// (missing prices count as zero) and persists the result. It runs inside
// the caller's transaction so readers never observe a stale total for
// their own write.
func (wr *wishlistRepo) RecomputeTotalValue(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = wr.db
	}

	var total float64
	err := transaction.WithContext(ctx).
		Model(&types.Product{}).
		Where("wishlist_id = ?", wishlistID).
		Select("COALESCE(SUM(COALESCE(price, 0)), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	err = transaction.WithContext(ctx).
		Model(&types.Wishlist{}).
		Where("id = ?", wishlistID).
		Update("total_value", total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
