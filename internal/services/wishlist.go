package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/access"
	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/repos"
	"github.com/yungbote/wishlink-backend/internal/types"
)

const inviteCodeBytes = 16

// NewInviteCode returns a high-entropy opaque token: 16 random bytes,
// hex-encoded. Uniqueness is enforced by the invite_code unique index;
// a collision surfaces as a conflict and the caller may retry.
func NewInviteCode() (string, error) {
	buf := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type WishlistCreate struct {
	Title       string
	Description string
	IsPublic    bool
	Tags        []string
}

type WishlistUpdate struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Tags        []string
}

type WishlistService interface {
	Create(ctx context.Context, actorID uuid.UUID, in WishlistCreate) (*types.Wishlist, error)
	Get(ctx context.Context, actorID, wishlistID uuid.UUID) (*types.Wishlist, error)
	ListForUser(ctx context.Context, actorID uuid.UUID) ([]*types.Wishlist, error)
	Update(ctx context.Context, actorID, wishlistID uuid.UUID, in WishlistUpdate) (*types.Wishlist, error)
	Delete(ctx context.Context, actorID, wishlistID uuid.UUID) error
	GenerateInvite(ctx context.Context, actorID, wishlistID uuid.UUID) (string, error)
	Join(ctx context.Context, actorID uuid.UUID, inviteCode string) (*types.Wishlist, error)
}

type wishlistService struct {
	db            *gorm.DB
	log           *logger.Logger
	wishlistRepo  repos.WishlistRepo
	productRepo   repos.ProductRepo
	bucketService BucketService
}

func NewWishlistService(
	db *gorm.DB,
	log *logger.Logger,
	wishlistRepo repos.WishlistRepo,
	productRepo repos.ProductRepo,
	bucketService BucketService,
) WishlistService {
	serviceLog := log.With("service", "WishlistService")
	return &wishlistService{
		db:            db,
		log:           serviceLog,
		wishlistRepo:  wishlistRepo,
		productRepo:   productRepo,
		bucketService: bucketService,
	}
}

func (ws *wishlistService) Create(ctx context.Context, actorID uuid.UUID, in WishlistCreate) (*types.Wishlist, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.New(apperr.KindValidation, "a title is required")
	}
	wishlist := &types.Wishlist{
		ID:          uuid.New(),
		OwnerID:     actorID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		IsPublic:    in.IsPublic,
		Tags:        datatypes.NewJSONSlice(in.Tags),
	}
	// Public wishlists get their invite code eagerly so the share link
	// exists from the first response.
	if in.IsPublic {
		code, err := NewInviteCode()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUnexpected, "failed to generate invite code", err)
		}
		wishlist.InviteCode = &code
	}
	if _, err := ws.wishlistRepo.Create(ctx, nil, []*types.Wishlist{wishlist}); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Wrap(apperr.KindConflict, "invite code collision, retry the request", err)
		}
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to create wishlist", err)
	}
	return wishlist, nil
}

func (ws *wishlistService) Get(ctx context.Context, actorID, wishlistID uuid.UUID) (*types.Wishlist, error) {
	wishlist, err := ws.loadWishlist(ctx, nil, wishlistID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(wishlist, actorID) {
		return nil, apperr.New(apperr.KindAuthorization, "you do not have access to this wishlist")
	}
	return wishlist, nil
}

func (ws *wishlistService) ListForUser(ctx context.Context, actorID uuid.UUID) ([]*types.Wishlist, error) {
	wishlists, err := ws.wishlistRepo.ListForUser(ctx, nil, actorID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to list wishlists", err)
	}
	return wishlists, nil
}

func (ws *wishlistService) Update(ctx context.Context, actorID, wishlistID uuid.UUID, in WishlistUpdate) (*types.Wishlist, error) {
	var updated *types.Wishlist
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wishlist, err := ws.loadWishlist(ctx, tx, wishlistID)
		if err != nil {
			return err
		}
		if !access.CanMutateWishlist(wishlist, actorID) {
			return apperr.New(apperr.KindAuthorization, "you cannot modify this wishlist")
		}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apperr.New(apperr.KindValidation, "title cannot be empty")
			}
			wishlist.Title = title
		}
		if in.Description != nil {
			wishlist.Description = strings.TrimSpace(*in.Description)
		}
		if in.Tags != nil {
			wishlist.Tags = datatypes.NewJSONSlice(in.Tags)
		}
		if in.IsPublic != nil {
			wishlist.IsPublic = *in.IsPublic
			// First flip to public mints the invite code lazily.
			if wishlist.IsPublic && wishlist.InviteCode == nil {
				code, cErr := NewInviteCode()
				if cErr != nil {
					return apperr.Wrap(apperr.KindUnexpected, "failed to generate invite code", cErr)
				}
				wishlist.InviteCode = &code
			}
		}
		if err := ws.wishlistRepo.Update(ctx, tx, wishlist); err != nil {
			if isUniqueViolation(err) {
				return apperr.Wrap(apperr.KindConflict, "invite code collision, retry the request", err)
			}
			return apperr.Wrap(apperr.KindUnexpected, "failed to update wishlist", err)
		}
		updated = wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (ws *wishlistService) Delete(ctx context.Context, actorID, wishlistID uuid.UUID) error {
	wishlist, err := ws.loadWishlist(ctx, nil, wishlistID)
	if err != nil {
		return err
	}
	if !access.CanDeleteWishlist(wishlist, actorID) {
		return apperr.New(apperr.KindAuthorization, "only the owner can delete a wishlist")
	}

	products, err := ws.productRepo.ListByWishlistID(ctx, nil, wishlistID)
	if err != nil {
		return apperr.Wrap(apperr.KindUnexpected, "failed to load products for cascade delete", err)
	}

	err = ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ws.productRepo.DeleteByWishlistID(ctx, tx, wishlistID); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to delete wishlist products", err)
		}
		if err := ws.wishlistRepo.Delete(ctx, tx, wishlistID); err != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to delete wishlist", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Best-effort cleanup of stored product images, bounded-parallel.
	// Failures orphan objects in the bucket, never the delete itself.
	if ws.bucketService != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, p := range products {
			key := p.ImageBucketKey
			if key == "" {
				key = ws.bucketService.DeriveKeyFromURL(p.ImageURL)
			}
			if key == "" {
				continue
			}
			g.Go(func() error {
				if dErr := ws.bucketService.DeleteFile(gctx, key); dErr != nil {
					ws.log.Warn("Failed to delete product image during cascade", "key", key, "error", dErr)
				}
				return nil
			})
		}
		_ = g.Wait()
	}
	return nil
}

func (ws *wishlistService) GenerateInvite(ctx context.Context, actorID, wishlistID uuid.UUID) (string, error) {
	var code string
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wishlist, err := ws.loadWishlist(ctx, tx, wishlistID)
		if err != nil {
			return err
		}
		if !access.CanManageInvite(wishlist, actorID) {
			return apperr.New(apperr.KindAuthorization, "you cannot manage invites for this wishlist")
		}
		newCode, cErr := NewInviteCode()
		if cErr != nil {
			return apperr.Wrap(apperr.KindUnexpected, "failed to generate invite code", cErr)
		}
		wishlist.InviteCode = &newCode
		if err := ws.wishlistRepo.Update(ctx, tx, wishlist); err != nil {
			if isUniqueViolation(err) {
				return apperr.Wrap(apperr.KindConflict, "invite code collision, retry the request", err)
			}
			return apperr.Wrap(apperr.KindUnexpected, "failed to store invite code", err)
		}
		code = newCode
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (ws *wishlistService) Join(ctx context.Context, actorID uuid.UUID, inviteCode string) (*types.Wishlist, error) {
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, apperr.New(apperr.KindValidation, "an invite code is required")
	}

	var joined *types.Wishlist
	err := ws.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wishlist, err := ws.wishlistRepo.GetByInviteCode(ctx, tx, inviteCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.KindNotFound, "no wishlist matches this invite code")
			}
			return apperr.Wrap(apperr.KindUnexpected, "failed to resolve invite code", err)
		}
		if wishlist.OwnerID == actorID {
			return apperr.New(apperr.KindConflict, "you already own this wishlist")
		}
		for i := range wishlist.Collaborators {
			if wishlist.Collaborators[i].UserID == actorID {
				return apperr.New(apperr.KindConflict, "you already collaborate on this wishlist")
			}
		}
		collaborator := &types.WishlistCollaborator{
			ID:         uuid.New(),
			WishlistID: wishlist.ID,
			UserID:     actorID,
			Role:       types.RoleEditor,
			JoinedAt:   time.Now(),
		}
		if err := ws.wishlistRepo.AddCollaborator(ctx, tx, collaborator); err != nil {
			if isUniqueViolation(err) {
				return apperr.New(apperr.KindConflict, "you already collaborate on this wishlist")
			}
			return apperr.Wrap(apperr.KindUnexpected, "failed to add collaborator", err)
		}
		wishlist.Collaborators = append(wishlist.Collaborators, *collaborator)
		joined = wishlist
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

func (ws *wishlistService) loadWishlist(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (*types.Wishlist, error) {
	wishlist, err := ws.wishlistRepo.GetByID(ctx, tx, wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "wishlist not found")
		}
		return nil, apperr.Wrap(apperr.KindUnexpected, "failed to load wishlist", err)
	}
	return wishlist, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
