package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/logger"
	"github.com/yungbote/wishlink-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

type fakeWishlistRepo struct {
	createFn          func(ctx context.Context, tx *gorm.DB, wishlists []*types.Wishlist) ([]*types.Wishlist, error)
	getByIDFn         func(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (*types.Wishlist, error)
	getByInviteCodeFn func(ctx context.Context, tx *gorm.DB, inviteCode string) (*types.Wishlist, error)
	listForUserFn     func(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Wishlist, error)
	updateFn          func(ctx context.Context, tx *gorm.DB, wishlist *types.Wishlist) error
	deleteFn          func(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error
	addCollaboratorFn func(ctx context.Context, tx *gorm.DB, collaborator *types.WishlistCollaborator) error
	recomputeFn       func(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (float64, error)
}

func (f *fakeWishlistRepo) Create(ctx context.Context, tx *gorm.DB, wishlists []*types.Wishlist) ([]*types.Wishlist, error) {
	if f.createFn == nil {
		return wishlists, nil
	}
	return f.createFn(ctx, tx, wishlists)
}

func (f *fakeWishlistRepo) GetByID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (*types.Wishlist, error) {
	if f.getByIDFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, tx, wishlistID)
}

func (f *fakeWishlistRepo) GetByInviteCode(ctx context.Context, tx *gorm.DB, inviteCode string) (*types.Wishlist, error) {
	if f.getByInviteCodeFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.getByInviteCodeFn(ctx, tx, inviteCode)
}

func (f *fakeWishlistRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Wishlist, error) {
	if f.listForUserFn == nil {
		return nil, nil
	}
	return f.listForUserFn(ctx, tx, userID)
}

func (f *fakeWishlistRepo) Update(ctx context.Context, tx *gorm.DB, wishlist *types.Wishlist) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, tx, wishlist)
}

func (f *fakeWishlistRepo) Delete(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, tx, wishlistID)
}

func (f *fakeWishlistRepo) AddCollaborator(ctx context.Context, tx *gorm.DB, collaborator *types.WishlistCollaborator) error {
	if f.addCollaboratorFn == nil {
		return nil
	}
	return f.addCollaboratorFn(ctx, tx, collaborator)
}

func (f *fakeWishlistRepo) RecomputeTotalValue(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) (float64, error) {
	if f.recomputeFn == nil {
		return 0, nil
	}
	return f.recomputeFn(ctx, tx, wishlistID)
}

type fakeProductRepo struct {
	createFn                 func(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error)
	getByIDFn                func(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
	listByWishlistIDFn       func(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) ([]*types.Product, error)
	updateFn                 func(ctx context.Context, tx *gorm.DB, product *types.Product) error
	deleteByIDsFn            func(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error
	deleteByWishlistIDFn     func(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error
	addCommentFn             func(ctx context.Context, tx *gorm.DB, comment *types.ProductComment) error
	getReactionByAuthorFn    func(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) (*types.ProductReaction, error)
	addReactionFn            func(ctx context.Context, tx *gorm.DB, reaction *types.ProductReaction) error
	deleteReactionByAuthorFn func(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) error
}

func (f *fakeProductRepo) Create(ctx context.Context, tx *gorm.DB, products []*types.Product) ([]*types.Product, error) {
	if f.createFn == nil {
		return products, nil
	}
	return f.createFn(ctx, tx, products)
}

func (f *fakeProductRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	if f.getByIDFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.getByIDFn(ctx, tx, productID)
}

func (f *fakeProductRepo) ListByWishlistID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) ([]*types.Product, error) {
	if f.listByWishlistIDFn == nil {
		return nil, nil
	}
	return f.listByWishlistIDFn(ctx, tx, wishlistID)
}

func (f *fakeProductRepo) Update(ctx context.Context, tx *gorm.DB, product *types.Product) error {
	if f.updateFn == nil {
		return nil
	}
	return f.updateFn(ctx, tx, product)
}

func (f *fakeProductRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) error {
	if f.deleteByIDsFn == nil {
		return nil
	}
	return f.deleteByIDsFn(ctx, tx, productIDs)
}

func (f *fakeProductRepo) DeleteByWishlistID(ctx context.Context, tx *gorm.DB, wishlistID uuid.UUID) error {
	if f.deleteByWishlistIDFn == nil {
		return nil
	}
	return f.deleteByWishlistIDFn(ctx, tx, wishlistID)
}

func (f *fakeProductRepo) AddComment(ctx context.Context, tx *gorm.DB, comment *types.ProductComment) error {
	if f.addCommentFn == nil {
		return nil
	}
	return f.addCommentFn(ctx, tx, comment)
}

func (f *fakeProductRepo) GetReactionByAuthor(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) (*types.ProductReaction, error) {
	if f.getReactionByAuthorFn == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.getReactionByAuthorFn(ctx, tx, productID, authorID)
}

func (f *fakeProductRepo) AddReaction(ctx context.Context, tx *gorm.DB, reaction *types.ProductReaction) error {
	if f.addReactionFn == nil {
		return nil
	}
	return f.addReactionFn(ctx, tx, reaction)
}

func (f *fakeProductRepo) DeleteReactionByAuthor(ctx context.Context, tx *gorm.DB, productID, authorID uuid.UUID) error {
	if f.deleteReactionByAuthorFn == nil {
		return nil
	}
	return f.deleteReactionByAuthorFn(ctx, tx, productID, authorID)
}

func TestNewInviteCode_Format(t *testing.T) {
	code, err := NewInviteCode()
	if err != nil {
		t.Fatalf("NewInviteCode failed: %v", err)
	}
	if len(code) != 32 {
		t.Fatalf("expected 32-character code, got %d: %q", len(code), code)
	}
	if _, err := hex.DecodeString(code); err != nil {
		t.Fatalf("expected hex-encoded code, got %q: %v", code, err)
	}
}

func TestNewInviteCode_NoCollisionsInSample(t *testing.T) {
	seen := make(map[string]bool, 5000)
	for i := 0; i < 5000; i++ {
		code, err := NewInviteCode()
		if err != nil {
			t.Fatalf("NewInviteCode failed on iteration %d: %v", i, err)
		}
		if seen[code] {
			t.Fatalf("duplicate invite code in sample: %q", code)
		}
		seen[code] = true
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: true},
		{name: "wrapped duplicated key", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "pg message", err: errors.New(`ERROR: duplicate key value violates unique constraint "idx_wishlists_invite_code"`), want: true},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: isUniqueViolation=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestWishlistCreate_RequiresTitle(t *testing.T) {
	log := testLogger(t)
	svc := NewWishlistService(nil, log, &fakeWishlistRepo{}, &fakeProductRepo{}, nil)

	_, err := svc.Create(context.Background(), uuid.New(), WishlistCreate{Title: "   "})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWishlistCreate_PublicGetsInviteCodeEagerly(t *testing.T) {
	log := testLogger(t)
	svc := NewWishlistService(nil, log, &fakeWishlistRepo{}, &fakeProductRepo{}, nil)

	owner := uuid.New()
	wishlist, err := svc.Create(context.Background(), owner, WishlistCreate{Title: "Birthday", IsPublic: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if wishlist.InviteCode == nil || len(*wishlist.InviteCode) != 32 {
		t.Fatalf("expected eager invite code on public wishlist, got %v", wishlist.InviteCode)
	}
	if wishlist.OwnerID != owner {
		t.Fatalf("expected owner %s, got %s", owner, wishlist.OwnerID)
	}
}

func TestWishlistCreate_PrivateHasNoInviteCode(t *testing.T) {
	log := testLogger(t)
	svc := NewWishlistService(nil, log, &fakeWishlistRepo{}, &fakeProductRepo{}, nil)

	wishlist, err := svc.Create(context.Background(), uuid.New(), WishlistCreate{Title: "Secret"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if wishlist.InviteCode != nil {
		t.Fatalf("expected no invite code on private wishlist, got %q", *wishlist.InviteCode)
	}
}

func TestWishlistGet_DeniesStrangerOnPrivate(t *testing.T) {
	log := testLogger(t)
	owner := uuid.New()
	wishlistID := uuid.New()
	repo := &fakeWishlistRepo{
		getByIDFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Wishlist, error) {
			return &types.Wishlist{ID: wishlistID, OwnerID: owner, Title: "Private"}, nil
		},
	}
	svc := NewWishlistService(nil, log, repo, &fakeProductRepo{}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), wishlistID)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestWishlistGet_AllowsAnyUserOnPublic(t *testing.T) {
	log := testLogger(t)
	owner := uuid.New()
	wishlistID := uuid.New()
	repo := &fakeWishlistRepo{
		getByIDFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Wishlist, error) {
			return &types.Wishlist{ID: wishlistID, OwnerID: owner, Title: "Public", IsPublic: true}, nil
		},
	}
	svc := NewWishlistService(nil, log, repo, &fakeProductRepo{}, nil)

	wishlist, err := svc.Get(context.Background(), uuid.New(), wishlistID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if wishlist.ID != wishlistID {
		t.Fatalf("expected wishlist %s, got %s", wishlistID, wishlist.ID)
	}
}

func TestWishlistDelete_AdminCollaboratorDenied(t *testing.T) {
	log := testLogger(t)
	owner := uuid.New()
	admin := uuid.New()
	wishlistID := uuid.New()
	repo := &fakeWishlistRepo{
		getByIDFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Wishlist, error) {
			return &types.Wishlist{
				ID:      wishlistID,
				OwnerID: owner,
				Title:   "Shared",
				Collaborators: []types.WishlistCollaborator{
					{WishlistID: wishlistID, UserID: admin, Role: types.RoleAdmin},
				},
			}, nil
		},
	}
	svc := NewWishlistService(nil, log, repo, &fakeProductRepo{}, nil)

	err := svc.Delete(context.Background(), admin, wishlistID)
	if apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("expected authorization error for admin collaborator, got %v", err)
	}
}

func TestWishlistGet_MapsMissingToNotFound(t *testing.T) {
	log := testLogger(t)
	svc := NewWishlistService(nil, log, &fakeWishlistRepo{}, &fakeProductRepo{}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}
