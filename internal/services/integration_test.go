package services

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/wishlink-backend/internal/apperr"
	"github.com/yungbote/wishlink-backend/internal/repos"
	"github.com/yungbote/wishlink-backend/internal/sse"
	"github.com/yungbote/wishlink-backend/internal/types"
)

// openTestDB connects to the database named by TEST_POSTGRES_DSN and
// resets the schema. Tests that need a real database skip when the env
// var is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping database-backed test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		t.Fatalf("failed to ensure uuid-ossp extension: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Wishlist{},
		&types.WishlistCollaborator{},
		&types.Product{},
		&types.ProductComment{},
		&types.ProductReaction{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	for _, table := range []string{
		"product_reaction", "product_comment", "product",
		"wishlist_collaborator", "wishlist", "user_token", "user",
	} {
		if err := db.Exec(`DELETE FROM "` + table + `"`).Error; err != nil {
			t.Fatalf("failed to reset table %s: %v", table, err)
		}
	}
	return db
}

type serviceEnv struct {
	db              *gorm.DB
	userRepo        repos.UserRepo
	wishlistRepo    repos.WishlistRepo
	productRepo     repos.ProductRepo
	wishlistService WishlistService
	productService  ProductService
	notifier        *recordingNotifier
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db := openTestDB(t)
	log := testLogger(t)
	userRepo := repos.NewUserRepo(db, log)
	wishlistRepo := repos.NewWishlistRepo(db, log)
	productRepo := repos.NewProductRepo(db, log)
	notifier := &recordingNotifier{}
	return &serviceEnv{
		db:              db,
		userRepo:        userRepo,
		wishlistRepo:    wishlistRepo,
		productRepo:     productRepo,
		wishlistService: NewWishlistService(db, log, wishlistRepo, productRepo, nil),
		productService:  NewProductService(db, log, wishlistRepo, productRepo, nil, notifier),
		notifier:        notifier,
	}
}

func (env *serviceEnv) createUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	user := &types.User{
		ID:       uuid.New(),
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "not-a-real-hash",
	}
	if _, err := env.userRepo.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user.ID
}

func TestTotalValueTracksProductLifecycle(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner")

	wishlist, err := env.wishlistService.Create(ctx, owner, WishlistCreate{Title: "Birthday"})
	if err != nil {
		t.Fatalf("Create wishlist failed: %v", err)
	}

	price10, price25 := 10.0, 25.0
	if _, err := env.productService.Create(ctx, owner, ProductCreate{WishlistID: wishlist.ID, Name: "Socks", Price: &price10}); err != nil {
		t.Fatalf("Create product failed: %v", err)
	}
	if _, err := env.productService.Create(ctx, owner, ProductCreate{WishlistID: wishlist.ID, Name: "Mystery gift"}); err != nil {
		t.Fatalf("Create priceless product failed: %v", err)
	}
	expensive, err := env.productService.Create(ctx, owner, ProductCreate{WishlistID: wishlist.ID, Name: "Headphones", Price: &price25})
	if err != nil {
		t.Fatalf("Create product failed: %v", err)
	}

	got, err := env.wishlistService.Get(ctx, owner, wishlist.ID)
	if err != nil {
		t.Fatalf("Get wishlist failed: %v", err)
	}
	if got.TotalValue != 35 {
		t.Fatalf("expected total value 35, got %v", got.TotalValue)
	}

	if err := env.productService.Delete(ctx, owner, expensive.ID); err != nil {
		t.Fatalf("Delete product failed: %v", err)
	}
	got, err = env.wishlistService.Get(ctx, owner, wishlist.ID)
	if err != nil {
		t.Fatalf("Get wishlist failed: %v", err)
	}
	if got.TotalValue != 10 {
		t.Fatalf("expected total value 10 after delete, got %v", got.TotalValue)
	}
}

func TestJoinByInviteCode(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner")
	friend := env.createUser(t, "friend")

	wishlist, err := env.wishlistService.Create(ctx, owner, WishlistCreate{Title: "Wedding", IsPublic: true})
	if err != nil {
		t.Fatalf("Create wishlist failed: %v", err)
	}
	if wishlist.InviteCode == nil {
		t.Fatalf("expected invite code on public wishlist")
	}

	if _, err := env.wishlistService.Join(ctx, owner, *wishlist.InviteCode); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict when owner joins own wishlist, got %v", err)
	}

	joined, err := env.wishlistService.Join(ctx, friend, *wishlist.InviteCode)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	foundEditor := false
	for _, collab := range joined.Collaborators {
		if collab.UserID == friend && collab.Role == types.RoleEditor {
			foundEditor = true
		}
	}
	if !foundEditor {
		t.Fatalf("expected friend joined as editor, collaborators: %+v", joined.Collaborators)
	}

	if _, err := env.wishlistService.Join(ctx, friend, *wishlist.InviteCode); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on second join, got %v", err)
	}

	if _, err := env.wishlistService.Join(ctx, friend, "ffffffffffffffffffffffffffffffff"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found for unknown code, got %v", err)
	}
}

func TestInviteRotationInvalidatesOldCode(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner")
	friend := env.createUser(t, "friend")

	wishlist, err := env.wishlistService.Create(ctx, owner, WishlistCreate{Title: "Housewarming", IsPublic: true})
	if err != nil {
		t.Fatalf("Create wishlist failed: %v", err)
	}
	oldCode := *wishlist.InviteCode

	newCode, err := env.wishlistService.GenerateInvite(ctx, owner, wishlist.ID)
	if err != nil {
		t.Fatalf("GenerateInvite failed: %v", err)
	}
	if newCode == oldCode {
		t.Fatalf("expected rotation to mint a new code")
	}

	if _, err := env.wishlistService.Join(ctx, friend, oldCode); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected old code to be invalid after rotation, got %v", err)
	}
	if _, err := env.wishlistService.Join(ctx, friend, newCode); err != nil {
		t.Fatalf("Join with rotated code failed: %v", err)
	}
}

func TestReactionReplaceAndIdempotentRemove(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner")

	wishlist, err := env.wishlistService.Create(ctx, owner, WishlistCreate{Title: "Birthday"})
	if err != nil {
		t.Fatalf("Create wishlist failed: %v", err)
	}
	product, err := env.productService.Create(ctx, owner, ProductCreate{WishlistID: wishlist.ID, Name: "Socks"})
	if err != nil {
		t.Fatalf("Create product failed: %v", err)
	}

	if _, err := env.productService.AddReaction(ctx, owner, product.ID, "❤️"); err != nil {
		t.Fatalf("AddReaction failed: %v", err)
	}
	if _, err := env.productService.AddReaction(ctx, owner, product.ID, "👍"); err != nil {
		t.Fatalf("Replacing reaction failed: %v", err)
	}

	reaction, err := env.productRepo.GetReactionByAuthor(ctx, nil, product.ID, owner)
	if err != nil {
		t.Fatalf("GetReactionByAuthor failed: %v", err)
	}
	if reaction.Emoji != "👍" {
		t.Fatalf("expected latest reaction 👍, got %q", reaction.Emoji)
	}

	loaded, err := env.productRepo.GetByID(ctx, nil, product.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(loaded.Reactions) != 1 {
		t.Fatalf("expected exactly one reaction per author, got %d", len(loaded.Reactions))
	}

	if err := env.productService.RemoveReaction(ctx, owner, product.ID); err != nil {
		t.Fatalf("RemoveReaction failed: %v", err)
	}
	if err := env.productService.RemoveReaction(ctx, owner, product.ID); err != nil {
		t.Fatalf("expected second RemoveReaction to succeed, got %v", err)
	}

	reactionEvents := 0
	for _, e := range env.notifier.events {
		if e == sse.SSEEventReactionAdded {
			reactionEvents++
		}
	}
	if reactionEvents != 2 {
		t.Fatalf("expected 2 reaction-added events, got %d", reactionEvents)
	}
}

func TestEditorRoleAsymmetry(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner")
	editor := env.createUser(t, "editor")

	wishlist, err := env.wishlistService.Create(ctx, owner, WishlistCreate{Title: "Shared", IsPublic: true})
	if err != nil {
		t.Fatalf("Create wishlist failed: %v", err)
	}
	if _, err := env.wishlistService.Join(ctx, editor, *wishlist.InviteCode); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	ownerProduct, err := env.productService.Create(ctx, owner, ProductCreate{WishlistID: wishlist.ID, Name: "Owner pick"})
	if err != nil {
		t.Fatalf("Create owner product failed: %v", err)
	}
	editorProduct, err := env.productService.Create(ctx, editor, ProductCreate{WishlistID: wishlist.ID, Name: "Editor pick"})
	if err != nil {
		t.Fatalf("expected editor to add products, got %v", err)
	}

	newName := "Renamed by editor"
	if _, err := env.productService.Update(ctx, editor, ownerProduct.ID, ProductUpdate{Name: &newName}); err != nil {
		t.Fatalf("expected editor to edit any product, got %v", err)
	}

	if err := env.productService.Delete(ctx, editor, ownerProduct.ID); apperr.KindOf(err) != apperr.KindAuthorization {
		t.Fatalf("expected editor denied deleting another's product, got %v", err)
	}
	if err := env.productService.Delete(ctx, editor, editorProduct.ID); err != nil {
		t.Fatalf("expected editor to delete own product, got %v", err)
	}
	if err := env.productService.Delete(ctx, owner, ownerProduct.ID); err != nil {
		t.Fatalf("expected owner to delete any product, got %v", err)
	}
}

func TestWishlistDeleteCascades(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "owner")
	friend := env.createUser(t, "friend")

	wishlist, err := env.wishlistService.Create(ctx, owner, WishlistCreate{Title: "Doomed", IsPublic: true})
	if err != nil {
		t.Fatalf("Create wishlist failed: %v", err)
	}
	if _, err := env.wishlistService.Join(ctx, friend, *wishlist.InviteCode); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	product, err := env.productService.Create(ctx, owner, ProductCreate{WishlistID: wishlist.ID, Name: "Socks"})
	if err != nil {
		t.Fatalf("Create product failed: %v", err)
	}
	if _, err := env.productService.AddComment(ctx, friend, product.ID, "nice"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := env.productService.AddReaction(ctx, friend, product.ID, "🎉"); err != nil {
		t.Fatalf("AddReaction failed: %v", err)
	}

	if err := env.wishlistService.Delete(ctx, owner, wishlist.ID); err != nil {
		t.Fatalf("Delete wishlist failed: %v", err)
	}

	if _, err := env.wishlistService.Get(ctx, owner, wishlist.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected wishlist gone, got %v", err)
	}
	products, err := env.productRepo.ListByWishlistID(ctx, nil, wishlist.ID)
	if err != nil {
		t.Fatalf("ListByWishlistID failed: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected no products after cascade, got %d", len(products))
	}
	var commentCount int64
	if err := env.db.Model(&types.ProductComment{}).Where("product_id = ?", product.ID).Count(&commentCount).Error; err != nil {
		t.Fatalf("count comments failed: %v", err)
	}
	if commentCount != 0 {
		t.Fatalf("expected no comments after cascade, got %d", commentCount)
	}
}
