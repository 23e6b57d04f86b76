package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/types"
)

func wishlistWith(ownerID uuid.UUID, isPublic bool, collabs ...types.WishlistCollaborator) *types.Wishlist {
	return &types.Wishlist{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		IsPublic:      isPublic,
		Collaborators: collabs,
	}
}

func collab(userID uuid.UUID, role types.CollaboratorRole) types.WishlistCollaborator {
	return types.WishlistCollaborator{UserID: userID, Role: role}
}

func TestCanViewOwner(t *testing.T) {
	owner := uuid.New()
	w := wishlistWith(owner, false)
	if !CanView(w, owner) {
		t.Fatalf("CanView: owner denied on private wishlist")
	}
}

func TestCanViewCollaboratorAnyRole(t *testing.T) {
	owner := uuid.New()
	for _, role := range []types.CollaboratorRole{types.RoleViewer, types.RoleEditor, types.RoleAdmin} {
		actor := uuid.New()
		w := wishlistWith(owner, false, collab(actor, role))
		if !CanView(w, actor) {
			t.Fatalf("CanView: %s collaborator denied", role)
		}
	}
}

func TestCanViewPublic(t *testing.T) {
	w := wishlistWith(uuid.New(), true)
	if !CanView(w, uuid.New()) {
		t.Fatalf("CanView: stranger denied on public wishlist")
	}
}

func TestCanViewStrangerPrivate(t *testing.T) {
	w := wishlistWith(uuid.New(), false)
	if CanView(w, uuid.New()) {
		t.Fatalf("CanView: stranger allowed on private wishlist")
	}
}

func TestCanAddProductRoles(t *testing.T) {
	owner := uuid.New()
	viewer := uuid.New()
	editor := uuid.New()
	admin := uuid.New()
	stranger := uuid.New()
	w := wishlistWith(owner, true,
		collab(viewer, types.RoleViewer),
		collab(editor, types.RoleEditor),
		collab(admin, types.RoleAdmin),
	)

	cases := []struct {
		name  string
		actor uuid.UUID
		want  bool
	}{
		{"owner", owner, true},
		{"viewer", viewer, false},
		{"editor", editor, true},
		{"admin", admin, true},
		{"stranger on public", stranger, false},
	}
	for _, tc := range cases {
		if got := CanAddProduct(w, tc.actor); got != tc.want {
			t.Fatalf("CanAddProduct(%s): want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestCanEditProductCreatorAlwaysQualifies(t *testing.T) {
	owner := uuid.New()
	creator := uuid.New()
	// Creator holds only viewer role, which cannot add, but can still edit
	// their own product.
	w := wishlistWith(owner, false, collab(creator, types.RoleViewer))
	p := &types.Product{CreatorID: creator, WishlistID: w.ID}

	if CanAddProduct(w, creator) {
		t.Fatalf("CanAddProduct: viewer should not add")
	}
	if !CanEditProduct(w, p, creator) {
		t.Fatalf("CanEditProduct: creator denied")
	}
}

func TestCanDeleteProductRoleAsymmetry(t *testing.T) {
	owner := uuid.New()
	editor := uuid.New()
	admin := uuid.New()
	creator := uuid.New()
	w := wishlistWith(owner, false,
		collab(editor, types.RoleEditor),
		collab(admin, types.RoleAdmin),
	)
	p := &types.Product{CreatorID: creator, WishlistID: w.ID}

	// Editors can add and edit but not delete another user's product.
	if !CanAddProduct(w, editor) {
		t.Fatalf("CanAddProduct: editor denied")
	}
	if !CanEditProduct(w, p, editor) {
		t.Fatalf("CanEditProduct: editor denied")
	}
	if CanDeleteProduct(w, p, editor) {
		t.Fatalf("CanDeleteProduct: editor allowed")
	}
	if !CanDeleteProduct(w, p, admin) {
		t.Fatalf("CanDeleteProduct: admin denied")
	}
	if !CanDeleteProduct(w, p, owner) {
		t.Fatalf("CanDeleteProduct: owner denied")
	}
	if !CanDeleteProduct(w, p, creator) {
		t.Fatalf("CanDeleteProduct: creator denied")
	}
}

func TestCanMutateAndDeleteWishlist(t *testing.T) {
	owner := uuid.New()
	admin := uuid.New()
	editor := uuid.New()
	w := wishlistWith(owner, false,
		collab(admin, types.RoleAdmin),
		collab(editor, types.RoleEditor),
	)

	if !CanMutateWishlist(w, owner) || !CanMutateWishlist(w, admin) {
		t.Fatalf("CanMutateWishlist: owner/admin denied")
	}
	if CanMutateWishlist(w, editor) {
		t.Fatalf("CanMutateWishlist: editor allowed")
	}
	if !CanDeleteWishlist(w, owner) {
		t.Fatalf("CanDeleteWishlist: owner denied")
	}
	if CanDeleteWishlist(w, admin) {
		t.Fatalf("CanDeleteWishlist: admin allowed")
	}
	if CanManageInvite(w, editor) {
		t.Fatalf("CanManageInvite: editor allowed")
	}
	if !CanManageInvite(w, admin) {
		t.Fatalf("CanManageInvite: admin denied")
	}
}
