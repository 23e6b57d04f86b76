// Package access holds the authorization predicates for wishlists and
// products. Every predicate is a pure function over a freshly loaded
// wishlist snapshot (collaborators preloaded) and the acting user's id;
// results are never cached across requests.
package access

import (
	"github.com/google/uuid"

	"github.com/yungbote/wishlink-backend/internal/types"
)

func collaboratorRole(w *types.Wishlist, actorID uuid.UUID) (types.CollaboratorRole, bool) {
	for i := range w.Collaborators {
		if w.Collaborators[i].UserID == actorID {
			return w.Collaborators[i].Role, true
		}
	}
	return "", false
}

// CanView reports whether the actor may read the wishlist and its products:
// owner, any collaborator, or anyone when the wishlist is public.
func CanView(w *types.Wishlist, actorID uuid.UUID) bool {
	if w.OwnerID == actorID {
		return true
	}
	if _, ok := collaboratorRole(w, actorID); ok {
		return true
	}
	return w.IsPublic
}

// CanAddProduct reports whether the actor may create products on the
// wishlist: owner, or collaborator with editor or admin role.
func CanAddProduct(w *types.Wishlist, actorID uuid.UUID) bool {
	if w.OwnerID == actorID {
		return true
	}
	role, ok := collaboratorRole(w, actorID)
	return ok && (role == types.RoleEditor || role == types.RoleAdmin)
}

// CanEditProduct extends CanAddProduct: the product's original creator
// always qualifies, regardless of collaborator role.
func CanEditProduct(w *types.Wishlist, p *types.Product, actorID uuid.UUID) bool {
	if p.CreatorID == actorID {
		return true
	}
	return CanAddProduct(w, actorID)
}

// CanDeleteProduct is deliberately stricter than edit: owner, product
// creator, or admin collaborator. Editor role is insufficient.
func CanDeleteProduct(w *types.Wishlist, p *types.Product, actorID uuid.UUID) bool {
	if w.OwnerID == actorID {
		return true
	}
	if p.CreatorID == actorID {
		return true
	}
	role, ok := collaboratorRole(w, actorID)
	return ok && role == types.RoleAdmin
}

// CanMutateWishlist covers title/description/visibility/tags changes:
// owner or admin collaborator.
func CanMutateWishlist(w *types.Wishlist, actorID uuid.UUID) bool {
	if w.OwnerID == actorID {
		return true
	}
	role, ok := collaboratorRole(w, actorID)
	return ok && role == types.RoleAdmin
}

// CanDeleteWishlist is the owner's sole authority; admin collaborators
// cannot delete.
func CanDeleteWishlist(w *types.Wishlist, actorID uuid.UUID) bool {
	return w.OwnerID == actorID
}

// CanManageInvite matches CanMutateWishlist.
func CanManageInvite(w *types.Wishlist, actorID uuid.UUID) bool {
	return CanMutateWishlist(w, actorID)
}
