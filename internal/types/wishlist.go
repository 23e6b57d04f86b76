package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CollaboratorRole string

const (
	RoleViewer CollaboratorRole = "viewer"
	RoleEditor CollaboratorRole = "editor"
	RoleAdmin  CollaboratorRole = "admin"
)

func (r CollaboratorRole) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

type Wishlist struct {
	ID            uuid.UUID                  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID       uuid.UUID                  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner         *User                      `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	Title         string                     `gorm:"column:title;not null" json:"title"`
	Description   string                     `gorm:"column:description" json:"description"`
	IsPublic      bool                       `gorm:"column:is_public;not null;default:false" json:"is_public"`
	InviteCode    *string                    `gorm:"column:invite_code;uniqueIndex" json:"invite_code,omitempty"`
	Tags          datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	TotalValue    float64                    `gorm:"column:total_value;not null;default:0" json:"total_value"`
	Collaborators []WishlistCollaborator     `gorm:"foreignKey:WishlistID;references:ID" json:"collaborators,omitempty"`
	Products      []Product                  `gorm:"foreignKey:WishlistID;references:ID" json:"products,omitempty"`
	CreatedAt     time.Time                  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time                  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Wishlist) TableName() string {
	return "wishlist"
}

type WishlistCollaborator struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WishlistID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_collaborator" json:"wishlist_id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_collaborator" json:"user_id"`
	User       *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role       CollaboratorRole `gorm:"column:role;not null;default:'editor'" json:"role"`
	JoinedAt   time.Time        `gorm:"column:joined_at;not null;default:now()" json:"joined_at"`
}

func (WishlistCollaborator) TableName() string {
	return "wishlist_collaborator"
}
