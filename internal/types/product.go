package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProductPriority string

const (
	PriorityLow    ProductPriority = "low"
	PriorityMedium ProductPriority = "medium"
	PriorityHigh   ProductPriority = "high"
)

func (p ProductPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ProductStatus string

const (
	StatusWanted      ProductStatus = "wanted"
	StatusPurchased   ProductStatus = "purchased"
	StatusUnavailable ProductStatus = "unavailable"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusWanted, StatusPurchased, StatusUnavailable:
		return true
	}
	return false
}

// AllowedReactions is the closed emoji set accepted on products.
var AllowedReactions = []string{"❤️", "👍", "👎", "🎉", "😍", "😂", "😮", "🙏"}

func ReactionAllowed(emoji string) bool {
	for _, e := range AllowedReactions {
		if e == emoji {
			return true
		}
	}
	return false
}

const MaxCommentLength = 500

type Product struct {
	ID             uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	WishlistID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"wishlist_id"`
	Wishlist       *Wishlist                   `gorm:"constraint:OnDelete:CASCADE;foreignKey:WishlistID;references:ID" json:"wishlist,omitempty"`
	CreatorID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"creator_id"`
	Creator        *User                       `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
	Name           string                      `gorm:"column:name;not null" json:"name"`
	Description    string                      `gorm:"column:description" json:"description"`
	Price          *float64                    `gorm:"column:price" json:"price,omitempty"`
	Currency       string                      `gorm:"column:currency;default:'USD'" json:"currency"`
	ImageBucketKey string                      `gorm:"column:image_bucket_key" json:"-"`
	ImageURL       string                      `gorm:"column:image_url" json:"image_url"`
	ProductURL     string                      `gorm:"column:product_url" json:"product_url"`
	Category       string                      `gorm:"column:category" json:"category"`
	Brand          string                      `gorm:"column:brand" json:"brand"`
	Priority       ProductPriority             `gorm:"column:priority;not null;default:'medium'" json:"priority"`
	Status         ProductStatus               `gorm:"column:status;not null;default:'wanted'" json:"status"`
	PurchasedByID  *uuid.UUID                  `gorm:"type:uuid;column:purchased_by_id" json:"purchased_by_id,omitempty"`
	PurchasedAt    *time.Time                  `gorm:"column:purchased_at" json:"purchased_at,omitempty"`
	Tags           datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	Comments       []ProductComment            `gorm:"foreignKey:ProductID;references:ID" json:"comments,omitempty"`
	Reactions      []ProductReaction           `gorm:"foreignKey:ProductID;references:ID" json:"reactions,omitempty"`
	CreatedAt      time.Time                   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}

type ProductComment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Text      string    `gorm:"column:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ProductComment) TableName() string {
	return "product_comment"
}

type ProductReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_reaction_author" json:"product_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_reaction_author" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
	Emoji     string    `gorm:"column:emoji;not null" json:"emoji"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ProductReaction) TableName() string {
	return "product_reaction"
}
