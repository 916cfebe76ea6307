package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID               uuid.UUID      `gorm:"primaryKey"           json:"id"`
	Name             string         `gorm:"not null"             json:"name"`
	Slug             string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description      string         `json:"description"`
	DescriptionImage string         `json:"description_image,omitempty"`
	Price            float64        `gorm:"not null"             json:"price"`
	BeforePrice      *float64       `json:"before_price,omitempty"`
	Category         string         `gorm:"index"                json:"category"`
	Images           []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Variants         []Variant      `gorm:"constraint:OnDelete:CASCADE" json:"variants"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductImage is one entry of a product's ordered gallery. Key is the
// object-store key, not a public URL.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductID uuid.UUID `gorm:"index;not null"           json:"-"`
	Key       string    `gorm:"not null"                 json:"key"`
	Position  int       `gorm:"not null"                 json:"position"`
}

// Variant is one (size, color, stock) row of a product. Color is "" for
// products sold without color options; the uniqueness of (product, size,
// color) is enforced by the index below.
type Variant struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                        json:"id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_variant_identity;not null"       json:"product_id"`
	Size      string    `gorm:"uniqueIndex:idx_variant_identity;not null"       json:"size"`
	Color     string    `gorm:"uniqueIndex:idx_variant_identity;default:''"     json:"color,omitempty"`
	Stock     int       `gorm:"not null;check:stock >= 0"                       json:"stock"`
}

// CartItem is one cart line. Name, Price and Image are snapshots taken when
// the line was added; identity is (user, product, size, color).
type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                                json:"id"`
	UserID    uuid.UUID `gorm:"uniqueIndex:idx_cart_identity;not null"    json:"user_id"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_cart_identity;not null"    json:"product_id"`
	Size      string    `gorm:"uniqueIndex:idx_cart_identity;not null"    json:"size"`
	Color     string    `gorm:"uniqueIndex:idx_cart_identity;default:''"  json:"color,omitempty"`
	Name      string    `gorm:"not null"                                  json:"name"`
	Price     float64   `gorm:"not null"                                  json:"price"`
	Image     string    `json:"image"`
	Quantity  uint      `gorm:"default:1;check:quantity > 0"              json:"quantity"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

const (
	TryOnStatusPending   = "pending"
	TryOnStatusCompleted = "completed"
	TryOnStatusFailed    = "failed"
)

// TryOn is one AI generation attempt. Records are never deleted and never
// leave a terminal status.
type TryOn struct {
	ID                uuid.UUID `gorm:"primaryKey"       json:"id"`
	UserID            uuid.UUID `gorm:"index;not null"   json:"user_id"`
	ProductID         uuid.UUID `gorm:"not null"         json:"product_id"`
	UserImageKey      string    `gorm:"not null"         json:"user_image_key"`
	GeneratedImageKey string    `json:"generated_image_key,omitempty"`
	Status            string    `gorm:"not null"         json:"status"`
	Error             string    `json:"error,omitempty"`
	CreatedAt         time.Time `gorm:"index;not null"   json:"created_at"`
}

func (t *TryOn) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TryOnQuota is the per-user per-day counter behind the daily allowance.
// It is only ever touched inside the submission transaction.
type TryOnQuota struct {
	UserID uuid.UUID `gorm:"primaryKey" json:"user_id"`
	Day    string    `gorm:"primaryKey" json:"day"`
	Used   int       `gorm:"not null"   json:"used"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusFailed    = "failed"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusFailed:
		return true
	}
	return false
}

type Order struct {
	ID         uuid.UUID   `gorm:"primaryKey"     json:"id"`
	UserID     *uuid.UUID  `gorm:"index"          json:"user_id,omitempty"`
	GuestEmail string      `json:"guest_email,omitempty"`
	Total      float64     `gorm:"not null"       json:"total"`
	Status     string      `gorm:"not null"       json:"status"`
	Shipping   Address     `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE"       json:"items"`
	CreatedAt  time.Time   `gorm:"index"          json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderItem struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID  uuid.UUID `gorm:"index;not null"              json:"order_id"`
	Name     string    `gorm:"not null"                    json:"name"`
	Size     string    `json:"size"`
	Quantity uint      `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

type User struct {
	ID        uuid.UUID `gorm:"primaryKey"           json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"not null"             json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// LoginCode is a single-use emailed sign-in code. Only the bcrypt hash is
// stored.
type LoginCode struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"index;not null"           json:"email"`
	CodeHash  string    `gorm:"not null"                 json:"-"`
	ExpiresAt time.Time `gorm:"not null"                 json:"expires_at"`
	Consumed  bool      `gorm:"default:false"            json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}
