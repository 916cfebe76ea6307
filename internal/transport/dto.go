package transport

import "github.com/google/uuid"

type VariantInput struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// SaveProductRequest is the full desired state of a product as assembled by
// the admin editor. Images and Inventory replace whatever is stored.
type SaveProductRequest struct {
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	DescriptionImage string         `json:"description_image"`
	Price            float64        `json:"price"`
	BeforePrice      *float64       `json:"before_price"`
	Category         string         `json:"category"`
	Images           []string       `json:"images"`
	Inventory        []VariantInput `json:"inventory"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  uint      `json:"quantity"`
}

type UpdateCartQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  uint      `json:"quantity"`
}

type SetOrderStatusRequest struct {
	Status string `json:"status"`
}

type CheckoutSessionRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  uint      `json:"quantity"`
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type QuotaResponse struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}
