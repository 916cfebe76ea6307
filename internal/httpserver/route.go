package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/obsidianatelier/storefront/internal/middleware/auth"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Products *ProductHTTP
	Cart     *CartHTTP
	TryOns   *TryOnHTTP
	Orders   *OrderHTTP
	Checkout *CheckoutHTTP
	Auth     *AuthHTTP
	Search   *SearchHTTP
	Uploads  *UploadHTTP
	Guard    *auth.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.POST("/auth/request-code", d.Auth.RequestCode)
	e.POST("/auth/verify", d.Auth.Verify)

	catalog := e.Group("/catalog")
	catalog.GET("/products", d.Products.GetProducts)
	catalog.GET("/products/:id", d.Products.GetProduct)
	catalog.GET("/products/:id/inventory", d.Products.GetInventory)
	catalog.GET("/products/slug/:slug", d.Products.GetProductBySlug)
	catalog.GET("/search", d.Search.SearchProducts)

	cart := e.Group("/cart", d.Guard.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/items", d.Cart.AddItem)
	cart.PATCH("/items", d.Cart.UpdateQuantity)
	cart.DELETE("/items", d.Cart.RemoveItem)
	cart.DELETE("", d.Cart.Clear)

	tryons := e.Group("/tryons", d.Guard.RequireAuth)
	tryons.POST("", d.TryOns.Submit)
	tryons.GET("", d.TryOns.ListTryOns)
	tryons.GET("/quota", d.TryOns.GetQuota)
	tryons.GET("/:id", d.TryOns.GetTryOn)

	e.POST("/checkout/session", d.Checkout.CreateSession)
	e.POST("/checkout/cart-session", d.Checkout.CreateCartSession, d.Guard.RequireAuth)
	e.POST("/checkout/webhook", d.Checkout.Webhook)

	admin := e.Group("/admin", d.Guard.RequireAdmin)
	admin.POST("/products", d.Products.CreateProduct)
	admin.PUT("/products/:id", d.Products.UpdateProduct)
	admin.DELETE("/products/:id", d.Products.DeleteProduct)
	admin.GET("/orders", d.Orders.ListOrders)
	admin.GET("/orders/:id", d.Orders.GetOrder)
	admin.PATCH("/orders/:id/status", d.Orders.SetStatus)
	admin.POST("/uploads", d.Uploads.PresignUpload)
}
