package routes

import (
	coreport "github.com/amirhossein-jamali/farm-storefront/internal/domain/port/core"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/farm-storefront/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the storefront API
type Handlers struct {
	Cart      *handler.CartHandler
	Lock      *handler.LockHandler
	Inventory *handler.InventoryHandler
	Checkout  *handler.CheckoutHandler
	Order     *handler.OrderHandler
	Health    *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Health)

	api := router.Group("/api")

	cart := api.Group("/cart")
	{
		cart.POST("/items", h.Cart.AddItem)
		cart.DELETE("/items/:productId", h.Cart.ReleaseItem)
	}

	locks := api.Group("/locks")
	{
		locks.GET("/:productId", h.Lock.Get)
		locks.POST("/:productId", h.Lock.Acquire)
		locks.DELETE("/:productId", h.Lock.Release)
	}
	api.DELETE("/holders/:holderId/locks", h.Lock.ReleaseAll)

	inventory := api.Group("/inventory")
	{
		inventory.GET("", h.Inventory.List)
		inventory.GET("/items/:productId", h.Inventory.Get)
		inventory.GET("/items/:productId/availability", h.Inventory.Availability)
		inventory.POST("/items/:productId/adjust", h.Inventory.Adjust)
		inventory.PUT("/items/:productId", h.Inventory.SetStock)
		inventory.POST("/sync-harvest", h.Inventory.SyncHarvest)
		inventory.POST("/validate-cart", h.Inventory.ValidateCart)
		inventory.GET("/logs", h.Inventory.Changes)
		inventory.GET("/low-stock", h.Inventory.LowStock)
		inventory.GET("/report", h.Inventory.Report)
	}

	checkout := api.Group("/checkout")
	{
		checkout.POST("/calculate", h.Checkout.Calculate)
		checkout.POST("/sessions", h.Checkout.CreateSession)
		checkout.GET("/sessions/:ownerId", h.Checkout.GetSession)
		checkout.PATCH("/sessions/:ownerId", h.Checkout.UpdateSession)
		checkout.DELETE("/sessions/:ownerId", h.Checkout.DeleteSession)
		checkout.POST("/sessions/:ownerId/verify", h.Checkout.Verify)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.Order.PlaceOrder)
		orders.GET("/:orderId", h.Order.GetOrder)
		orders.GET("/:orderId/transaction", h.Order.GetTransaction)
		orders.POST("/:orderId/settle", h.Order.Settle)
		orders.POST("/:orderId/refund", h.Order.Refund)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, allowedOrigins []string) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(allowedOrigins))
}
