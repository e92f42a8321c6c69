package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/tablo-app/tablo/app/controllers"
)

// ApiRouter wires the JSON API. The fiber limiter on the group is a coarse
// per-IP guard for the whole API; the checkout endpoint additionally runs
// its own database-backed sliding window so the quota survives restarts.
type ApiRouter struct {
	payments *controllers.PaymentController
	menu     *controllers.MenuController
	orders   *controllers.OrderController
}

func NewApiRouter(
	payments *controllers.PaymentController,
	menu *controllers.MenuController,
	orders *controllers.OrderController,
) *ApiRouter {
	return &ApiRouter{
		payments: payments,
		menu:     menu,
		orders:   orders,
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}), cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Stripe-Signature",
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Tablo API",
		})
	})

	v1 := api.Group("/v1")

	// Public diner surface
	v1.Get("/restaurants/:slug/menu", h.menu.HandleGetMenu)
	v1.Post("/checkout", h.payments.HandleCreateCheckout)

	// Stripe webhook receiver. The signature is the authentication.
	v1.Post("/webhook", h.payments.HandleWebhook)

	// Connect onboarding
	v1.Post("/connect/onboarding", h.payments.HandleConnectOnboarding)
	v1.Post("/connect/status", h.payments.HandleConnectStatus)

	// Platform subscription
	v1.Post("/subscription/checkout", h.payments.HandleSubscriptionCheckout)
	v1.Post("/subscription/sync", h.payments.HandleSubscriptionSync)
	v1.Post("/subscription/portal", h.payments.HandlePortal)

	// Platform financial dashboard
	v1.Get("/financials", h.payments.HandleFinancials)

	// Tenant administration
	v1.Post("/restaurants", h.menu.HandleCreateRestaurant)
	v1.Get("/restaurants/:restaurantId", h.menu.HandleGetRestaurant)
	v1.Get("/restaurants/:restaurantId/items", h.menu.HandleListMenuItems)
	v1.Post("/restaurants/:restaurantId/items", h.menu.HandleCreateMenuItem)
	v1.Put("/restaurants/:restaurantId/items/:itemId", h.menu.HandleUpdateMenuItem)
	v1.Delete("/restaurants/:restaurantId/items/:itemId", h.menu.HandleDeleteMenuItem)
	v1.Get("/restaurants/:restaurantId/tables", h.menu.HandleListTables)
	v1.Post("/restaurants/:restaurantId/tables", h.menu.HandleCreateTable)
	v1.Delete("/restaurants/:restaurantId/tables/:tableId", h.menu.HandleDeleteTable)

	// Staff order dashboard
	v1.Get("/restaurants/:restaurantId/orders", h.orders.HandleListOrders)
	v1.Get("/orders/:orderId", h.orders.HandleGetOrder)
	v1.Patch("/orders/:orderId/status", h.orders.HandleUpdateOrderStatus)
}
