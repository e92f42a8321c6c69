package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tablo-app/tablo/app/models"
	"github.com/tablo-app/tablo/app/repository"
)

// OrderController serves the staff dashboard: listing orders that the
// webhook engine materialized and walking them through the kitchen
// lifecycle.
type OrderController struct {
	orders repository.OrderRepository
}

func NewOrderController(orders repository.OrderRepository) *OrderController {
	return &OrderController{orders: orders}
}

// HandleListOrders returns a restaurant's most recent orders, items
// preloaded, newest first.
func (oc *OrderController) HandleListOrders(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}

	orders, err := oc.orders.ListByRestaurant(c.Params("restaurantId"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"orders": orders})
}

// HandleGetOrder returns one order with its lines.
func (oc *OrderController) HandleGetOrder(c *fiber.Ctx) error {
	order, err := oc.orders.GetByID(c.Params("orderId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return respondError(c, err)
	}
	return c.JSON(order)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateOrderStatus moves an order along its lifecycle. Only the
// transitions the kitchen flow allows go through; anything else is a 400.
// Payment confirmation is not reachable from here, that belongs to the
// webhook engine alone.
func (oc *OrderController) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if !models.IsOrderStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown status: " + req.Status})
	}
	if req.Status == models.ORDER_STATUS_PAID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Orders are marked paid by payment confirmation only"})
	}

	order, err := oc.orders.GetByID(c.Params("orderId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return respondError(c, err)
	}

	if !models.CanTransitionOrderStatus(order.Status, req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot change order from " + order.Status + " to " + req.Status,
		})
	}

	if err := oc.orders.UpdateStatus(order.ID, req.Status); err != nil {
		return respondError(c, err)
	}

	order.Status = req.Status
	return c.JSON(order)
}
