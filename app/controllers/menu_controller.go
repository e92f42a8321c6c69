package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tablo-app/tablo/app/models"
	"github.com/tablo-app/tablo/app/repository"
)

// MenuController covers the tenant surface around the payment core: the
// public menu a diner sees after scanning a table code, and the admin CRUD
// for restaurants, catalog items and tables.
type MenuController struct {
	restaurants repository.RestaurantRepository
	menuItems   repository.MenuItemRepository
	tables      repository.TableRepository
}

func NewMenuController(
	restaurants repository.RestaurantRepository,
	menuItems repository.MenuItemRepository,
	tables repository.TableRepository,
) *MenuController {
	return &MenuController{
		restaurants: restaurants,
		menuItems:   menuItems,
		tables:      tables,
	}
}

// HandleGetMenu returns a restaurant's public profile and its available
// menu items, looked up by slug. Unavailable items are filtered out here;
// the admin listing keeps them.
func (mc *MenuController) HandleGetMenu(c *fiber.Ctx) error {
	restaurant, err := mc.restaurants.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Restaurant not found"})
		}
		return respondError(c, err)
	}

	items, err := mc.menuItems.ListByRestaurant(restaurant.ID, true)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"restaurant": fiber.Map{
			"id":               restaurant.ID,
			"name":             restaurant.Name,
			"slug":             restaurant.Slug,
			"payments_enabled": restaurant.PaymentsEnabled,
		},
		"items": items,
	})
}

// HandleCreateRestaurant registers a new tenant.
func (mc *MenuController) HandleCreateRestaurant(c *fiber.Ctx) error {
	var restaurant models.Restaurant
	if err := c.BodyParser(&restaurant); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := restaurant.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := mc.restaurants.Create(&restaurant); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(restaurant)
}

// HandleGetRestaurant returns one tenant by id.
func (mc *MenuController) HandleGetRestaurant(c *fiber.Ctx) error {
	restaurant, err := mc.restaurants.GetByID(c.Params("restaurantId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Restaurant not found"})
		}
		return respondError(c, err)
	}
	return c.JSON(restaurant)
}

// HandleListMenuItems returns every catalog item of a restaurant,
// including unavailable ones.
func (mc *MenuController) HandleListMenuItems(c *fiber.Ctx) error {
	items, err := mc.menuItems.ListByRestaurant(c.Params("restaurantId"), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// HandleCreateMenuItem adds a catalog item.
func (mc *MenuController) HandleCreateMenuItem(c *fiber.Ctx) error {
	var item models.MenuItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	item.RestaurantID = c.Params("restaurantId")
	if err := item.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := mc.menuItems.Create(&item); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleUpdateMenuItem updates a catalog item in place.
func (mc *MenuController) HandleUpdateMenuItem(c *fiber.Ctx) error {
	item, err := mc.menuItems.GetByID(c.Params("itemId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Menu item not found"})
		}
		return respondError(c, err)
	}

	if err := c.BodyParser(item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := item.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := mc.menuItems.Update(item); err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// HandleDeleteMenuItem removes a catalog item. Orders that referenced it
// keep their snapshot lines; only the live catalog entry goes away.
func (mc *MenuController) HandleDeleteMenuItem(c *fiber.Ctx) error {
	if err := mc.menuItems.Delete(c.Params("itemId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

// HandleListTables returns a restaurant's tables with their QR tokens.
func (mc *MenuController) HandleListTables(c *fiber.Ctx) error {
	tables, err := mc.tables.ListByRestaurant(c.Params("restaurantId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tables": tables})
}

// HandleCreateTable adds a table; its QR token is generated on insert.
func (mc *MenuController) HandleCreateTable(c *fiber.Ctx) error {
	var table models.Table
	if err := c.BodyParser(&table); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	table.RestaurantID = c.Params("restaurantId")
	if table.Label == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "label is required"})
	}

	if err := mc.tables.Create(&table); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(table)
}

// HandleDeleteTable removes a table.
func (mc *MenuController) HandleDeleteTable(c *fiber.Ctx) error {
	if err := mc.tables.Delete(c.Params("tableId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
