package handlers

import (
	"errors"
	"time"

	"pet-service/middleware"
	"pet-service/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPetRoutes(app *fiber.App, petService *services.PetService, shopService *services.ShopService) {
	// TEST route (no user context) — lets the gateway probe the service
	app.Get("/pet/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "message": "Pet service up", "timestamp": time.Now().UTC()})
	})

	// 🔐 Secured routes — require user context forwarded by the Gateway
	secured := app.Group("/pet", middleware.UserContextMiddleware())

	secured.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		pet, err := petService.GetOrCreate(userID)
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "pet": pet})
	})

	secured.Post("/checkin", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		pet, err := petService.CheckIn(userID, time.Now().UTC())
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Check-in recorded", "pet": pet})
	})

	secured.Post("/feed", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			ItemCode string `json:"item_code"`
			Qty      int    `json:"qty"`
		}
		// body is optional: no item means buying food directly with coins
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "invalid JSON body",
				})
			}
		}

		pet, err := petService.Feed(userID, req.ItemCode, req.Qty)
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Fed pet", "pet": pet})
	})

	secured.Post("/play", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		pet, err := petService.Play(userID, time.Now().UTC())
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Played with pet", "pet": pet})
	})

	secured.Put("/species", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Species string `json:"species"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "invalid JSON body",
			})
		}

		pet, err := petService.SetSpecies(userID, req.Species)
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "pet": pet})
	})

	secured.Get("/shop", func(c *fiber.Ctx) error {
		items, err := shopService.ListItems()
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "items": items})
	})

	secured.Post("/shop/buy", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			ItemCode string `json:"item_code"`
			Qty      int    `json:"qty"`
		}
		if err := c.BodyParser(&req); err != nil || req.ItemCode == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "item_code is required",
			})
		}

		pet, err := shopService.BuyItem(userID, req.ItemCode, req.Qty)
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Item purchased", "pet": pet})
	})

	// Admin endpoints
	admin := app.Group("/s/admin/pet", middleware.UserContextMiddleware())

	admin.Post("/grant", func(c *fiber.Ctx) error {
		if !middleware.HasRole(c, "admin") {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "admin role required",
			})
		}

		type Req struct {
			UserID   string `json:"user_id" validate:"required"`
			ItemCode string `json:"item_code"`
			Qty      int    `json:"qty" validate:"min=0"`
			Coins    int    `json:"coins" validate:"min=0"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id is required",
			})
		}

		pet, err := shopService.Grant(req.UserID, req.ItemCode, req.Qty, req.Coins)
		if err != nil {
			return petError(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "Grant applied",
			"user_id": req.UserID,
			"pet":     pet,
		})
	})
}

// petError maps expected business outcomes to 4xx responses; anything else
// is a storage failure surfaced as a generic 500.
func petError(c *fiber.Ctx, err error) error {
	var cooldown *services.CooldownError

	switch {
	case errors.Is(err, services.ErrAlreadyCheckedIn):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Already checked in today",
		})
	case errors.Is(err, services.ErrInsufficientInventory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Not enough item in inventory",
		})
	case errors.Is(err, services.ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Not enough coins",
		})
	case errors.Is(err, services.ErrUnknownItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown shop item",
		})
	case errors.Is(err, services.ErrUnknownSpecies):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown species",
		})
	case errors.Is(err, services.ErrPetNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Pet not found",
		})
	case errors.As(err, &cooldown):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success":        false,
			"message":        "Play on cooldown",
			"retry_after_ms": cooldown.RetryAfter.Milliseconds(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "server error",
			"cause": err.Error(),
		})
	}
}
