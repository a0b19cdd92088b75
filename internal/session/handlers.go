package session

import (
	"errors"

	"backend-trailview/internal/trail"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, m *Manager) {
	r.Post("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(m.Create())
	})

	r.Delete("/:id", func(c *fiber.Ctx) error {
		if err := m.Close(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/:id/selection", withSession(m, func(c *fiber.Ctx, s *Session) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		if err := s.Select(body.Name); err != nil {
			if errors.Is(err, trail.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(s.ElevationModel())
	}))

	r.Delete("/:id/selection", withSession(m, func(c *fiber.Ctx, s *Session) error {
		s.Deselect()
		return c.SendStatus(fiber.StatusNoContent)
	}))

	r.Post("/:id/hover", withSession(m, func(c *fiber.Ctx, s *Session) error {
		var body struct {
			X *float64 `json:"x"`
		}
		if err := c.BodyParser(&body); err != nil || body.X == nil {
			return fiber.NewError(fiber.StatusBadRequest, "x required")
		}
		s.PointerMove(*body.X)
		return c.SendStatus(fiber.StatusAccepted)
	}))

	r.Delete("/:id/hover", withSession(m, func(c *fiber.Ctx, s *Session) error {
		s.PointerLeave()
		return c.SendStatus(fiber.StatusNoContent)
	}))

	r.Get("/:id/views/map", withSession(m, func(c *fiber.Ctx, s *Session) error {
		return c.JSON(s.MapModel())
	}))

	r.Get("/:id/views/elevation", withSession(m, func(c *fiber.Ctx, s *Session) error {
		return c.JSON(s.ElevationModel())
	}))

	r.Get("/:id/views/terrain", withSession(m, func(c *fiber.Ctx, s *Session) error {
		return c.JSON(s.TerrainFrame())
	}))
}

func withSession(m *Manager, h func(*fiber.Ctx, *Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := m.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return h(c, s)
	}
}
