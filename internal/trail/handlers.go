package trail

import (
	"bytes"
	"errors"
	"net/url"

	"backend-trailview/internal/logging"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func RegisterRoutes(r fiber.Router, catalog *Catalog, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(catalog.Current().Summaries())
	})

	r.Post("/import", authMiddleware, func(c *fiber.Ctx) error {
		if !svc.Enabled() {
			return fiber.NewError(fiber.StatusServiceUnavailable, ErrNoDatabase.Error())
		}
		rows, err := LoadCSV(bytes.NewReader(c.Body()))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "no trail rows")
		}
		imported, err := svc.Import(c.Context(), rows)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		all, err := svc.List(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		catalog.Replace(NewStore(all))
		logging.L().Info("trails imported",
			zap.Int("imported", imported), zap.Int("total", len(all)),
			zap.Any("curator", c.Locals("curator_id")))
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": imported, "total": len(all)})
	})

	r.Get("/:name", func(c *fiber.Ctx) error {
		t, err := lookupParam(c, catalog)
		if err != nil {
			return err
		}
		return c.JSON(t)
	})

	r.Get("/:name/profile", func(c *fiber.Ctx) error {
		t, err := lookupParam(c, catalog)
		if err != nil {
			return err
		}
		profile, err := t.Profile()
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return c.JSON(profile)
	})
}

func lookupParam(c *fiber.Ctx, catalog *Catalog) (*Trail, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid trail name")
	}
	t, err := catalog.Current().Lookup(name)
	if errors.Is(err, ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "trail not found")
	}
	return t, err
}
