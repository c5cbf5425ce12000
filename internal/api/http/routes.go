package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-events/internal/common"
	"github.com/i474232898/weather-events/internal/recommend"
)

var validate = validator.New()

// Recommender is the set of Coordinator triggers exposed over HTTP.
type Recommender interface {
	NavigateDate(ctx context.Context, date common.Date) (recommend.View, error)
	SelectCategory(ctx context.Context, bucket string) (recommend.View, error)
	Search(ctx context.Context, query string) (recommend.View, error)
	Snapshot() recommend.View
}

// viewResponse is the committed view and the time it was last rendered.
type viewResponse struct {
	recommend.View
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, rec Recommender, presenter *Presenter) {
	v1 := app.Group("/api/v1")

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(viewResponse{
			View:      rec.Snapshot(),
			UpdatedAt: presenter.Current().UpdatedAt,
		})
	})

	v1.Get("/categories", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"categories": recommend.CategoryNames()})
	})

	v1.Get("/events", func(c *fiber.Ctx) error {
		req := dateRequest{Date: c.Query("date")}
		return navigate(c, rec, req)
	})

	v1.Post("/date", func(c *fiber.Ctx) error {
		var req dateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return navigate(c, rec, req)
	})

	v1.Get("/events/category", func(c *fiber.Ctx) error {
		req := categoryRequest{Name: c.Query("name")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := rec.SelectCategory(c.UserContext(), req.Name)
		if err != nil {
			return triggerError(err)
		}
		return c.JSON(view)
	})

	v1.Get("/events/search", func(c *fiber.Ctx) error {
		req := searchRequest{Query: c.Query("q")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := rec.Search(c.UserContext(), req.Query)
		if err != nil {
			return triggerError(err)
		}
		return c.JSON(view)
	})

	v1.Get("/events.ics", func(c *fiber.Ctx) error {
		current := presenter.Current()
		c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="events.ics"`)
		return c.SendString(exportCalendar(current.Events, time.Now().UTC()))
	})
}

// RegisterMetrics exposes gatherer on /metrics.
func RegisterMetrics(app *fiber.App, gatherer prometheus.Gatherer) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// dateRequest selects the active date.
type dateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type categoryRequest struct {
	Name string `validate:"required,max=64"`
}

type searchRequest struct {
	Query string `validate:"max=200"`
}

func navigate(c *fiber.Ctx, rec Recommender, req dateRequest) error {
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	date, err := common.ParseDate(req.Date)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	view, err := rec.NavigateDate(c.UserContext(), date)
	if err != nil {
		return triggerError(err)
	}
	return c.JSON(view)
}

func triggerError(err error) error {
	switch {
	case errors.Is(err, recommend.ErrSuperseded):
		return fiber.NewError(fiber.StatusConflict, "request superseded by a newer one")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusServiceUnavailable, "request canceled")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update recommendations")
	}
}

// ErrorHandler renders errors as JSON with the fiber status code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
