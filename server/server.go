// Package server exposes a quizgraph.Store and the graph renderer over HTTP.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/hashicorp/go-hclog"
	"github.com/meikuraledutech/quizgraph"
)

// Options tune how graphs are rendered.
type Options struct {
	Sizes quizgraph.Sizes
	// Direction is used when a request does not name one.
	Direction quizgraph.Direction
}

type server struct {
	store quizgraph.Store
	log   hclog.Logger
	opts  Options
}

// New returns the fiber app serving store. Zero options fall back to
// quizgraph.DefaultSizes and a vertical layout.
func New(store quizgraph.Store, logger hclog.Logger, opts Options) *fiber.App {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Sizes == (quizgraph.Sizes{}) {
		opts.Sizes = quizgraph.DefaultSizes
	}
	if opts.Direction == "" {
		opts.Direction = quizgraph.DirectionVertical
	}
	s := &server{store: store, log: logger.Named("http"), opts: opts}

	app := fiber.New(fiber.Config{
		AppName:      "quizgraph",
		ErrorHandler: s.handleError,
	})
	app.Use(recoverer.New())
	app.Use(s.logRequests)

	s.schemaRoutes(app)
	s.graphRoutes(app)

	quiz := app.Group("/quiz")
	s.quizRoutes(quiz)
	s.nodeRoutes(quiz)
	s.answerRoutes(quiz)
	s.catalogRoutes(quiz)
	s.resultRoutes(quiz)

	return app
}

func (s *server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	s.log.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)
	return err
}

// handleError renders errors that escaped a handler, including panics caught
// by the recover middleware and fiber's own routing errors.
func (s *server) handleError(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// fail maps a store or pipeline error to its HTTP status.
func (s *server) fail(c fiber.Ctx, err error) error {
	code := statusOf(err)
	if code == fiber.StatusInternalServerError {
		s.log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, quizgraph.ErrInvalidDirection):
		return fiber.StatusBadRequest
	case errors.Is(err, quizgraph.ErrQuizNotFound),
		errors.Is(err, quizgraph.ErrNodeNotFound),
		errors.Is(err, quizgraph.ErrAnswerNotFound),
		errors.Is(err, quizgraph.ErrResultNotFound),
		errors.Is(err, quizgraph.ErrQuestionNotFound),
		errors.Is(err, quizgraph.ErrProblemNotFound),
		errors.Is(err, quizgraph.ErrTreatmentNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, quizgraph.ErrRootNode),
		errors.Is(err, quizgraph.ErrLastAnswer):
		return fiber.StatusConflict
	case errors.Is(err, quizgraph.ErrCycleDetected),
		errors.Is(err, quizgraph.ErrDuplicateNode),
		errors.Is(err, quizgraph.ErrInvalidTree):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func badBody(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
}

func notFound(c fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
}

func pageParams(c fiber.Ctx) quizgraph.PageParams {
	return quizgraph.PageParams{
		Page:   fiber.Query[int](c, "page"),
		Limit:  fiber.Query[int](c, "limit"),
		Search: c.Query("search"),
	}
}

func (s *server) schemaRoutes(app *fiber.App) {
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := s.store.CreateSchema(c.Context()); err != nil {
			return s.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := s.store.DropSchema(c.Context()); err != nil {
			return s.fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})
}
