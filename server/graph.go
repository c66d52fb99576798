package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/quizgraph"
)

// direction reads the ?direction= query, defaulting to the configured one.
func (s *server) direction(c fiber.Ctx) (quizgraph.Direction, error) {
	raw := c.Query("direction")
	if raw == "" {
		return s.opts.Direction, nil
	}
	return quizgraph.ParseDirection(raw)
}

func (s *server) graphRoutes(app *fiber.App) {
	// Renders a posted tree without touching the store.
	app.Post("/graph", func(c fiber.Ctx) error {
		dir, err := s.direction(c)
		if err != nil {
			return s.fail(c, err)
		}
		var root quizgraph.QuizNode
		if err := c.Bind().JSON(&root); err != nil {
			return badBody(c)
		}
		g, err := quizgraph.Render(&root, dir, s.opts.Sizes)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(g)
	})
}
