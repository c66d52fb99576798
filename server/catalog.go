package server

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/quizgraph"
)

// catalog binds the four routes shared by questions, problems and treatments.
type catalog[T any] struct {
	path   string
	name   string
	create func(context.Context, *T) (string, error)
	get    func(context.Context, string) (*T, error)
	update func(context.Context, *T) error
	list   func(context.Context, quizgraph.PageParams) (*quizgraph.Page[T], error)
	setID  func(*T, string)
}

func (s *server) catalogRoutes(r fiber.Router) {
	mount(s, r, catalog[quizgraph.Question]{
		path:   "/question",
		name:   "question",
		create: s.store.CreateQuestion,
		get:    s.store.GetQuestion,
		update: s.store.UpdateQuestion,
		list:   s.store.ListQuestions,
		setID:  func(q *quizgraph.Question, id string) { q.ID = id },
	})
	mount(s, r, catalog[quizgraph.Problem]{
		path:   "/problem",
		name:   "problem",
		create: s.store.CreateProblem,
		get:    s.store.GetProblem,
		update: s.store.UpdateProblem,
		list:   s.store.ListProblems,
		setID:  func(p *quizgraph.Problem, id string) { p.ID = id },
	})
	mount(s, r, catalog[quizgraph.Treatment]{
		path:   "/treatment",
		name:   "treatment",
		create: s.store.CreateTreatment,
		get:    s.store.GetTreatment,
		update: s.store.UpdateTreatment,
		list:   s.store.ListTreatments,
		setID:  func(t *quizgraph.Treatment, id string) { t.ID = id },
	})
}

func mount[T any](s *server, r fiber.Router, cat catalog[T]) {
	r.Get(cat.path, func(c fiber.Ctx) error {
		page, err := cat.list(c.Context(), pageParams(c))
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(page)
	})

	r.Post(cat.path, func(c fiber.Ctx) error {
		var item T
		if err := c.Bind().JSON(&item); err != nil {
			return badBody(c)
		}
		if _, err := cat.create(c.Context(), &item); err != nil {
			return s.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	r.Get(cat.path+"/:id", func(c fiber.Ctx) error {
		item, err := cat.get(c.Context(), c.Params("id"))
		if err != nil {
			return s.fail(c, err)
		}
		if item == nil {
			return notFound(c, cat.name)
		}
		return c.JSON(item)
	})

	r.Patch(cat.path+"/:id", func(c fiber.Ctx) error {
		var item T
		if err := c.Bind().JSON(&item); err != nil {
			return badBody(c)
		}
		cat.setID(&item, c.Params("id"))
		if err := cat.update(c.Context(), &item); err != nil {
			return s.fail(c, err)
		}
		return c.JSON(item)
	})
}
