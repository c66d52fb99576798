package server

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/quizgraph"
)

// nodeRef is the {"previousNode": {"id": ...}} body of node creation and cloning.
type nodeRef struct {
	PreviousNode quizgraph.NodeRef `json:"previousNode"`
}

// nodePatch accepts the question either as "questionId" or as {"question": {"id": ...}}.
type nodePatch struct {
	IsInlineAnswers *bool              `json:"isInlineAnswers"`
	QuestionID      *string            `json:"questionId"`
	Question        *quizgraph.NodeRef `json:"question"`
}

func (s *server) quizRoutes(r fiber.Router) {
	r.Get("/quiz", func(c fiber.Ctx) error {
		page, err := s.store.ListQuizzes(c.Context(), pageParams(c))
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(page)
	})

	r.Post("/quiz", func(c fiber.Ctx) error {
		var q quizgraph.Quiz
		if err := c.Bind().JSON(&q); err != nil || strings.TrimSpace(q.Code) == "" {
			return badBody(c)
		}
		created, err := s.store.CreateQuiz(c.Context(), &q)
		if err != nil {
			return s.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/quiz/:id", func(c fiber.Ctx) error {
		q, err := s.store.GetQuiz(c.Context(), c.Params("id"))
		if err != nil {
			return s.fail(c, err)
		}
		if q == nil {
			return notFound(c, "quiz")
		}
		return c.JSON(q)
	})

	r.Patch("/quiz/:id", func(c fiber.Ctx) error {
		var q quizgraph.Quiz
		if err := c.Bind().JSON(&q); err != nil {
			return badBody(c)
		}
		q.ID = c.Params("id")
		if err := s.store.UpdateQuiz(c.Context(), &q); err != nil {
			return s.fail(c, err)
		}
		updated, err := s.store.GetQuiz(c.Context(), q.ID)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(updated)
	})

	r.Delete("/quiz/:id", func(c fiber.Ctx) error {
		if err := s.store.DeleteQuiz(c.Context(), c.Params("id")); err != nil {
			return s.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func (s *server) nodeRoutes(r fiber.Router) {
	r.Get("/quizNode/tree/:id", func(c fiber.Ctx) error {
		tree, err := s.store.GetTree(c.Context(), c.Params("id"))
		if err != nil {
			return s.fail(c, err)
		}
		if tree == nil {
			return notFound(c, "quiz node")
		}
		return c.JSON(tree)
	})

	r.Get("/quizNode/graph/:id", func(c fiber.Ctx) error {
		dir, err := s.direction(c)
		if err != nil {
			return s.fail(c, err)
		}
		tree, err := s.store.GetTree(c.Context(), c.Params("id"))
		if err != nil {
			return s.fail(c, err)
		}
		if tree == nil {
			return notFound(c, "quiz node")
		}
		g, err := quizgraph.Render(tree, dir, s.opts.Sizes)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(g)
	})

	r.Post("/quizNode", func(c fiber.Ctx) error {
		var body nodeRef
		if err := c.Bind().JSON(&body); err != nil || body.PreviousNode.ID == "" {
			return badBody(c)
		}
		id, err := s.store.CreateNode(c.Context(), body.PreviousNode.ID)
		if err != nil {
			return s.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})

	r.Patch("/quizNode/:id", func(c fiber.Ctx) error {
		var body nodePatch
		if err := c.Bind().JSON(&body); err != nil {
			return badBody(c)
		}
		u := quizgraph.NodeUpdate{
			ID:              c.Params("id"),
			IsInlineAnswers: body.IsInlineAnswers,
			QuestionID:      body.QuestionID,
		}
		if body.Question != nil {
			u.QuestionID = &body.Question.ID
		}
		if err := s.store.UpdateNode(c.Context(), u); err != nil {
			return s.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/quizNode/:id", func(c fiber.Ctx) error {
		if err := s.store.DeleteNode(c.Context(), c.Params("id")); err != nil {
			return s.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/quizNode/clone/:id", func(c fiber.Ctx) error {
		var body nodeRef
		if err := c.Bind().JSON(&body); err != nil || body.PreviousNode.ID == "" {
			return badBody(c)
		}
		id, err := s.store.CloneNode(c.Context(), c.Params("id"), body.PreviousNode.ID)
		if err != nil {
			return s.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
	})
}

func (s *server) answerRoutes(r fiber.Router) {
	r.Post("/answer", func(c fiber.Ctx) error {
		var body struct {
			ParentQuizNode string `json:"parentQuizNode"`
		}
		if err := c.Bind().JSON(&body); err != nil || body.ParentQuizNode == "" {
			return badBody(c)
		}
		a, err := s.store.CreateAnswer(c.Context(), body.ParentQuizNode)
		if err != nil {
			return s.fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	r.Patch("/answer/:id", func(c fiber.Ctx) error {
		var u quizgraph.AnswerUpdate
		if err := c.Bind().JSON(&u); err != nil {
			return badBody(c)
		}
		u.ID = c.Params("id")
		if err := s.store.UpdateAnswer(c.Context(), u); err != nil {
			return s.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/answer/:id", func(c fiber.Ctx) error {
		if err := s.store.DeleteAnswer(c.Context(), c.Params("id")); err != nil {
			return s.fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func (s *server) resultRoutes(r fiber.Router) {
	r.Get("/result/:id", func(c fiber.Ctx) error {
		d, err := s.store.GetResult(c.Context(), c.Params("id"))
		if err != nil {
			return s.fail(c, err)
		}
		if d == nil {
			return notFound(c, "result")
		}
		return c.JSON(d)
	})

	r.Patch("/result/:id", func(c fiber.Ctx) error {
		var u quizgraph.ResultUpdate
		if err := c.Bind().JSON(&u); err != nil {
			return badBody(c)
		}
		u.ID = c.Params("id")
		if err := s.store.UpdateResult(c.Context(), u); err != nil {
			return s.fail(c, err)
		}
		d, err := s.store.GetResult(c.Context(), u.ID)
		if err != nil {
			return s.fail(c, err)
		}
		if d == nil {
			return notFound(c, "result")
		}
		return c.JSON(d)
	})
}
