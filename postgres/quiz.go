package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// quizSearch matches code or name; $1 is the raw search and $2 its LIKE pattern.
const quizSearch = `($1 = '' OR code ILIKE $2 ESCAPE '\' OR name ILIKE $2 ESCAPE '\')`

// CreateQuiz saves a quiz together with its (empty) root node.
// A missing ID or status is filled in. Returns the quiz with RootNode set.
func (s *PGStore) CreateQuiz(ctx context.Context, q *quizgraph.Quiz) (*quizgraph.Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = quizgraph.StatusActive
	}
	q.RootNode.ID = uuid.NewString()

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO quizzes (id, code, name, status, root_node_id) VALUES ($1, $2, $3, $4, $5)`,
			q.ID, q.Code, q.Name, q.Status, q.RootNode.ID,
		); err != nil {
			return wrap("insert quiz", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO quiz_nodes (id, quiz_id) VALUES ($1, $2)`, q.RootNode.ID, q.ID,
		); err != nil {
			return wrap("insert root node", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuiz fetches a quiz by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetQuiz(ctx context.Context, quizID string) (*quizgraph.Quiz, error) {
	var q quizgraph.Quiz
	err := s.db.QueryRow(ctx,
		`SELECT id, code, name, status, root_node_id FROM quizzes WHERE id = $1`, quizID,
	).Scan(&q.ID, &q.Code, &q.Name, &q.Status, &q.RootNode.ID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap("get quiz", err)
	}
	return &q, nil
}

// ListQuizzes returns one page of quizzes, filtered by code or name.
func (s *PGStore) ListQuizzes(ctx context.Context, p quizgraph.PageParams) (*quizgraph.Page[quizgraph.Quiz], error) {
	p = p.Normalize()

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE `+quizSearch,
		p.Search, codec.Like(p.Search),
	).Scan(&total); err != nil {
		return nil, wrap("count quizzes", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, code, name, status, root_node_id FROM quizzes
		WHERE `+quizSearch+`
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`, p.Search, codec.Like(p.Search), p.Limit, p.Offset())
	if err != nil {
		return nil, wrap("list quizzes", err)
	}
	defer rows.Close()

	var quizzes []quizgraph.Quiz
	for rows.Next() {
		var q quizgraph.Quiz
		if err := rows.Scan(&q.ID, &q.Code, &q.Name, &q.Status, &q.RootNode.ID); err != nil {
			return nil, wrap("scan quiz", err)
		}
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("rows quizzes", err)
	}
	return quizgraph.NewPage(quizzes, total, p), nil
}

// UpdateQuiz updates the code, name and status of a quiz. An empty status is kept.
// Returns ErrQuizNotFound if the quiz doesn't exist.
func (s *PGStore) UpdateQuiz(ctx context.Context, q *quizgraph.Quiz) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE quizzes SET code = $1, name = $2, status = COALESCE(NULLIF($3, ''), status) WHERE id = $4`,
		q.Code, q.Name, string(q.Status), q.ID,
	)
	if err != nil {
		return wrap("update quiz", err)
	}
	if ct.RowsAffected() == 0 {
		return quizgraph.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz deletes a quiz; its nodes, answers and results cascade.
// No error if the quiz doesn't exist.
func (s *PGStore) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID); err != nil {
		return wrap("delete quiz", err)
	}
	return nil
}
