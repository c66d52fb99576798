package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// quizSearch takes the raw search, then its LIKE pattern twice.
const quizSearch = `(? = '' OR code LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\')`

// CreateQuiz saves a quiz together with its (empty) root node.
// A missing ID or status is filled in. Returns the quiz with RootNode set.
func (s *LiteStore) CreateQuiz(ctx context.Context, q *quizgraph.Quiz) (*quizgraph.Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = quizgraph.StatusActive
	}
	q.RootNode.ID = uuid.NewString()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quizzes (id, code, name, status, root_node_id) VALUES (?, ?, ?, ?, ?)`,
			q.ID, q.Code, q.Name, string(q.Status), q.RootNode.ID,
		); err != nil {
			return wrap("insert quiz", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_nodes (id, quiz_id) VALUES (?, ?)`, q.RootNode.ID, q.ID,
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

// GetQuiz returns nil, nil if not found.
func (s *LiteStore) GetQuiz(ctx context.Context, quizID string) (*quizgraph.Quiz, error) {
	var q quizgraph.Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, status, root_node_id FROM quizzes WHERE id = ?`, quizID,
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
func (s *LiteStore) ListQuizzes(ctx context.Context, p quizgraph.PageParams) (*quizgraph.Page[quizgraph.Quiz], error) {
	p = p.Normalize()
	pattern := codec.Like(p.Search)
	search := []any{p.Search, pattern, pattern}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE `+quizSearch, search...,
	).Scan(&total); err != nil {
		return nil, wrap("count quizzes", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, status, root_node_id FROM quizzes WHERE `+quizSearch+` ORDER BY rowid LIMIT ? OFFSET ?`,
		append(search, p.Limit, p.Offset())...)
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
func (s *LiteStore) UpdateQuiz(ctx context.Context, q *quizgraph.Quiz) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET code = ?, name = ?, status = COALESCE(NULLIF(?, ''), status) WHERE id = ?`,
		q.Code, q.Name, string(q.Status), q.ID,
	)
	if err != nil {
		return wrap("update quiz", err)
	}
	if affected(res) == 0 {
		return quizgraph.ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz deletes a quiz; its nodes, answers and results cascade.
// No error if the quiz doesn't exist.
func (s *LiteStore) DeleteQuiz(ctx context.Context, quizID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, quizID); err != nil {
		return wrap("delete quiz", err)
	}
	return nil
}
