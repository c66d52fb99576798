package sqlite

import (
	"context"
	"database/sql"

	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// CreateAnswer adds a terminal answer with an empty result to a node.
// Returns ErrNodeNotFound if the node doesn't exist.
func (s *LiteStore) CreateAnswer(ctx context.Context, parentNodeID string) (*quizgraph.Answer, error) {
	var created *quizgraph.Answer
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		quizID, err := nodeQuiz(ctx, tx, parentNodeID)
		if err != nil {
			return err
		}
		if quizID == "" {
			return quizgraph.ErrNodeNotFound
		}
		created, err = insertAnswer(ctx, tx, quizID, parentNodeID, &quizgraph.Answer{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateAnswer replaces the label and icon of an answer.
// Returns ErrAnswerNotFound if the answer doesn't exist.
func (s *LiteStore) UpdateAnswer(ctx context.Context, u quizgraph.AnswerUpdate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE answers SET label = ?, icon = ? WHERE id = ?`,
		u.Label, jsonArg(codec.Icon(u.Icon)), u.ID,
	)
	if err != nil {
		return wrap("update answer", err)
	}
	if affected(res) == 0 {
		return quizgraph.ErrAnswerNotFound
	}
	return nil
}

// DeleteAnswer deletes an answer and the branch behind it.
// Returns ErrLastAnswer when it is the only answer of its node.
// No error if the answer doesn't exist.
func (s *LiteStore) DeleteAnswer(ctx context.Context, answerID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var quizID, parentID string
		var next sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT quiz_id, parent_node_id, next_node_id FROM answers WHERE id = ?`, answerID,
		).Scan(&quizID, &parentID, &next)
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return wrap("find answer", err)
		}

		var siblings int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM answers WHERE parent_node_id = ?`, parentID,
		).Scan(&siblings); err != nil {
			return wrap("count answers", err)
		}
		if siblings <= 1 {
			return quizgraph.ErrLastAnswer
		}

		if next.Valid {
			answers, err := loadAnswers(ctx, tx, quizID)
			if err != nil {
				return err
			}
			if err := deleteNodes(ctx, tx, quizgraph.Descendants(next.String, answers)); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE id = ?`, answerID); err != nil {
			return wrap("delete answer", err)
		}
		return nil
	})
}
