package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// CreateAnswer adds a terminal answer with an empty result to a node.
// Returns ErrNodeNotFound if the node doesn't exist.
func (s *PGStore) CreateAnswer(ctx context.Context, parentNodeID string) (*quizgraph.Answer, error) {
	var created *quizgraph.Answer
	err := s.inTx(ctx, func(tx pgx.Tx) error {
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
func (s *PGStore) UpdateAnswer(ctx context.Context, u quizgraph.AnswerUpdate) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE answers SET label = $1, icon = $2 WHERE id = $3`,
		u.Label, codec.Icon(u.Icon), u.ID,
	)
	if err != nil {
		return wrap("update answer", err)
	}
	if ct.RowsAffected() == 0 {
		return quizgraph.ErrAnswerNotFound
	}
	return nil
}

// DeleteAnswer deletes an answer and the branch behind it.
// Returns ErrLastAnswer when it is the only answer of its node.
// No error if the answer doesn't exist.
func (s *PGStore) DeleteAnswer(ctx context.Context, answerID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var quizID, parentID string
		var next *string
		err := tx.QueryRow(ctx,
			`SELECT quiz_id, parent_node_id, next_node_id FROM answers WHERE id = $1`, answerID,
		).Scan(&quizID, &parentID, &next)
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return wrap("find answer", err)
		}

		var siblings int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM answers WHERE parent_node_id = $1`, parentID,
		).Scan(&siblings); err != nil {
			return wrap("count answers", err)
		}
		if siblings <= 1 {
			return quizgraph.ErrLastAnswer
		}

		if next != nil {
			answers, err := loadAnswers(ctx, tx, quizID)
			if err != nil {
				return err
			}
			if err := deleteNodes(ctx, tx, quizgraph.Descendants(*next, answers)); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM answers WHERE id = $1`, answerID); err != nil {
			return wrap("delete answer", err)
		}
		return nil
	})
}
