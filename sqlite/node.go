package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// GetTree returns the tree rooted at nodeID, which may be any node of a quiz.
// Returns nil, nil if the node doesn't exist.
func (s *LiteStore) GetTree(ctx context.Context, nodeID string) (*quizgraph.QuizNode, error) {
	quizID, err := nodeQuiz(ctx, s.db, nodeID)
	if err != nil || quizID == "" {
		return nil, err
	}
	nodes, answers, err := loadQuiz(ctx, s.db, quizID)
	if err != nil {
		return nil, err
	}
	return quizgraph.BuildTree(nodeID, nodes, answers)
}

// CreateNode adds an empty node behind a new answer of previousNodeID.
// Returns the new node ID, or ErrNodeNotFound if the previous node doesn't exist.
func (s *LiteStore) CreateNode(ctx context.Context, previousNodeID string) (string, error) {
	nodeID := uuid.NewString()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		quizID, err := nodeQuiz(ctx, tx, previousNodeID)
		if err != nil {
			return err
		}
		if quizID == "" {
			return quizgraph.ErrNodeNotFound
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_nodes (id, quiz_id) VALUES (?, ?)`, nodeID, quizID,
		); err != nil {
			return wrap("insert node", err)
		}
		_, err = insertAnswer(ctx, tx, quizID, previousNodeID, &quizgraph.Answer{NextNodeID: nodeID})
		return err
	})
	if err != nil {
		return "", err
	}
	return nodeID, nil
}

// UpdateNode changes the answer layout flag and/or the question of a node.
func (s *LiteStore) UpdateNode(ctx context.Context, u quizgraph.NodeUpdate) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		quizID, err := nodeQuiz(ctx, tx, u.ID)
		if err != nil {
			return err
		}
		if quizID == "" {
			return quizgraph.ErrNodeNotFound
		}

		if u.IsInlineAnswers != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE quiz_nodes SET is_inline_answers = ? WHERE id = ?`, *u.IsInlineAnswers, u.ID,
			); err != nil {
				return wrap("update node", err)
			}
		}
		if u.QuestionID != nil {
			if *u.QuestionID != "" {
				var n int
				if err := tx.QueryRowContext(ctx,
					`SELECT COUNT(*) FROM questions WHERE id = ?`, *u.QuestionID,
				).Scan(&n); err != nil {
					return wrap("find question", err)
				}
				if n == 0 {
					return quizgraph.ErrQuestionNotFound
				}
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE quiz_nodes SET question_id = ? WHERE id = ?`, nullable(*u.QuestionID), u.ID,
			); err != nil {
				return wrap("update node question", err)
			}
		}
		return nil
	})
}

// DeleteNode deletes a node and everything below it. The answer that led to
// the node becomes a terminal answer.
// Returns ErrRootNode for the root of a quiz. No error if the node doesn't exist.
func (s *LiteStore) DeleteNode(ctx context.Context, nodeID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var quizID, rootID string
		err := tx.QueryRowContext(ctx, `
			SELECT n.quiz_id, q.root_node_id
			FROM quiz_nodes n JOIN quizzes q ON q.id = n.quiz_id
			WHERE n.id = ?`, nodeID,
		).Scan(&quizID, &rootID)
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return wrap("find node", err)
		}
		if rootID == nodeID {
			return quizgraph.ErrRootNode
		}

		answers, err := loadAnswers(ctx, tx, quizID)
		if err != nil {
			return err
		}
		return deleteNodes(ctx, tx, quizgraph.Descendants(nodeID, answers))
	})
}

// CloneNode copies the subtree rooted at sourceNodeID behind a new answer of
// previousNodeID. Returns the ID of the copied root.
func (s *LiteStore) CloneNode(ctx context.Context, sourceNodeID, previousNodeID string) (string, error) {
	var cloneID string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		targetQuiz, err := nodeQuiz(ctx, tx, previousNodeID)
		if err != nil {
			return err
		}
		sourceQuiz, err := nodeQuiz(ctx, tx, sourceNodeID)
		if err != nil {
			return err
		}
		if targetQuiz == "" || sourceQuiz == "" {
			return quizgraph.ErrNodeNotFound
		}

		nodes, answers, err := loadQuiz(ctx, tx, sourceQuiz)
		if err != nil {
			return err
		}
		plan, err := quizgraph.PlanClone(sourceNodeID, previousNodeID, sourceQuiz == targetQuiz, nodes, answers, uuid.NewString)
		if err != nil {
			return err
		}
		if err := insertPlan(ctx, tx, targetQuiz, plan); err != nil {
			return err
		}
		cloneID = plan.RootID
		return nil
	})
	if err != nil {
		return "", err
	}
	return cloneID, nil
}

// insertPlan persists every node first, then every answer, then the link.
func insertPlan(ctx context.Context, tx *sql.Tx, quizID string, plan *quizgraph.ClonePlan) error {
	for _, n := range plan.Nodes {
		questionID := ""
		if n.Question != nil {
			questionID = n.Question.ID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_nodes (id, quiz_id, question_id, is_inline_answers) VALUES (?, ?, ?, ?)`,
			n.ID, quizID, nullable(questionID), n.IsInlineAnswers,
		); err != nil {
			return wrap(fmt.Sprintf("insert node %s", n.ID), err)
		}
	}
	for i := range plan.Answers {
		a := &plan.Answers[i]
		if err := insertAnswerAt(ctx, tx, quizID, a.ParentNodeID, &a.Answer, a.Position); err != nil {
			return err
		}
	}
	_, err := insertAnswer(ctx, tx, quizID, plan.PreviousID, &plan.Link)
	return err
}

// insertAnswer appends an answer (and its result) after the node's last answer.
func insertAnswer(ctx context.Context, q querier, quizID, parentNodeID string, a *quizgraph.Answer) (*quizgraph.Answer, error) {
	var pos int
	if err := q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM answers WHERE parent_node_id = ?`, parentNodeID,
	).Scan(&pos); err != nil {
		return nil, wrap("answer position", err)
	}
	if err := insertAnswerAt(ctx, q, quizID, parentNodeID, a, pos); err != nil {
		return nil, err
	}
	return a, nil
}

func insertAnswerAt(ctx context.Context, q querier, quizID, parentNodeID string, a *quizgraph.Answer, pos int) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Result == nil {
		a.Result = codec.NewResult(uuid.NewString())
	}
	if a.Result.ID == "" {
		a.Result.ID = uuid.NewString()
	}

	if _, err := q.ExecContext(ctx, `
		INSERT INTO answers (id, quiz_id, parent_node_id, next_node_id, label, icon, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, quizID, parentNodeID, nullable(a.NextNodeID), a.Label, jsonArg(codec.Icon(a.Icon)), pos,
	); err != nil {
		return wrap(fmt.Sprintf("insert answer %s", a.ID), err)
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO results (id, answer_id, problem_ids, treatment_groups) VALUES (?, ?, ?, ?)`,
		a.Result.ID, a.ID, jsonArg(codec.IDs(a.Result.ProblemIDs)), jsonArg(codec.Groups(a.Result.TreatmentGroups)),
	); err != nil {
		return wrap(fmt.Sprintf("insert result %s", a.Result.ID), err)
	}
	return nil
}

// deleteNodes removes nodes by ID. Their answers and results cascade; answers
// elsewhere that pointed at them become terminal.
func deleteNodes(ctx context.Context, q querier, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	list, args := in(ids)
	if _, err := q.ExecContext(ctx, `DELETE FROM quiz_nodes WHERE id IN `+list, args...); err != nil {
		return wrap("delete nodes", err)
	}
	return nil
}
