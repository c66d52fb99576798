package postgres

import (
	"context"

	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// nodeQuiz returns the quiz a node belongs to, or "" if the node doesn't exist.
func nodeQuiz(ctx context.Context, q querier, nodeID string) (string, error) {
	var quizID string
	err := q.QueryRow(ctx, `SELECT quiz_id FROM quiz_nodes WHERE id = $1`, nodeID).Scan(&quizID)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", wrap("find node", err)
	}
	return quizID, nil
}

// loadQuiz reads every node and answer of a quiz as flat records.
func loadQuiz(ctx context.Context, q querier, quizID string) ([]quizgraph.NodeRecord, []quizgraph.AnswerRecord, error) {
	nodes, err := loadNodes(ctx, q, quizID)
	if err != nil {
		return nil, nil, err
	}
	answers, err := loadAnswers(ctx, q, quizID)
	if err != nil {
		return nil, nil, err
	}
	return nodes, answers, nil
}

func loadNodes(ctx context.Context, q querier, quizID string) ([]quizgraph.NodeRecord, error) {
	rows, err := q.Query(ctx, `
		SELECT n.id, n.is_inline_answers, qu.id, qu.code, qu.question, qu.description, qu.images
		FROM quiz_nodes n
		LEFT JOIN questions qu ON qu.id = n.question_id
		WHERE n.quiz_id = $1
		ORDER BY n.created_at, n.id`, quizID)
	if err != nil {
		return nil, wrap("query nodes", err)
	}
	defer rows.Close()

	nodes := []quizgraph.NodeRecord{}
	for rows.Next() {
		n := quizgraph.NodeRecord{QuizID: quizID}
		var qID, qCode, qText, qDesc *string
		var qImages []byte
		if err := rows.Scan(&n.ID, &n.IsInlineAnswers, &qID, &qCode, &qText, &qDesc, &qImages); err != nil {
			return nil, wrap("scan node", err)
		}
		if qID != nil {
			images, err := codec.DecodeImages(qImages)
			if err != nil {
				return nil, err
			}
			n.Question = &quizgraph.Question{
				ID:          *qID,
				Code:        deref(qCode),
				Question:    deref(qText),
				Description: deref(qDesc),
				Images:      images,
			}
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("rows nodes", err)
	}
	return nodes, nil
}

func loadAnswers(ctx context.Context, q querier, quizID string) ([]quizgraph.AnswerRecord, error) {
	rows, err := q.Query(ctx, `
		SELECT a.id, a.parent_node_id, a.next_node_id, a.label, a.icon, a.position,
		       r.id, r.problem_ids, r.treatment_groups
		FROM answers a
		LEFT JOIN results r ON r.answer_id = a.id
		WHERE a.quiz_id = $1
		ORDER BY a.position, a.created_at, a.id`, quizID)
	if err != nil {
		return nil, wrap("query answers", err)
	}
	defer rows.Close()

	answers := []quizgraph.AnswerRecord{}
	for rows.Next() {
		var a quizgraph.AnswerRecord
		var next, resultID *string
		var icon, problemIDs, groups []byte
		if err := rows.Scan(&a.ID, &a.ParentNodeID, &next, &a.Label, &icon, &a.Position,
			&resultID, &problemIDs, &groups); err != nil {
			return nil, wrap("scan answer", err)
		}
		a.NextNodeID = deref(next)
		if a.Icon, err = codec.DecodeIcon(icon); err != nil {
			return nil, err
		}
		if a.Result, err = codec.Result(resultID, problemIDs, groups); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("rows answers", err)
	}
	return answers, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
