package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// GetResult returns a result with its problems and treatments resolved.
// IDs that no longer exist in the catalog are skipped.
// Returns nil, nil if not found.
func (s *LiteStore) GetResult(ctx context.Context, resultID string) (*quizgraph.ResultDetail, error) {
	var answerID string
	var problemIDs, groups []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT answer_id, problem_ids, treatment_groups FROM results WHERE id = ?`, resultID,
	).Scan(&answerID, &problemIDs, &groups)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap("get result", err)
	}
	r, err := codec.Result(&resultID, problemIDs, groups)
	if err != nil {
		return nil, err
	}

	problems, err := findItems(ctx, s.db, problemsTable, r.ProblemIDs)
	if err != nil {
		return nil, err
	}
	treatments, err := findItems(ctx, s.db, treatmentsTable, codec.Unique(r.TreatmentGroups...))
	if err != nil {
		return nil, err
	}

	return quizgraph.ResolveResult(answerID, r,
		func(id string) (quizgraph.Problem, bool) {
			row, ok := problems[id]
			return row.problem(), ok
		},
		func(id string) (quizgraph.Treatment, bool) {
			row, ok := treatments[id]
			return row.treatment(), ok
		},
	), nil
}

// UpdateResult replaces the problems and treatment groups of a result.
// Every referenced ID must exist. Returns ErrResultNotFound, ErrProblemNotFound
// or ErrTreatmentNotFound.
func (s *LiteStore) UpdateResult(ctx context.Context, u quizgraph.ResultUpdate) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireItems(ctx, tx, problemsTable, codec.Unique(u.ProblemIDs)); err != nil {
			return err
		}
		if err := requireItems(ctx, tx, treatmentsTable, codec.Unique(u.TreatmentGroups...)); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE results SET problem_ids = ?, treatment_groups = ? WHERE id = ?`,
			jsonArg(codec.IDs(u.ProblemIDs)), jsonArg(codec.Groups(u.TreatmentGroups)), u.ID,
		)
		if err != nil {
			return wrap("update result", err)
		}
		if affected(res) == 0 {
			return quizgraph.ErrResultNotFound
		}
		return nil
	})
}

func requireItems(ctx context.Context, q querier, t catalogTable, ids []string) error {
	found, err := findItems(ctx, q, t, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", t.notFound, id)
		}
	}
	return nil
}
