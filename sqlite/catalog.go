package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/internal/codec"
)

// catalogTable describes one of the code/title/description/images tables.
type catalogTable struct {
	name     string
	title    string
	notFound error
}

var (
	questionsTable  = catalogTable{name: "questions", title: "question", notFound: quizgraph.ErrQuestionNotFound}
	problemsTable   = catalogTable{name: "problems", title: "name", notFound: quizgraph.ErrProblemNotFound}
	treatmentsTable = catalogTable{name: "treatments", title: "name", notFound: quizgraph.ErrTreatmentNotFound}
)

type catalogRow struct {
	ID          string
	Code        string
	Title       string
	Description string
	Images      []quizgraph.FileEntity
}

func (s *LiteStore) createItem(ctx context.Context, t catalogTable, r *catalogRow) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, code, %s, description, images) VALUES (?, ?, ?, ?, ?)`, t.name, t.title),
		r.ID, r.Code, r.Title, r.Description, jsonArg(codec.Images(r.Images)),
	)
	if err != nil {
		return "", wrap("insert "+t.name, err)
	}
	return r.ID, nil
}

func (s *LiteStore) getItem(ctx context.Context, t catalogTable, id string) (*catalogRow, error) {
	var r catalogRow
	var images []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, code, %s, description, images FROM %s WHERE id = ?`, t.title, t.name), id,
	).Scan(&r.ID, &r.Code, &r.Title, &r.Description, &images)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, wrap("get "+t.name, err)
	}
	if r.Images, err = codec.DecodeImages(images); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *LiteStore) updateItem(ctx context.Context, t catalogTable, r *catalogRow) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET code = ?, %s = ?, description = ?, images = ? WHERE id = ?`, t.name, t.title),
		r.Code, r.Title, r.Description, jsonArg(codec.Images(r.Images)), r.ID,
	)
	if err != nil {
		return wrap("update "+t.name, err)
	}
	if affected(res) == 0 {
		return t.notFound
	}
	return nil
}

func (s *LiteStore) listItems(ctx context.Context, t catalogTable, p quizgraph.PageParams) ([]catalogRow, int, error) {
	// LIKE is case-insensitive for ASCII in SQLite.
	where := fmt.Sprintf(`? = '' OR code LIKE ? ESCAPE '\' OR %s LIKE ? ESCAPE '\'`, t.title)
	pattern := codec.Like(p.Search)
	search := []any{p.Search, pattern, pattern}

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, t.name, where), search...,
	).Scan(&total); err != nil {
		return nil, 0, wrap("count "+t.name, err)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, code, %s, description, images FROM %s WHERE %s ORDER BY rowid LIMIT ? OFFSET ?`,
			t.title, t.name, where),
		append(search, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, wrap("list "+t.name, err)
	}
	defer rows.Close()

	var out []catalogRow
	for rows.Next() {
		var r catalogRow
		var images []byte
		if err := rows.Scan(&r.ID, &r.Code, &r.Title, &r.Description, &images); err != nil {
			return nil, 0, wrap("scan "+t.name, err)
		}
		if r.Images, err = codec.DecodeImages(images); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap("rows "+t.name, err)
	}
	return out, total, nil
}

// findItems loads the rows with the given IDs, keyed by ID. Unknown IDs are skipped.
func findItems(ctx context.Context, q querier, t catalogTable, ids []string) (map[string]catalogRow, error) {
	out := make(map[string]catalogRow, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, args := in(ids)
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, code, %s, description, images FROM %s WHERE id IN %s`, t.title, t.name, list), args...)
	if err != nil {
		return nil, wrap("find "+t.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r catalogRow
		var images []byte
		if err := rows.Scan(&r.ID, &r.Code, &r.Title, &r.Description, &images); err != nil {
			return nil, wrap("scan "+t.name, err)
		}
		if r.Images, err = codec.DecodeImages(images); err != nil {
			return nil, err
		}
		out[r.ID] = r
	}
	return out, rows.Err()
}

// ── Questions ─────────────────────────────────────────────────────────

func questionRow(q *quizgraph.Question) *catalogRow {
	return &catalogRow{ID: q.ID, Code: q.Code, Title: q.Question, Description: q.Description, Images: q.Images}
}

func (r catalogRow) question() quizgraph.Question {
	return quizgraph.Question{ID: r.ID, Code: r.Code, Question: r.Title, Description: r.Description, Images: r.Images}
}

// CreateQuestion inserts a question, generating its ID if empty.
func (s *LiteStore) CreateQuestion(ctx context.Context, q *quizgraph.Question) (string, error) {
	id, err := s.createItem(ctx, questionsTable, questionRow(q))
	if err != nil {
		return "", err
	}
	q.ID = id
	return id, nil
}

// GetQuestion returns nil, nil if not found.
func (s *LiteStore) GetQuestion(ctx context.Context, questionID string) (*quizgraph.Question, error) {
	r, err := s.getItem(ctx, questionsTable, questionID)
	if err != nil || r == nil {
		return nil, err
	}
	q := r.question()
	return &q, nil
}

func (s *LiteStore) UpdateQuestion(ctx context.Context, q *quizgraph.Question) error {
	return s.updateItem(ctx, questionsTable, questionRow(q))
}

func (s *LiteStore) ListQuestions(ctx context.Context, p quizgraph.PageParams) (*quizgraph.Page[quizgraph.Question], error) {
	p = p.Normalize()
	rows, total, err := s.listItems(ctx, questionsTable, p)
	if err != nil {
		return nil, err
	}
	out := make([]quizgraph.Question, len(rows))
	for i, r := range rows {
		out[i] = r.question()
	}
	return quizgraph.NewPage(out, total, p), nil
}

// ── Problems ──────────────────────────────────────────────────────────

func problemRow(pr *quizgraph.Problem) *catalogRow {
	return &catalogRow{ID: pr.ID, Code: pr.Code, Title: pr.Name, Description: pr.Description, Images: pr.Images}
}

func (r catalogRow) problem() quizgraph.Problem {
	return quizgraph.Problem{ID: r.ID, Code: r.Code, Name: r.Title, Description: r.Description, Images: r.Images}
}

func (s *LiteStore) CreateProblem(ctx context.Context, pr *quizgraph.Problem) (string, error) {
	id, err := s.createItem(ctx, problemsTable, problemRow(pr))
	if err != nil {
		return "", err
	}
	pr.ID = id
	return id, nil
}

func (s *LiteStore) GetProblem(ctx context.Context, problemID string) (*quizgraph.Problem, error) {
	r, err := s.getItem(ctx, problemsTable, problemID)
	if err != nil || r == nil {
		return nil, err
	}
	pr := r.problem()
	return &pr, nil
}

func (s *LiteStore) UpdateProblem(ctx context.Context, pr *quizgraph.Problem) error {
	return s.updateItem(ctx, problemsTable, problemRow(pr))
}

func (s *LiteStore) ListProblems(ctx context.Context, p quizgraph.PageParams) (*quizgraph.Page[quizgraph.Problem], error) {
	p = p.Normalize()
	rows, total, err := s.listItems(ctx, problemsTable, p)
	if err != nil {
		return nil, err
	}
	out := make([]quizgraph.Problem, len(rows))
	for i, r := range rows {
		out[i] = r.problem()
	}
	return quizgraph.NewPage(out, total, p), nil
}

// ── Treatments ────────────────────────────────────────────────────────

func treatmentRow(t *quizgraph.Treatment) *catalogRow {
	return &catalogRow{ID: t.ID, Code: t.Code, Title: t.Name, Description: t.Description, Images: t.Images}
}

func (r catalogRow) treatment() quizgraph.Treatment {
	return quizgraph.Treatment{ID: r.ID, Code: r.Code, Name: r.Title, Description: r.Description, Images: r.Images}
}

func (s *LiteStore) CreateTreatment(ctx context.Context, t *quizgraph.Treatment) (string, error) {
	id, err := s.createItem(ctx, treatmentsTable, treatmentRow(t))
	if err != nil {
		return "", err
	}
	t.ID = id
	return id, nil
}

func (s *LiteStore) GetTreatment(ctx context.Context, treatmentID string) (*quizgraph.Treatment, error) {
	r, err := s.getItem(ctx, treatmentsTable, treatmentID)
	if err != nil || r == nil {
		return nil, err
	}
	t := r.treatment()
	return &t, nil
}

func (s *LiteStore) UpdateTreatment(ctx context.Context, t *quizgraph.Treatment) error {
	return s.updateItem(ctx, treatmentsTable, treatmentRow(t))
}

func (s *LiteStore) ListTreatments(ctx context.Context, p quizgraph.PageParams) (*quizgraph.Page[quizgraph.Treatment], error) {
	p = p.Normalize()
	rows, total, err := s.listItems(ctx, treatmentsTable, p)
	if err != nil {
		return nil, err
	}
	out := make([]quizgraph.Treatment, len(rows))
	for i, r := range rows {
		out[i] = r.treatment()
	}
	return quizgraph.NewPage(out, total, p), nil
}
