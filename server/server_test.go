package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*fiber.App, *sqlite.LiteStore) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateSchema(context.Background()))
	return New(store, nil, Options{}), store
}

// do sends a request and decodes the JSON response into out when out is non-nil.
func do(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createQuiz(t *testing.T, app *fiber.App) quizgraph.Quiz {
	t.Helper()
	var q quizgraph.Quiz
	code := do(t, app, http.MethodPost, "/quiz/quiz", map[string]string{"code": "ORTHO", "name": "Orthodontics"}, &q)
	require.Equal(t, http.StatusCreated, code)
	return q
}

func createNode(t *testing.T, app *fiber.App, previous string) string {
	t.Helper()
	var out struct{ ID string }
	code := do(t, app, http.MethodPost, "/quiz/quizNode",
		map[string]any{"previousNode": map[string]string{"id": previous}}, &out)
	require.Equal(t, http.StatusCreated, code)
	return out.ID
}

func TestSchemaRoutes(t *testing.T) {
	app, _ := newApp(t)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodDelete, "/schema", nil, nil))
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/schema", nil, nil))
}

func TestQuizRoutes(t *testing.T) {
	app, _ := newApp(t)
	q := createQuiz(t, app)
	assert.NotEmpty(t, q.RootNode.ID)

	var page quizgraph.Page[quizgraph.Quiz]
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/quiz/quiz?search=orth&limit=5", nil, &page))
	assert.Equal(t, 1, page.TotalCount)

	var updated quizgraph.Quiz
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPatch, "/quiz/quiz/"+q.ID,
		map[string]string{"code": "ORTHO-2", "name": "Renamed", "status": "inactive"}, &updated))
	assert.Equal(t, "ORTHO-2", updated.Code)
	assert.Equal(t, quizgraph.StatusInactive, updated.Status)

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/quiz/quiz", map[string]string{"name": "no code"}, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPatch, "/quiz/quiz/nope", map[string]string{"code": "X"}, nil))

	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/quiz/quiz/"+q.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/quiz/quiz/"+q.ID, nil, nil))
}

func TestNodeRoutes(t *testing.T) {
	app, _ := newApp(t)
	q := createQuiz(t, app)
	root := q.RootNode.ID
	b := createNode(t, app, root)

	var question quizgraph.Question
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/quiz/question",
		map[string]string{"code": "Q-1", "question": "Does it hurt?"}, &question))
	require.NotEmpty(t, question.ID)

	require.Equal(t, http.StatusNoContent, do(t, app, http.MethodPatch, "/quiz/quizNode/"+root,
		map[string]any{"question": map[string]string{"id": question.ID}, "isInlineAnswers": true}, nil))

	var tree quizgraph.QuizNode
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/quiz/quizNode/tree/"+root, nil, &tree))
	require.NotNil(t, tree.Question)
	assert.Equal(t, "Does it hurt?", tree.Question.Question)
	assert.True(t, tree.IsInlineAnswers)
	require.Len(t, tree.NextNodes, 1)
	assert.Equal(t, b, tree.NextNodes[0].ID)

	var clone struct{ ID string }
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/quiz/quizNode/clone/"+b,
		map[string]any{"previousNode": map[string]string{"id": root}}, &clone))
	assert.NotEqual(t, b, clone.ID)

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, app, http.MethodPost, "/quiz/quizNode/clone/"+root,
		map[string]any{"previousNode": map[string]string{"id": b}}, nil))
	assert.Equal(t, http.StatusConflict, do(t, app, http.MethodDelete, "/quiz/quizNode/"+root, nil, nil))
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodDelete, "/quiz/quizNode/"+b, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/quiz/quizNode/tree/"+b, nil, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/quiz/quizNode", map[string]any{}, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPost, "/quiz/quizNode",
		map[string]any{"previousNode": map[string]string{"id": "nope"}}, nil))
}

func TestGraphRoute(t *testing.T) {
	app, _ := newApp(t)
	q := createQuiz(t, app)
	root := q.RootNode.ID
	createNode(t, app, root)

	var g quizgraph.Graph
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/quiz/quizNode/graph/"+root+"?direction=Horizontal", nil, &g))
	assert.Equal(t, quizgraph.DirectionHorizontal, g.Direction)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, root, g.Edges[0].Source)
	assert.Equal(t, quizgraph.SideRight, g.Nodes[0].SourcePosition)
	assert.Equal(t, quizgraph.SideLeft, g.Nodes[0].TargetPosition)

	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/quiz/quizNode/graph/"+root, nil, &g))
	assert.Equal(t, quizgraph.DirectionVertical, g.Direction)

	var body map[string]string
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/quiz/quizNode/graph/"+root+"?direction=diagonal", nil, &body))
	assert.Contains(t, body["error"], "direction")
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/quiz/quizNode/graph/nope", nil, nil))
}

func TestRenderPostedTree(t *testing.T) {
	app, _ := newApp(t)
	tree := map[string]any{
		"id":       "A",
		"question": map[string]string{"id": "qa", "question": "Start"},
		"answers": []map[string]any{
			{"id": "a1", "label": "next", "nextQuizNode": map[string]string{"id": "B"}},
			{"id": "a2", "label": "stop", "nextQuizNode": nil},
		},
		"nextNodes": []map[string]any{{"id": "B", "answers": []any{}, "nextNodes": []any{}}},
	}

	var g quizgraph.Graph
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/graph?direction=TB", tree, &g))
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "end-A-a2", g.Edges[1].Target)
	assert.True(t, g.Edges[0].Data.HasSiblings)
	assert.Equal(t, "B", g.Edges[0].Data.NextNodeID)

	dup := map[string]any{
		"id":        "A",
		"answers":   []map[string]string{{"id": "a1", "nextQuizNodeId": "A"}},
		"nextNodes": []map[string]any{{"id": "A"}},
	}
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, app, http.MethodPost, "/graph", dup, nil))
}

func TestAnswerAndResultRoutes(t *testing.T) {
	app, _ := newApp(t)
	q := createQuiz(t, app)
	root := q.RootNode.ID

	var a quizgraph.Answer
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/quiz/answer",
		map[string]string{"parentQuizNode": root}, &a))
	require.NotNil(t, a.Result)

	assert.Equal(t, http.StatusConflict, do(t, app, http.MethodDelete, "/quiz/answer/"+a.ID, nil, nil))
	assert.Equal(t, http.StatusNoContent, do(t, app, http.MethodPatch, "/quiz/answer/"+a.ID,
		map[string]any{"label": "Yes", "icon": map[string]string{"id": "f1", "path": "/icons/yes.svg"}}, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPatch, "/quiz/answer/nope", map[string]string{"label": "x"}, nil))

	var problem quizgraph.Problem
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/quiz/problem",
		map[string]string{"code": "P-1", "name": "Crowding"}, &problem))
	var treatment quizgraph.Treatment
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/quiz/treatment",
		map[string]string{"code": "T-1", "name": "Aligners"}, &treatment))

	var d quizgraph.ResultDetail
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPatch, "/quiz/result/"+a.Result.ID,
		map[string]any{"problemIds": []string{problem.ID}, "treatmentGroups": [][]string{{treatment.ID}}}, &d))
	require.Len(t, d.Problems, 1)
	assert.Equal(t, "Crowding", d.Problems[0].Name)
	assert.Equal(t, "Aligners", d.TreatmentGroups[0][0].Name)

	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPatch, "/quiz/result/"+a.Result.ID,
		map[string]any{"problemIds": []string{"nope"}}, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/quiz/result/nope", nil, nil))
}

func TestCatalogRoutes(t *testing.T) {
	app, _ := newApp(t)
	for i := 1; i <= 3; i++ {
		require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/quiz/treatment",
			map[string]string{"code": fmt.Sprintf("T-%d", i), "name": fmt.Sprintf("Treatment %d", i)}, nil))
	}

	var page quizgraph.Page[quizgraph.Treatment]
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/quiz/treatment?page=1&limit=2", nil, &page))
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasNextPage)

	id := page.Data[0].ID
	var updated quizgraph.Treatment
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPatch, "/quiz/treatment/"+id,
		map[string]string{"code": "T-1", "name": "Braces"}, &updated))
	assert.Equal(t, id, updated.ID)

	var got quizgraph.Treatment
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/quiz/treatment/"+id, nil, &got))
	assert.Equal(t, "Braces", got.Name)

	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/quiz/question/nope", nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodPatch, "/quiz/problem/nope", map[string]string{"code": "x"}, nil))
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodPost, "/quiz/problem", "not an object", nil))
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{quizgraph.ErrInvalidDirection, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", quizgraph.ErrNodeNotFound), http.StatusNotFound},
		{quizgraph.ErrTreatmentNotFound, http.StatusNotFound},
		{quizgraph.ErrRootNode, http.StatusConflict},
		{quizgraph.ErrLastAnswer, http.StatusConflict},
		{quizgraph.ErrCycleDetected, http.StatusUnprocessableEntity},
		{quizgraph.ErrDuplicateNode, http.StatusUnprocessableEntity},
		{quizgraph.ErrInvalidTree, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newApp(t)
	var body map[string]string
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/nowhere", nil, &body))
	assert.NotEmpty(t, body["error"])
}

// vanishingResults accepts a result update but no longer finds the result.
type vanishingResults struct {
	quizgraph.Store
}

func (vanishingResults) UpdateResult(context.Context, quizgraph.ResultUpdate) error { return nil }

func (vanishingResults) GetResult(context.Context, string) (*quizgraph.ResultDetail, error) {
	return nil, nil
}

func TestPatchResultGoneAfterUpdate(t *testing.T) {
	app := New(vanishingResults{}, nil, Options{})
	var body map[string]string
	code := do(t, app, http.MethodPatch, "/quiz/result/r1", map[string]any{"problemIds": []string{}}, &body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "result not found", body["error"])
}
