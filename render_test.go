package quizgraph

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearTree() *QuizNode {
	root := &QuizNode{ID: "A", Question: question("A")}
	b := &QuizNode{ID: "B", Question: question("C")}
	link(root, b, "a1", "next")
	terminate(b, "a2", "finish")
	return root
}

func TestRender_LinearScenario(t *testing.T) {
	vertical, err := Render(linearTree(), DirectionVertical, DefaultSizes)
	require.NoError(t, err)

	require.Len(t, vertical.Nodes, 2)
	assert.Equal(t, 1, vertical.Nodes[0].Data.Level)
	assert.Equal(t, 2, vertical.Nodes[1].Data.Level)
	require.Len(t, vertical.Edges, 2)
	for _, e := range vertical.Edges {
		assert.False(t, e.Data.HasSiblings)
	}
	for _, n := range vertical.Nodes {
		assert.Equal(t, SideBottom, n.SourcePosition)
		assert.Equal(t, SideTop, n.TargetPosition)
	}

	horizontal, err := Render(linearTree(), DirectionHorizontal, DefaultSizes)
	require.NoError(t, err)

	assert.Len(t, horizontal.Nodes, len(vertical.Nodes))
	assert.Len(t, horizontal.Edges, len(vertical.Edges))
	assert.Equal(t, vertical.Edges, horizontal.Edges)
	for i, n := range horizontal.Nodes {
		assert.Equal(t, SideRight, n.SourcePosition)
		assert.Equal(t, SideLeft, n.TargetPosition)
		assert.Equal(t, vertical.Nodes[i].Data, n.Data)
	}
	assert.NotEqual(t, vertical.Nodes[1].Position, horizontal.Nodes[1].Position)
}

func TestLayout_TopLeftAnchor(t *testing.T) {
	nodes := Flatten(linearTree())
	edges := GenerateEdges(nodes)

	out, _, err := Layout(nodes, edges, DirectionVertical, DefaultSizes)
	require.NoError(t, err)

	// A single column: boxes are left-aligned at x=0 and stacked by rank.
	assert.Equal(t, Point{X: 0, Y: 0}, out[0].Position)
	assert.Equal(t, Point{X: 0, Y: 650 + DefaultSizes.RankSep}, out[1].Position)
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	nodes := Flatten(sampleTree())
	edges := GenerateEdges(nodes)

	_, _, err := Layout(nodes, edges, DirectionHorizontal, DefaultSizes)
	require.NoError(t, err)
	for _, n := range nodes {
		assert.Equal(t, Point{}, n.Position)
		assert.Empty(t, n.SourcePosition)
	}
}

func TestLayout_StableOrdering(t *testing.T) {
	for _, dir := range []Direction{DirectionVertical, DirectionHorizontal} {
		t.Run(string(dir), func(t *testing.T) {
			order := func() []string {
				g, err := Render(sampleTree(), dir, DefaultSizes)
				require.NoError(t, err)
				nodes := g.Nodes
				sort.SliceStable(nodes, func(i, j int) bool {
					if dir == DirectionHorizontal {
						return nodes[i].Position.Y < nodes[j].Position.Y
					}
					return nodes[i].Position.X < nodes[j].Position.X
				})
				ids := make([]string, len(nodes))
				for i, n := range nodes {
					ids[i] = n.ID
				}
				return ids
			}
			assert.Equal(t, order(), order())
		})
	}
}

func TestLayout_SiblingsDoNotOverlap(t *testing.T) {
	g, err := Render(sampleTree(), DirectionVertical, DefaultSizes)
	require.NoError(t, err)

	pos := make(map[string]Point)
	for _, n := range g.Nodes {
		pos[n.ID] = n.Position
	}
	assert.Equal(t, pos["b"].Y, pos["c"].Y)
	assert.GreaterOrEqual(t, pos["c"].X-pos["b"].X, DefaultSizes.Question.Width)
}

func TestRender_RejectsDuplicates(t *testing.T) {
	root := &QuizNode{ID: "r", Question: question("A")}
	link(root, &QuizNode{ID: "x"}, "a1", "")
	link(root, &QuizNode{ID: "x"}, "a2", "")

	_, err := Render(root, DirectionVertical, DefaultSizes)
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestRender_JSONShape(t *testing.T) {
	g, err := Render(linearTree(), DirectionHorizontal, DefaultSizes)
	require.NoError(t, err)

	raw, err := json.Marshal(g)
	require.NoError(t, err)

	var decoded struct {
		Direction string `json:"direction"`
		Nodes     []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			Data struct {
				Level  int     `json:"level"`
				Parent *string `json:"parent"`
			} `json:"data"`
		} `json:"nodes"`
		Edges []struct {
			Type string `json:"type"`
			Data struct {
				HasSiblings bool   `json:"hasSiblings"`
				Label       string `json:"label"`
			} `json:"data"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "LR", decoded.Direction)
	assert.Equal(t, "quizQuestionNode", decoded.Nodes[0].Type)
	assert.Nil(t, decoded.Nodes[0].Data.Parent)
	require.NotNil(t, decoded.Nodes[1].Data.Parent)
	assert.Equal(t, "A", *decoded.Nodes[1].Data.Parent)
	assert.Equal(t, "answerEdge", decoded.Edges[0].Type)
	assert.Equal(t, "next", decoded.Edges[0].Data.Label)
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"", DirectionVertical, false},
		{"TB", DirectionVertical, false},
		{"vertical", DirectionVertical, false},
		{"LR", DirectionHorizontal, false},
		{"Horizontal", DirectionHorizontal, false},
		{"diagonal", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDirection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_JSON(t *testing.T) {
	raw, err := json.Marshal(KindTerminal)
	require.NoError(t, err)
	assert.JSONEq(t, `"quizEndNode"`, string(raw))

	var k Kind
	require.NoError(t, json.Unmarshal([]byte(`"quizQuestionNode"`), &k))
	assert.Equal(t, KindQuestion, k)
	assert.Error(t, json.Unmarshal([]byte(`"other"`), &k))
}

func TestRender_RejectsClashingEdgeIDs(t *testing.T) {
	root := &QuizNode{ID: "x", Question: question("X")}
	xy := &QuizNode{ID: "x-y", Question: question("XY")}
	link(root, &QuizNode{ID: "y-z"}, "a1", "")
	link(root, xy, "a2", "")
	link(xy, &QuizNode{ID: "z"}, "a3", "")

	_, err := Render(root, DirectionVertical, DefaultSizes)
	assert.ErrorIs(t, err, ErrInvalidTree)
}

func TestAnswer_ClientShape(t *testing.T) {
	raw := `{
		"id": "1",
		"isInlineAnswers": false,
		"question": {"id": "q1", "code": "Q1", "question": "Pain?"},
		"parentAnswer": null,
		"answers": [
			{"id": "a1", "label": "yes", "nextQuizNode": {"id": "2"}},
			{"id": "a2", "label": "no", "nextQuizNode": null}
		],
		"nextNodes": [{"id": "2", "question": null, "answers": [], "nextNodes": []}]
	}`
	var root QuizNode
	require.NoError(t, json.Unmarshal([]byte(raw), &root))
	assert.Equal(t, "2", root.Answers[0].NextNodeID)
	assert.Empty(t, root.Answers[1].NextNodeID)

	g, err := Render(&root, DirectionVertical, DefaultSizes)
	require.NoError(t, err)
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "2", g.Edges[0].Target)
	assert.Equal(t, "end-1-a2", g.Edges[1].Target)

	out, err := json.Marshal(root.Answers)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id": "a1", "label": "yes", "nextQuizNode": {"id": "2"}},
		{"id": "a2", "label": "no", "nextQuizNode": null}
	]`, string(out))

	edge, err := json.Marshal(g.Edges[0].Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "a1", "label": "yes", "nextQuizNode": {"id": "2"}, "hasSiblings": true}`, string(edge))

	var back EdgeData
	require.NoError(t, json.Unmarshal(edge, &back))
	assert.Equal(t, g.Edges[0].Data, back)
}

func TestAnswer_NextNodeIDFallback(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`{"id": "a1", "nextQuizNodeId": "n2"}`), &a))
	assert.Equal(t, "n2", a.NextNodeID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "a1", "nextQuizNodeId": "old", "nextQuizNode": {"id": "new"}}`), &a))
	assert.Equal(t, "new", a.NextNodeID, "nextQuizNode wins")
}
