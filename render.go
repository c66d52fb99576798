package quizgraph

import (
	"fmt"

	"github.com/meikuraledutech/quizgraph/layout"
)

// Sizes are the fixed bounding boxes used for layout, per node kind.
type Sizes struct {
	Question layout.Size
	Terminal layout.Size
	// Placeholder is the box reserved for the synthesized target of an
	// answer without a next node.
	Placeholder layout.Size
	NodeSep     float64
	RankSep     float64
}

// DefaultSizes matches the node components of the quiz editor.
var DefaultSizes = Sizes{
	Question:    layout.Size{Width: 493, Height: 650},
	Terminal:    layout.Size{Width: 493, Height: 300},
	Placeholder: layout.Size{Width: 493, Height: 300},
	NodeSep:     layout.DefaultNodeSep,
	RankSep:     layout.DefaultRankSep,
}

func (s Sizes) of(k Kind) layout.Size {
	if k == KindTerminal {
		return s.Terminal
	}
	return s.Question
}

// Layout positions nodes for the given direction. A new layout graph is built
// on every call and the input slices are left untouched. Positions are the
// top-left corners of the node boxes.
func Layout(nodes []GraphNode, edges []GraphEdge, dir Direction, sizes Sizes) ([]GraphNode, []GraphEdge, error) {
	ldir := layout.TopToBottom
	if dir == DirectionHorizontal {
		ldir = layout.LeftToRight
	}
	g := layout.New(layout.Options{Direction: ldir, NodeSep: sizes.NodeSep, RankSep: sizes.RankSep})

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		g.SetNode(n.ID, sizes.of(n.Type))
		known[n.ID] = true
	}
	for _, e := range edges {
		if !known[e.Target] {
			g.SetNode(e.Target, sizes.Placeholder)
			known[e.Target] = true
		}
		g.SetEdge(e.Source, e.Target)
	}
	if err := g.Run(); err != nil {
		return nil, nil, fmt.Errorf("quizgraph: layout: %w", err)
	}

	source, target := dir.Sides()
	out := make([]GraphNode, len(nodes))
	for i, n := range nodes {
		size := sizes.of(n.Type)
		c, _ := g.Node(n.ID)
		n.Position = Point{X: c.X - size.Width/2, Y: c.Y - size.Height/2}
		n.SourcePosition = source
		n.TargetPosition = target
		out[i] = n
	}
	outEdges := make([]GraphEdge, len(edges))
	copy(outEdges, edges)
	return out, outEdges, nil
}

// Render runs the whole pipeline on a tree snapshot: validate, flatten,
// generate edges, lay out.
func Render(root *QuizNode, dir Direction, sizes Sizes) (*Graph, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}
	nodes := Flatten(root)
	edges := GenerateEdges(nodes)
	nodes, edges, err := Layout(nodes, edges, dir, sizes)
	if err != nil {
		return nil, err
	}
	return &Graph{Direction: dir, Nodes: nodes, Edges: edges}, nil
}
