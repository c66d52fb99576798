package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain(dir Direction) *Graph {
	g := New(Options{Direction: dir})
	g.SetNode("a", Size{Width: 100, Height: 40})
	g.SetNode("b", Size{Width: 100, Height: 40})
	g.SetNode("c", Size{Width: 100, Height: 40})
	g.SetEdge("a", "b")
	g.SetEdge("b", "c")
	return g
}

func TestRun_ChainTopToBottom(t *testing.T) {
	g := chain(TopToBottom)
	require.NoError(t, g.Run())

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	c, _ := g.Node("c")

	assert.Equal(t, Point{X: 50, Y: 20}, a)
	assert.Equal(t, Point{X: 50, Y: 110}, b)
	assert.Equal(t, Point{X: 50, Y: 200}, c)
}

func TestRun_ChainLeftToRight(t *testing.T) {
	g := chain(LeftToRight)
	require.NoError(t, g.Run())

	a, _ := g.Node("a")
	b, _ := g.Node("b")

	assert.Equal(t, Point{X: 50, Y: 20}, a)
	assert.Equal(t, Point{X: 200, Y: 20}, b)
}

func TestRun_ParentCenteredOverChildren(t *testing.T) {
	g := New(Options{})
	for _, id := range []string{"root", "l", "r"} {
		g.SetNode(id, Size{Width: 100, Height: 100})
	}
	g.SetEdge("root", "l")
	g.SetEdge("root", "r")
	require.NoError(t, g.Run())

	root, _ := g.Node("root")
	l, _ := g.Node("l")
	r, _ := g.Node("r")

	assert.Equal(t, 50.0, l.X)
	assert.Equal(t, 200.0, r.X)
	assert.Equal(t, (l.X+r.X)/2, root.X)
	assert.Equal(t, l.Y, r.Y)
	assert.Less(t, root.Y, l.Y)
}

func TestRun_WideParentDoesNotOverlapSiblings(t *testing.T) {
	g := New(Options{NodeSep: 10})
	g.SetNode("root", Size{Width: 10, Height: 10})
	g.SetNode("wide", Size{Width: 300, Height: 10})
	g.SetNode("narrow", Size{Width: 10, Height: 10})
	g.SetNode("leaf", Size{Width: 10, Height: 10})
	g.SetEdge("root", "wide")
	g.SetEdge("root", "narrow")
	g.SetEdge("wide", "leaf")
	require.NoError(t, g.Run())

	wide, _ := g.Node("wide")
	narrow, _ := g.Node("narrow")
	leaf, _ := g.Node("leaf")

	assert.GreaterOrEqual(t, narrow.X-5, wide.X+150+10)
	assert.Equal(t, wide.X, leaf.X)
}

func TestRun_ImplicitNodesFromEdges(t *testing.T) {
	g := New(Options{})
	g.SetNode("a", Size{Width: 20, Height: 20})
	g.SetEdge("a", "ghost")
	require.NoError(t, g.Run())

	assert.Equal(t, 2, g.Len())
	p, ok := g.Node("ghost")
	require.True(t, ok)
	a, _ := g.Node("a")
	assert.Greater(t, p.Y, a.Y)
}

func TestRun_Cycle(t *testing.T) {
	g := New(Options{})
	g.SetEdge("a", "b")
	g.SetEdge("b", "a")
	assert.ErrorIs(t, g.Run(), ErrCycle)

	self := New(Options{})
	self.SetEdge("x", "x")
	assert.ErrorIs(t, self.Run(), ErrCycle)
}

func TestRun_LongestPathRank(t *testing.T) {
	g := New(Options{})
	for _, id := range []string{"a", "b", "c"} {
		g.SetNode(id, Size{Width: 10, Height: 10})
	}
	g.SetEdge("a", "b")
	g.SetEdge("b", "c")
	g.SetEdge("a", "c")
	require.NoError(t, g.Run())

	b, _ := g.Node("b")
	c, _ := g.Node("c")
	assert.Greater(t, c.Y, b.Y)
}

func TestRun_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New(Options{})
		for _, id := range []string{"r", "x", "y", "z"} {
			g.SetNode(id, Size{Width: 40, Height: 40})
		}
		g.SetEdge("r", "x")
		g.SetEdge("r", "y")
		g.SetEdge("r", "z")
		return g
	}
	g1, g2 := build(), build()
	require.NoError(t, g1.Run())
	require.NoError(t, g2.Run())

	for _, id := range []string{"r", "x", "y", "z"} {
		p1, _ := g1.Node(id)
		p2, _ := g2.Node(id)
		assert.Equal(t, p1, p2, id)
	}
}

func TestNode_BeforeRun(t *testing.T) {
	g := New(Options{})
	g.SetNode("a", Size{Width: 1, Height: 1})
	_, ok := g.Node("a")
	assert.False(t, ok)
}

func TestRun_SiblingsKeepEdgeOrder(t *testing.T) {
	g := New(Options{})
	// Nodes are declared in the opposite order to the edges.
	for _, id := range []string{"root", "c", "b", "a"} {
		g.SetNode(id, Size{Width: 40, Height: 40})
	}
	g.SetEdge("root", "b")
	g.SetEdge("root", "a")
	g.SetEdge("root", "c")
	require.NoError(t, g.Run())

	root, _ := g.Node("root")
	a, _ := g.Node("a")
	b, _ := g.Node("b")
	c, _ := g.Node("c")

	assert.Less(t, b.X, a.X)
	assert.Less(t, a.X, c.X)
	assert.Equal(t, a.X, root.X, "the middle child sits under its parent")
}
