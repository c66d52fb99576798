// Package layout assigns 2D coordinates to the vertices of a directed graph,
// arranged in ranks along the layout direction.
//
// A Graph is built, laid out once with Run and then read back with Node. It is
// meant to be created per layout pass; nothing is shared between graphs.
package layout

import (
	"errors"
	"math"
)

// ErrCycle is returned by Run when the edges do not form a DAG.
var ErrCycle = errors.New("layout: graph contains a cycle")

// Direction is the rank axis of the layout.
type Direction string

const (
	TopToBottom Direction = "TB"
	LeftToRight Direction = "LR"
)

// Size is a node's bounding box.
type Size struct {
	Width  float64
	Height float64
}

// Point is the center of a laid-out node.
type Point struct {
	X float64
	Y float64
}

// Options configures a layout pass. Zero separations fall back to the defaults.
type Options struct {
	Direction Direction
	NodeSep   float64 // gap between neighbours in the same rank
	RankSep   float64 // gap between consecutive ranks
	Margin    float64
}

const (
	DefaultNodeSep = 50
	DefaultRankSep = 50
)

type node struct {
	id       string
	size     Size
	indeg    int
	rank     int
	out      []*node
	parent   *node
	children []*node
	extent   float64
	cross    float64
	center   Point
}

// Graph is a single-use layout arena.
type Graph struct {
	opts  Options
	nodes map[string]*node
	order []*node
	edges map[[2]string]bool
	ran   bool
}

// New returns an empty graph.
func New(opts Options) *Graph {
	if opts.Direction == "" {
		opts.Direction = TopToBottom
	}
	if opts.NodeSep == 0 {
		opts.NodeSep = DefaultNodeSep
	}
	if opts.RankSep == 0 {
		opts.RankSep = DefaultRankSep
	}
	return &Graph{
		opts:  opts,
		nodes: make(map[string]*node),
		edges: make(map[[2]string]bool),
	}
}

// SetNode adds a node or updates the size of an existing one.
func (g *Graph) SetNode(id string, size Size) {
	if n, ok := g.nodes[id]; ok {
		n.size = size
		return
	}
	n := &node{id: id, size: size}
	g.nodes[id] = n
	g.order = append(g.order, n)
}

// SetEdge adds a directed edge. Unknown endpoints are created with zero size.
// Repeated edges are ignored.
func (g *Graph) SetEdge(from, to string) {
	key := [2]string{from, to}
	if g.edges[key] {
		return
	}
	if _, ok := g.nodes[from]; !ok {
		g.SetNode(from, Size{})
	}
	if _, ok := g.nodes[to]; !ok {
		g.SetNode(to, Size{})
	}
	g.edges[key] = true
	src, dst := g.nodes[from], g.nodes[to]
	src.out = append(src.out, dst)
	dst.indeg++
	if dst.parent == nil && src != dst {
		dst.parent = src
		src.children = append(src.children, dst)
	}
}

// Len returns the number of nodes, including ones created implicitly by SetEdge.
func (g *Graph) Len() int { return len(g.order) }

// Node returns the center of a node after Run.
func (g *Graph) Node(id string) (Point, bool) {
	n, ok := g.nodes[id]
	if !ok || !g.ran {
		return Point{}, false
	}
	return n.center, true
}

// Run computes the layout.
func (g *Graph) Run() error {
	if err := g.rank(); err != nil {
		return err
	}

	var roots []*node
	for _, n := range g.order {
		if n.parent == nil {
			roots = append(roots, n)
		}
	}

	for _, r := range roots {
		g.measure(r)
	}
	cursor := g.opts.Margin
	for _, r := range roots {
		g.place(r, cursor)
		cursor += r.extent + g.opts.NodeSep
	}

	maxRank := 0
	for _, n := range g.order {
		maxRank = max(maxRank, n.rank)
	}
	thick := make([]float64, maxRank+1)
	for _, n := range g.order {
		thick[n.rank] = math.Max(thick[n.rank], g.rankSize(n))
	}
	centers := make([]float64, maxRank+1)
	offset := g.opts.Margin
	for r, t := range thick {
		centers[r] = offset + t/2
		offset += t + g.opts.RankSep
	}

	for _, n := range g.order {
		if g.opts.Direction == LeftToRight {
			n.center = Point{X: centers[n.rank], Y: n.cross}
		} else {
			n.center = Point{X: n.cross, Y: centers[n.rank]}
		}
	}
	g.ran = true
	return nil
}

// rank assigns longest-path ranks from the sources (Kahn's algorithm).
func (g *Graph) rank() error {
	indeg := make(map[*node]int, len(g.order))
	var queue []*node
	for _, n := range g.order {
		n.rank = 0
		indeg[n] = n.indeg
		if n.indeg == 0 {
			queue = append(queue, n)
		}
	}

	seen := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		seen++
		for _, next := range n.out {
			next.rank = max(next.rank, n.rank+1)
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if seen != len(g.order) {
		return ErrCycle
	}
	return nil
}

func (g *Graph) crossSize(n *node) float64 {
	if g.opts.Direction == LeftToRight {
		return n.size.Height
	}
	return n.size.Width
}

func (g *Graph) rankSize(n *node) float64 {
	if g.opts.Direction == LeftToRight {
		return n.size.Width
	}
	return n.size.Height
}

// measure sets the cross-axis extent of every subtree.
func (g *Graph) measure(n *node) float64 {
	n.extent = math.Max(g.crossSize(n), g.childrenSpan(n))
	return n.extent
}

func (g *Graph) childrenSpan(n *node) float64 {
	if len(n.children) == 0 {
		return 0
	}
	span := g.opts.NodeSep * float64(len(n.children)-1)
	for _, c := range n.children {
		span += g.measure(c)
	}
	return span
}

// place centers n in [start, start+extent) and its children beneath it.
func (g *Graph) place(n *node, start float64) {
	n.cross = start + n.extent/2
	if len(n.children) == 0 {
		return
	}
	span := g.opts.NodeSep * float64(len(n.children)-1)
	for _, c := range n.children {
		span += c.extent
	}
	s := n.cross - span/2
	for _, c := range n.children {
		g.place(c, s)
		s += c.extent + g.opts.NodeSep
	}
}
