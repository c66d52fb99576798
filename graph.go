package quizgraph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind selects how the renderer draws a node.
type Kind int

const (
	KindQuestion Kind = iota
	KindTerminal
)

var kindNames = map[Kind]string{
	KindQuestion: "quizQuestionNode",
	KindTerminal: "quizEndNode",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalJSON() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("quizgraph: unknown node kind %d", int(k))
	}
	return json.Marshal(s)
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for kind, name := range kindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("quizgraph: unknown node type %q", s)
}

// Direction is the layout orientation of a rendered graph.
type Direction string

const (
	DirectionVertical   Direction = "TB"
	DirectionHorizontal Direction = "LR"
)

// ParseDirection accepts a direction code ("TB", "LR") or its label
// ("Vertical", "Horizontal"), case-insensitively. Empty means vertical.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tb", "vertical":
		return DirectionVertical, nil
	case "lr", "horizontal":
		return DirectionHorizontal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Label is the human-readable name shown in the direction selector.
func (d Direction) Label() string {
	if d == DirectionHorizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// Side is the side of a node box an edge attaches to.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides returns where outgoing (source) and incoming (target) edges attach for d.
func (d Direction) Sides() (source, target Side) {
	if d == DirectionHorizontal {
		return SideRight, SideLeft
	}
	return SideBottom, SideTop
}

// Point is a top-left anchored coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the renderer payload of a node: the quiz node itself plus its
// depth (root = 1) and parent id (nil for the root).
type NodeData struct {
	ID              string    `json:"id"`
	IsInlineAnswers bool      `json:"isInlineAnswers"`
	Question        *Question `json:"question"`
	ParentAnswer    *Answer   `json:"parentAnswer"`
	Answers         []Answer  `json:"answers"`
	Level           int       `json:"level"`
	Parent          *string   `json:"parent"`
}

// GraphNode is a flattened, positioned quiz node.
type GraphNode struct {
	ID             string   `json:"id"`
	Type           Kind     `json:"type"`
	Position       Point    `json:"position"`
	SourcePosition Side     `json:"sourcePosition,omitempty"`
	TargetPosition Side     `json:"targetPosition,omitempty"`
	Data           NodeData `json:"data"`
}

// EdgeType is the renderer's edge strategy name for answers.
const EdgeType = "answerEdge"

// EdgeData is the answer behind an edge. HasSiblings is true when the source
// node has more than one answer.
type EdgeData struct {
	Answer
	HasSiblings bool
}

func (d EdgeData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		answerJSON
		HasSiblings bool `json:"hasSiblings"`
	}{d.Answer.wire(), d.HasSiblings})
}

func (d *EdgeData) UnmarshalJSON(b []byte) error {
	var in struct {
		answerInput
		HasSiblings bool `json:"hasSiblings"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	d.Answer = in.answer()
	d.HasSiblings = in.HasSiblings
	return nil
}

// GraphEdge is one answer drawn as a directed edge.
type GraphEdge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Label  string   `json:"label"`
	Type   string   `json:"type"`
	Data   EdgeData `json:"data"`
}

// Terminal reports whether the edge ends the quiz without a next node.
func (e GraphEdge) Terminal() bool {
	return e.Data.NextNodeID == ""
}

// Graph is the renderer-ready form of a quiz tree.
type Graph struct {
	Direction Direction   `json:"direction"`
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
}
