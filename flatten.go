package quizgraph

import "fmt"

// Flatten converts the tree rooted at root into graph nodes. The root gets
// level 1 and no parent. Every group of siblings is emitted before any of their
// descendants, then each sibling's subtree follows in order.
func Flatten(root *QuizNode) []GraphNode {
	if root == nil {
		return []GraphNode{}
	}
	return flattenLevel([]*QuizNode{root}, 1, nil)
}

func flattenLevel(children []*QuizNode, level int, parent *string) []GraphNode {
	out := make([]GraphNode, 0, len(children))
	for _, n := range children {
		out = append(out, mapNode(n, level, parent))
	}
	for _, n := range children {
		id := n.ID
		out = append(out, flattenLevel(n.NextNodes, level+1, &id)...)
	}
	return out
}

func mapNode(n *QuizNode, level int, parent *string) GraphNode {
	return GraphNode{
		ID:   n.ID,
		Type: n.Kind(),
		Data: NodeData{
			ID:              n.ID,
			IsInlineAnswers: n.IsInlineAnswers,
			Question:        n.Question,
			ParentAnswer:    n.ParentAnswer,
			Answers:         n.Answers,
			Level:           level,
			Parent:          parent,
		},
	}
}

// TerminalID is the synthesized target of an answer that has no next node.
// It is scoped to the source node and the answer so terminal targets never collide.
func TerminalID(sourceID, answerID string) string {
	return fmt.Sprintf("end-%s-%s", sourceID, answerID)
}

// EdgeTarget is the id of the node an answer of sourceID leads to: its next
// node, or the synthesized terminal.
func EdgeTarget(sourceID string, a Answer) string {
	if a.NextNodeID == "" {
		return TerminalID(sourceID, a.ID)
	}
	return a.NextNodeID
}

// EdgeID is the renderer key of the edge from source to target.
func EdgeID(source, target string) string {
	return source + "-" + target
}

// GenerateEdges emits one edge per answer, following node order and then
// answer order.
func GenerateEdges(nodes []GraphNode) []GraphEdge {
	edges := []GraphEdge{}
	for _, n := range nodes {
		siblings := len(n.Data.Answers) > 1
		for _, a := range n.Data.Answers {
			target := EdgeTarget(n.ID, a)
			edges = append(edges, GraphEdge{
				ID:     EdgeID(n.ID, target),
				Source: n.ID,
				Target: target,
				Label:  a.Label,
				Type:   EdgeType,
				Data:   EdgeData{Answer: a, HasSiblings: siblings},
			})
		}
	}
	return edges
}
