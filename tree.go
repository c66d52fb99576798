package quizgraph

import (
	"fmt"
	"sort"
)

// NodeRecord is a quiz node as stored, without its answers.
type NodeRecord struct {
	ID              string
	QuizID          string
	IsInlineAnswers bool
	Question        *Question
}

// AnswerRecord is an answer as stored: the answer plus the node it belongs to
// and its position among that node's answers.
type AnswerRecord struct {
	Answer
	ParentNodeID string
	Position     int
}

// BuildTree assembles the tree rooted at rootID from flat records.
func BuildTree(rootID string, nodes []NodeRecord, answers []AnswerRecord) (*QuizNode, error) {
	byID := make(map[string]NodeRecord, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	byParent := make(map[string][]AnswerRecord)
	for _, a := range answers {
		byParent[a.ParentNodeID] = append(byParent[a.ParentNodeID], a)
	}
	for _, list := range byParent {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(nodes))

	var build func(id string, parentAnswer *Answer) (*QuizNode, error)
	build = func(id string, parentAnswer *Answer) (*QuizNode, error) {
		rec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
		state[id] = visiting

		n := &QuizNode{
			ID:              rec.ID,
			IsInlineAnswers: rec.IsInlineAnswers,
			Question:        rec.Question,
			ParentAnswer:    parentAnswer,
			Answers:         []Answer{},
			NextNodes:       []*QuizNode{},
		}
		for _, a := range byParent[id] {
			n.Answers = append(n.Answers, a.Answer)
			if a.NextNodeID == "" {
				continue
			}
			switch state[a.NextNodeID] {
			case visiting:
				return nil, fmt.Errorf("%w: answer %s points back to %s", ErrCycleDetected, a.ID, a.NextNodeID)
			case visited:
				return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, a.NextNodeID)
			}
			pa := a.Answer
			child, err := build(a.NextNodeID, &pa)
			if err != nil {
				return nil, err
			}
			n.NextNodes = append(n.NextNodes, child)
		}

		state[id] = visited
		return n, nil
	}

	return build(rootID, nil)
}

// Descendants returns rootID and the ids of every node reachable from it
// through answers, in breadth-first order.
func Descendants(rootID string, answers []AnswerRecord) []string {
	next := make(map[string][]string)
	for _, a := range answers {
		if a.NextNodeID != "" {
			next[a.ParentNodeID] = append(next[a.ParentNodeID], a.NextNodeID)
		}
	}

	seen := map[string]bool{rootID: true}
	out := []string{rootID}
	for i := 0; i < len(out); i++ {
		for _, id := range next[out[i]] {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Validate checks that root is a well-formed tree: every node and answer has an
// id, no node id appears twice, answer ids are unique within their node, each
// answer with a next node id matches exactly one of the node's children, and no
// two answers produce the same edge id (ids containing "-" can otherwise clash).
func Validate(root *QuizNode) error {
	if root == nil {
		return fmt.Errorf("%w: empty tree", ErrInvalidTree)
	}
	seen := make(map[string]bool)
	edges := make(map[string]bool)

	var walk func(n *QuizNode) error
	walk = func(n *QuizNode) error {
		if n == nil {
			return fmt.Errorf("%w: nil child node", ErrInvalidTree)
		}
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrInvalidTree)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
		}
		seen[n.ID] = true

		children := make(map[string]bool, len(n.NextNodes))
		for _, c := range n.NextNodes {
			if c != nil {
				children[c.ID] = true
			}
		}
		answerIDs := make(map[string]bool, len(n.Answers))
		linked := make(map[string]bool, len(n.Answers))
		for _, a := range n.Answers {
			if a.ID == "" {
				return fmt.Errorf("%w: answer without id on node %s", ErrInvalidTree, n.ID)
			}
			if answerIDs[a.ID] {
				return fmt.Errorf("%w: answer %s repeated on node %s", ErrInvalidTree, a.ID, n.ID)
			}
			answerIDs[a.ID] = true
			edgeID := EdgeID(n.ID, EdgeTarget(n.ID, a))
			if edges[edgeID] {
				return fmt.Errorf("%w: edge id %s is produced twice", ErrInvalidTree, edgeID)
			}
			edges[edgeID] = true
			if a.NextNodeID == "" {
				continue
			}
			if !children[a.NextNodeID] {
				return fmt.Errorf("%w: answer %s points to %s which is not a child of %s",
					ErrInvalidTree, a.ID, a.NextNodeID, n.ID)
			}
			if linked[a.NextNodeID] {
				return fmt.Errorf("%w: %s", ErrDuplicateNode, a.NextNodeID)
			}
			linked[a.NextNodeID] = true
		}

		for _, c := range n.NextNodes {
			if c != nil && !linked[c.ID] {
				return fmt.Errorf("%w: child %s of %s has no answer leading to it", ErrInvalidTree, c.ID, n.ID)
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// Walk visits the tree in pre-order. It stops at the first error.
func Walk(root *QuizNode, fn func(n *QuizNode) error) error {
	if root == nil {
		return nil
	}
	if err := fn(root); err != nil {
		return err
	}
	for _, c := range root.NextNodes {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// CloneTree deep-copies the tree rooted at root, giving every node, answer and
// result a fresh id from newID. Questions are shared, not copied. The clone's
// root has no parent answer.
func CloneTree(root *QuizNode, newID func() string) *QuizNode {
	if root == nil {
		return nil
	}
	c := &QuizNode{
		ID:              newID(),
		IsInlineAnswers: root.IsInlineAnswers,
		Question:        root.Question,
		Answers:         make([]Answer, len(root.Answers)),
		NextNodes:       make([]*QuizNode, 0, len(root.NextNodes)),
	}

	byNext := make(map[string]int)
	for i, a := range root.Answers {
		na := a
		na.ID = newID()
		if a.Icon != nil {
			icon := *a.Icon
			na.Icon = &icon
		}
		if a.Result != nil {
			r := Result{
				ID:              newID(),
				ProblemIDs:      append([]string(nil), a.Result.ProblemIDs...),
				TreatmentGroups: make([][]string, len(a.Result.TreatmentGroups)),
			}
			for j, g := range a.Result.TreatmentGroups {
				r.TreatmentGroups[j] = append([]string(nil), g...)
			}
			na.Result = &r
		}
		if a.NextNodeID != "" {
			byNext[a.NextNodeID] = i
		}
		c.Answers[i] = na
	}

	for _, child := range root.NextNodes {
		cc := CloneTree(child, newID)
		if i, ok := byNext[child.ID]; ok {
			c.Answers[i].NextNodeID = cc.ID
			pa := c.Answers[i]
			cc.ParentAnswer = &pa
		}
		c.NextNodes = append(c.NextNodes, cc)
	}
	return c
}
