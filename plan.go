package quizgraph

import "fmt"

// ClonePlan is a copied subtree ready to be written. Nodes come first so every
// answer's next node already exists when Answers are inserted in order. Link
// is the new answer of PreviousID that leads to the copy; its position is left
// to the store.
type ClonePlan struct {
	RootID     string
	PreviousID string
	Nodes      []NodeRecord
	Answers    []AnswerRecord
	Link       Answer
}

// PlanClone copies the subtree rooted at sourceID out of one quiz's records and
// attaches it below previousID. sameQuiz reports whether previousID belongs to
// the quiz the records were loaded from; only then can the copy close a cycle.
func PlanClone(sourceID, previousID string, sameQuiz bool, nodes []NodeRecord, answers []AnswerRecord, newID func() string) (*ClonePlan, error) {
	if sameQuiz {
		for _, id := range Descendants(sourceID, answers) {
			if id == previousID {
				return nil, fmt.Errorf("%w: %s is inside the subtree of %s", ErrCycleDetected, previousID, sourceID)
			}
		}
	}
	tree, err := BuildTree(sourceID, nodes, answers)
	if err != nil {
		return nil, err
	}

	clone := CloneTree(tree, newID)
	p := &ClonePlan{RootID: clone.ID, PreviousID: previousID, Link: Answer{NextNodeID: clone.ID}}
	p.Nodes, p.Answers = Records(clone)
	for _, a := range answers {
		if a.NextNodeID == sourceID {
			p.Link.Label = a.Label
			break
		}
	}
	return p, nil
}

// Records flattens a tree back into storage rows, nodes in pre-order and
// answers numbered from 1 within their node.
func Records(root *QuizNode) ([]NodeRecord, []AnswerRecord) {
	var nodes []NodeRecord
	var answers []AnswerRecord
	_ = Walk(root, func(n *QuizNode) error {
		nodes = append(nodes, NodeRecord{ID: n.ID, IsInlineAnswers: n.IsInlineAnswers, Question: n.Question})
		for i, a := range n.Answers {
			answers = append(answers, AnswerRecord{Answer: a, ParentNodeID: n.ID, Position: i + 1})
		}
		return nil
	})
	return nodes, answers
}

// ResolveResult expands a result's ids into catalog entries using the lookups.
// Ids the lookups don't know are skipped; empty groups are kept.
func ResolveResult(answerID string, r *Result, problem func(id string) (Problem, bool), treatment func(id string) (Treatment, bool)) *ResultDetail {
	d := &ResultDetail{
		ID:              r.ID,
		AnswerID:        answerID,
		Problems:        []Problem{},
		TreatmentGroups: make([][]Treatment, 0, len(r.TreatmentGroups)),
	}
	for _, id := range r.ProblemIDs {
		if p, ok := problem(id); ok {
			d.Problems = append(d.Problems, p)
		}
	}
	for _, g := range r.TreatmentGroups {
		group := []Treatment{}
		for _, id := range g {
			if t, ok := treatment(id); ok {
				group = append(group, t)
			}
		}
		d.TreatmentGroups = append(d.TreatmentGroups, group)
	}
	return d
}
