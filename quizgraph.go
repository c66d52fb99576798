// Package quizgraph models the branching diagnostic quiz (question -> answer ->
// next question or result) and turns a quiz tree into a laid-out node/edge graph
// for a node-graph renderer.
package quizgraph

import "encoding/json"

// Status is the publication state of a quiz.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Quiz is a named questionnaire. RootNode is created together with the quiz.
type Quiz struct {
	ID       string  `json:"id,omitempty"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	RootNode NodeRef `json:"rootNode"`
}

// NodeRef is the `{ "id": ... }` shape the API uses to point at a node.
type NodeRef struct {
	ID string `json:"id"`
}

// FileEntity is an uploaded image attached to questions, problems, treatments or answer icons.
type FileEntity struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Question is the payload shown on a question node.
type Question struct {
	ID          string       `json:"id,omitempty"`
	Code        string       `json:"code"`
	Question    string       `json:"question"`
	Description string       `json:"description"`
	Images      []FileEntity `json:"images"`
}

// Problem is a diagnosis a result can point to.
type Problem struct {
	ID          string       `json:"id,omitempty"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Images      []FileEntity `json:"images"`
}

// Treatment is a recommendation a result can point to.
type Treatment struct {
	ID          string       `json:"id,omitempty"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Images      []FileEntity `json:"images"`
}

// Result is the terminal outcome attached to an answer. Treatments are grouped:
// each inner slice is one alternative set of treatment ids.
type Result struct {
	ID              string     `json:"id"`
	ProblemIDs      []string   `json:"problemIds"`
	TreatmentGroups [][]string `json:"treatmentGroups"`
}

// ResultDetail is a Result with its problems and treatments resolved.
type ResultDetail struct {
	ID              string        `json:"id"`
	AnswerID        string        `json:"answerId"`
	Problems        []Problem     `json:"problem"`
	TreatmentGroups [][]Treatment `json:"treatmentGroups"`
}

// Answer is one outgoing choice of a node. NextNodeID is empty when the answer
// terminates the quiz. On the wire the next node is {"nextQuizNode": {"id": ...}}
// or null.
type Answer struct {
	ID         string
	Label      string
	Icon       *FileEntity
	NextNodeID string
	Result     *Result
}

type answerJSON struct {
	ID           string      `json:"id"`
	Label        string      `json:"label"`
	Icon         *FileEntity `json:"icon,omitempty"`
	NextQuizNode *NodeRef    `json:"nextQuizNode"`
	Result       *Result     `json:"result,omitempty"`
}

// answerInput also accepts a bare "nextQuizNodeId".
type answerInput struct {
	answerJSON
	NextQuizNodeID string `json:"nextQuizNodeId"`
}

func (a Answer) wire() answerJSON {
	w := answerJSON{ID: a.ID, Label: a.Label, Icon: a.Icon, Result: a.Result}
	if a.NextNodeID != "" {
		w.NextQuizNode = &NodeRef{ID: a.NextNodeID}
	}
	return w
}

func (in answerInput) answer() Answer {
	a := Answer{ID: in.ID, Label: in.Label, Icon: in.Icon, Result: in.Result, NextNodeID: in.NextQuizNodeID}
	if in.NextQuizNode != nil && in.NextQuizNode.ID != "" {
		a.NextNodeID = in.NextQuizNode.ID
	}
	return a
}

func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.wire())
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	var in answerInput
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*a = in.answer()
	return nil
}

// QuizNode is one step of the questionnaire. Question is nil on terminal nodes.
// NextNodes holds one child per answer that does not terminate.
type QuizNode struct {
	ID              string      `json:"id"`
	IsInlineAnswers bool        `json:"isInlineAnswers"`
	Question        *Question   `json:"question"`
	ParentAnswer    *Answer     `json:"parentAnswer"`
	Answers         []Answer    `json:"answers"`
	NextNodes       []*QuizNode `json:"nextNodes"`
}

// Kind reports whether the node asks a question or ends the quiz.
func (n *QuizNode) Kind() Kind {
	if n.Question == nil {
		return KindTerminal
	}
	return KindQuestion
}

// Count returns the number of nodes in the tree rooted at n.
func (n *QuizNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.NextNodes {
		total += c.Count()
	}
	return total
}
