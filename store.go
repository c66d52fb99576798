package quizgraph

import (
	"context"
	"errors"
)

var (
	ErrCycleDetected     = errors.New("quizgraph: cycle detected, quiz is not a tree")
	ErrDuplicateNode     = errors.New("quizgraph: node reachable by more than one path")
	ErrInvalidTree       = errors.New("quizgraph: invalid tree")
	ErrInvalidDirection  = errors.New("quizgraph: invalid layout direction")
	ErrQuizNotFound      = errors.New("quizgraph: quiz not found")
	ErrNodeNotFound      = errors.New("quizgraph: node not found")
	ErrAnswerNotFound    = errors.New("quizgraph: answer not found")
	ErrResultNotFound    = errors.New("quizgraph: result not found")
	ErrQuestionNotFound  = errors.New("quizgraph: question not found")
	ErrProblemNotFound   = errors.New("quizgraph: problem not found")
	ErrTreatmentNotFound = errors.New("quizgraph: treatment not found")
	ErrRootNode          = errors.New("quizgraph: the root node of a quiz cannot be deleted")
	ErrLastAnswer        = errors.New("quizgraph: a node must keep at least one answer")
)

// PageParams selects one page of a listing. Page is 1-based.
type PageParams struct {
	Page   int
	Limit  int
	Search string
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps the page and limit into their valid ranges.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the number of rows skipped before the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of a listing.
type Page[T any] struct {
	Data        []T  `json:"data"`
	TotalCount  int  `json:"totalCount"`
	HasNextPage bool `json:"hasNextPage"`
}

// NewPage builds a page from the rows of p and the total row count.
func NewPage[T any](data []T, total int, p PageParams) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:        data,
		TotalCount:  total,
		HasNextPage: p.Offset()+len(data) < total,
	}
}

// NodeUpdate changes a node. Nil fields are left as they are; an empty
// QuestionID detaches the question and turns the node terminal.
type NodeUpdate struct {
	ID              string  `json:"-"`
	IsInlineAnswers *bool   `json:"isInlineAnswers,omitempty"`
	QuestionID      *string `json:"questionId,omitempty"`
}

// AnswerUpdate replaces the label and icon of an answer.
type AnswerUpdate struct {
	ID    string      `json:"-"`
	Label string      `json:"label"`
	Icon  *FileEntity `json:"icon,omitempty"`
}

// ResultUpdate replaces the problems and treatment groups of a result.
type ResultUpdate struct {
	ID              string     `json:"-"`
	ProblemIDs      []string   `json:"problemIds"`
	TreatmentGroups [][]string `json:"treatmentGroups"`
}

// Store defines the contract for persisting quizzes and their trees.
// Reads of missing rows return nil, nil; writes return the matching Err*NotFound.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Quizzes
	CreateQuiz(ctx context.Context, q *Quiz) (*Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (*Quiz, error)
	ListQuizzes(ctx context.Context, p PageParams) (*Page[Quiz], error)
	UpdateQuiz(ctx context.Context, q *Quiz) error
	DeleteQuiz(ctx context.Context, quizID string) error

	// Tree and nodes
	GetTree(ctx context.Context, nodeID string) (*QuizNode, error)
	CreateNode(ctx context.Context, previousNodeID string) (string, error)
	UpdateNode(ctx context.Context, u NodeUpdate) error
	DeleteNode(ctx context.Context, nodeID string) error
	CloneNode(ctx context.Context, sourceNodeID, previousNodeID string) (string, error)

	// Answers
	CreateAnswer(ctx context.Context, parentNodeID string) (*Answer, error)
	UpdateAnswer(ctx context.Context, u AnswerUpdate) error
	DeleteAnswer(ctx context.Context, answerID string) error

	// Catalog
	CreateQuestion(ctx context.Context, q *Question) (string, error)
	GetQuestion(ctx context.Context, questionID string) (*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	ListQuestions(ctx context.Context, p PageParams) (*Page[Question], error)

	CreateProblem(ctx context.Context, pr *Problem) (string, error)
	GetProblem(ctx context.Context, problemID string) (*Problem, error)
	UpdateProblem(ctx context.Context, pr *Problem) error
	ListProblems(ctx context.Context, p PageParams) (*Page[Problem], error)

	CreateTreatment(ctx context.Context, t *Treatment) (string, error)
	GetTreatment(ctx context.Context, treatmentID string) (*Treatment, error)
	UpdateTreatment(ctx context.Context, t *Treatment) error
	ListTreatments(ctx context.Context, p PageParams) (*Page[Treatment], error)

	// Results
	GetResult(ctx context.Context, resultID string) (*ResultDetail, error)
	UpdateResult(ctx context.Context, u ResultUpdate) error
}
