package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/postgres"
	"github.com/meikuraledutech/quizgraph/sqlite"
)

var logger = hclog.New(&hclog.LoggerOptions{Name: "example", Level: hclog.Info})

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	ctx := context.Background()

	// Postgres when DATABASE_URL is set, a throwaway SQLite database otherwise.
	var store quizgraph.Store
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			fatal("connect", err)
		}
		defer pool.Close()
		store = postgres.New(pool)
	} else {
		s, err := sqlite.Open(":memory:")
		if err != nil {
			fatal("open sqlite", err)
		}
		defer s.Close()
		store = s
	}

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		fatal("schema", err)
	}
	logger.Info("schema created")

	// ── Catalog ───────────────────────────────────────────────────────
	painID, err := store.CreateQuestion(ctx, &quizgraph.Question{Code: "Q-PAIN", Question: "Do you feel pain when chewing?"})
	if err != nil {
		fatal("create question", err)
	}
	gapID, err := store.CreateQuestion(ctx, &quizgraph.Question{Code: "Q-GAP", Question: "Is there a gap between your front teeth?"})
	if err != nil {
		fatal("create question", err)
	}
	problemID, err := store.CreateProblem(ctx, &quizgraph.Problem{Code: "P-DIASTEMA", Name: "Diastema"})
	if err != nil {
		fatal("create problem", err)
	}
	alignersID, err := store.CreateTreatment(ctx, &quizgraph.Treatment{Code: "T-ALIGN", Name: "Clear aligners"})
	if err != nil {
		fatal("create treatment", err)
	}
	bracesID, err := store.CreateTreatment(ctx, &quizgraph.Treatment{Code: "T-BRACES", Name: "Braces"})
	if err != nil {
		fatal("create treatment", err)
	}

	// ── Quiz tree ─────────────────────────────────────────────────────
	quiz, err := store.CreateQuiz(ctx, &quizgraph.Quiz{Code: "SMILE", Name: "Smile check"})
	if err != nil {
		fatal("create quiz", err)
	}
	root := quiz.RootNode.ID
	if err := store.UpdateNode(ctx, quizgraph.NodeUpdate{ID: root, QuestionID: &painID}); err != nil {
		fatal("update root", err)
	}

	// "No" leads to a second question, "Yes" ends the quiz.
	gapNode, err := store.CreateNode(ctx, root)
	if err != nil {
		fatal("create node", err)
	}
	if err := store.UpdateNode(ctx, quizgraph.NodeUpdate{ID: gapNode, QuestionID: &gapID}); err != nil {
		fatal("update node", err)
	}
	yes, err := store.CreateAnswer(ctx, root)
	if err != nil {
		fatal("create answer", err)
	}
	if err := store.UpdateAnswer(ctx, quizgraph.AnswerUpdate{ID: yes.ID, Label: "Yes"}); err != nil {
		fatal("update answer", err)
	}

	// The gap question ends on a result either way.
	if _, err := store.CreateNode(ctx, gapNode); err != nil {
		fatal("create node", err)
	}
	gapYes, err := store.CreateAnswer(ctx, gapNode)
	if err != nil {
		fatal("create answer", err)
	}
	if err := store.UpdateResult(ctx, quizgraph.ResultUpdate{
		ID:              gapYes.Result.ID,
		ProblemIDs:      []string{problemID},
		TreatmentGroups: [][]string{{alignersID}, {bracesID}},
	}); err != nil {
		fatal("update result", err)
	}

	tree, err := store.GetTree(ctx, root)
	if err != nil {
		fatal("get tree", err)
	}
	fmt.Println("tree:")
	printJSON(tree)

	detail, err := store.GetResult(ctx, gapYes.Result.ID)
	if err != nil {
		fatal("get result", err)
	}
	fmt.Println("\nresult:")
	printJSON(detail)

	// ── Render ────────────────────────────────────────────────────────
	g, err := quizgraph.Render(tree, quizgraph.DirectionHorizontal, quizgraph.DefaultSizes)
	if err != nil {
		fatal("render", err)
	}
	fmt.Printf("\ngraph (%d nodes, %d edges):\n", len(g.Nodes), len(g.Edges))
	printJSON(g)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteQuiz(ctx, quiz.ID); err != nil {
		fatal("delete", err)
	}
	logger.Info("quiz deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
