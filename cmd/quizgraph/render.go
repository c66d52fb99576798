package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/meikuraledutech/quizgraph"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the laid-out graph of a quiz tree as JSON",
	Long: "Render reads a tree from a JSON file (--file, \"-\" for stdin) or from the\n" +
		"database (--node) and prints the graph for the node-graph editor.",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		node, _ := cmd.Flags().GetString("node")
		switch {
		case file != "" && node != "":
			return fmt.Errorf("use --file or --node, not both")
		case file == "" && node == "":
			return fmt.Errorf("one of --file or --node is required")
		}

		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := cfg.Direction()
		if d, _ := cmd.Flags().GetString("direction"); d != "" {
			if dir, err = quizgraph.ParseDirection(d); err != nil {
				return err
			}
		}

		var root *quizgraph.QuizNode
		if file != "" {
			root, err = readTree(cmd.InOrStdin(), file)
		} else {
			store, closeStore, openErr := openStore(cmd.Context(), cfg, log)
			if openErr != nil {
				return openErr
			}
			defer closeStore()
			root, err = store.GetTree(cmd.Context(), node)
			if err == nil && root == nil {
				err = fmt.Errorf("%w: %s", quizgraph.ErrNodeNotFound, node)
			}
		}
		if err != nil {
			return err
		}

		g, err := quizgraph.Render(root, dir, cfg.Sizes())
		if err != nil {
			return err
		}
		log.Debug("rendered", "nodes", len(g.Nodes), "edges", len(g.Edges), "direction", dir)

		path, _ := cmd.Flags().GetString("out")
		if path == "" {
			return writeGraph(cmd.OutOrStdout(), g)
		}
		return writeGraphFile(path, g)
	},
}

func writeGraph(w io.Writer, g *quizgraph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// writeGraphFile reports a failed close, since that is where a short write shows up.
func writeGraphFile(path string, g *quizgraph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeGraph(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func init() {
	renderCmd.Flags().String("file", "", "Tree JSON file, or - for stdin")
	renderCmd.Flags().String("node", "", "Render the stored tree rooted at this node")
	renderCmd.Flags().String("direction", "", "TB, LR, Vertical or Horizontal (default from config)")
	renderCmd.Flags().String("out", "", "Write the graph to this file instead of stdout")
}

func readTree(stdin io.Reader, path string) (*quizgraph.QuizNode, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var root quizgraph.QuizNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return &root, nil
}
