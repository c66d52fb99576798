// Command quizgraph serves the quiz API, manages its schema and renders quiz
// trees as laid-out graphs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
