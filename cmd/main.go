// Package main is the coachboard command line: the HTTP service and
// one-shot evaluations of JSON records.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coachboard",
		Short:         "Athlete assessment, movement screen and injury evaluation",
		Long:          "coachboard evaluates force-plate assessments, movement screens and injury reports, and serves the evaluations over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newEvaluateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
