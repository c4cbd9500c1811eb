package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "graphwalker",
		Short: "Generate test paths by walking graph models",
		Long: `graphwalker walks directed graph models with a path generator and a stop
condition, printing every vertex and edge it passes. The printed sequence is
a test path: vertices are states to verify, edges are actions to perform.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newOfflineCmd(stdout, stderr))
	root.AddCommand(newReplayCmd(stdout))
	root.AddCommand(newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "graphwalker-go version: %s\n\n", version)
			fmt.Fprintln(stdout, "graphwalker-go is open source software licensed under the MIT license")
			fmt.Fprintln(stdout, "The software and its source can be downloaded from https://github.com/dshills/graphwalker-go")
		},
	}
}
