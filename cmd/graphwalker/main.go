// Command graphwalker generates test paths from graph models.
//
// Usage:
//
//	graphwalker offline -m login.graphml "random(edge_coverage(100))"
//	graphwalker offline -m a.graphml "a_star(reached_vertex(v_Done))" -m b.yaml "random(length(20))"
//	graphwalker version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "An error occurred when running command: %s\n", strings.Join(os.Args[1:], " "))
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
