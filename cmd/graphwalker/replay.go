package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/generator"
	"github.com/dshills/graphwalker-go/graph/loader"
	"github.com/dshills/graphwalker-go/graph/store"
)

type replayOptions struct {
	store   string
	runID   string
	model   string
	jsonOut bool
}

func newReplayCmd(stdout io.Writer) *cobra.Command {
	o := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay --store <location> [--run <id> [-m <model>]]",
		Short: "List recorded walks or walk a recorded path again",
		Long: `Without --run, list the walks recorded in the store.

With --run, load the recorded walk and take exactly the same edges again,
printing the path like offline does. The model defaults to the path recorded
with the walk. A model that no longer contains the recorded edges fails the
replay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.store == "" {
				return errors.New("--store is required")
			}
			st, err := store.Open(o.store)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			if o.runID == "" {
				return listRuns(cmd.Context(), st, stdout)
			}
			return o.replay(cmd.Context(), st, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.store, "store", "", "store holding the recorded walks (sqlite:<path> or mysql:<dsn>)")
	f.StringVar(&o.runID, "run", "", "run id to replay")
	f.StringVarP(&o.model, "model", "m", "", "model file (default: the model recorded with the run)")
	f.BoolVar(&o.jsonOut, "json", false, "print one JSON object per step")

	return cmd
}

func listRuns(ctx context.Context, st store.Store, stdout io.Writer) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tOUTCOME\tLENGTH\tGENERATOR\tMODEL")
	for _, id := range runs {
		s, err := st.LoadSummary(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load summary of %s: %w", id, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.RunID, s.Outcome, s.Length, s.Generator, s.Model)
	}
	return tw.Flush()
}

func (o *replayOptions) replay(ctx context.Context, st store.Store, stdout io.Writer) error {
	summary, err := st.LoadSummary(ctx, o.runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", o.runID, err)
	}
	records, err := st.LoadWalk(ctx, o.runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", o.runID, err)
	}
	rec, err := generator.FromRecords(records)
	if err != nil {
		return fmt.Errorf("run %s: %w", o.runID, err)
	}

	path := o.model
	if path == "" {
		path = summary.Model
	}
	if path == "" {
		return fmt.Errorf("run %s has no recorded model; pass -m <model>", o.runID)
	}
	loaded, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	ec := graph.NewExecutionContext(loaded.Model, rec.Generator)
	if rec.StartID != "" {
		start, ok := elementByID(loaded.Model, rec.StartID)
		if !ok {
			return fmt.Errorf("run %s starts at %s, which %s does not contain", o.runID, rec.StartID, path)
		}
		err = ec.SetCurrentElement(start)
	} else {
		_, err = graph.ResolveStart(ec)
	}
	if err != nil {
		return err
	}

	out := &stepPrinter{w: stdout}
	if o.jsonOut {
		out.enc = json.NewEncoder(stdout)
	}
	m, err := graph.NewMachine(ec,
		graph.WithRunID(o.runID+"-replay"),
		graph.WithStepHook(func(res graph.StepResult) { out.print(loaded.Name, res) }),
	)
	if err != nil {
		return err
	}
	if _, err := m.Walk(ctx); err != nil {
		return fmt.Errorf("replay of %s failed: %w", o.runID, err)
	}
	return out.err
}

func elementByID(m *graph.Model, id string) (graph.Element, bool) {
	if v, ok := m.Vertex(id); ok {
		return v, true
	}
	if e, ok := m.Edge(id); ok {
		return e, true
	}
	return nil, false
}
