package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/descriptor"
	"github.com/dshills/graphwalker-go/graph/emit"
	"github.com/dshills/graphwalker-go/graph/loader"
	"github.com/dshills/graphwalker-go/graph/store"
)

type offlineOptions struct {
	models      []string
	seed        int64
	verbose     bool
	jsonOut     bool
	store       string
	metricsAddr string
	jobs        int
	maxFailures int
	configPath  string
}

func newOfflineCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &offlineOptions{}

	cmd := &cobra.Command{
		Use:   "offline -m <model> <generator> [-m <model> <generator> ...]",
		Short: "Walk models and print the generated test path",
		Long: `Walk each model with its generator and print the name of every element
passed, one per line.

Generators use the descriptor syntax strategy(condition), for example
  random(edge_coverage(100))
  a_star(reached_vertex(v_Checkout))
  quick_random(vertex_coverage(100) and time_duration(30))

When no generator is given, the generator stored in the model document is
used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := o.resolve(cmd, args)
			if err != nil {
				return err
			}
			return o.run(cmd.Context(), runs, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&o.models, "model", "m", nil, "model file (.graphml, .yaml, .yml, .json); repeat for several models")
	f.Int64Var(&o.seed, "seed", 0, "seed for random generators (default: time based)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log walk events to stderr")
	f.BoolVar(&o.jsonOut, "json", false, "print one JSON object per step")
	f.StringVar(&o.store, "store", "", "record walks to memory, sqlite:<path> or mysql:<dsn>")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while walking")
	f.IntVar(&o.jobs, "jobs", 4, "models loaded concurrently")
	f.IntVar(&o.maxFailures, "max-failures", 0, "abort a walk after this many consecutive step failures (0: no limit)")
	f.StringVar(&o.configPath, "config", "", "YAML run file")

	return cmd
}

// resolve merges the run file into o and pairs models with generators.
func (o *offlineOptions) resolve(cmd *cobra.Command, args []string) ([]runEntry, error) {
	var runs []runEntry
	seedSet := cmd.Flags().Changed("seed")

	if o.configPath != "" {
		cfg, err := loadRunConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		runs = cfg.Runs
		if cfg.Seed != nil && !seedSet {
			o.seed = *cfg.Seed
			seedSet = true
		}
		if !cmd.Flags().Changed("store") && cfg.Store != "" {
			o.store = cfg.Store
		}
		if !cmd.Flags().Changed("verbose") && cfg.Verbose {
			o.verbose = true
		}
		if !cmd.Flags().Changed("json") && cfg.JSON {
			o.jsonOut = true
		}
		if !cmd.Flags().Changed("max-failures") && cfg.MaxFailures > 0 {
			o.maxFailures = cfg.MaxFailures
		}
		if !cmd.Flags().Changed("metrics-addr") && cfg.MetricsAddr != "" {
			o.metricsAddr = cfg.MetricsAddr
		}
		if !cmd.Flags().Changed("jobs") && cfg.Jobs > 0 {
			o.jobs = cfg.Jobs
		}
	}

	if !seedSet {
		o.seed = time.Now().UnixNano()
	}
	if o.jobs < 1 {
		return nil, errors.New("--jobs must be at least 1")
	}
	if o.maxFailures < 0 {
		return nil, errors.New("--max-failures must be >= 0")
	}

	if len(o.models) > 0 {
		switch len(args) {
		case len(o.models), 0:
		default:
			return nil, fmt.Errorf("got %d models and %d generators; give one generator per model or none", len(o.models), len(args))
		}
		runs = runs[:0]
		for i, m := range o.models {
			r := runEntry{Model: m}
			if len(args) > 0 {
				r.Generator = args[i]
			}
			runs = append(runs, r)
		}
	} else if len(args) > 0 {
		return nil, fmt.Errorf("generator %q has no model; use -m <model> <generator>", args[0])
	}

	if len(runs) == 0 {
		return nil, errors.New("no model given; use -m <model> <generator>")
	}
	return runs, nil
}

type preparedRun struct {
	path   string
	loaded *loader.Loaded
	gen    graph.PathGenerator
}

func (o *offlineOptions) run(ctx context.Context, runs []runEntry, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("starting offline walk", "models", len(runs), "seed", o.seed)

	prepared, err := o.prepare(runs)
	if err != nil {
		return err
	}

	var machineOpts []graph.Option
	if o.maxFailures > 0 {
		machineOpts = append(machineOpts, graph.WithMaxFailures(o.maxFailures))
	}
	if o.verbose {
		machineOpts = append(machineOpts, graph.WithEmitter(emit.NewSlogEmitter(logger)))
	}

	if o.store != "" {
		st, err := store.Open(o.store)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
		machineOpts = append(machineOpts, graph.WithStore(st))
	}

	if o.metricsAddr != "" {
		registry := prometheus.NewRegistry()
		machineOpts = append(machineOpts, graph.WithMetrics(graph.NewPrometheusMetrics(registry)))

		shutdown, err := serveMetrics(o.metricsAddr, registry, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	out := &stepPrinter{w: stdout}
	if o.jsonOut {
		out.enc = json.NewEncoder(stdout)
	}

	for _, p := range prepared {
		if err := walkModel(ctx, p, out, machineOpts); err != nil {
			return err
		}
	}
	return nil
}

// prepare loads every model and parses its generator. Loading runs
// concurrently; the walks themselves run one after another in argument
// order.
func (o *offlineOptions) prepare(runs []runEntry) ([]*preparedRun, error) {
	prepared := make([]*preparedRun, len(runs))

	var g errgroup.Group
	g.SetLimit(o.jobs)
	for i, r := range runs {
		g.Go(func() error {
			loaded, err := loader.LoadFile(r.Model)
			if err != nil {
				return err
			}
			src := r.Generator
			if src == "" {
				src = loaded.Generator
			}
			if src == "" {
				return fmt.Errorf("%s: no generator given and the model declares none", r.Model)
			}
			gen, err := descriptor.Parse(src, loaded.Model, descriptor.WithSeed(o.seed+int64(i)))
			if err != nil {
				return fmt.Errorf("%s: %w", r.Model, err)
			}
			prepared[i] = &preparedRun{path: r.Model, loaded: loaded, gen: gen}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prepared, nil
}

func walkModel(ctx context.Context, p *preparedRun, out *stepPrinter, opts []graph.Option) error {
	ec := graph.NewExecutionContext(p.loaded.Model, p.gen)

	start, err := p.loaded.StartElement()
	if err != nil {
		return err
	}
	if start != nil {
		err = ec.SetCurrentElement(start)
	} else {
		_, err = graph.ResolveStart(ec)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}

	opts = append(opts[:len(opts):len(opts)],
		graph.WithModelName(p.path),
		graph.WithStepHook(func(res graph.StepResult) { out.print(p.loaded.Name, res) }),
	)
	m, err := graph.NewMachine(ec, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}

	if _, err := m.Walk(ctx); err != nil {
		return fmt.Errorf("%s: %w", p.path, err)
	}
	return out.err
}

// stepPrinter writes element names, or JSON lines when enc is set.
// A failed step prints the last-known element again. The first write error
// is kept in err and later steps are not printed.
type stepPrinter struct {
	w   io.Writer
	enc *json.Encoder
	err error
}

type stepLine struct {
	Model  string `json:"model"`
	Step   int    `json:"step"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Kind   string `json:"kind,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (p *stepPrinter) print(model string, res graph.StepResult) {
	if p.err != nil {
		return
	}
	line := stepLine{Model: model, Step: res.Step, Status: res.Status.String()}
	if res.Element != nil {
		line.ID = res.Element.ID()
		line.Name = res.Element.Name()
		line.Kind = res.Element.Kind().String()
	}
	if res.Err != nil {
		line.Error = res.Err.Error()
	}

	if p.enc == nil {
		_, p.err = fmt.Fprintln(p.w, line.Name)
	} else {
		p.err = p.enc.Encode(line)
	}
	if p.err != nil {
		p.err = fmt.Errorf("failed to write path: %w", p.err)
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
