package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/legend/internal/config"
	"github.com/zjrosen/legend/internal/flags"
	"github.com/zjrosen/legend/internal/log"
	"github.com/zjrosen/legend/internal/mapsession"
	"github.com/zjrosen/legend/internal/query"
	"github.com/zjrosen/legend/internal/render"
	"github.com/zjrosen/legend/internal/scenario"
	"github.com/zjrosen/legend/internal/tracing"
	"github.com/zjrosen/legend/internal/watcher"
)

var replayWatch bool

var showCmd = &cobra.Command{
	Use:   "show <scenario.yaml>",
	Short: "Replay a scenario and print the resulting legend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := replayFile(cmd.Context(), args[0], nil)
		if s != nil {
			defer s.Close()
			if perr := printLegend(cmd.OutOrStdout(), s); perr != nil {
				return perr
			}
		}
		return err
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scenario step by step",
	Long: `Replay a scenario step by step, printing the outcome of every step and
the final legend.

With --watch the scenario is replayed again whenever the file changes.

Examples:
  legend replay testdata/reference.yaml
  legend replay --watch my-legend.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVarP(&replayWatch, "watch", "w", false, "replay again when the scenario file changes")
}

func runReplay(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := args[0]

	once := func(ctx context.Context) error {
		s, report, err := replayFile(ctx, path, stepPrinter(out))
		if s == nil {
			return err
		}
		defer s.Close()
		_, _ = fmt.Fprintf(out, "%d steps, %d rejected, generation %d\n",
			len(report.Steps), report.Rejected(), s.Tree.Generation())
		if perr := printLegend(out, s); perr != nil {
			return perr
		}
		return err
	}

	if !replayWatch {
		return once(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watcher.New(path, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	changes, err := w.Start(ctx)
	if err != nil {
		return err
	}

	for {
		if err := once(ctx); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
		_, _ = fmt.Fprintf(out, "watching %s for changes (ctrl+c to stop)\n", path)
		if _, ok := <-changes; !ok {
			return nil
		}
		log.Info(log.CatCLI, "Scenario changed, replaying", "path", path)
	}
}

// replayFile loads a scenario and replays it into a fresh session. The session
// is returned whenever it was created, even if the replay reported an error.
func replayFile(ctx context.Context, path string, hook func(scenario.StepResult)) (*mapsession.Session, scenario.Report, error) {
	ctx = contextOrBackground(ctx)

	sc, err := scenario.Load(path)
	if err != nil {
		return nil, scenario.Report{}, err
	}

	opts := sc.SessionOptions(mapsession.OptionsFromConfig(cfg))
	s, err := mapsession.New(opts)
	if err != nil {
		return nil, scenario.Report{}, err
	}

	provider, err := tracing.NewProvider(tracing.FromConfig(tracingConfig(cfg.Tracing)))
	if err != nil {
		s.Close()
		return nil, scenario.Report{}, fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatCLI, "Failed to flush traces", err)
		}
	}()

	runnerOpts := []scenario.RunnerOption{
		scenario.WithTracer(provider.Tracer(), opts.Flags.Enabled(flags.FlagTraceScenarioSteps)),
	}
	if hook != nil {
		runnerOpts = append(runnerOpts, scenario.WithStepHook(hook))
	}

	report, err := scenario.NewRunner(runnerOpts...).Run(ctx, s, sc)
	if err != nil && !errors.Is(err, scenario.ErrUnexpectedOutcome) {
		s.Close()
		return nil, report, err
	}
	return s, report, err
}

// tracingConfig fills in the default trace file location.
func tracingConfig(t config.TracingConfig) config.TracingConfig {
	if t.Exporter == "file" && t.FilePath == "" {
		t.FilePath = config.DefaultTracesFilePath()
	}
	return t
}

func stepPrinter(w io.Writer) func(scenario.StepResult) {
	return func(r scenario.StepResult) {
		outcome := "ok"
		if r.Err != nil {
			outcome = "rejected: " + r.Err.Error()
		}
		if r.Unexpected {
			outcome += " (unexpected)"
		}
		_, _ = fmt.Fprintf(w, "%3d %-9s %4d  %s\n", r.Index, r.Step.Op, r.Handle, outcome)
	}
}

func printLegend(w io.Writer, s *mapsession.Session) error {
	return render.New(w, render.OptionsFromConfig(cfg.Render)).Fprint(w, query.Rows(s.Tree, s.Engine))
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
