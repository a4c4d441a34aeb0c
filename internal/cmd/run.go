package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"digital.vasic.specs/pkg/bank"
	"digital.vasic.specs/pkg/config"
	"digital.vasic.specs/pkg/corpus"
	"digital.vasic.specs/pkg/logging"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/metrics"
	"digital.vasic.specs/pkg/monitor"
	"digital.vasic.specs/pkg/registry"
	"digital.vasic.specs/pkg/report"
	"digital.vasic.specs/pkg/runner"
	"digital.vasic.specs/pkg/spec"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run specification suites and banks",
		Long: `Run the built-in core suites and any spec banks, streaming one line per
example and finishing with the failures and totals.

Configuration is read from --config when given, then overlaid with
SPECRUN_* environment variables (and --env-file), then with flags.

With --bank and no --suite only the banks run.

Exit code: 0 when every example passed or was skipped, 1 when any
example failed or errored, 2 when the run could not start.

Examples:
  specrun run
  specrun run --suite core/string --format dot
  specrun run --target 1.8.7 --parallel 4
  specrun run --bank specs/ --results-dir results --monitor :8089`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().String("env-file", "", "Path to a file of SPECRUN_* variables")
	cmd.Flags().String("target", "", "Target version gates are evaluated against")
	cmd.Flags().String("platform", "", "Target platform (default: this OS)")
	cmd.Flags().StringSlice("feature", nil, "Enabled target features")
	cmd.Flags().Int("parallel", 0, "Number of concurrent workers")
	cmd.Flags().Duration("deadline", 0, "Per-example deadline (e.g. 5s); 0 disables it")
	cmd.Flags().Bool("strict", true, "Fail examples on messages mocks did not declare")
	cmd.Flags().String("format", "", "Output format: spec, dot, json, markdown or html")
	cmd.Flags().StringSlice("suite", nil, "Built-in suites to run (default: all)")
	cmd.Flags().StringSlice("bank", nil, "Spec bank files or directories")
	cmd.Flags().String("monitor", "", "Serve the live monitor on this address")
	cmd.Flags().String("results-dir", "", "Write summary, history and logs here")
	cmd.Flags().BoolP("verbose", "v", false, "Log run progress to stderr")

	return cmd
}

func runCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return &ExitError{Code: report.ExitBroken, Err: err}
	}

	code, err := execute(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return &ExitError{Code: report.ExitBroken, Err: err}
	}
	if code != report.ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

// loadConfig layers the config file, the environment and the
// flags that were set, then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	env := config.NewEnvLoader()
	if path, _ := flags.GetString("env-file"); path != "" {
		if err := env.Load(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}

	if flags.Changed("target") {
		cfg.TargetVersion, _ = flags.GetString("target")
	}
	if flags.Changed("platform") {
		cfg.Platform, _ = flags.GetString("platform")
	}
	if flags.Changed("feature") {
		cfg.Features, _ = flags.GetStringSlice("feature")
	}
	if flags.Changed("parallel") {
		cfg.Parallel, _ = flags.GetInt("parallel")
	}
	if flags.Changed("deadline") {
		cfg.Deadline, _ = flags.GetDuration("deadline")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("suite") {
		cfg.Suites, _ = flags.GetStringSlice("suite")
	}
	if flags.Changed("bank") {
		cfg.Banks, _ = flags.GetStringSlice("bank")
	}
	if flags.Changed("monitor") {
		cfg.MonitorAddr, _ = flags.GetString("monitor")
	}
	if flags.Changed("results-dir") {
		cfg.ResultsDir, _ = flags.GetString("results-dir")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute runs cfg and returns the exit code. An error means the
// run could not start or was interrupted.
func execute(
	ctx context.Context,
	cfg *config.Config,
	stdout, stderr io.Writer,
) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := cfg.Target()
	if err != nil {
		return report.ExitBroken, err
	}

	logger, err := setupLogger(cfg, stderr)
	if err != nil {
		return report.ExitBroken, err
	}
	defer func() { _ = logger.Close() }()

	root, err := buildTree(cfg)
	if err != nil {
		return report.ExitBroken, err
	}

	promReg := prometheus.NewRegistry()
	collector := monitor.NewEventCollector()
	colored := logging.IsTerminal(stdout)
	streaming := cfg.Format == report.FormatSpec || cfg.Format == report.FormatDot
	stream := report.NewStream(stdout, cfg.Format, colored)

	opts := []runner.RunnerOption{
		runner.WithLogger(logger),
		runner.WithTarget(target),
		runner.WithParallel(cfg.Parallel),
		runner.WithDeadline(cfg.Deadline),
		runner.WithMetrics(metrics.NewPrometheusMetrics(promReg)),
		runner.WithStrictMocks(cfg.Strict),
		runner.WithListener(collector),
	}
	if streaming {
		opts = append(opts, runner.WithListener(stream))
	}

	if cfg.MonitorAddr != "" {
		server := monitor.NewServer(
			cfg.MonitorAddr, collector, monitor.NewDashboardData(""),
			monitor.WithGatherer(promReg),
			monitor.WithServerLogger(logger),
		)
		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("monitor_failed", logging.ErrorField(err))
			}
		}()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	run, runErr := runner.New(opts...).Run(ctx, root)
	if run == nil {
		return report.ExitBroken, runErr
	}

	collector.Finish(run)
	if streaming {
		stream.Finish(run)
	} else {
		rep, err := report.ForFormat(cfg.Format, colored)
		if err != nil {
			return report.ExitBroken, err
		}
		if err := rep.Report(stdout, run); err != nil {
			return report.ExitBroken, err
		}
	}

	if cfg.ResultsDir != "" {
		if err := saveResults(cfg.ResultsDir, run); err != nil {
			logger.Error("results_not_saved", logging.ErrorField(err))
		}
	}

	if runErr != nil {
		return report.ExitBroken, runErr
	}
	return report.ExitCode(run.Counts), nil
}

// setupLogger logs to the console when verbose and to
// specrun.log when a results directory is set.
func setupLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, error) {
	var loggers []logging.Logger
	if cfg.Verbose {
		loggers = append(loggers, logging.NewConsoleLogger(stderr, true))
	}
	if cfg.ResultsDir != "" {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		jl, err := logging.NewJSONLogger(logging.LoggerConfig{
			OutputPath: filepath.Join(cfg.ResultsDir, "specrun.log"),
			Level:      level,
			Verbose:    cfg.Verbose,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, jl)
	}

	switch len(loggers) {
	case 0:
		return logging.NullLogger{}, nil
	case 1:
		return loggers[0], nil
	}
	return logging.NewMultiLogger(loggers...), nil
}

// buildTree declares the selected corpus suites and attaches the
// banks beneath one root.
func buildTree(cfg *config.Config) (*spec.Group, error) {
	var root *spec.Group
	if len(cfg.Banks) > 0 && len(cfg.Suites) == 0 {
		root = spec.NewRoot()
	} else {
		built, err := registry.Build(corpus.Registry(), cfg.Suites...)
		if err != nil {
			return nil, err
		}
		root = built
	}

	if len(cfg.Banks) == 0 {
		return root, nil
	}
	b := bank.New()
	for _, path := range cfg.Banks {
		if err := b.Load(path); err != nil {
			return nil, err
		}
	}
	if err := b.Attach(root, corpus.Subjects(), matcher.NewEngine()); err != nil {
		return nil, err
	}
	return root, nil
}

// saveResults writes the summary, the HTML report and the
// history entry into dir.
func saveResults(dir string, run *runner.Run) error {
	var errs []error
	if err := report.SaveSummary(report.SummarizeRun(run), dir); err != nil {
		errs = append(errs, err)
	}

	html, err := report.NewHTMLReporter().Generate(run)
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "report.html"), html, 0644)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("write html report: %w", err))
	}

	if err := report.AppendToHistory(filepath.Join(dir, "history.jsonl"), run); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
