// nixmedic probes machine health, runs unattended maintenance and files
// reports, one mutually exclusive mode per invocation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlgruby/nixmedic/agent"
	"github.com/mlgruby/nixmedic/alert"
	"github.com/mlgruby/nixmedic/config"
	"github.com/mlgruby/nixmedic/maintain"
	"github.com/mlgruby/nixmedic/observe"
	"github.com/mlgruby/nixmedic/probe"
	"github.com/mlgruby/nixmedic/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var exit agent.ExitCode
	cmd := newRootCmd(&exit)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "nixmedic:", err)
		return int(agent.ExitInfrastructure)
	}
	return int(exit)
}

func newRootCmd(exit *agent.ExitCode) *cobra.Command {
	var (
		cfgFile  string
		logLevel string
		metrics  string
		verbose  bool

		check       bool
		fullReport  bool
		maintenance bool
		alertOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "nixmedic",
		Short: "System health monitoring and maintenance agent",
		Long: `nixmedic probes CPU, memory, disk, load, network and the nix daemon,
grades the machine's health, and on request runs unattended store
maintenance. Each invocation does exactly one of --check, --report,
--maintain or --alert and then exits; overlapping runs are refused.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := report.ModeCheck
			switch {
			case fullReport:
				mode = report.ModeReport
			case maintenance:
				mode = report.ModeMaintain
			case alertOnly:
				mode = report.ModeAlert
			}

			code, err := runMode(cmd.Context(), runOptions{
				cfgFile:  cfgFile,
				logLevel: logLevel,
				metrics:  metrics,
				verbose:  verbose,
				mode:     mode,
			})
			*exit = code
			return err
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "probe and classify, log only")
	cmd.Flags().BoolVar(&fullReport, "report", false, "probe, classify and write a report file")
	cmd.Flags().BoolVar(&maintenance, "maintain", false, "run the maintenance task sequence")
	cmd.Flags().BoolVar(&alertOnly, "alert", false, "probe and dispatch critical alerts")
	cmd.MarkFlagsMutuallyExclusive("check", "report", "maintain", "alert")

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&metrics, "metrics", "", "metrics exporter: none, stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a per-probe summary table")

	return cmd
}

// runOptions carries the flag values of one invocation. Flags beat the
// config file, which beats the environment defaults.
type runOptions struct {
	cfgFile  string
	logLevel string
	metrics  string
	verbose  bool
	mode     report.Mode
}

func runMode(ctx context.Context, opts runOptions) (agent.ExitCode, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return agent.ExitInfrastructure, err
	}
	if opts.logLevel == "" {
		opts.logLevel = cfg.Log.Level
	}
	if opts.metrics == "" {
		opts.metrics = cfg.Metrics.Exporter
	}
	logger := observe.NewLogger(opts.logLevel)

	metrics, err := observe.NewMetrics(ctx, opts.metrics)
	if err != nil {
		return agent.ExitInfrastructure, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metrics.Shutdown(shutdownCtx)
	}()

	writer, err := report.NewWriter(report.WriterConfig{
		ReportsDir: cfg.Paths.ReportsDir,
		LogsDir:    cfg.Paths.LogsDir,
	})
	if err != nil {
		return agent.ExitInfrastructure, err
	}

	exec := probe.NewExecRunner()
	probes := probe.NewRunner(logger, probe.RunnerConfig{DefaultTimeout: cfg.Probes.Timeout})
	for _, p := range probe.DefaultSet(exec, probe.SetConfig{
		ReachabilityAddr: cfg.Probes.ReachabilityAddr,
		DNSHost:          cfg.Probes.DNSHost,
		DaemonSocket:     cfg.Probes.DaemonSocket,
		CollectTimeout:   cfg.Probes.Timeout,
	}) {
		probes.Register(p)
	}

	tasks := maintain.NewRunner(logger, maintain.DefaultTasks(exec, maintain.Config{
		Retention:       cfg.Maintenance.Retention,
		KeepGenerations: cfg.Maintenance.KeepGenerations,
	}))

	dispatcher := alert.NewDispatcher(alert.DispatcherConfig{
		HookURL:     cfg.Alert.HookURL,
		HookTimeout: cfg.Alert.HookTimeout,
		HookRetries: cfg.Alert.HookRetries,
	}, writer, logger)

	coord := agent.New(agent.Deps{
		Lock:       agent.NewLock(agent.LockConfig{Path: cfg.Paths.LockFile}),
		Probes:     probes,
		Thresholds: cfg.HealthThresholds(),
		Tasks:      tasks,
		Writer:     writer,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})

	rec, code := coord.Run(ctx, opts.mode)
	if code == agent.ExitAlreadyRunning {
		fmt.Fprintln(os.Stderr, "nixmedic: another instance is already running")
		return code, nil
	}
	if rec != nil {
		if opts.verbose {
			if err := printSummary(os.Stdout, rec); err != nil {
				return agent.ExitInfrastructure, err
			}
		} else if opts.mode == report.ModeCheck || opts.mode == report.ModeReport {
			fmt.Printf("overall: %s (%d issue(s))\n", rec.Status, len(rec.Issues))
		}
	}
	return code, nil
}
