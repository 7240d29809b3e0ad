package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/strider"
	"github.com/aretw0/strider/internal/config"
	"github.com/aretw0/strider/internal/presentation/tui"
	"github.com/aretw0/strider/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RunOptions contains all the configuration for the Run command.
// Non-empty fields override the mission file.
type RunOptions struct {
	ConfigPath  string
	Host        string
	Bridge      string
	User        string
	Simulate    bool
	Behavior    string
	Source      string
	Cameras     []string
	Output      string
	Redis       string
	MetricsAddr string
	ReportPath  string
	LogLevel    string
	Debug       bool
	Quiet       bool

	// Out receives the banner, status line and rendered report. Nil means stdout.
	Out io.Writer
}

// Run connects to the robot, executes one mission and prints its report.
// The report is returned even when the session fails.
func Run(ctx context.Context, opts RunOptions) (*strider.Report, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return nil, err
	}
	mission := cfg.Resolve()
	if err := mission.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mission: %w", err)
	}

	logger, err := createLogger(opts.Debug, opts.LogLevel)
	if err != nil {
		return nil, err
	}
	if !opts.Quiet {
		tui.PrintBanner(out, strider.Version)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewMetrics(reg).Hooks()
	if opts.Debug {
		hooks = hooks.Merge(observability.LogHooks(logger))
	}
	if cfg.MetricsAddr != "" {
		stop, err := serveMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to serve metrics: %w", err)
		}
		defer stop()
	}

	connector, addr, err := createConnector(cfg)
	if err != nil {
		return nil, err
	}
	password := ""
	if cfg.Host != SimulatedHost {
		if password, err = readPassword(cfg.User, out); err != nil {
			return nil, err
		}
	}

	robot, err := strider.Connect(ctx, connector, addr, cfg.User, password)
	if err != nil {
		return nil, err
	}
	if !opts.Quiet {
		printSystemMessage(out, "Connected to %s as %q.", addr, cfg.User)
	}

	eng, err := createEngine(robot, cfg, logger, hooks)
	if err != nil {
		return nil, err
	}

	report, runErr := eng.Run(ctx, mission)
	if sig := interruptedBy(ctx); sig != nil {
		logger.Warn("session interrupted", "signal", sig)
		if !opts.Quiet {
			printSystemMessage(out, "Interrupted by %s.", sig)
		}
	}
	if report != nil {
		if err := printReport(out, report, opts); err != nil {
			logger.Warn("failed to print report", "err", err)
		}
	}
	return report, runErr
}

func printReport(out io.Writer, report *strider.Report, opts RunOptions) error {
	if opts.ReportPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.ReportPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(opts.ReportPath, []byte(tui.ReportDocument(report)), 0o644); err != nil {
			return err
		}
	}
	if opts.Quiet {
		return nil
	}

	fmt.Fprintln(out, tui.StatusLine(report))
	render, err := tui.NewRenderer(100)
	if err != nil {
		return err
	}
	md, err := render(tui.ReportMarkdown(report))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, md)
	return err
}
