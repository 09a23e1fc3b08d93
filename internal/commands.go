package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/docservice"
	"github.com/starford/ansuz/internal/mcpserver"
)

// oneShot builds the component stack for a single-command invocation. Logs
// go to stderr so stdout stays clean for command output.
func oneShot(opts []Option) (*application, *runtime, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, nil, err
	}

	logger := app.logger
	if logger == nil {
		logger = buildLogger(app.config, os.Stderr)
	}

	rt, err := newRuntime(app.config, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, rt, nil
}

// InitProject scaffolds the documentation framework: directory tree,
// singleton documents, templates, README, the memory file, and the Cursor
// MCP registry entry. When the configuration file does not exist yet, the
// effective configuration is written there so later commands start from the
// same settings.
func InitProject(ctx context.Context, opts ...Option) error {
	app, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	report, err := rt.svc.Init(ctx, cfg.Project.Name, rt.store.Root(), cfg.MCP.Command)
	if err != nil {
		return err
	}

	if app.configPath != "" {
		if err := writeConfigIfAbsent(app.configPath, cfg); err != nil {
			rt.logger.Warn("config file not written", slog.String("path", app.configPath), slog.String("error", err.Error()))
		}
	}

	out := os.Stdout
	fmt.Fprintf(out, "Initialized %s\n", cfg.Project.Name)
	for _, p := range report.Created {
		fmt.Fprintf(out, "  created %s\n", p)
	}
	for _, p := range report.Templates {
		fmt.Fprintf(out, "  template %s\n", p)
	}
	fmt.Fprintf(out, "Memory file: %s\n", report.MemoryPath)
	return nil
}

func writeConfigIfAbsent(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SyncOnce runs the full pipeline once and prints a summary.
func SyncOnce(ctx context.Context, opts ...Option) error {
	_, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.svc.Sync(ctx)
	if err != nil {
		return err
	}

	printSyncReport(os.Stdout, report)
	return nil
}

func printSyncReport(w io.Writer, report *docservice.SyncReport) {
	fmt.Fprintf(w, "Found %d documents, extracted %d\n", report.Located, report.Extracted)
	fmt.Fprintf(w, "Entities: %d, relations: %d\n", report.Entities, report.Relations)
	fmt.Fprintf(w, "Memory file: %s\n", report.MemoryPath)
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  skipped %s: %s\n", f.Path, f.Reason)
	}
}

// CreateStage scaffolds a stage document and prints its path.
func CreateStage(ctx context.Context, phase, stage int, name string, opts ...Option) error {
	_, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	path, err := rt.svc.CreateStage(ctx, phase, stage, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Created stage document: %s\n", path)
	return nil
}

// CreateReport scaffolds a completion report for an existing stage, records
// the completion in the progress log, and prints the report path.
func CreateReport(ctx context.Context, phase, stage int, name string, opts ...Option) error {
	_, rt, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	path, stageName, err := rt.svc.CreateReport(ctx, phase, stage, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Created completion report for %q: %s\n", stageName, path)
	return nil
}

// RunMCP serves the documentation toolset over MCP stdio. stdout carries
// the protocol stream, so logs are forced to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	logger := app.logger
	if logger == nil {
		logger = buildLogger(app.config, os.Stderr)
	}

	rt, err := newRuntime(app.config, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("MCP server starting", slog.String("project", rt.cfg.Project.Name))
	return mcpserver.New(rt.svc).ServeStdio()
}
