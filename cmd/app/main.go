package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
	}, nil
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.InitProject(ctx, opts...)
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.SyncOnce(ctx, opts...)
}

func stageArgs(cmd *cli.Command, nameRequired bool) (int, int, string, error) {
	phase := int(cmd.Int("phase"))
	stage := int(cmd.Int("stage"))
	name := cmd.String("name")

	if phase < 1 || stage < 1 {
		return 0, 0, "", cli.Exit(`--phase and --stage must be positive integers, e.g. ansuz create-stage --phase 1 --stage 2 --name "User Auth"`, 2)
	}
	if nameRequired && name == "" {
		return 0, 0, "", cli.Exit(`--name must not be empty, e.g. ansuz create-stage --phase 1 --stage 2 --name "User Auth"`, 2)
	}
	return phase, stage, name, nil
}

func runCreateStage(ctx context.Context, cmd *cli.Command) error {
	phase, stage, name, err := stageArgs(cmd, true)
	if err != nil {
		return err
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.CreateStage(ctx, phase, stage, name, opts...)
}

func runCreateReport(ctx context.Context, cmd *cli.Command) error {
	phase, stage, name, err := stageArgs(cmd, false)
	if err != nil {
		return err
	}
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.CreateReport(ctx, phase, stage, name, opts...)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func stageFlags(nameRequired bool) []cli.Flag {
	nameUsage := "Stage name"
	if !nameRequired {
		nameUsage = "Stage name (derived from the stage document when omitted)"
	}
	return []cli.Flag{
		&cli.IntFlag{
			Name:     "phase",
			Usage:    "Phase number",
			Required: true,
		},
		&cli.IntFlag{
			Name:     "stage",
			Usage:    "Stage number within the phase",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "name",
			Usage:    nameUsage,
			Required: nameRequired,
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Project documentation framework with relationship inference and knowledge-graph memory sync",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "ansuz.yaml",
				Value:       "ansuz.yaml",
				Sources:     cli.EnvVars("ANSUZ_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Scaffold the documentation framework in the current project",
				Action: runInit,
			},
			{
				Name:   "sync",
				Usage:  "Regenerate the knowledge-graph memory file from the documentation set",
				Action: runSync,
			},
			{
				Name:   "create-stage",
				Usage:  "Create a stage document from the stage template",
				Flags:  stageFlags(true),
				Action: runCreateStage,
			},
			{
				Name:   "create-report",
				Usage:  "Create a completion report for an existing stage",
				Flags:  stageFlags(false),
				Action: runCreateReport,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with SSE events and a filesystem watcher",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the documentation toolset over MCP stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
