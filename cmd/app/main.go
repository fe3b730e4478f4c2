package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/hack4good/ideadex/internal"
	"github.com/hack4good/ideadex/internal/generate"
	"github.com/hack4good/ideadex/internal/github"
	"github.com/hack4good/ideadex/internal/index"
	"github.com/hack4good/ideadex/internal/mcpserver"
	"github.com/hack4good/ideadex/internal/storage"
	pkgconfig "github.com/hack4good/ideadex/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOrDefault(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// CLI flags and environment override the file.
	if repo := cmd.String("repo"); repo != "" {
		cfg.GitHub.Repository = repo
	}
	if token := cmd.String("token"); token != "" {
		cfg.GitHub.Token = token
	}
	if pr := cmd.String("pr"); pr != "" {
		n, err := strconv.Atoi(pr)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid --pr value %q", pr)
		}
		cfg.GitHub.PRNumber = n
	}
	if err := cfg.GitHub.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *internal.Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func newPipeline(cmd *cli.Command, cfg *internal.Config, logger *slog.Logger) (*generate.Pipeline, error) {
	store, err := storage.NewFS(cfg.Repo.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	var gh *github.Client
	if cfg.GitHub.Repository != "" {
		gh = github.New(cfg.GitHub.Repository, cfg.GitHub.Token)
	} else {
		logger.Info("no github repository configured, attribution and PR comments disabled")
	}

	return generate.New(store, gh, generate.Options{
		ReadmePath: cfg.Readme.Path,
		BackupPath: cfg.Readme.Backup,
		CachePath:  cfg.Cache.Path,
		DryRun:     cmd.Bool("dry-run"),
		PRNumber:   cfg.GitHub.PRNumber,
	}, logger), nil
}

func runGenerate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pipeline, err := newPipeline(cmd, cfg, logger)
	if err != nil {
		return err
	}
	return pipeline.Run(ctx)
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	pipeline, err := newPipeline(cmd, cfg, logger)
	if err != nil {
		return err
	}
	return pipeline.Watch(ctx)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("usage: ideadex search <query>")
	}

	store, err := storage.NewFS(cfg.Repo.Path)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		return err
	}
	results, err := db.Search(query, 20)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%s\n", r.Path, r.Project, r.Snippet)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	store, err := storage.NewFS(cfg.Repo.Path)
	if err != nil {
		return err
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(store, db).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	githubFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Usage:   "GitHub repository (owner/name) for attribution and PR comments",
			Sources: cli.EnvVars("GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "GitHub API token",
			Sources: cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "pr",
			Usage:   "Pull request number to comment the run summary on",
			Sources: cli.EnvVars("PR_NUMBER"),
		},
	}
	generateFlags := append([]cli.Flag{
		configFlag,
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the rendered README to stdout without writing any files",
		},
	}, githubFlags...)

	cmd := &cli.Command{
		Name:   "ideadex",
		Usage:  "Hackathon proposal README generator with attribution, search, and a live API",
		Action: runGenerate,
		Flags:  generateFlags,
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Scan proposal exports and rewrite the README table",
				Action: runGenerate,
				Flags:  generateFlags,
			},
			{
				Name:   "watch",
				Usage:  "Regenerate the README whenever proposal exports change",
				Action: runWatch,
				Flags:  generateFlags,
			},
			{
				Name:   "serve",
				Usage:  "Serve the proposal API with live updates",
				Action: runServe,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:      "search",
				Usage:     "Search indexed proposals from the command line",
				ArgsUsage: "<query>",
				Action:    runSearch,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:   "mcp",
				Usage:  "Serve proposal tools over the Model Context Protocol (stdio)",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
