// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/faqmatch"
	"github.com/poiesic/faqmatch/api"
	"github.com/poiesic/faqmatch/config"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/mcp"
	"github.com/poiesic/faqmatch/retry"
	"github.com/poiesic/faqmatch/tui"
	"github.com/poiesic/faqmatch/warm"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "faqmatch",
		Usage:   "Answer customer questions from an FAQ catalog",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file; defaults apply when it does not exist",
				Value:   "faqmatch.yaml",
				EnvVars: []string{"FAQMATCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to a YAML catalog, overriding the config file",
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Attempts to reach the embedding service at startup",
				Value: retry.DefaultPolicy().MaxAttempts,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "Base delay for exponential backoff",
				Value: retry.DefaultPolicy().BaseDelay,
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address, overriding the config file",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "explain",
						Aliases: []string{"x"},
						Usage:   "Print the score breakdown behind the answer",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcpCommand,
			},
			{
				Name:   "chat",
				Usage:  "Interactive terminal chat",
				Action: chatCommand,
			},
			{
				Name:   "warm",
				Usage:  "Embed the catalog and fill the embedding cache",
				Action: warmCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of questions to embed in each request",
						Value: warm.DefaultConfig().BatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N questions",
						Value: warm.DefaultConfig().ReportInterval,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-embed questions that are already cached",
					},
				},
			},
		},
	}
}

func setup(c *cli.Context) error {
	_ = godotenv.Load()
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// stdout carries answers and the MCP stream, so logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path := c.String("catalog"); path != "" {
		cfg.Catalog.Path = path
	}
	return cfg, nil
}

// openService builds the service, retrying while the embedding service is unreachable.
func openService(ctx context.Context, c *cli.Context, cfg *config.AppConfig) (*faqmatch.Service, error) {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = c.Int("max-retries")
	policy.BaseDelay = c.Duration("retry-delay")
	policy.Retryable = func(err error) bool {
		return errors.Is(err, core.ErrEmbeddingFailed)
	}

	var svc *faqmatch.Service
	start := time.Now()
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		var err error
		svc, err = faqmatch.Open(ctx, cfg)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	slog.Info("ready",
		"entries", svc.Catalog().Len(),
		"model", svc.Model(),
		"elapsed", time.Since(start))
	return svc, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func serveCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	svc, err := openService(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	server := api.NewServer(svc, svc.Catalog().Len(),
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins...))
	return server.ListenAndServe(ctx, cfg.Server.Addr)
}

func askCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	question := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := c.App.Writer
	if c.Bool("explain") {
		monitor := newExplainMonitor(out, svc.Catalog())
		_, err = svc.Engine().AnswerWithMonitor(ctx, question, monitor)
		return err
	}

	result, err := svc.Answer(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result.Answer)
	if result.Matched() {
		fmt.Fprintf(out, "confidence: %.2f\n", result.Confidence)
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	server, err := mcp.NewServer(svc, svc.Catalog().Questions(), mcp.WithVersion(version))
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

func chatCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	summary := fmt.Sprintf("%d questions loaded, embedder %s", svc.Catalog().Len(), svc.Model())
	return tui.Run(ctx, svc, summary)
}

func warmCommand(c *cli.Context) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	warmConfig := warm.DefaultConfig()
	warmConfig.BatchSize = c.Int("batch-size")
	warmConfig.ReportInterval = c.Int("report-interval")
	warmConfig.Force = c.Bool("force")
	warmConfig.Retry.MaxAttempts = c.Int("max-retries")
	warmConfig.Retry.BaseDelay = c.Duration("retry-delay")

	out := c.App.Writer
	stats, err := faqmatch.Warm(ctx, cfg, warmConfig, out)
	if errors.Is(err, faqmatch.ErrCacheDisabled) {
		fmt.Fprintf(out, "Embedder %s does not use the embedding cache; nothing to warm\n", cfg.Embedder.Type)
		return nil
	}
	if err != nil {
		return fmt.Errorf("warming failed: %w", err)
	}

	fmt.Fprintf(out, "Cache: %s\n", cfg.Cache.Path)
	fmt.Fprintf(out, "Questions: %d (%d cached, %d embedded)\n", stats.Total, stats.Cached, stats.Embedded)
	return nil
}
