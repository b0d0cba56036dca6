// Copyright 2025 QSearch Authors
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	qsearch "github.com/GaryOcean428/qsearch"
	"github.com/GaryOcean428/qsearch/config"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "qsearch",
		Usage: "Basin geometry search engine with continuous learning",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank stored documents against a query by basin distance",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				},
			},
			{
				Name:      "hybrid",
				Usage:     "Blend web search results with basin re-ranking",
				ArgsUsage: "<query>",
				Action:    hybridCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.Float64Flag{
						Name:  "alpha",
						Usage: "Ranking blend: 0 is pure basin geometry, 1 is pure web order",
						Value: 0.5,
					},
					&cli.BoolFlag{
						Name:  "learn",
						Usage: "Queue result URLs for the continuous learner",
					},
				},
			},
			{
				Name:      "crawl",
				Usage:     "Seed the document store by crawling from the given URLs",
				ArgsUsage: "<url> [url ...]",
				Action:    crawlCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "depth",
						Usage: "How many link levels to follow from the seeds",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Page budget for the crawl run",
						Value: 200,
					},
				},
			},
			{
				Name:   "learn",
				Usage:  "Run the continuous learner until interrupted",
				Action: learnCommand,
			},
			{
				Name:   "stats",
				Usage:  "Print document store and learner statistics",
				Action: statsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openEngine builds an Engine from the environment, with the --db flag
// taking precedence over QSEARCH_DB_PATH.
func openEngine(c *cli.Context) (*qsearch.Engine, error) {
	cfg := config.FromEnv()
	if dbPath := c.String("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	engine, err := qsearch.NewEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%2d. %s (distance %.4f)\n    %s\n", i+1, r.Title, r.Distance, r.URL)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", r.Snippet)
		}
	}
	return nil
}

func hybridCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.HybridSearch(context.Background(), query, c.Int("limit"), c.Float64("alpha"), c.Bool("learn"))
	if err != nil {
		return fmt.Errorf("hybrid search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%2d. %s (score %.4f, distance %.4f, position %d)\n    %s\n",
			i+1, r.Title, r.HybridScore, r.BasinDistance, r.Position, r.URL)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", r.Snippet)
		}
	}
	return nil
}

func crawlCommand(c *cli.Context) error {
	seeds := c.Args().Slice()
	if len(seeds) == 0 {
		return fmt.Errorf("at least one seed url is required")
	}

	cfg := config.FromEnv()
	if dbPath := c.String("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	cfg.CrawlMaxDepth = c.Int("depth")
	cfg.CrawlMaxPages = c.Int("max-pages")

	engine, err := qsearch.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := engine.Crawl(ctx, seeds)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Printf("pages crawled: %d\n", report.PagesCrawled)
	fmt.Printf("pages failed:  %d\n", report.PagesFailed)
	fmt.Printf("docs stored:   %d\n", report.DocumentsStored)
	return nil
}

func learnCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.StartLearning(ctx)
	fmt.Fprintln(os.Stderr, "learner running, press Ctrl+C to stop")
	<-ctx.Done()
	engine.StopLearning()

	stats := engine.LearningStats()
	fmt.Printf("urls queued:  %d\n", stats.URLsQueued)
	fmt.Printf("urls crawled: %d\n", stats.URLsCrawled)
	fmt.Printf("urls failed:  %d\n", stats.URLsFailed)
	fmt.Printf("docs added:   %d\n", stats.DocumentsAdded)
	return nil
}

func statsCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	count, err := engine.Repository().CountDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	stats := engine.LearningStats()

	fmt.Printf("documents:    %d\n", count)
	fmt.Printf("urls queued:  %d\n", stats.URLsQueued)
	fmt.Printf("urls crawled: %d\n", stats.URLsCrawled)
	fmt.Printf("urls failed:  %d\n", stats.URLsFailed)
	fmt.Printf("docs added:   %d\n", stats.DocumentsAdded)
	fmt.Printf("queue size:   %d\n", stats.QueueSize)
	fmt.Printf("running:      %v\n", stats.Running)
	return nil
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
