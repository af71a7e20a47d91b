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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/docqa"
	"github.com/poiesic/docqa/config"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/reembed"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docqa",
		Usage: "Ask questions about uploaded documents",
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
				Usage:   "Path to the YAML configuration file",
				Value:   "docqa.yaml",
				EnvVars: []string{"DOCQA_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides the configuration)",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Environment files holding API keys",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write a configuration file with default settings",
				ArgsUsage: "[path]",
				Action:    initCommand,
			},
			{
				Name:      "ingest",
				Usage:     "Upload a PDF, markdown or text file",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for ingestion to finish",
						Value: 10 * time.Minute,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the processing status of a document",
				ArgsUsage: "<document-id>",
				Action:    statusCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "chunks",
						Usage: "Print the stored chunks",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask a question about one document",
				ArgsUsage: "<document-id> <question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Retrieval strategy (similarity, rerank); defaults to the configured one",
					},
					&cli.BoolFlag{
						Name:  "passages",
						Usage: "Print the retrieved passages",
					},
				},
			},
			{
				Name:   "documents",
				Usage:  "List stored documents",
				Action: documentsCommand,
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all chunks with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Number of batches embedded concurrently",
						Value: 4,
					},
				},
			},
		},
	}
}

// openService loads the environment and configuration and opens the service.
func openService(c *cli.Context) (*docqa.Service, error) {
	if err := config.LoadEnv(c.StringSlice("env-file")...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.Storage.Path = db
	}
	return docqa.NewServiceFromConfig(c.Context, cfg)
}

func initCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = c.String("config")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Upload(c.Context, data, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Document %d accepted (%s)\n", result.Document.Id, result.Document.Title)

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	if err := result.Task.Wait(ctx); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	report, err := s.Status(c.Context, result.Document.Id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Status: %s, %d chunks\n", report.Status, len(report.Chunks))
	return nil
}

func statusCommand(c *cli.Context) error {
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.Status(c.Context, id)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Document: %d\n", report.Document.Id)
	fmt.Fprintf(w, "Title:    %s\n", report.Document.Title)
	fmt.Fprintf(w, "Source:   %s\n", report.Document.SourceURL)
	fmt.Fprintf(w, "Status:   %s\n", report.Status)
	if report.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", report.Error)
	}
	fmt.Fprintf(w, "Chunks:   %d\n", len(report.Chunks))
	if c.Bool("chunks") {
		for _, chunk := range report.Chunks {
			fmt.Fprintf(w, "\n[%d] %s\n", chunk.Index, chunk.Text)
		}
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("document id and question are required")
	}
	id, err := parseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	question := strings.Join(c.Args().Slice()[1:], " ")

	var strategy core.Strategy
	if name := c.String("strategy"); name != "" {
		if strategy, err = core.ParseStrategy(name); err != nil {
			return err
		}
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := s.Query(c.Context, id, question, strategy)
	if err != nil {
		return err
	}
	printAnswer(c.App.Writer, result, c.Bool("passages"))
	return nil
}

func printAnswer(w io.Writer, result *docqa.QueryResult, passages bool) {
	if result.Status != core.StatusCompleted {
		fmt.Fprintf(w, "Note: document is %s, answering from the chunks stored so far\n\n", result.Status)
	}
	if len(result.Passages) == 0 {
		fmt.Fprintln(w, "No relevant passages found.")
		return
	}
	fmt.Fprintln(w, result.Answer)
	if passages {
		fmt.Fprintf(w, "\nPassages (%s):\n", result.Strategy)
		for _, p := range result.Passages {
			fmt.Fprintf(w, "  [%d] %.4f %s\n", p.Index, p.Score, p.Text)
		}
	}
}

func documentsCommand(c *cli.Context) error {
	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	docs, err := s.Documents(c.Context)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(c.App.Writer, "No documents")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\t%s\n", d.Document.Id, d.Status, d.Document.Filename, d.Document.Title)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Parallelism:    c.Int("parallelism"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if reembedConfig.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be greater than 0")
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.NewReembedder(reembedConfig, os.Stderr).Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func parseID(arg string) (core.ID, error) {
	if arg == "" {
		return 0, fmt.Errorf("document id is required")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid document id %q", core.ErrValidation, arg)
	}
	return core.ID(id), nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
