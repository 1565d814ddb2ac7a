// Copyright 2025 ClientPulse Labs
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
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/clientpulse/kb"
	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/reembed"
	"github.com/clientpulse/kb/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "kb",
		Usage: "Knowledge base with hybrid search and signal detection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Index a transcript file into the knowledge base",
				Action: ingestCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to JSON transcript file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "classifier",
						Usage: "Run the LLM classifier during signal detection",
					},
					&cli.IntFlag{
						Name:  "target-chars",
						Usage: "Chunk window character budget",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "overlap-chars",
						Usage: "Trailing overlap carried into the next chunk",
						Value: 50,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run a hybrid search over the index",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "viewer",
						Usage: "Viewer identity for access filtering (empty = no filtering)",
					},
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Restrict to source kinds (slack, fathom, drive, teamwork, github, harvest)",
					},
					&cli.StringSliceFlag{
						Name:  "project",
						Usage: "Restrict to project identifiers",
					},
				),
			},
			{
				Name:   "scan",
				Usage:  "Batch keyword scan over one document's chunks",
				Action: scanCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "document",
						Usage:    "Document ID to scan",
						Required: true,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Embed chunks missing a vector for the target model",
				Action: reembedCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "model",
						Usage: "Target embedding model (defaults to the configured embedding model)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Re-embed every chunk, not just those missing a vector",
					},
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
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "classifier-host",
			Usage: "Classifier service host URL (defaults to embedding-host)",
		},
		&cli.StringFlag{
			Name:  "classifier-model",
			Usage: "Classifier model name",
			Value: "qwen2.5:3b",
		},
	}
}

func openKB(c *cli.Context, opts ...kb.Option) (*kb.KnowledgeBase, error) {
	classifierHost := c.String("classifier-host")
	if classifierHost == "" {
		classifierHost = c.String("embedding-host")
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithClassifierHost(classifierHost),
		ai.WithClassifierModel(c.String("classifier-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append([]kb.Option{kb.WithAIConfig(aiConfig)}, opts...)
	return kb.Open(c.String("db"), opts...)
}

// transcriptFile is the on-disk ingest format: one document plus its
// ordered segments.
type transcriptFile struct {
	Source         string   `json:"source"`
	SourceID       string   `json:"source_id"`
	Title          string   `json:"title"`
	Project        string   `json:"project"`
	WorkspaceID    string   `json:"workspace_id"`
	AllowedViewers []string `json:"allowed_viewers"`
	Segments       []struct {
		StartMS int64  `json:"start_ms"`
		EndMS   int64  `json:"end_ms"`
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	} `json:"segments"`
}

func ingestCommand(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	var transcript transcriptFile
	if err := json.Unmarshal(data, &transcript); err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}

	source, err := core.ParseSourceKind(transcript.Source)
	if err != nil {
		return err
	}

	k, err := openKB(c,
		kb.WithChunking(c.Int("target-chars"), c.Int("overlap-chars")),
		kb.WithClassifierEnabled(c.Bool("classifier")),
	)
	if err != nil {
		return err
	}
	defer k.Close()

	doc := &core.Document{
		Source:         source,
		SourceId:       transcript.SourceID,
		Title:          transcript.Title,
		Project:        transcript.Project,
		WorkspaceId:    transcript.WorkspaceID,
		AllowedViewers: transcript.AllowedViewers,
	}

	segments := make([]core.Segment, len(transcript.Segments))
	for i, seg := range transcript.Segments {
		segments[i] = core.Segment{
			StartMS: seg.StartMS,
			EndMS:   seg.EndMS,
			Speaker: seg.Speaker,
			Text:    seg.Text,
		}
	}

	chunks, err := k.Ingest(context.Background(), doc, segments)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	// Let the async embedding and detection jobs drain before closing
	time.Sleep(500 * time.Millisecond)

	fmt.Printf("Indexed %s as %d chunks\n", doc.Id, len(chunks))
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	sources := make([]core.SourceKind, 0, len(c.StringSlice("source")))
	for _, s := range c.StringSlice("source") {
		kind, err := core.ParseSourceKind(s)
		if err != nil {
			return err
		}
		sources = append(sources, kind)
	}

	k, err := openKB(c)
	if err != nil {
		return err
	}
	defer k.Close()

	results, err := k.Search(context.Background(), search.Request{
		Query:  query,
		Limit:  c.Int("limit"),
		Viewer: c.String("viewer"),
		Filters: &search.Filters{
			Sources:  sources,
			Projects: c.StringSlice("project"),
		},
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for _, hit := range results {
		fmt.Printf("%d. [%.3f] %s\n   %s\n", hit.Rank, hit.Score, hit.DocumentId, excerpt(hit.Text, 120))
	}
	return nil
}

func scanCommand(c *cli.Context) error {
	k, err := openKB(c)
	if err != nil {
		return err
	}
	defer k.Close()

	alerts, err := k.Scan(context.Background(), core.ID(c.String("document")))
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(alerts) == 0 {
		fmt.Println("No signals detected")
		return nil
	}

	for _, alert := range alerts {
		fmt.Printf("%s (score %.0f)\n   %s\n", alert.Rule, alert.Score, excerpt(alert.Chunk.Text, 120))
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		All:            c.Bool("all"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	k, err := openKB(c)
	if err != nil {
		return err
	}
	defer k.Close()

	reembedder, err := k.NewReembedder(c.String("model"), reembedConfig, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func excerpt(text string, limit int) string {
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
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
