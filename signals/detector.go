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

package signals

import (
	"context"
	"log/slog"
	"time"

	"github.com/clientpulse/kb/ai"
	"github.com/clientpulse/kb/core"
	"github.com/google/uuid"
)

// Detector finds risk and opportunity signals in chunks.
//
// Detection is hybrid: fast keyword rules always run, and an optional
// classifier can add nuanced signals the keywords miss. Classifier and
// summarizer failures degrade silently to keyword-only results.
type Detector struct {
	classifier ai.SignalClassifier
	summarizer ai.Summarizer
	logger     *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithClassifier enables LLM-backed signal classification.
func WithClassifier(classifier ai.SignalClassifier) Option {
	return func(d *Detector) {
		d.classifier = classifier
	}
}

// WithSummarizer enables LLM-backed alert summaries.
// Without one, the summary is the quote.
func WithSummarizer(summarizer ai.Summarizer) Option {
	return func(d *Detector) {
		d.summarizer = summarizer
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
	}
}

// NewDetector creates a detector. With no options it runs keyword rules only.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		logger: slog.Default().With("component", "signal-detector"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect analyzes one chunk and returns an alert per detected signal type.
//
// Keyword rules short-circuit on their first matching pattern. Signals from
// the classifier are unioned in and the combined set is deduplicated. Alerts
// come back in catalog order regardless of which path found them, so output
// is deterministic for a fixed input.
func (d *Detector) Detect(ctx context.Context, chunk *core.Chunk) []*core.Alert {
	if chunk == nil || chunk.Text == "" {
		return nil
	}

	detected := make(map[core.SignalType]bool)

	for _, rule := range catalog {
		for _, pattern := range rule.patterns {
			if pattern.MatchString(chunk.Text) {
				detected[rule.signal] = true
				break
			}
		}
	}

	if d.classifier != nil {
		classified, err := d.classifier.Classify(ctx, chunk.Text)
		if err != nil {
			d.logger.Warn("classifier failed, keyword-only detection", "chunkID", chunk.Id, "err", err)
		} else {
			for _, signal := range classified {
				detected[signal] = true
			}
		}
	}

	if len(detected) == 0 {
		return nil
	}

	alerts := make([]*core.Alert, 0, len(detected))
	for _, signal := range core.SignalTypes {
		if !detected[signal] {
			continue
		}
		alerts = append(alerts, d.buildAlert(ctx, chunk, signal))
	}
	return alerts
}

// buildAlert assembles an alert for one detected signal.
func (d *Detector) buildAlert(ctx context.Context, chunk *core.Chunk, signal core.SignalType) *core.Alert {
	quote := makeQuote(chunk.Text)

	summary := quote
	if d.summarizer != nil {
		s, err := d.summarizer.Summarize(ctx, chunk.Text)
		if err != nil || s == "" {
			d.logger.Warn("summarizer failed, using quote", "chunkID", chunk.Id, "err", err)
		} else {
			summary = s
		}
	}

	return &core.Alert{
		Id:            uuid.NewString()[:8],
		Signal:        signal,
		Severity:      signal.Severity(),
		Title:         titleFor(signal),
		Summary:       summary,
		Quote:         quote,
		SourceChunkId: chunk.Id,
		CreatedAt:     time.Now().UTC(),
	}
}
