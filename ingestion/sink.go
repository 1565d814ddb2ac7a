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

package ingestion

import (
	"context"
	"log/slog"

	"github.com/clientpulse/kb/core"
)

// AlertSink receives alerts produced during ingestion.
// Implementations must be safe for concurrent use; detection runs on
// worker pool goroutines.
type AlertSink interface {
	// Publish delivers one alert. Errors are logged by the caller and do
	// not abort the detection pass.
	Publish(ctx context.Context, alert *core.Alert) error
}

// logSink writes alerts to a structured logger. It is the default sink.
type logSink struct {
	logger *slog.Logger
}

// NewLogSink creates an AlertSink that logs each alert.
// A nil logger defaults to slog.Default().
func NewLogSink(logger *slog.Logger) AlertSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSink{logger: logger.With("component", "alert-sink")}
}

func (s *logSink) Publish(_ context.Context, alert *core.Alert) error {
	s.logger.Info("alert detected",
		"alertID", alert.Id,
		"signal", alert.Signal.String(),
		"severity", alert.Severity.String(),
		"title", alert.Title,
		"chunkID", alert.SourceChunkId,
	)
	return nil
}
