package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/clientpulse/kb/core"
	"github.com/clientpulse/kb/signals"
	"github.com/clientpulse/kb/storage"
)

// detectionProcessor runs signal detection over chunks and publishes
// resulting alerts to a sink.
type detectionProcessor struct {
	chunkRepository storage.ChunkRepository
	detector        *signals.Detector
	sink            AlertSink
	logger          *slog.Logger
}

var _ processor = (*detectionProcessor)(nil)

// newDetectionProcessor creates a new detection processor.
func newDetectionProcessor(
	chunkRepository storage.ChunkRepository,
	detector *signals.Detector,
	sink AlertSink,
	logger *slog.Logger,
) (processor, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if detector == nil {
		return nil, fmt.Errorf("detector required")
	}
	if sink == nil {
		return nil, fmt.Errorf("alert sink required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &detectionProcessor{
		chunkRepository: chunkRepository,
		detector:        detector,
		sink:            sink,
		logger:          logger.With("processor", "detection"),
	}, nil
}

// process runs detection over the specified chunks. Sink publish failures
// are logged per alert and do not stop the pass.
func (dp *detectionProcessor) process(ctx context.Context, ids ...core.ID) error {
	dp.logger.Info("processing chunks for signals", "chunks", len(ids))

	slices.Sort(ids)

	chunks, err := dp.chunkRepository.GetChunks(ctx, ids...)
	if err != nil {
		dp.logger.Error("error retrieving chunks", "err", err)
		return err
	}

	for _, chunk := range chunks {
		for _, alert := range dp.detector.Detect(ctx, chunk) {
			if err := dp.sink.Publish(ctx, alert); err != nil {
				dp.logger.Error("error publishing alert",
					"alertID", alert.Id, "signal", alert.Signal.String(), "err", err)
			}
		}
	}

	return nil
}
