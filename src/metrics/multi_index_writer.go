package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"socialdex/src/datamodels"
	"socialdex/src/utils/errors"
)

// MultiIndexWriter fans a result out to its writers, in the order they were added
type MultiIndexWriter struct {
	writers []IndexWriter
	mu      sync.RWMutex
}

func NewMultiIndexWriter(writers ...IndexWriter) *MultiIndexWriter {
	return &MultiIndexWriter{
		writers: writers,
	}
}

func (w *MultiIndexWriter) AddWriter(writer IndexWriter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writers = append(w.writers, writer)
}

func (w *MultiIndexWriter) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.writers)
}

// Write hands the result to every writer even when some fail, and joins their errors.
func (w *MultiIndexWriter) Write(ctx context.Context, result *datamodels.IndexResult) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	slog.Debug("Publishing indices", "run_id", result.RunId, "writers", len(w.writers))

	var errs []error
	for _, writer := range w.writers {
		if err := writer.Write(ctx, result); err != nil {
			IndexWriteErrorsTotal.Inc()
			slog.Error("Index writer failed", "writer", fmt.Sprintf("%T", writer), "run_id", result.RunId, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *MultiIndexWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	for _, writer := range w.writers {
		if err := writer.Close(); err != nil {
			slog.Error("Failed to close index writer", "writer", fmt.Sprintf("%T", writer), "error", err)
			errs = append(errs, err)
		}
	}
	w.writers = nil
	return errors.Join(errs...)
}
