// Package telemetry records per-query retrieval telemetry to local
// parquet files for offline analysis of ranking quality.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// QueryRecord is one retrieval call as stored in parquet.
type QueryRecord struct {
	ID             string    `parquet:"id"`
	Timestamp      time.Time `parquet:"timestamp"`
	Query          string    `parquet:"query"`
	TopK           int       `parquet:"top_k"`
	DocumentFilter string    `parquet:"document_filter"`
	ResultCount    int       `parquet:"result_count"`
	TotalFound     int       `parquet:"total_found"`
	BestScore      float64   `parquet:"best_score"`
	DurationMs     int64     `parquet:"duration_ms"`
}

// Recorder batches query records and writes them to one parquet file
// per flush. A nil Recorder is a no-op so callers never need to guard.
type Recorder struct {
	outputDir string
	logger    *slog.Logger

	mu        sync.Mutex
	buffer    []QueryRecord
	batchSize int
}

// NewRecorder creates the output directory and returns a recorder that
// flushes every batchSize records. batchSize <= 0 uses 100.
func NewRecorder(outputDir string, batchSize int, logger *slog.Logger) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create telemetry directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		outputDir: outputDir,
		logger:    logger,
		buffer:    make([]QueryRecord, 0, batchSize),
		batchSize: batchSize,
	}, nil
}

// Record buffers one query record, assigning it an id and timestamp.
func (r *Recorder) Record(rec QueryRecord) {
	if r == nil {
		return
	}
	rec.ID = uuid.New().String()
	rec.Timestamp = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, rec)
	if len(r.buffer) >= r.batchSize {
		r.flush()
	}
}

// Flush writes any buffered records immediately.
func (r *Recorder) Flush() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flush()
}

// Close flushes outstanding records.
func (r *Recorder) Close() error {
	r.Flush()
	return nil
}

// flush writes the current buffer to a new parquet file.
// Caller must hold the lock.
func (r *Recorder) flush() {
	if len(r.buffer) == 0 {
		return
	}

	filename := fmt.Sprintf("queries_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		r.logger.Error("telemetry parquet write failed", "path", path, "error", err)
		return
	}

	r.buffer = r.buffer[:0]
}
