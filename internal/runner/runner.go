// Package runner executes one svx run: read the input, resolve the session
// search path with the selected strategy, render the value set and write it
// exactly once. Lifecycle events are logged with a per-run id.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jacoelho/svx/internal/config"
	"github.com/jacoelho/svx/internal/document"
	"github.com/jacoelho/svx/internal/expr"
	"github.com/jacoelho/svx/internal/serializer"
	"github.com/jacoelho/svx/internal/stream"
)

// Summary describes a completed run.
type Summary struct {
	RunID      string
	Mode       config.Mode
	ValueCount int
	Duration   time.Duration
}

// Runner owns the accumulators and output buffer of a single run; nothing
// is shared across runs.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the configured run. Any error aborts it synchronously: no
// retries, no partial output.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	mode, err := r.selectMode()
	if err != nil {
		return nil, err
	}

	logger.Info("run started",
		"input", r.cfg.InputFile,
		"output", r.cfg.OutputFile,
		"search_path", r.cfg.SearchPath,
		"mode", mode)

	var (
		values []string
		format serializer.Format
	)
	switch mode {
	case config.ModeStream:
		values, err = r.resolveStream(ctx, logger)
		format = serializer.FormatJSON
	default:
		values, err = r.resolveDocument(logger)
		format = serializer.FormatPlain
	}
	if err != nil {
		return nil, err
	}

	rendered, err := serializer.Render(values, format)
	if err != nil {
		return nil, err
	}

	if err := r.removeStaleOutput(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(r.cfg.OutputFile, []byte(rendered), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output file %s: %w", r.cfg.OutputFile, err)
	}
	logger.Info("output written",
		"path", r.cfg.OutputFile,
		"bytes", len(rendered),
		"values", len(values))

	summary := &Summary{
		RunID:      runID,
		Mode:       mode,
		ValueCount: len(values),
		Duration:   time.Since(start),
	}

	logger.Info("run completed",
		"values", summary.ValueCount,
		"duration", summary.Duration)

	return summary, nil
}

// selectMode resolves auto mode by input size: inputs above the configured
// threshold stream, everything else is resolved in memory.
func (r *Runner) selectMode() (config.Mode, error) {
	if r.cfg.Mode != config.ModeAuto {
		return r.cfg.Mode, nil
	}

	info, err := os.Stat(r.cfg.InputFile)
	if err != nil {
		return "", fmt.Errorf("failed to stat input file %s: %w", r.cfg.InputFile, err)
	}
	if info.Size() > r.cfg.StreamThreshold {
		return config.ModeStream, nil
	}
	return config.ModeDocument, nil
}

func (r *Runner) resolveDocument(logger *slog.Logger) ([]string, error) {
	spec, err := expr.Parse(r.cfg.SearchPath, expr.ModeDocument)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", r.cfg.InputFile, err)
	}
	logger.Info("input read", "path", r.cfg.InputFile, "bytes", len(data))

	doc, err := document.Decode(data)
	if err != nil {
		return nil, err
	}

	return document.Resolve(doc, spec)
}

func (r *Runner) resolveStream(ctx context.Context, logger *slog.Logger) ([]string, error) {
	spec, err := expr.Parse(r.cfg.SearchPath, expr.ModeStream)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(r.cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", r.cfg.InputFile, err)
	}
	defer f.Close()
	logger.Info("input opened", "path", r.cfg.InputFile)

	var values []string
	for value, err := range stream.Resolve(ctx, f, spec) {
		if err != nil {
			return nil, fmt.Errorf("streaming resolution of %s: %w", r.cfg.InputFile, err)
		}
		values = append(values, value)
	}

	return values, nil
}

// removeStaleOutput deletes a pre-existing output artifact. A missing
// artifact is not an error.
func (r *Runner) removeStaleOutput() error {
	if err := os.Remove(r.cfg.OutputFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale output file %s: %w", r.cfg.OutputFile, err)
	}
	return nil
}
