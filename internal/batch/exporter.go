// Batch export: concurrent processing of many images into one directory
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"image-upscaler/internal/core"
	imgio "image-upscaler/internal/io"
)

// OutputDirName is the subdirectory of the destination that receives
// exported images.
const OutputDirName = "upscaled_output"

var ErrNoSources = errors.New("no images to export")

// BatchJob describes one export run
type BatchJob struct {
	Sources     []string
	Settings    core.Settings
	Destination string
}

// Progress is reported after each image finishes
type Progress struct {
	Completed int
	Total     int
	Source    string
	Err       error
}

// Result is the outcome for a single source image
type Result struct {
	Source  string
	Output  string
	Width   int
	Height  int
	Bytes   int
	Err     error
	Skipped bool // not started because the export was cancelled
}

// Summary aggregates an export run
type Summary struct {
	Succeeded int
	Failed    int
	Cancelled bool
	OutputDir string
	Duration  time.Duration
	Results   []Result
}

// Exporter runs the pipeline over a BatchJob with bounded concurrency
type Exporter struct {
	pipeline *core.Pipeline
	loader   *imgio.ImageLoader
	logger   logrus.FieldLogger
	workers  int
}

func NewExporter(pipeline *core.Pipeline, loader *imgio.ImageLoader, logger logrus.FieldLogger, workers int) *Exporter {
	if workers < 1 {
		workers = 1
	}
	return &Exporter{
		pipeline: pipeline,
		loader:   loader,
		logger:   logger,
		workers:  workers,
	}
}

// Export processes every source of job and writes the results into
// <Destination>/upscaled_output. A failing image is recorded in its Result
// and does not stop the others. Cancelling ctx stops new images from
// starting; images already running are allowed to finish.
//
// The returned error is only set when the export could not start.
func (e *Exporter) Export(ctx context.Context, job BatchJob, progress func(Progress)) (Summary, error) {
	if len(job.Sources) == 0 {
		return Summary{}, ErrNoSources
	}

	outputDir := filepath.Join(job.Destination, OutputDirName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	settings := job.Settings.Clamp()
	names := OutputNames(job.Sources, settings.OutputFormat.Extension())
	total := len(job.Sources)
	results := make([]Result, total)
	start := time.Now()

	e.logger.WithFields(logrus.Fields{
		"images":  total,
		"workers": e.workers,
		"output":  outputDir,
		"format":  settings.OutputFormat,
	}).Info("EXPORT: Starting batch")

	var (
		mu        sync.Mutex
		completed int
	)
	// progress calls are serialized so Completed is seen in order
	report := func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		if progress != nil {
			progress(Progress{Completed: completed, Total: total, Source: r.Source, Err: r.Err})
		}
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, source := range job.Sources {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Source: source, Skipped: true, Err: err}
			continue
		}

		output := filepath.Join(outputDir, names[i])
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Source: source, Skipped: true, Err: err}
				return nil
			}

			results[i] = e.exportOne(ctx, source, output, settings)
			report(results[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{OutputDir: outputDir, Duration: time.Since(start), Results: results}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Cancelled = true
		case r.Err != nil:
			summary.Failed++
		default:
			summary.Succeeded++
		}
	}

	e.logger.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"cancelled": summary.Cancelled,
		"duration":  summary.Duration,
	}).Info("EXPORT: Batch finished")

	return summary, nil
}

func (e *Exporter) exportOne(ctx context.Context, source, output string, settings core.Settings) Result {
	result := Result{Source: source, Output: output}
	logger := e.logger.WithField("source", source)

	mat, err := e.loader.LoadImage(source)
	if err != nil {
		result.Err = err
		logger.WithError(err).Warn("EXPORT: Failed to load image")
		return result
	}
	defer mat.Close()

	processed, err := e.pipeline.Process(ctx, mat, settings)
	if err != nil {
		result.Err = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Skipped = true
			logger.Debug("EXPORT: Image interrupted by cancellation")
		} else {
			logger.WithError(err).Warn("EXPORT: Failed to process image")
		}
		return result
	}
	defer processed.Close()

	data, err := e.loader.Encode(processed, settings)
	if err != nil {
		result.Err = err
		logger.WithError(err).Warn("EXPORT: Failed to encode image")
		return result
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		result.Err = fmt.Errorf("failed to write %s: %w", output, err)
		logger.WithError(err).Warn("EXPORT: Failed to write image")
		return result
	}

	result.Width = processed.Cols()
	result.Height = processed.Rows()
	result.Bytes = len(data)

	logger.WithFields(logrus.Fields{
		"output": output,
		"width":  result.Width,
		"height": result.Height,
		"size":   imgio.FormatSize(float64(result.Bytes)),
	}).Info("EXPORT: Image exported")

	return result
}

// OutputNames assigns a unique output file name to every source, in
// order: the first "photo.png" keeps "photo<ext>", later ones become
// "photo_1<ext>", "photo_2<ext>" and so on.
func OutputNames(sources []string, ext string) []string {
	used := make(map[string]bool, len(sources))
	names := make([]string, len(sources))

	for i, source := range sources {
		file := filepath.Base(source)
		base := strings.TrimSuffix(file, filepath.Ext(file))

		name := base + ext
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		used[name] = true
		names[i] = name
	}

	return names
}
