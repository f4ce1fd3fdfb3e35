// Preview rendering: process a bounded copy and fit it into a display box
package preview

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/nfnt/resize"
	"gocv.io/x/gocv"

	"image-upscaler/internal/algorithms"
	"image-upscaler/internal/core"
	imgio "image-upscaler/internal/io"
	"image-upscaler/internal/metrics"
)

// MaxIntermediate bounds the upscaled size a preview is allowed to reach.
// Larger sources are shrunk before processing.
const MaxIntermediate = 2048

// Preview is a rendered preview plus the numbers shown next to it.
type Preview struct {
	Image          image.Image
	OriginalWidth  int
	OriginalHeight int
	OutputWidth    int // size the full export will have
	OutputHeight   int
	EstimatedBytes int // encoded size of the preview-sized result

	// Quality compares the result with a plain Lanczos resample of the source
	Quality metrics.Report
}

// Render processes mat and fits the result into maxWidth x maxHeight,
// keeping the aspect ratio. Results that already fit are returned at
// their processed size.
func Render(ctx context.Context, pipeline *core.Pipeline, mat gocv.Mat, settings core.Settings, maxWidth, maxHeight int) (image.Image, error) {
	processed, err := process(ctx, pipeline, mat, settings)
	if err != nil {
		return nil, err
	}
	defer processed.Close()

	return fit(processed, maxWidth, maxHeight)
}

// Build renders a preview like Render and also reports the original and
// predicted output dimensions, an encoded size estimate and quality
// metrics.
func Build(ctx context.Context, pipeline *core.Pipeline, loader *imgio.ImageLoader, mat gocv.Mat, settings core.Settings, maxWidth, maxHeight int) (Preview, error) {
	processed, err := process(ctx, pipeline, mat, settings)
	if err != nil {
		return Preview{}, err
	}
	defer processed.Close()

	img, err := fit(processed, maxWidth, maxHeight)
	if err != nil {
		return Preview{}, err
	}

	size, err := loader.EstimateSize(processed, settings)
	if err != nil {
		return Preview{}, fmt.Errorf("failed to estimate output size: %w", err)
	}

	quality, err := metrics.NewEvaluator().Compare(mat, processed)
	if err != nil {
		return Preview{}, fmt.Errorf("failed to compare with source: %w", err)
	}

	outW, outH := core.OutputDimensions(mat.Cols(), mat.Rows(), settings)
	return Preview{
		Image:          img,
		OriginalWidth:  mat.Cols(),
		OriginalHeight: mat.Rows(),
		OutputWidth:    outW,
		OutputHeight:   outH,
		EstimatedBytes: size,
		Quality:        quality,
	}, nil
}

// process shrinks mat when the upscale would exceed MaxIntermediate and
// runs the pipeline on the result.
func process(ctx context.Context, pipeline *core.Pipeline, mat gocv.Mat, settings core.Settings) (gocv.Mat, error) {
	if mat.Empty() {
		return gocv.NewMat(), &core.ProcessingError{Stage: "preview", Err: core.ErrEmptyImage}
	}

	factor := math.Max(1, settings.Clamp().UpscaleFactor)
	upW := float64(mat.Cols()) * factor
	upH := float64(mat.Rows()) * factor

	if upW <= MaxIntermediate && upH <= MaxIntermediate {
		return pipeline.Process(ctx, mat, settings)
	}

	scale := math.Min(MaxIntermediate/upW, MaxIntermediate/upH)
	w := max(1, int(float64(mat.Cols())*scale))
	h := max(1, int(float64(mat.Rows())*scale))

	small, err := algorithms.LanczosResize(mat, w, h)
	if err != nil {
		return gocv.NewMat(), &core.ProcessingError{Stage: "preview", Err: err}
	}
	defer small.Close()

	return pipeline.Process(ctx, small, settings)
}

func fit(mat gocv.Mat, maxWidth, maxHeight int) (image.Image, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid preview box: %dx%d", maxWidth, maxHeight)
	}

	img, err := imgio.MatToImage(mat)
	if err != nil {
		return nil, err
	}

	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3), nil
}
