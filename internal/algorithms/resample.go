// Lanczos resampling used by the upscale and downscale passes
package algorithms

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// MaxDimension is the largest width or height a resample may produce.
const MaxDimension = 32768

// ScaledSize returns round(w*factor) x round(h*factor).
func ScaledSize(width, height int, factor float64) (int, int) {
	return int(math.Round(float64(width) * factor)), int(math.Round(float64(height) * factor))
}

// LanczosResize resamples src to width x height with the Lanczos4 kernel.
func LanczosResize(src gocv.Mat, width, height int) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	if width <= 0 || height <= 0 {
		return gocv.NewMat(), fmt.Errorf("invalid target dimensions: %dx%d", width, height)
	}

	if width > MaxDimension || height > MaxDimension {
		return gocv.NewMat(), fmt.Errorf("target dimensions too large: %dx%d (max: %d)", width, height, MaxDimension)
	}

	if width == src.Cols() && height == src.Rows() {
		return src.Clone(), nil
	}

	result := gocv.NewMat()
	err := gocv.Resize(src, &result, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLanczos4)
	if err != nil {
		result.Close()
		return gocv.NewMat(), fmt.Errorf("lanczos resize to %dx%d: %w", width, height, err)
	}

	if result.Empty() {
		return gocv.NewMat(), fmt.Errorf("lanczos resize returned empty result")
	}

	return result, nil
}

// LanczosScale resamples src by factor, rounding each dimension.
func LanczosScale(src gocv.Mat, factor float64) (gocv.Mat, error) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return gocv.NewMat(), fmt.Errorf("invalid scale factor: %.3f", factor)
	}

	width, height := ScaledSize(src.Cols(), src.Rows(), factor)
	return LanczosResize(src, width, height)
}
