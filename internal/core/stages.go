package core

import (
	"fmt"

	"gocv.io/x/gocv"

	"image-upscaler/internal/algorithms"
)

// Stage is one step of the enhancement pipeline. Skip reports whether the
// stage is an identity for the given settings and channel count; Apply
// must return a new Mat and leave src untouched.
type Stage struct {
	Name  string
	Skip  func(s Settings, channels int) bool
	Apply func(src gocv.Mat, s Settings) (gocv.Mat, error)
}

// Stage names, in execution order.
const (
	StageUpscale    = "upscale"
	StageBlur       = "blur"
	StageSharpen    = "sharpen"
	StageDownscale  = "downscale"
	StageContrast   = "contrast"
	StageSaturation = "saturation"
	StageBrightness = "brightness"
	StageDenoise    = "denoise"
	StageEdgeTrim   = "edge_trim"
)

// StandardStages returns the nine enhancement stages in their fixed order.
// Resampling comes first so every later stage works at output
// resolution; tone adjustments run before the median filter and the
// alpha erosion.
func StandardStages() []Stage {
	return []Stage{
		{
			Name: StageUpscale,
			Skip: func(s Settings, _ int) bool { return s.UpscaleFactor == 1 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return resample(src, s.UpscaleFactor)
			},
		},
		{
			Name: StageBlur,
			Skip: func(s Settings, _ int) bool { return s.BlurRadius == 0 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.GaussianBlur(src, s.BlurRadius)
			},
		},
		{
			Name: StageSharpen,
			Skip: func(s Settings, _ int) bool { return s.SharpenAmount == 0 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.UnsharpMask(src, s.SharpenRadius, s.SharpenAmount, s.SharpenThreshold)
			},
		},
		{
			Name: StageDownscale,
			Skip: func(s Settings, _ int) bool { return s.DownscaleFactor == 1 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return resample(src, s.DownscaleFactor)
			},
		},
		{
			Name: StageContrast,
			Skip: func(s Settings, _ int) bool { return s.Contrast == 1 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.AdjustContrast(src, s.Contrast)
			},
		},
		{
			Name: StageSaturation,
			Skip: func(s Settings, channels int) bool { return s.Saturation == 1 || channels == 1 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.AdjustSaturation(src, s.Saturation)
			},
		},
		{
			Name: StageBrightness,
			Skip: func(s Settings, _ int) bool { return s.Brightness == 1 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.AdjustBrightness(src, s.Brightness)
			},
		},
		{
			Name: StageDenoise,
			Skip: func(s Settings, _ int) bool { return s.NoiseReduction == 0 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.MedianFilter(src, algorithms.MedianWindow(s.NoiseReduction))
			},
		},
		{
			Name: StageEdgeTrim,
			Skip: func(s Settings, channels int) bool { return s.EdgeTrim == 0 || channels != 4 },
			Apply: func(src gocv.Mat, s Settings) (gocv.Mat, error) {
				return algorithms.ErodeAlpha(src, s.EdgeTrim)
			},
		},
	}
}

func resample(src gocv.Mat, factor float64) (gocv.Mat, error) {
	width, height := algorithms.ScaledSize(src.Cols(), src.Rows(), factor)
	if width <= 0 || height <= 0 {
		return gocv.NewMat(), fmt.Errorf("%w: %dx%d scaled by %.2f gives %dx%d",
			ErrDegenerateSize, src.Cols(), src.Rows(), factor, width, height)
	}
	if width > algorithms.MaxDimension || height > algorithms.MaxDimension {
		return gocv.NewMat(), fmt.Errorf("%w: %dx%d (max: %d)", ErrImageTooLarge, width, height, algorithms.MaxDimension)
	}
	return algorithms.LanczosScale(src, factor)
}
