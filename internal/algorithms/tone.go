// Tone adjustments: contrast, saturation and brightness
package algorithms

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// AdjustContrast scales color values around the image's mean luma:
// out = mean + factor*(in - mean). Alpha is preserved.
func AdjustContrast(input gocv.Mat, factor float64) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	return withColorChannels(input, func(color gocv.Mat) (gocv.Mat, error) {
		mean, err := MeanLuma(color)
		if err != nil {
			return gocv.NewMat(), err
		}

		return linearTransform(color, factor, (1-factor)*mean)
	})
}

// AdjustSaturation moves each pixel toward (factor < 1) or away from
// (factor > 1) its own luma. A factor of 0 yields grayscale. Single channel
// images are returned unchanged.
func AdjustSaturation(input gocv.Mat, factor float64) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	if input.Channels() == 1 {
		return input.Clone(), nil
	}

	return withColorChannels(input, func(color gocv.Mat) (gocv.Mat, error) {
		gray := gocv.NewMat()
		defer gray.Close()
		if err := gocv.CvtColor(color, &gray, gocv.ColorBGRToGray); err != nil {
			return gocv.NewMat(), fmt.Errorf("saturation: %w", err)
		}

		degenerate := gocv.NewMat()
		defer degenerate.Close()
		if err := gocv.CvtColor(gray, &degenerate, gocv.ColorGrayToBGR); err != nil {
			return gocv.NewMat(), fmt.Errorf("saturation: %w", err)
		}

		output := gocv.NewMat()
		gocv.AddWeighted(color, factor, degenerate, 1-factor, 0, &output)
		if output.Empty() {
			return gocv.NewMat(), fmt.Errorf("saturation: weighted sum returned empty result")
		}
		return output, nil
	})
}

// AdjustBrightness multiplies color values by factor. Alpha is preserved:
// only the B, G and R channels count as pixel channels here.
func AdjustBrightness(input gocv.Mat, factor float64) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	return withColorChannels(input, func(color gocv.Mat) (gocv.Mat, error) {
		return linearTransform(color, factor, 0)
	})
}

// MeanLuma returns the rounded mean ITU-R 601 luma of a 1 or 3 channel image.
func MeanLuma(color gocv.Mat) (float64, error) {
	if color.Channels() == 1 {
		return math.Round(color.Mean().Val1), nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(color, &gray, gocv.ColorBGRToGray); err != nil {
		return 0, fmt.Errorf("mean luma: %w", err)
	}

	return math.Round(gray.Mean().Val1), nil
}

// linearTransform computes saturate(alpha*in + beta) on every channel.
func linearTransform(input gocv.Mat, alpha, beta float64) (gocv.Mat, error) {
	output := gocv.NewMat()
	input.ConvertToWithParams(&output, gocv.MatTypeCV8U, float32(alpha), float32(beta))
	if output.Empty() {
		return gocv.NewMat(), fmt.Errorf("linear transform returned empty result")
	}
	return output, nil
}

// withColorChannels runs fn on the color planes of input and re-attaches
// the untouched alpha plane of BGRA images.
func withColorChannels(input gocv.Mat, fn func(color gocv.Mat) (gocv.Mat, error)) (gocv.Mat, error) {
	if input.Channels() != 4 {
		return fn(input)
	}

	planes := gocv.Split(input)
	defer closeAll(planes)

	color := gocv.NewMat()
	defer color.Close()
	gocv.Merge(planes[:3], &color)
	if color.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to extract color planes")
	}

	adjusted, err := fn(color)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer adjusted.Close()

	adjustedPlanes := gocv.Split(adjusted)
	defer closeAll(adjustedPlanes)

	output := gocv.NewMat()
	gocv.Merge([]gocv.Mat{adjustedPlanes[0], adjustedPlanes[1], adjustedPlanes[2], planes[3]}, &output)
	if output.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to merge alpha plane")
	}

	return output, nil
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
