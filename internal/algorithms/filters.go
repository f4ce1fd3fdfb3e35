// Filter algorithms for noise reduction and enhancement
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// MaxNoiseLevel is the strongest median filter level.
const MaxNoiseLevel = 5

// GaussianBlur applies an isotropic Gaussian blur with standard deviation
// sigma. The kernel size is derived from sigma.
func GaussianBlur(input gocv.Mat, sigma float64) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	if sigma <= 0 {
		return input.Clone(), nil
	}

	output := gocv.NewMat()
	err := gocv.GaussianBlur(input, &output, image.Point{}, sigma, sigma, gocv.BorderDefault)
	if err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("gaussian blur (sigma=%.2f): %w", sigma, err)
	}

	return output, nil
}

// UnsharpMask sharpens input by adding back the difference between the
// image and a blurred copy of it. amount is a percentage: 100 adds the
// difference once. A channel value is only corrected when its absolute
// difference from the blurred copy is at least threshold.
func UnsharpMask(input gocv.Mat, radius, amount float64, threshold int) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	if amount <= 0 || radius <= 0 {
		return input.Clone(), nil
	}

	blurred, err := GaussianBlur(input, radius)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer blurred.Close()

	// src + k*(src - blurred), saturated to 8 bits
	k := amount / 100.0
	sharpened := gocv.NewMat()
	defer sharpened.Close()
	gocv.AddWeighted(input, 1+k, blurred, -k, 0, &sharpened)
	if sharpened.Empty() {
		return gocv.NewMat(), fmt.Errorf("unsharp mask: weighted sum returned empty result")
	}

	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.AbsDiff(input, blurred, &diff); err != nil {
		return gocv.NewMat(), fmt.Errorf("unsharp mask: %w", err)
	}

	// |diff| >= threshold  <=>  |diff| > threshold-1 on integer data
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, float32(threshold-1), 255, gocv.ThresholdBinary)

	output := input.Clone()
	sharpened.CopyToWithMask(&output, mask)

	return output, nil
}

// MedianWindow maps a noise reduction level to an odd median window size.
// Level 0 disables the filter and returns 0.
func MedianWindow(level int) int {
	if level <= 0 {
		return 0
	}
	if level > MaxNoiseLevel {
		level = MaxNoiseLevel
	}
	return level*2 + 1
}

// MedianFilter applies a median filter with the given odd window size to
// every channel, including alpha.
func MedianFilter(input gocv.Mat, kernelSize int) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	if kernelSize <= 1 {
		return input.Clone(), nil
	}

	// Ensure kernel size is odd
	if kernelSize%2 == 0 {
		kernelSize++
	}

	output := gocv.NewMat()
	gocv.MedianBlur(input, &output, kernelSize)
	if output.Empty() {
		return gocv.NewMat(), fmt.Errorf("median filter (size=%d) returned empty result", kernelSize)
	}

	return output, nil
}
