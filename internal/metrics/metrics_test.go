package metrics

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// getGradientImage returns a BGR horizontal gradient with some texture
func getGradientImage(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := uint8((x*255/cols + (y%4)*8) % 256)
			for c := 0; c < 3; c++ {
				mat.SetUCharAt(y, x*3+c, v)
			}
		}
	}
	t.Cleanup(func() { mat.Close() })
	return mat
}

func TestIdenticalImages(t *testing.T) {
	img := getGradientImage(t, 32, 48)
	e := NewEvaluator()

	scores, err := e.CalculateAll(img, img)
	require.NoError(t, err)

	results := make(map[string]float64)
	for _, s := range scores {
		results[s.Key] = s.Value
	}
	assert.Equal(t, 0.0, results["mse"])
	assert.Equal(t, maxPSNR, results["psnr"])
	assert.InDelta(t, 1.0, results["ssim"], 1e-6)
	assert.InDelta(t, 1.0, results["sharpness"], 1e-6)
}

func TestKnownError(t *testing.T) {
	a := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), 10, 10, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(110, 110, 110, 0), 10, 10, gocv.MatTypeCV8UC3)
	defer b.Close()

	mse, err := NewMSE().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, mse, 1e-3)

	psnr, err := NewPSNR().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 28.13, psnr, 0.01)
}

func TestBlurLowersSharpness(t *testing.T) {
	img := getGradientImage(t, 40, 40)

	blurred := gocv.NewMat()
	defer blurred.Close()
	require.NoError(t, gocv.GaussianBlur(img, &blurred, image.Point{}, 2, 2, gocv.BorderDefault))

	ratio, err := NewSharpness().Calculate(img, blurred)
	require.NoError(t, err)
	assert.Less(t, ratio, 1.0)

	ssim, err := NewSSIM().Calculate(img, blurred)
	require.NoError(t, err)
	assert.Less(t, ssim, 1.0)
	assert.Greater(t, ssim, 0.5)
}

func TestDimensionMismatch(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Calculate("psnr", getGradientImage(t, 10, 10), getGradientImage(t, 12, 10))
	assert.Error(t, err)

	_, err = e.Calculate("nope", getGradientImage(t, 10, 10), getGradientImage(t, 10, 10))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	source := getGradientImage(t, 20, 30)

	processed := gocv.NewMat()
	defer processed.Close()
	require.NoError(t, gocv.Resize(source, &processed, image.Point{X: 60, Y: 40}, 0, 0, gocv.InterpolationLanczos4))

	report, err := NewEvaluator().Compare(source, processed)
	require.NoError(t, err)
	assert.Equal(t, maxPSNR, report.PSNR)
	assert.InDelta(t, 1.0, report.SSIM, 1e-6)

	require.Len(t, report.Scores, 4)
	var keys []string
	for _, s := range report.Scores {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, NewEvaluator().Names(), keys)
	assert.Equal(t, []string{"mse", "psnr", "sharpness", "ssim"}, keys)

	assert.Equal(t, "MSE", report.Scores[0].Name)
	assert.False(t, report.Scores[0].HigherIsBetter)
	assert.Equal(t, "Peak Signal-to-Noise Ratio", report.Scores[1].Description)
	assert.True(t, report.Scores[1].HigherIsBetter)
	assert.Equal(t, report.PSNR, report.Scores[1].Value)
}

func TestCalculateAllReportsFailure(t *testing.T) {
	_, err := NewEvaluator().CalculateAll(getGradientImage(t, 10, 10), getGradientImage(t, 12, 10))
	assert.ErrorContains(t, err, "mse")
}
