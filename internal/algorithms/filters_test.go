package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestGaussianBlurZeroSigmaReturnsCopy(t *testing.T) {
	src := newGradient(t, 16, 16)

	out, err := GaussianBlur(src, 0)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, src.ToBytes(), out.ToBytes())
}

func TestGaussianBlurSmoothsEdge(t *testing.T) {
	src := newSolid(t, 21, 21, 0, 0, 0, 255)
	for y := 0; y < 21; y++ {
		for x := 11; x < 21; x++ {
			src.SetUCharAt(y, x*4+2, 255)
		}
	}

	out, err := GaussianBlur(src, 1.5)
	require.NoError(t, err)
	defer out.Close()

	// the hard step at x=10/11 becomes a ramp
	left := pixel(out, 10, 10)[2]
	right := pixel(out, 10, 11)[2]
	assert.Greater(t, left, uint8(0))
	assert.Less(t, right, uint8(255))
	assert.Equal(t, uint8(255), pixel(out, 10, 10)[3], "uniform alpha stays uniform")
}

func TestUnsharpMaskZeroAmountIsIdentity(t *testing.T) {
	src := newGradient(t, 24, 24)

	for _, radius := range []float64{0, 1, 4} {
		for _, threshold := range []int{0, 5, 255} {
			out, err := UnsharpMask(src, radius, 0, threshold)
			require.NoError(t, err)
			assert.Equal(t, src.ToBytes(), out.ToBytes())
			out.Close()
		}
	}
}

func TestUnsharpMaskIncreasesLocalContrast(t *testing.T) {
	src := newSolid(t, 21, 21, 100, 100, 100, 255)
	for y := 0; y < 21; y++ {
		for x := 11; x < 21; x++ {
			for c := 0; c < 3; c++ {
				src.SetUCharAt(y, x*4+c, 150)
			}
		}
	}

	out, err := UnsharpMask(src, 1.2, 120, 0)
	require.NoError(t, err)
	defer out.Close()

	assert.Less(t, pixel(out, 10, 10)[0], uint8(100), "dark side of the edge gets darker")
	assert.Greater(t, pixel(out, 10, 11)[0], uint8(150), "bright side of the edge gets brighter")
	assert.Equal(t, uint8(100), pixel(out, 10, 0)[0], "flat region untouched")
}

func TestUnsharpMaskThresholdSuppressesSmallDifferences(t *testing.T) {
	src := newSolid(t, 21, 21, 100, 100, 100, 255)
	for y := 0; y < 21; y++ {
		for x := 11; x < 21; x++ {
			src.SetUCharAt(y, x*4, 102)
		}
	}

	out, err := UnsharpMask(src, 1.0, 300, 255)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, src.ToBytes(), out.ToBytes())
}

func TestMedianWindow(t *testing.T) {
	assert.Equal(t, 0, MedianWindow(0))
	assert.Equal(t, 3, MedianWindow(1))
	assert.Equal(t, 5, MedianWindow(2))
	assert.Equal(t, 7, MedianWindow(3))
	assert.Equal(t, 9, MedianWindow(4))
	assert.Equal(t, 11, MedianWindow(5))
	assert.Equal(t, 11, MedianWindow(9))
	assert.Equal(t, 0, MedianWindow(-1))
}

func TestMedianFilterRemovesSpeckle(t *testing.T) {
	src := newSolid(t, 15, 15, 50, 50, 50, 255)
	src.SetUCharAt(7, 7*4+1, 255)

	out, err := MedianFilter(src, MedianWindow(1))
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, []uint8{50, 50, 50, 255}, pixel(out, 7, 7))
}

func TestMedianFilterEmptyInput(t *testing.T) {
	_, err := MedianFilter(gocv.NewMat(), 3)
	assert.Error(t, err)
}
