package algorithms

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// newSolid returns a rows x cols BGRA image filled with one color.
func newSolid(t *testing.T, rows, cols int, b, g, r, a float64) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(b, g, r, a), rows, cols, gocv.MatTypeCV8UC4)
	require.False(t, mat.Empty())
	t.Cleanup(func() { mat.Close() })
	return mat
}

// newGradient returns a BGR image whose channels vary across the frame.
func newGradient(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			mat.SetUCharAt(y, x*3+0, uint8((x*7)%256))
			mat.SetUCharAt(y, x*3+1, uint8((y*11)%256))
			mat.SetUCharAt(y, x*3+2, uint8((x*y)%256))
		}
	}
	t.Cleanup(func() { mat.Close() })
	return mat
}

func pixel(mat gocv.Mat, row, col int) []uint8 {
	channels := mat.Channels()
	px := make([]uint8, channels)
	for c := 0; c < channels; c++ {
		px[c] = mat.GetUCharAt(row, col*channels+c)
	}
	return px
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
