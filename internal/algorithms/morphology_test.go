package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErodeAlphaWithoutAlphaIsNoop(t *testing.T) {
	src := newGradient(t, 10, 10)

	out, err := ErodeAlpha(src, 3)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, src.ToBytes(), out.ToBytes())
}

func TestErodeAlphaOpaqueImageShrinksFromBorder(t *testing.T) {
	src := newSolid(t, 20, 20, 10, 20, 30, 255)

	out, err := ErodeAlpha(src, 3)
	require.NoError(t, err)
	defer out.Close()

	require.Equal(t, 20, out.Cols())
	require.Equal(t, 20, out.Rows())

	for i := 0; i < 3; i++ {
		assert.Equal(t, uint8(0), pixel(out, i, 10)[3], "row %d should be trimmed", i)
		assert.Equal(t, uint8(0), pixel(out, 10, 19-i)[3], "column %d should be trimmed", 19-i)
	}
	assert.Equal(t, uint8(255), pixel(out, 3, 3)[3])
	assert.Equal(t, uint8(255), pixel(out, 16, 16)[3])
	assert.Equal(t, []uint8{10, 20, 30}, pixel(out, 0, 0)[:3], "color planes untouched")
}

func TestErodeAlphaShrinksInteriorShape(t *testing.T) {
	src := newSolid(t, 30, 30, 0, 0, 0, 0)
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			src.SetUCharAt(y, x*4+3, 255)
		}
	}

	out, err := ErodeAlpha(src, 2)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, uint8(0), pixel(out, 11, 15)[3])
	assert.Equal(t, uint8(255), pixel(out, 12, 15)[3])
	assert.Equal(t, uint8(255), pixel(out, 17, 17)[3])
	assert.Equal(t, uint8(0), pixel(out, 18, 17)[3])
}

func TestErodeAlphaZeroPixels(t *testing.T) {
	src := newSolid(t, 5, 5, 1, 2, 3, 255)

	out, err := ErodeAlpha(src, 0)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, src.ToBytes(), out.ToBytes())
}
