// Input raster normalization and image metadata
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"image-upscaler/internal/algorithms"
)

// ImageInfo contains metadata about a source image file
type ImageInfo struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"` // File size in bytes
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Channels int    `json:"channels"`
	Format   string `json:"format"`
}

// NewImageInfo builds metadata for a decoded image loaded from path.
func NewImageInfo(path string, size int64, mat gocv.Mat) ImageInfo {
	return ImageInfo{
		Path:     path,
		Filename: filepath.Base(path),
		Size:     size,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Format:   getFormatFromPath(path),
	}
}

// Mode returns a short label for the channel layout.
func (i ImageInfo) Mode() string {
	switch i.Channels {
	case 1:
		return "L"
	case 3:
		return "RGB"
	case 4:
		return "RGBA"
	default:
		return fmt.Sprintf("%dch", i.Channels)
	}
}

// depth extracts the per-channel element type from a Mat type.
func depth(mt gocv.MatType) gocv.MatType {
	return mt & 7
}

// Normalize returns an 8-bit copy of mat with 1, 3 or 4 channels.
// 16-bit images are scaled down; other depths and channel layouts are
// rejected with UnsupportedFormatError. The input is never modified.
func Normalize(mat gocv.Mat) (gocv.Mat, error) {
	if mat.Empty() {
		return gocv.NewMat(), &ProcessingError{Stage: "normalize", Err: ErrEmptyImage}
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return gocv.NewMat(), &ProcessingError{
			Stage: "normalize",
			Err:   fmt.Errorf("%w: %dx%d", ErrDegenerateSize, mat.Cols(), mat.Rows()),
		}
	}

	if mat.Cols() > algorithms.MaxDimension || mat.Rows() > algorithms.MaxDimension {
		return gocv.NewMat(), &ProcessingError{
			Stage: "normalize",
			Err:   fmt.Errorf("%w: %dx%d (max: %d)", ErrImageTooLarge, mat.Cols(), mat.Rows(), algorithms.MaxDimension),
		}
	}

	channels := mat.Channels()
	d := depth(mat.Type())
	if channels != 1 && channels != 3 && channels != 4 {
		return gocv.NewMat(), &UnsupportedFormatError{
			Channels: channels,
			Depth:    d,
			Reason:   "expected 1, 3 or 4 channels",
		}
	}

	switch d {
	case gocv.MatTypeCV8U:
		return mat.Clone(), nil
	case gocv.MatTypeCV16U:
		out := gocv.NewMat()
		mat.ConvertToWithParams(&out, gocv.MatTypeCV8U, 1.0/257.0, 0)
		if out.Empty() {
			return gocv.NewMat(), &UnsupportedFormatError{Channels: channels, Depth: d, Reason: "16-bit conversion failed"}
		}
		return out, nil
	default:
		return gocv.NewMat(), &UnsupportedFormatError{
			Channels: channels,
			Depth:    d,
			Reason:   "only 8-bit and 16-bit unsigned images are supported",
		}
	}
}

// getFormatFromPath extracts image format from file path
func getFormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "":
		return "unknown"
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	default:
		return ext
	}
}
