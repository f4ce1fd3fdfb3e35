// Image loading: file decoding and source collection
package io

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-upscaler/internal/core"
)

// SupportedExtensions lists the file extensions the loader can decode.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".webp", ".gif"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// IsSupported reports whether path has a decodable image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedExtensions {
		if ext == format {
			return true
		}
	}
	return false
}

// LoadImage reads and decodes the file at path into a normalized Mat,
// keeping any alpha channel.
func (il *ImageLoader) LoadImage(path string) (gocv.Mat, error) {
	il.logger.WithField("filepath", path).Debug("Loading image")

	if !IsSupported(path) {
		return gocv.NewMat(), fmt.Errorf("unsupported image format: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to read image: %w", err)
	}

	mat, err := il.Decode(data, filepath.Ext(path))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to load image %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Debug("Image loaded successfully")

	return mat, nil
}

// Decode turns encoded image bytes into a normalized Mat. ext selects the
// decoder for formats OpenCV does not read (GIF) or reads without alpha
// (WebP); everything else goes through OpenCV.
func (il *ImageLoader) Decode(data []byte, ext string) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("empty image data")
	}

	var (
		raw gocv.Mat
		err error
	)

	switch strings.ToLower(ext) {
	case ".gif":
		raw, err = decodeGIF(data)
	case ".webp":
		raw, err = decodeWebP(data)
	default:
		raw, err = gocv.IMDecode(data, gocv.IMReadUnchanged)
	}
	if err != nil {
		raw.Close()
		return gocv.NewMat(), err
	}
	defer raw.Close()

	if raw.Empty() {
		return gocv.NewMat(), fmt.Errorf("invalid or corrupted image data")
	}

	return core.Normalize(raw)
}

// Info decodes the file at path and returns its metadata.
func (il *ImageLoader) Info(path string) (core.ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return core.ImageInfo{}, err
	}

	mat, err := il.LoadImage(path)
	if err != nil {
		return core.ImageInfo{}, err
	}
	defer mat.Close()

	return core.NewImageInfo(path, stat.Size(), mat), nil
}

func decodeGIF(data []byte) (gocv.Mat, error) {
	img, err := gif.Decode(bytes.NewReader(data))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode GIF: %w", err)
	}
	return ImageToMat(img)
}

func decodeWebP(data []byte) (gocv.Mat, error) {
	rgba, err := webp.DecodeRGBA(data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode WebP: %w", err)
	}
	// libwebp returns straight alpha
	return ImageToMat(&image.NRGBA{Pix: rgba.Pix, Stride: rgba.Stride, Rect: rgba.Rect})
}
