// Image saving: encoding to PNG, JPEG and WebP
package io

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chai2010/webp"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-upscaler/internal/core"
)

const (
	// pngCompression favors speed for exported files.
	pngCompression = 1

	// estimatePNGCompression is the zlib level size estimates are taken at.
	estimatePNGCompression = 6
)

// Encode serializes mat in the output format selected by settings.
// JPEG cannot store transparency, so BGRA images are flattened onto white.
func (il *ImageLoader) Encode(mat gocv.Mat, settings core.Settings) ([]byte, error) {
	return encode(mat, settings, pngCompression)
}

func encode(mat gocv.Mat, settings core.Settings, pngLevel int) ([]byte, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot encode empty image")
	}

	settings = settings.Clamp()

	switch settings.OutputFormat {
	case core.FormatJPEG:
		return encodeJPEG(mat, settings.Quality)
	case core.FormatWebP:
		return encodeWebP(mat, settings.Quality)
	default:
		return encodeWithOpenCV(gocv.PNGFileExt, mat, []int{gocv.IMWritePngCompression, pngLevel})
	}
}

// SaveImage encodes mat and writes it to path.
func (il *ImageLoader) SaveImage(mat gocv.Mat, path string, settings core.Settings) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	data, err := il.Encode(mat, settings)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"bytes":    len(data),
	}).Info("Image saved successfully")

	return nil
}

// EstimateSize returns the encoded size of mat without touching disk.
// PNG is measured at zlib level 6 rather than the faster export level, so
// the figure is a little below what SaveImage writes.
func (il *ImageLoader) EstimateSize(mat gocv.Mat, settings core.Settings) (int, error) {
	data, err := encode(mat, settings, estimatePNGCompression)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// FormatSize renders a byte count as a human-readable string.
func FormatSize(size float64) string {
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

func encodeWithOpenCV(ext gocv.FileExt, mat gocv.Mat, params []int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(ext, mat, params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ext, err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func encodeJPEG(mat gocv.Mat, quality int) ([]byte, error) {
	if mat.Channels() != 4 {
		return encodeWithOpenCV(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, quality})
	}

	flat, err := flattenOnWhite(mat)
	if err != nil {
		return nil, err
	}
	defer flat.Close()

	return encodeWithOpenCV(gocv.JPEGFileExt, flat, []int{gocv.IMWriteJpegQuality, quality})
}

func encodeWebP(mat gocv.Mat, quality int) ([]byte, error) {
	img, err := MatToImage(mat)
	if err != nil {
		return nil, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
		return buf.Bytes(), nil
	}

	// libwebp takes straight alpha; passing the NRGBA bytes as RGBA keeps
	// the encoder from premultiplying them.
	data, err := webp.EncodeRGBA(&image.RGBA{Pix: nrgba.Pix, Stride: nrgba.Stride, Rect: nrgba.Rect}, float32(quality))
	if err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return data, nil
}

// flattenOnWhite composites a BGRA image over an opaque white background
// and returns a BGR Mat.
func flattenOnWhite(mat gocv.Mat) (gocv.Mat, error) {
	img, err := MatToImage(mat)
	if err != nil {
		return gocv.NewMat(), err
	}

	bounds := img.Bounds()
	background := image.NewRGBA(bounds)
	draw.Draw(background, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(background, bounds, img, bounds.Min, draw.Over)

	bgra, err := ImageToMat(background)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer bgra.Close()

	bgr := gocv.NewMat()
	if err := gocv.CvtColor(bgra, &bgr, gocv.ColorBGRAToBGR); err != nil {
		bgr.Close()
		return gocv.NewMat(), fmt.Errorf("failed to drop alpha: %w", err)
	}
	return bgr, nil
}

// MatToImage converts an 8-bit Mat with 1, 3 or 4 channels into a Go image.
// BGRA data is treated as straight (non-premultiplied) alpha.
func MatToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot convert empty image")
	}

	width, height := mat.Cols(), mat.Rows()
	channels := mat.Channels()
	data := mat.ToBytes()
	if len(data) < width*height*channels {
		return nil, fmt.Errorf("unexpected buffer size %d for %dx%dx%d image", len(data), width, height, channels)
	}

	switch channels {
	case 1:
		gray := image.NewGray(image.Rect(0, 0, width, height))
		copy(gray.Pix, data)
		return gray, nil
	case 3, 4:
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		for i, j := 0, 0; i < width*height; i, j = i+1, j+channels {
			img.Pix[i*4+0] = data[j+2]
			img.Pix[i*4+1] = data[j+1]
			img.Pix[i*4+2] = data[j+0]
			if channels == 4 {
				img.Pix[i*4+3] = data[j+3]
			} else {
				img.Pix[i*4+3] = 255
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// ImageToMat converts a Go image into a BGRA Mat. Premultiplied sources
// are converted to straight alpha first.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return gocv.NewMat(), fmt.Errorf("cannot convert empty image")
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	width, height := nrgba.Bounds().Dx(), nrgba.Bounds().Dy()
	data := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width; x++ {
			i, j := x*4, (y*width+x)*4
			data[j+0] = row[i+2]
			data[j+1] = row[i+1]
			data[j+2] = row[i+0]
			data[j+3] = row[i+3]
		}
	}

	// the Mat borrows data; clone it into OpenCV-owned memory
	borrowed, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	defer borrowed.Close()

	mat := borrowed.Clone()
	runtime.KeepAlive(data)
	return mat, nil
}
