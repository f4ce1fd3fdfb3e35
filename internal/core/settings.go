// Processing settings: ranges, defaults, clamping and validation
package core

import (
	"fmt"
	"math"
	"strings"

	"image-upscaler/internal/algorithms"
)

// OutputFormat is the encoding used when a processed image is written.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "PNG"
	FormatJPEG OutputFormat = "JPEG"
	FormatWebP OutputFormat = "WEBP"
)

// Parameter ranges
const (
	MinUpscale     = 1.0
	MaxUpscale     = 8.0
	MaxBlurRadius  = 3.0
	MaxThreshold   = 255
	MinDownscale   = 0.80
	MaxDownscale   = 1.00
	MinContrast    = 0.50
	MaxContrast    = 2.00
	MaxSaturation  = 2.00
	MinBrightness  = 0.50
	MaxBrightness  = 2.00
	MinQuality     = 1
	MaxQuality     = 100
	DefaultQuality = 95
)

// ParseOutputFormat accepts png, jpeg, jpg and webp in any case.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PNG":
		return FormatPNG, nil
	case "JPEG", "JPG":
		return FormatJPEG, nil
	case "WEBP":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want PNG, JPEG or WebP)", s)
	}
}

// Extension returns the file extension, with leading dot, for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatWebP:
		return ".webp"
	default:
		return ".png"
	}
}

func (f OutputFormat) valid() bool {
	return f == FormatPNG || f == FormatJPEG || f == FormatWebP
}

// Settings is the full parameter record for one pipeline run. It is a
// plain value: copy it, compare it, never share a pointer to it.
type Settings struct {
	UpscaleFactor    float64      `json:"upscale_factor"`
	BlurRadius       float64      `json:"blur_radius"`
	SharpenRadius    float64      `json:"sharpen_radius"`
	SharpenAmount    float64      `json:"sharpen_amount"` // percent
	SharpenThreshold int          `json:"sharpen_threshold"`
	DownscaleFactor  float64      `json:"downscale_factor"`
	Contrast         float64      `json:"contrast"`
	Saturation       float64      `json:"saturation"`
	Brightness       float64      `json:"brightness"`
	NoiseReduction   int          `json:"noise_reduction"`
	EdgeTrim         int          `json:"edge_trim"`
	OutputFormat     OutputFormat `json:"output_format"`
	Quality          int          `json:"quality"`
}

// DefaultSettings returns the settings the application starts with.
func DefaultSettings() Settings {
	return Settings{
		UpscaleFactor:    4,
		BlurRadius:       0.6,
		SharpenRadius:    1.2,
		SharpenAmount:    120,
		SharpenThreshold: 2,
		DownscaleFactor:  0.97,
		Contrast:         1.0,
		Saturation:       1.0,
		Brightness:       1.0,
		NoiseReduction:   0,
		EdgeTrim:         0,
		OutputFormat:     FormatPNG,
		Quality:          DefaultQuality,
	}
}

// IdentitySettings returns settings for which every stage is skipped.
func IdentitySettings() Settings {
	s := DefaultSettings()
	s.UpscaleFactor = 1
	s.BlurRadius = 0
	s.SharpenAmount = 0
	s.DownscaleFactor = 1
	return s
}

// Clamp returns a copy with every field forced into its valid range.
// NaN values fall back to the field's identity value.
func (s Settings) Clamp() Settings {
	c := s
	c.UpscaleFactor = clampFloat(s.UpscaleFactor, MinUpscale, MaxUpscale, 1)
	c.BlurRadius = clampFloat(s.BlurRadius, 0, MaxBlurRadius, 0)
	c.SharpenRadius = clampFloat(s.SharpenRadius, 0, math.MaxFloat64, 0)
	c.SharpenAmount = clampFloat(s.SharpenAmount, 0, math.MaxFloat64, 0)
	c.SharpenThreshold = clampInt(s.SharpenThreshold, 0, MaxThreshold)
	c.DownscaleFactor = clampFloat(s.DownscaleFactor, MinDownscale, MaxDownscale, 1)
	c.Contrast = clampFloat(s.Contrast, MinContrast, MaxContrast, 1)
	c.Saturation = clampFloat(s.Saturation, 0, MaxSaturation, 1)
	c.Brightness = clampFloat(s.Brightness, MinBrightness, MaxBrightness, 1)
	c.NoiseReduction = clampInt(s.NoiseReduction, 0, algorithms.MaxNoiseLevel)
	c.EdgeTrim = clampInt(s.EdgeTrim, 0, algorithms.MaxEdgeTrim)
	c.Quality = clampInt(s.Quality, MinQuality, MaxQuality)
	if !c.OutputFormat.valid() {
		c.OutputFormat = FormatPNG
	}
	return c
}

// Validate reports the first field that lies outside its range.
func (s Settings) Validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"upscale_factor", s.UpscaleFactor, MinUpscale, MaxUpscale},
		{"blur_radius", s.BlurRadius, 0, MaxBlurRadius},
		{"sharpen_radius", s.SharpenRadius, 0, math.Inf(1)},
		{"sharpen_amount", s.SharpenAmount, 0, math.Inf(1)},
		{"sharpen_threshold", float64(s.SharpenThreshold), 0, MaxThreshold},
		{"downscale_factor", s.DownscaleFactor, MinDownscale, MaxDownscale},
		{"contrast", s.Contrast, MinContrast, MaxContrast},
		{"saturation", s.Saturation, 0, MaxSaturation},
		{"brightness", s.Brightness, MinBrightness, MaxBrightness},
		{"noise_reduction", float64(s.NoiseReduction), 0, algorithms.MaxNoiseLevel},
		{"edge_trim", float64(s.EdgeTrim), 0, algorithms.MaxEdgeTrim},
		{"quality", float64(s.Quality), MinQuality, MaxQuality},
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || c.value < c.min || c.value > c.max {
			return fmt.Errorf("%s must be between %g and %g, got %g", c.name, c.min, c.max, c.value)
		}
	}

	if !s.OutputFormat.valid() {
		return fmt.Errorf("unknown output format %q", s.OutputFormat)
	}

	return nil
}

func clampFloat(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
