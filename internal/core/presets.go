package core

import (
	"fmt"
	"strings"

	"image-upscaler/internal/algorithms"
)

var presets = map[string]Settings{
	"low":    withOverrides(func(s *Settings) { s.UpscaleFactor, s.BlurRadius, s.SharpenRadius, s.SharpenAmount, s.DownscaleFactor = 2, 0.4, 1.0, 80, 0.98 }),
	"medium": withOverrides(func(s *Settings) { s.UpscaleFactor, s.BlurRadius, s.SharpenRadius, s.SharpenAmount = 3, 0.5, 1.1, 100 }),
	"high":   DefaultSettings(),
	"ultra": withOverrides(func(s *Settings) {
		s.UpscaleFactor, s.BlurRadius, s.DownscaleFactor = 6, 0.8, 0.95
		s.SharpenRadius, s.SharpenAmount, s.SharpenThreshold = 1.5, 150, 3
		s.Contrast, s.Saturation = 1.05, 1.05
		s.NoiseReduction = 1
	}),
	"custom": DefaultSettings(),
}

func withOverrides(fn func(s *Settings)) Settings {
	s := DefaultSettings()
	fn(&s)
	return s
}

var presetOrder = []string{"low", "medium", "high", "ultra", "custom"}

// PresetNames lists the built-in presets from lightest to heaviest.
func PresetNames() []string {
	names := make([]string, len(presetOrder))
	copy(names, presetOrder)
	return names
}

// Preset returns a copy of the named preset. Names are case-insensitive.
func Preset(name string) (Settings, error) {
	s, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Settings{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(presetOrder, ", "))
	}
	return s, nil
}

// ParameterInfo describes a tunable setting for help and listing output.
type ParameterInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"` // "int", "float", "enum"
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Identity    string  `json:"identity,omitempty"`
	Description string  `json:"description"`
}

// Parameters returns the settings schema in pipeline order.
func Parameters() []ParameterInfo {
	return []ParameterInfo{
		{"upscale_factor", "float", MinUpscale, MaxUpscale, "1", "Lanczos upscale multiplier"},
		{"blur_radius", "float", 0, MaxBlurRadius, "0", "Gaussian blur sigma applied after upscaling"},
		{"sharpen_radius", "float", 0, 0, "", "Unsharp mask blur sigma (no upper bound)"},
		{"sharpen_amount", "float", 0, 0, "0", "Unsharp mask strength in percent (no upper bound)"},
		{"sharpen_threshold", "int", 0, MaxThreshold, "", "Minimum channel difference that gets sharpened"},
		{"downscale_factor", "float", MinDownscale, MaxDownscale, "1", "Lanczos downscale after sharpening"},
		{"contrast", "float", MinContrast, MaxContrast, "1", "Contrast around the mean luma"},
		{"saturation", "float", 0, MaxSaturation, "1", "Color saturation; 0 is grayscale"},
		{"brightness", "float", MinBrightness, MaxBrightness, "1", "Brightness multiplier"},
		{"noise_reduction", "int", 0, algorithms.MaxNoiseLevel, "0", "Median filter level; window is 2*level+1"},
		{"edge_trim", "int", 0, algorithms.MaxEdgeTrim, "0", "Pixels eroded from the alpha boundary"},
		{"output_format", "enum", 0, 0, "", "PNG, JPEG or WebP"},
		{"quality", "int", MinQuality, MaxQuality, "", "JPEG/WebP quality"},
	}
}
