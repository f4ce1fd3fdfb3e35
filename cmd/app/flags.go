package main

import (
	"github.com/spf13/cobra"

	"image-upscaler/internal/core"
)

// addSettingsFlags registers one flag per processing setting. Flag
// defaults are informational; only flags the user sets override the
// selected preset.
func addSettingsFlags(cmd *cobra.Command) {
	d := core.DefaultSettings()
	f := cmd.Flags()

	f.String("preset", "", "Start from a preset: low, medium, high, ultra, custom (default $UPSCALER_PRESET or custom)")
	f.Float64("upscale", d.UpscaleFactor, "Lanczos upscale factor (1-8)")
	f.Float64("blur", d.BlurRadius, "Gaussian blur radius after upscaling (0-3)")
	f.Float64("sharpen-radius", d.SharpenRadius, "Unsharp mask radius")
	f.Float64("sharpen-amount", d.SharpenAmount, "Unsharp mask amount in percent")
	f.Int("sharpen-threshold", d.SharpenThreshold, "Unsharp mask threshold (0-255)")
	f.Float64("downscale", d.DownscaleFactor, "Lanczos downscale factor (0.80-1.00)")
	f.Float64("contrast", d.Contrast, "Contrast (0.5-2.0)")
	f.Float64("saturation", d.Saturation, "Saturation (0-2.0)")
	f.Float64("brightness", d.Brightness, "Brightness (0.5-2.0)")
	f.Int("noise", d.NoiseReduction, "Median noise reduction level (0-5)")
	f.Int("edge-trim", d.EdgeTrim, "Pixels trimmed from transparent edges (0-50)")
	f.String("format", string(d.OutputFormat), "Output format: PNG, JPEG or WebP")
	f.Int("quality", d.Quality, "JPEG/WebP quality (1-100)")
}

// settingsFromFlags starts from the preset named by --preset (or
// defaultPreset), applies every flag the user set, and validates the
// result.
func settingsFromFlags(cmd *cobra.Command, defaultPreset string) (core.Settings, error) {
	flags := cmd.Flags()

	name, _ := flags.GetString("preset")
	if name == "" {
		name = defaultPreset
	}

	settings, err := core.Preset(name)
	if err != nil {
		return core.Settings{}, err
	}

	floats := []struct {
		flag string
		dst  *float64
	}{
		{"upscale", &settings.UpscaleFactor},
		{"blur", &settings.BlurRadius},
		{"sharpen-radius", &settings.SharpenRadius},
		{"sharpen-amount", &settings.SharpenAmount},
		{"downscale", &settings.DownscaleFactor},
		{"contrast", &settings.Contrast},
		{"saturation", &settings.Saturation},
		{"brightness", &settings.Brightness},
	}
	for _, f := range floats {
		if !flags.Changed(f.flag) {
			continue
		}
		if *f.dst, err = flags.GetFloat64(f.flag); err != nil {
			return core.Settings{}, err
		}
	}

	ints := []struct {
		flag string
		dst  *int
	}{
		{"sharpen-threshold", &settings.SharpenThreshold},
		{"noise", &settings.NoiseReduction},
		{"edge-trim", &settings.EdgeTrim},
		{"quality", &settings.Quality},
	}
	for _, f := range ints {
		if !flags.Changed(f.flag) {
			continue
		}
		if *f.dst, err = flags.GetInt(f.flag); err != nil {
			return core.Settings{}, err
		}
	}

	if flags.Changed("format") {
		value, _ := flags.GetString("format")
		if settings.OutputFormat, err = core.ParseOutputFormat(value); err != nil {
			return core.Settings{}, err
		}
	}

	return settings, settings.Validate()
}
