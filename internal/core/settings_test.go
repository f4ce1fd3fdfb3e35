package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
	require.NoError(t, IdentitySettings().Validate())
}

func TestClampForcesRanges(t *testing.T) {
	s := Settings{
		UpscaleFactor:    20,
		BlurRadius:       -1,
		SharpenRadius:    -3,
		SharpenAmount:    -10,
		SharpenThreshold: 400,
		DownscaleFactor:  0.1,
		Contrast:         9,
		Saturation:       -2,
		Brightness:       0,
		NoiseReduction:   12,
		EdgeTrim:         99,
		OutputFormat:     "TIFF",
		Quality:          0,
	}

	c := s.Clamp()
	assert.Equal(t, MaxUpscale, c.UpscaleFactor)
	assert.Equal(t, 0.0, c.BlurRadius)
	assert.Equal(t, 0.0, c.SharpenRadius)
	assert.Equal(t, 0.0, c.SharpenAmount)
	assert.Equal(t, MaxThreshold, c.SharpenThreshold)
	assert.Equal(t, MinDownscale, c.DownscaleFactor)
	assert.Equal(t, MaxContrast, c.Contrast)
	assert.Equal(t, 0.0, c.Saturation)
	assert.Equal(t, MinBrightness, c.Brightness)
	assert.Equal(t, 5, c.NoiseReduction)
	assert.Equal(t, 50, c.EdgeTrim)
	assert.Equal(t, FormatPNG, c.OutputFormat)
	assert.Equal(t, MinQuality, c.Quality)
	require.NoError(t, c.Validate())

	// the original value is untouched
	assert.Equal(t, 20.0, s.UpscaleFactor)
}

func TestClampNaNFallsBackToIdentity(t *testing.T) {
	s := DefaultSettings()
	s.Contrast = math.NaN()
	s.UpscaleFactor = math.NaN()

	c := s.Clamp()
	assert.Equal(t, 1.0, c.Contrast)
	assert.Equal(t, 1.0, c.UpscaleFactor)
}

func TestValidateReportsField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
		field  string
	}{
		{"upscale", func(s *Settings) { s.UpscaleFactor = 0.5 }, "upscale_factor"},
		{"blur", func(s *Settings) { s.BlurRadius = 3.5 }, "blur_radius"},
		{"downscale", func(s *Settings) { s.DownscaleFactor = 1.2 }, "downscale_factor"},
		{"saturation", func(s *Settings) { s.Saturation = math.NaN() }, "saturation"},
		{"noise", func(s *Settings) { s.NoiseReduction = 6 }, "noise_reduction"},
		{"trim", func(s *Settings) { s.EdgeTrim = -1 }, "edge_trim"},
		{"format", func(s *Settings) { s.OutputFormat = "GIF" }, "output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{
		"png":  FormatPNG,
		"JPG":  FormatJPEG,
		"jpeg": FormatJPEG,
		"WebP": FormatWebP,
	} {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseOutputFormat("bmp")
	assert.Error(t, err)
}

func TestOutputFormatExtension(t *testing.T) {
	assert.Equal(t, ".png", FormatPNG.Extension())
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".webp", FormatWebP.Extension())
}

func TestSettingsAreValues(t *testing.T) {
	a := DefaultSettings()
	b := a
	b.Brightness = 1.5

	assert.Equal(t, 1.0, a.Brightness)
	assert.NotEqual(t, a, b)
	assert.Equal(t, DefaultSettings(), a)
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		s, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, s.Validate(), name)
	}

	high, err := Preset("HIGH")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), high)

	low, _ := Preset("low")
	ultra, _ := Preset("ultra")
	assert.Less(t, low.UpscaleFactor, ultra.UpscaleFactor)

	_, err = Preset("extreme")
	assert.Error(t, err)
}

func TestPresetIsACopy(t *testing.T) {
	s, err := Preset("custom")
	require.NoError(t, err)
	s.Brightness = 2

	again, err := Preset("custom")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Brightness)
}

func TestParametersCoverSettings(t *testing.T) {
	names := make(map[string]bool)
	for _, p := range Parameters() {
		names[p.Name] = true
	}
	for _, want := range []string{"upscale_factor", "blur_radius", "sharpen_amount", "downscale_factor", "noise_reduction", "edge_trim"} {
		assert.True(t, names[want], want)
	}
}
