package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"image-upscaler/internal/batch"
	"image-upscaler/internal/core"
	imgio "image-upscaler/internal/io"
	"image-upscaler/internal/metrics"
	"image-upscaler/internal/preview"
)

var errNoImages = errors.New("no supported images found")

func newProcessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process PATH...",
		Short: "Upscale and enhance images into <out>/upscaled_output",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.processHandler,
	}

	addSettingsFlags(cmd)
	cmd.Flags().String("out", "", "Destination directory (default $UPSCALER_OUTPUT_DIR or .)")
	cmd.Flags().Int("workers", 0, "Images processed in parallel (default $UPSCALER_WORKERS or CPU count)")
	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info PATH...",
		Short: "Show image details and the predicted output size",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.infoHandler,
	}

	addSettingsFlags(cmd)
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in settings presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePresets(cmd.OutOrStdout())
		},
	}
}

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List every processing parameter with its range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writeParams(cmd.OutOrStdout())
			return nil
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview PATH OUTPUT",
		Short: "Render a processed preview of one image",
		Args:  cobra.ExactArgs(2),
		RunE:  a.previewHandler,
	}

	addSettingsFlags(cmd)
	cmd.Flags().Int("size", 0, "Longest preview edge in pixels (default $UPSCALER_PREVIEW or 800)")
	return cmd
}

func (a *app) processHandler(cmd *cobra.Command, args []string) error {
	settings, err := settingsFromFlags(cmd, a.cfg.Preset)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = a.cfg.OutputDir
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = a.cfg.Workers
	}

	sources := imgio.Collect(args)
	if len(sources) == 0 {
		return errNoImages
	}

	loader := imgio.NewImageLoader(a.logger)
	exporter := batch.NewExporter(core.NewPipeline(a.logger), loader, a.logger, workers)

	w := cmd.OutOrStdout()
	summary, err := exporter.Export(cmd.Context(), batch.BatchJob{
		Sources:     sources,
		Settings:    settings,
		Destination: out,
	}, func(p batch.Progress) {
		status := "ok"
		if p.Err != nil {
			status = "failed"
		}
		fmt.Fprintf(w, "[%d/%d] %s %s\n", p.Completed, p.Total, filepath.Base(p.Source), status)
	})
	if err != nil {
		return err
	}

	for _, r := range summary.Results {
		if r.Err != nil && !r.Skipped {
			a.logger.WithFields(logrus.Fields{"source": r.Source}).WithError(r.Err).Error("Export failed")
		}
	}

	switch {
	case summary.Cancelled:
		fmt.Fprintf(w, "Export cancelled. %d image(s) were saved.\n", summary.Succeeded)
		return cmd.Context().Err()
	case summary.Failed > 0:
		fmt.Fprintf(w, "Exported %d image(s) to %s. %d image(s) failed.\n", summary.Succeeded, summary.OutputDir, summary.Failed)
		return fmt.Errorf("%d of %d image(s) failed", summary.Failed, len(sources))
	default:
		fmt.Fprintf(w, "Successfully exported %d image(s) to %s in %s.\n", summary.Succeeded, summary.OutputDir, summary.Duration.Round(time.Millisecond))
		return nil
	}
}

func (a *app) infoHandler(cmd *cobra.Command, args []string) error {
	settings, err := settingsFromFlags(cmd, a.cfg.Preset)
	if err != nil {
		return err
	}

	sources := imgio.Collect(args)
	if len(sources) == 0 {
		return errNoImages
	}

	loader := imgio.NewImageLoader(a.logger)

	var data [][]string
	for _, source := range sources {
		info, err := loader.Info(source)
		if err != nil {
			a.logger.WithField("source", source).WithError(err).Warn("Could not read image")
			data = append(data, []string{filepath.Base(source), "-", "-", "-", "-", "unreadable"})
			continue
		}

		outW, outH := core.OutputDimensions(info.Width, info.Height, settings)
		data = append(data, []string{
			info.Filename,
			imgio.FormatSize(float64(info.Size)),
			fmt.Sprintf("%dx%d", info.Width, info.Height),
			info.Mode(),
			strings.ToUpper(info.Format),
			fmt.Sprintf("%dx%d", outW, outH),
		})
	}

	table := newTable(cmd.OutOrStdout())
	table.SetHeader([]string{"FILE", "SIZE", "DIMENSIONS", "MODE", "FORMAT", "OUTPUT"})
	table.AppendBulk(data)
	table.Render()

	return nil
}

func (a *app) previewHandler(cmd *cobra.Command, args []string) error {
	settings, err := settingsFromFlags(cmd, a.cfg.Preset)
	if err != nil {
		return err
	}

	size, _ := cmd.Flags().GetInt("size")
	if size <= 0 {
		size = a.cfg.PreviewSize
	}

	loader := imgio.NewImageLoader(a.logger)
	mat, err := loader.LoadImage(args[0])
	if err != nil {
		return err
	}
	defer mat.Close()

	p, err := preview.Build(cmd.Context(), core.NewPipeline(a.logger), loader, mat, settings, size, size)
	if err != nil {
		return err
	}

	rendered, err := imgio.ImageToMat(p.Image)
	if err != nil {
		return err
	}
	defer rendered.Close()

	saveSettings := settings
	saveSettings.OutputFormat = formatForPath(args[1])
	if err := loader.SaveImage(rendered, args[1], saveSettings); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Original: %dx%d  ->  Output: %dx%d\nEst. size: %s\n",
		p.OriginalWidth, p.OriginalHeight, p.OutputWidth, p.OutputHeight, imgio.FormatSize(float64(p.EstimatedBytes)))
	fmt.Fprintln(cmd.OutOrStdout(), "Compared with a plain resample:")
	writeScores(cmd.OutOrStdout(), p.Quality.Scores)
	return nil
}

func writeScores(w io.Writer, scores []metrics.Score) {
	var data [][]string
	for _, s := range scores {
		better := "lower is better"
		if s.HigherIsBetter {
			better = "higher is better"
		}
		data = append(data, []string{s.Name, strconv.FormatFloat(s.Value, 'f', 4, 64), better, s.Description})
	}

	table := newTable(w)
	table.SetHeader([]string{"METRIC", "VALUE", "", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()
}

func writePresets(w io.Writer) error {
	var data [][]string
	for _, name := range core.PresetNames() {
		s, err := core.Preset(name)
		if err != nil {
			return err
		}

		data = append(data, []string{
			name,
			formatFloat(s.UpscaleFactor),
			formatFloat(s.BlurRadius),
			fmt.Sprintf("%s/%s%%/%d", formatFloat(s.SharpenRadius), formatFloat(s.SharpenAmount), s.SharpenThreshold),
			formatFloat(s.DownscaleFactor),
			formatFloat(s.Contrast),
			formatFloat(s.Saturation),
			formatFloat(s.Brightness),
			strconv.Itoa(s.NoiseReduction),
			strconv.Itoa(s.EdgeTrim),
		})
	}

	table := newTable(w)
	table.SetHeader([]string{"PRESET", "UPSCALE", "BLUR", "SHARPEN", "DOWNSCALE", "CONTRAST", "SATURATION", "BRIGHTNESS", "NOISE", "TRIM"})
	table.AppendBulk(data)
	table.Render()
	return nil
}

func writeParams(w io.Writer) {
	var data [][]string
	for _, p := range core.Parameters() {
		var valueRange string
		switch {
		case p.Type == "enum":
			valueRange = "-"
		case p.Max == 0:
			valueRange = ">= " + formatFloat(p.Min)
		default:
			valueRange = formatFloat(p.Min) + " - " + formatFloat(p.Max)
		}

		identity := p.Identity
		if identity == "" {
			identity = "-"
		}

		data = append(data, []string{p.Name, p.Type, valueRange, identity, p.Description})
	}

	table := newTable(w)
	table.SetHeader([]string{"NAME", "TYPE", "RANGE", "IDENTITY", "DESCRIPTION"})
	table.AppendBulk(data)
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatForPath picks the encoder from the output file extension,
// falling back to PNG.
func formatForPath(path string) core.OutputFormat {
	f, err := core.ParseOutputFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return core.FormatPNG
	}
	return f
}
