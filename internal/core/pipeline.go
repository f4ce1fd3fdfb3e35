// Stateless enhancement pipeline: a fixed, ordered list of stages
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-upscaler/internal/algorithms"
)

// Pipeline applies the enhancement stages to one image per call. It holds
// no mutable state and is safe for concurrent use on distinct images.
type Pipeline struct {
	stages []Stage
	logger logrus.FieldLogger
}

// NewPipeline creates a pipeline with the standard nine stages
func NewPipeline(logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		stages: StandardStages(),
		logger: logger,
	}
}

// Stages returns a copy of the ordered stage list
func (p *Pipeline) Stages() []Stage {
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)
	return stages
}

// Plan returns the names of the stages that would run for these settings
// on an image with the given channel count.
func (p *Pipeline) Plan(settings Settings, channels int) []string {
	settings = settings.Clamp()

	var names []string
	for _, stage := range p.stages {
		if !stage.Skip(settings, channels) {
			names = append(names, stage.Name)
		}
	}
	return names
}

// Process runs every non-skipped stage on a normalized copy of input and
// returns the result. The input Mat is never modified; the caller owns
// the returned Mat and must Close it.
//
// Settings are clamped into range before use. The context is checked
// between stages only.
func (p *Pipeline) Process(ctx context.Context, input gocv.Mat, settings Settings) (result gocv.Mat, err error) {
	current, err := Normalize(input)
	if err != nil {
		return gocv.NewMat(), err
	}

	settings = settings.Clamp()
	stageName := "normalize"
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			current.Close()
			result = gocv.NewMat()
			err = &ProcessingError{Stage: stageName, Err: fmt.Errorf("panic: %v", r)}
			p.logger.WithField("stage", stageName).Errorf("PIPELINE: Panic recovered: %v", r)
		}
	}()

	p.logger.WithFields(logrus.Fields{
		"width":    current.Cols(),
		"height":   current.Rows(),
		"channels": current.Channels(),
	}).Debug("PIPELINE: Processing image")

	for _, stage := range p.stages {
		stageName = stage.Name

		if err := ctx.Err(); err != nil {
			current.Close()
			return gocv.NewMat(), &ProcessingError{Stage: stage.Name, Err: err}
		}

		if stage.Skip(settings, current.Channels()) {
			p.logger.WithField("stage", stage.Name).Debug("PIPELINE: Skipping identity stage")
			continue
		}

		stageStart := time.Now()
		next, err := stage.Apply(current, settings)
		if err != nil {
			current.Close()
			next.Close()
			return gocv.NewMat(), &ProcessingError{Stage: stage.Name, Err: err}
		}

		if next.Empty() || next.Cols() <= 0 || next.Rows() <= 0 {
			current.Close()
			next.Close()
			return gocv.NewMat(), &ProcessingError{Stage: stage.Name, Err: ErrDegenerateSize}
		}

		p.logger.WithFields(logrus.Fields{
			"stage":       stage.Name,
			"input_size":  fmt.Sprintf("%dx%d", current.Cols(), current.Rows()),
			"output_size": fmt.Sprintf("%dx%d", next.Cols(), next.Rows()),
			"duration":    time.Since(stageStart),
		}).Debug("PIPELINE: Stage applied")

		current.Close()
		current = next
	}

	p.logger.WithFields(logrus.Fields{
		"width":    current.Cols(),
		"height":   current.Rows(),
		"duration": time.Since(start),
	}).Debug("PIPELINE: Processing completed")

	return current, nil
}

// OutputDimensions predicts the size Process will produce for a
// width x height input, without processing anything.
func OutputDimensions(width, height int, settings Settings) (int, int) {
	settings = settings.Clamp()

	w, h := width, height
	if settings.UpscaleFactor != 1 {
		w, h = algorithms.ScaledSize(w, h, settings.UpscaleFactor)
	}
	if settings.DownscaleFactor != 1 {
		w, h = algorithms.ScaledSize(w, h, settings.DownscaleFactor)
	}
	return w, h
}
