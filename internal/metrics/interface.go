// Image quality metrics comparing an enhanced image with a reference
package metrics

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate compares processed against reference; both must have the
	// same dimensions.
	Calculate(reference, processed gocv.Mat) (float64, error)

	GetName() string
	GetDescription() string

	// IsHigherBetter returns true if higher values indicate closer agreement
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with the default metrics registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.Register("mse", NewMSE())
	e.Register("psnr", NewPSNR())
	e.Register("ssim", NewSSIM())
	e.Register("sharpness", NewSharpness())

	return e
}

// Register adds or replaces a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, reference, processed gocv.Mat) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(reference, processed)
}

// Score is one metric result with the metadata needed to display it
type Score struct {
	Key            string  `json:"key"` // registry name
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Value          float64 `json:"value"`
	HigherIsBetter bool    `json:"higher_is_better"`
}

// CalculateAll calculates every registered metric in Names order and stops
// at the first failure.
func (e *Evaluator) CalculateAll(reference, processed gocv.Mat) ([]Score, error) {
	scores := make([]Score, 0, len(e.metrics))

	for _, name := range e.Names() {
		metric := e.metrics[name]
		value, err := metric.Calculate(reference, processed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		scores = append(scores, Score{
			Key:            name,
			Name:           metric.GetName(),
			Description:    metric.GetDescription(),
			Value:          value,
			HigherIsBetter: metric.IsHigherBetter(),
		})
	}

	return scores, nil
}

// Report summarizes how far the enhanced image moved from a plain resample
type Report struct {
	MSE       float64 `json:"mse"`
	PSNR      float64 `json:"psnr"`
	SSIM      float64 `json:"ssim"`
	Sharpness float64 `json:"sharpness"` // Laplacian variance ratio, processed / reference

	Scores []Score `json:"scores"`
}

// Compare resamples source to the size of processed with Lanczos and
// reports every registered metric against it.
func (e *Evaluator) Compare(source, processed gocv.Mat) (Report, error) {
	if source.Empty() || processed.Empty() {
		return Report{}, fmt.Errorf("empty images")
	}

	reference := gocv.NewMat()
	defer reference.Close()
	if err := gocv.Resize(source, &reference, image.Point{X: processed.Cols(), Y: processed.Rows()}, 0, 0, gocv.InterpolationLanczos4); err != nil {
		return Report{}, fmt.Errorf("failed to build reference: %w", err)
	}

	scores, err := e.CalculateAll(reference, processed)
	if err != nil {
		return Report{}, err
	}

	report := Report{Scores: scores}
	for _, s := range scores {
		switch s.Key {
		case "mse":
			report.MSE = s.Value
		case "psnr":
			report.PSNR = s.Value
		case "ssim":
			report.SSIM = s.Value
		case "sharpness":
			report.Sharpness = s.Value
		}
	}

	return report, nil
}
