package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// maxPSNR caps the PSNR reported for identical images
const maxPSNR = 100.0

// MSE implements mean squared error on luma
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Calculate(reference, processed gocv.Mat) (float64, error) {
	if err := checkPair(reference, processed); err != nil {
		return 0, err
	}

	f1, err := lumaFloat(reference)
	if err != nil {
		return 0, err
	}
	defer f1.Close()

	f2, err := lumaFloat(processed)
	if err != nil {
		return 0, err
	}
	defer f2.Close()

	return meanSquaredError(f1, f2)
}

func (m *MSE) GetName() string        { return "MSE" }
func (m *MSE) GetDescription() string { return "Mean Squared Error" }
func (m *MSE) IsHigherBetter() bool   { return false }

// PSNR implements peak signal-to-noise ratio on luma
type PSNR struct {
	mse MSE
}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Calculate(reference, processed gocv.Mat) (float64, error) {
	mse, err := p.mse.Calculate(reference, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return maxPSNR, nil
	}
	return math.Min(maxPSNR, 10*math.Log10(255*255/mse)), nil
}

func (p *PSNR) GetName() string        { return "PSNR" }
func (p *PSNR) GetDescription() string { return "Peak Signal-to-Noise Ratio" }
func (p *PSNR) IsHigherBetter() bool   { return true }

// SSIM implements a global structural similarity index on luma
type SSIM struct{}

func NewSSIM() *SSIM { return &SSIM{} }

func (s *SSIM) Calculate(reference, processed gocv.Mat) (float64, error) {
	if err := checkPair(reference, processed); err != nil {
		return 0, err
	}

	f1, err := lumaFloat(reference)
	if err != nil {
		return 0, err
	}
	defer f1.Close()

	f2, err := lumaFloat(processed)
	if err != nil {
		return 0, err
	}
	defer f2.Close()

	// (0.01*255)^2, (0.03*255)^2
	const C1, C2 = 6.5025, 58.5225

	mu1 := f1.Mean().Val1
	mu2 := f2.Mean().Val1

	f1Sq, f2Sq, f1f2 := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer f1Sq.Close()
	defer f2Sq.Close()
	defer f1f2.Close()

	if err := gocv.Multiply(f1, f1, &f1Sq); err != nil {
		return 0, err
	}
	if err := gocv.Multiply(f2, f2, &f2Sq); err != nil {
		return 0, err
	}
	if err := gocv.Multiply(f1, f2, &f1f2); err != nil {
		return 0, err
	}

	sigma1Sq := f1Sq.Mean().Val1 - mu1*mu1
	sigma2Sq := f2Sq.Mean().Val1 - mu2*mu2
	sigma12 := f1f2.Mean().Val1 - mu1*mu2

	num := (2*mu1*mu2 + C1) * (2*sigma12 + C2)
	den := (mu1*mu1 + mu2*mu2 + C1) * (sigma1Sq + sigma2Sq + C2)
	return num / den, nil
}

func (s *SSIM) GetName() string        { return "SSIM" }
func (s *SSIM) GetDescription() string { return "Structural Similarity Index" }
func (s *SSIM) IsHigherBetter() bool   { return true }

// Sharpness compares the variance of the Laplacian of both images.
// Values above 1 mean the processed image carries more edge energy.
type Sharpness struct{}

func NewSharpness() *Sharpness { return &Sharpness{} }

func (s *Sharpness) Calculate(reference, processed gocv.Mat) (float64, error) {
	if reference.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	refSharpness, err := laplacianVariance(reference)
	if err != nil {
		return 0, err
	}
	procSharpness, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}

	if refSharpness == 0 {
		if procSharpness == 0 {
			return 1.0, nil
		}
		return math.Inf(1), nil
	}
	return procSharpness / refSharpness, nil
}

func (s *Sharpness) GetName() string        { return "Sharpness" }
func (s *Sharpness) GetDescription() string { return "Laplacian variance ratio" }
func (s *Sharpness) IsHigherBetter() bool   { return true }

func checkPair(a, b gocv.Mat) error {
	if a.Empty() || b.Empty() {
		return fmt.Errorf("empty images")
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return fmt.Errorf("dimension mismatch: %dx%d vs %dx%d", a.Cols(), a.Rows(), b.Cols(), b.Rows())
	}
	return nil
}

// lumaFloat returns the luma plane of an 8-bit Mat as CV_32F. Alpha is
// ignored.
func lumaFloat(input gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()

	switch input.Channels() {
	case 1:
		input.CopyTo(&gray)
	case 3:
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
			return gocv.NewMat(), err
		}
	case 4:
		if err := gocv.CvtColor(input, &gray, gocv.ColorBGRAToGray); err != nil {
			return gocv.NewMat(), err
		}
	default:
		return gocv.NewMat(), fmt.Errorf("unsupported channel count: %d", input.Channels())
	}

	out := gocv.NewMat()
	gray.ConvertTo(&out, gocv.MatTypeCV32F)
	if out.Empty() {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("float conversion failed")
	}
	return out, nil
}

func meanSquaredError(f1, f2 gocv.Mat) (float64, error) {
	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.Subtract(f1, f2, &diff); err != nil {
		return 0, err
	}

	diffSq := gocv.NewMat()
	defer diffSq.Close()
	if err := gocv.Multiply(diff, diff, &diffSq); err != nil {
		return 0, err
	}

	return diffSq.Mean().Val1, nil
}

func laplacianVariance(input gocv.Mat) (float64, error) {
	f, err := lumaFloat(input)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(f, &laplacian, gocv.MatTypeCV32F, 1, 1, 0, gocv.BorderDefault)
	if laplacian.Empty() {
		return 0, fmt.Errorf("laplacian failed")
	}

	sq := gocv.NewMat()
	defer sq.Close()
	if err := gocv.Multiply(laplacian, laplacian, &sq); err != nil {
		return 0, err
	}

	mean := laplacian.Mean().Val1
	return sq.Mean().Val1 - mean*mean, nil
}
