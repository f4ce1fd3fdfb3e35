// Morphological operations on the alpha plane
package algorithms

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// MaxEdgeTrim is the largest alpha erosion, in pixels.
const MaxEdgeTrim = 50

// ErodeAlpha shrinks the opaque region of a BGRA image inward by pixels.
// Each iteration is a 3x3 rectangular erosion, so the boundary moves one
// pixel per iteration. Pixels outside the image count as transparent.
// Color planes are not modified; images without alpha are returned as is.
func ErodeAlpha(input gocv.Mat, pixels int) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), fmt.Errorf("input image is empty")
	}

	if input.Channels() != 4 || pixels <= 0 {
		return input.Clone(), nil
	}

	planes := gocv.Split(input)
	defer closeAll(planes)

	eroded, err := erodePlane(planes[3], pixels)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer eroded.Close()

	output := gocv.NewMat()
	gocv.Merge([]gocv.Mat{planes[0], planes[1], planes[2], eroded}, &output)
	if output.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to merge eroded alpha plane")
	}

	return output, nil
}

func erodePlane(plane gocv.Mat, iterations int) (gocv.Mat, error) {
	width, height := plane.Cols(), plane.Rows()

	padded := gocv.NewMat()
	defer padded.Close()
	gocv.CopyMakeBorder(plane, &padded, iterations, iterations, iterations, iterations, gocv.BorderConstant, color.RGBA{})
	if padded.Empty() {
		return gocv.NewMat(), fmt.Errorf("failed to pad alpha plane")
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	output := padded.Clone()
	for i := 0; i < iterations; i++ {
		temp := gocv.NewMat()
		gocv.Erode(output, &temp, kernel)
		output.Close()
		if temp.Empty() {
			return gocv.NewMat(), fmt.Errorf("erosion %d/%d returned empty result", i+1, iterations)
		}
		output = temp
	}
	defer output.Close()

	region := output.Region(image.Rect(iterations, iterations, iterations+width, iterations+height))
	defer region.Close()

	return region.Clone(), nil
}
