// Package transform provides geometric image transformations backed by
// OpenCV warps. Every operation validates its input and returns a new Mat;
// the input is never modified and the caller owns both.
package transform

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvkit/imgio"
)

// Point is a 2-D point in pixel coordinates.
type Point struct {
	X, Y float64
}

// Translate shifts the image by tx pixels along x and ty along y. The
// output keeps the input dimensions; shifted-in regions are black.
func Translate(img gocv.Mat, tx, ty float64) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	m.SetDoubleAt(0, 0, 1)
	m.SetDoubleAt(0, 2, tx)
	m.SetDoubleAt(1, 1, 1)
	m.SetDoubleAt(1, 2, ty)

	dst := gocv.NewMat()
	gocv.WarpAffine(img, &dst, m, image.Pt(img.Cols(), img.Rows()))
	return dst, nil
}

// Rotate rotates the image by angle degrees counterclockwise around its
// center, keeping the input dimensions.
func Rotate(img gocv.Mat, angle float64) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}

	center := image.Pt(img.Cols()/2, img.Rows()/2)
	m := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer m.Close()

	dst := gocv.NewMat()
	gocv.WarpAffine(img, &dst, m, image.Pt(img.Cols(), img.Rows()))
	return dst, nil
}

// Scale resizes the image to width x height. If exactly one of the two is
// positive the other is derived from the input aspect ratio; if neither is
// positive the image is returned unscaled (as a clone).
func Scale(img gocv.Mat, width, height int) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}

	w, h := img.Cols(), img.Rows()
	ratio := float64(w) / float64(h)
	switch {
	case width > 0 && height <= 0:
		height = int(float64(width) / ratio)
	case width <= 0 && height > 0:
		width = int(float64(height) * ratio)
	}
	if width <= 0 || height <= 0 {
		return img.Clone(), nil
	}

	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst, nil
}

// Affine warps the image so the three src points map onto the three dst
// points. The output keeps the input dimensions.
func Affine(img gocv.Mat, src, dst [3]Point) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}

	srcVec := pointVector(src[:])
	defer srcVec.Close()
	dstVec := pointVector(dst[:])
	defer dstVec.Close()

	m := gocv.GetAffineTransform2f(srcVec, dstVec)
	defer m.Close()

	out := gocv.NewMat()
	gocv.WarpAffine(img, &out, m, image.Pt(img.Cols(), img.Rows()))
	return out, nil
}

// Perspective warps the image so the four src points map onto the four dst
// points. At least three of the src points must be non-collinear. The
// output keeps the input dimensions.
func Perspective(img gocv.Mat, src, dst [4]Point) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}

	srcVec := pointVector(src[:])
	defer srcVec.Close()
	dstVec := pointVector(dst[:])
	defer dstVec.Close()

	m := gocv.GetPerspectiveTransform2f(srcVec, dstVec)
	defer m.Close()

	out := gocv.NewMat()
	gocv.WarpPerspective(img, &out, m, image.Pt(img.Cols(), img.Rows()))
	return out, nil
}

// PerspectiveFromCorners rectifies the quadrilateral described by the four
// corner points into an axis-aligned rectangle sized to the quadrilateral's
// bounding extents. Corner order does not matter.
func PerspectiveFromCorners(img gocv.Mat, corners [4]Point) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}

	src := SortCorners(corners)
	tl, tr, br, bl := src[0], src[1], src[2], src[3]

	width := int(max(Distance(tl, tr).Euclidean, Distance(br, bl).Euclidean))
	height := int(max(Distance(tl, bl).Euclidean, Distance(tr, br).Euclidean))
	if width <= 0 || height <= 0 {
		return gocv.Mat{}, errors.Errorf("corner points span a degenerate %dx%d region", width, height)
	}

	dst := [4]Point{
		{0, 0},
		{float64(width - 1), 0},
		{float64(width - 1), float64(height - 1)},
		{0, float64(height - 1)},
	}

	srcVec := pointVector(src[:])
	defer srcVec.Close()
	dstVec := pointVector(dst[:])
	defer dstVec.Close()

	m := gocv.GetPerspectiveTransform2f(srcVec, dstVec)
	defer m.Close()

	out := gocv.NewMat()
	gocv.WarpPerspective(img, &out, m, image.Pt(width, height))
	return out, nil
}

func pointVector(points []Point) gocv.Point2fVector {
	pts := make([]gocv.Point2f, len(points))
	for i, p := range points {
		pts[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}
	return gocv.NewPoint2fVectorFromPoints(pts)
}
