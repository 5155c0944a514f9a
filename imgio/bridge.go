package imgio

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ToImage converts a Mat to a standard library image.Image. Color matrices
// come back as RGBA with the BGR(A) order swapped.
func ToImage(mat gocv.Mat) (image.Image, error) {
	if err := Validate(mat); err != nil {
		return nil, err
	}
	img, err := mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert matrix to image")
	}
	return img, nil
}

// FromImage converts a standard library image into a Mat. Grayscale images
// become single-channel matrices, everything else 3-channel BGR.
func FromImage(img image.Image) (gocv.Mat, error) {
	if img == nil {
		return gocv.Mat{}, errors.New("input image is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return gocv.Mat{}, errors.Errorf("image has zero dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	if gray, ok := img.(*image.Gray); ok {
		mat, err := gocv.ImageGrayToMatGray(gray)
		if err != nil {
			return gocv.Mat{}, errors.Wrap(err, "failed to convert grayscale image to matrix")
		}
		return mat, nil
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "failed to convert image to matrix")
	}
	return mat, nil
}
