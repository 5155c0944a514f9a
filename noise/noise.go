// Package noise injects synthetic noise into images, for augmenting
// datasets and stress-testing downstream processing.
package noise

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat/distuv"

	"cvkit/imgio"
)

// Gaussian adds additive Gaussian noise with the given mean and standard
// deviation. The same noise field is applied to every channel of a
// pixel, and the result is min-max renormalized back into the 0..255 range.
func Gaussian(img gocv.Mat, mean, stddev float64) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}
	data, err := img.ToBytes()
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "failed to access image data")
	}

	rows, cols, channels := img.Rows(), img.Cols(), img.Channels()
	dist := distuv.Normal{Mu: mean, Sigma: stddev}
	field := make([]float64, rows*cols)
	for i := range field {
		field[i] = dist.Rand()
	}

	noisy := make([]float64, len(data))
	lo, hi := math.Inf(1), math.Inf(-1)
	for p := 0; p < rows*cols; p++ {
		for c := 0; c < channels; c++ {
			i := p*channels + c
			v := float64(data[i]) + field[p]
			noisy[i] = v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	out := make([]byte, len(data))
	if span := hi - lo; span > 0 {
		for i, v := range noisy {
			out[i] = uint8((v - lo) / span * 255)
		}
	}

	mat, err := gocv.NewMatFromBytes(rows, cols, img.Type(), out)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "failed to build noisy image matrix")
	}
	return mat, nil
}

// SaltAndPepper sets the given fraction of pixels to full white or full
// black, chosen by a fair coin. Density is clamped to [0, 1] and affected
// pixels have every channel overwritten.
func SaltAndPepper(img gocv.Mat, density float64) (gocv.Mat, error) {
	if err := imgio.Validate(img); err != nil {
		return gocv.Mat{}, err
	}
	if density < 0 {
		density = 0
	} else if density > 1 {
		density = 1
	}

	out := img.Clone()
	rows, cols, channels := img.Rows(), img.Cols(), img.Channels()
	affected := int(float64(rows*cols) * density)
	for _, p := range rand.Perm(rows * cols)[:affected] {
		y, x := p/cols, p%cols
		var value uint8
		if rand.Float64() > 0.5 {
			value = 255
		}
		for c := 0; c < channels; c++ {
			out.SetUCharAt(y, x*channels+c, value)
		}
	}
	return out, nil
}
