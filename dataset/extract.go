package dataset

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"cvkit/imgio"
)

// extractSample decodes one image file into a flattened sample row: the
// label id followed by the resized image's pixel bytes in row-major order.
func extractSample(path string, labelID uint8, cfg Config) ([]byte, error) {
	mat, err := imgio.Read(path, cfg.Mode)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	normalized, err := normalizeChannels(mat, cfg.Mode)
	if err != nil {
		return nil, err
	}
	defer normalized.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(normalized, &resized, image.Pt(cfg.Width, cfg.Height), 0, 0, gocv.InterpolationLinear)

	pixels, err := resized.ToBytes()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to flatten %q", path)
	}

	row := make([]byte, 0, 1+len(pixels))
	row = append(row, labelID)
	row = append(row, pixels...)
	return row, nil
}

// normalizeChannels forces the channel count the read mode promises. Color
// and grayscale decodes already arrive normalized; unchanged decodes keep
// whatever the file stored, so they are widened to BGRA.
func normalizeChannels(mat gocv.Mat, mode imgio.ReadMode) (gocv.Mat, error) {
	if mat.Channels() == mode.Channels() {
		return mat.Clone(), nil
	}
	if mode != imgio.ReadUnchanged {
		return gocv.Mat{}, errors.Errorf("decoded %d channels, want %d", mat.Channels(), mode.Channels())
	}

	out := gocv.NewMat()
	switch mat.Channels() {
	case 1:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorGrayToBGR)
		gocv.CvtColor(bgr, &out, gocv.ColorBGRToBGRA)
	case 3:
		gocv.CvtColor(mat, &out, gocv.ColorBGRToBGRA)
	default:
		out.Close()
		return gocv.Mat{}, errors.Errorf("cannot normalize %d-channel image to BGRA", mat.Channels())
	}
	return out, nil
}
