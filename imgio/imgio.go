// Package imgio reads and writes images through OpenCV.
//
// Read accepts either a filesystem path or an HTTP(S) URL, so the same call
// works against local image trees and remote catalogs. Decoded images are
// returned as gocv.Mat values; callers own them and must Close them.
package imgio

import (
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ReadMode selects the channel interpretation used when decoding.
type ReadMode int

const (
	// ReadColor decodes as 3-channel BGR, dropping any alpha channel.
	ReadColor ReadMode = iota
	// ReadGrayscale decodes as a single luminance channel.
	ReadGrayscale
	// ReadUnchanged decodes with the channels stored in the file, keeping
	// alpha when present.
	ReadUnchanged
)

func (m ReadMode) String() string {
	switch m {
	case ReadColor:
		return "color"
	case ReadGrayscale:
		return "grayscale"
	case ReadUnchanged:
		return "unchanged"
	}
	return "invalid"
}

// Valid reports whether m is one of the defined read modes.
func (m ReadMode) Valid() bool {
	return m == ReadColor || m == ReadGrayscale || m == ReadUnchanged
}

// Channels returns the channel count images decoded with this mode are
// normalized to: 1 for grayscale, 3 for color, 4 for unchanged.
func (m ReadMode) Channels() int {
	switch m {
	case ReadGrayscale:
		return 1
	case ReadUnchanged:
		return 4
	default:
		return 3
	}
}

func (m ReadMode) imreadFlag() gocv.IMReadFlag {
	switch m {
	case ReadGrayscale:
		return gocv.IMReadGrayScale
	case ReadUnchanged:
		return gocv.IMReadUnchanged
	default:
		return gocv.IMReadColor
	}
}

// Read decodes the image at path, which may be a filesystem path or an
// HTTP(S) URL. The channel order of color results is BGR(A).
func Read(path string, mode ReadMode) (gocv.Mat, error) {
	if !mode.Valid() {
		return gocv.Mat{}, errors.Errorf("invalid read mode %d", int(mode))
	}
	if _, err := os.Stat(path); err == nil {
		mat := gocv.IMRead(path, mode.imreadFlag())
		if mat.Empty() {
			mat.Close()
			return gocv.Mat{}, errors.Errorf("failed to decode image file %q", path)
		}
		return mat, nil
	}

	u, err := url.Parse(path)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return gocv.Mat{}, errors.Errorf("image source %q is neither an existing file nor an http(s) url", path)
	}
	data, err := FetchBytes(path)
	if err != nil {
		return gocv.Mat{}, err
	}
	return Decode(data, mode)
}

// Decode decodes an in-memory encoded image.
func Decode(buf []byte, mode ReadMode) (gocv.Mat, error) {
	if !mode.Valid() {
		return gocv.Mat{}, errors.Errorf("invalid read mode %d", int(mode))
	}
	mat, err := gocv.IMDecode(buf, mode.imreadFlag())
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "failed to decode image bytes")
	}
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, errors.New("image bytes decoded to an empty matrix")
	}
	return mat, nil
}

// Write encodes img to path; the format is inferred from the extension. An
// existing file is overwritten.
func Write(path string, img gocv.Mat) error {
	if err := Validate(img); err != nil {
		return err
	}
	if ok := gocv.IMWrite(path, img); !ok {
		return errors.Errorf("failed to write image to %q", path)
	}
	return nil
}

// Show displays img in a window and blocks until a key is pressed.
func Show(img gocv.Mat, title string) error {
	if err := Validate(img); err != nil {
		return err
	}
	window := gocv.NewWindow(title)
	defer func() { _ = window.Close() }()
	window.IMShow(img)
	window.WaitKey(0)
	return nil
}

// Validate reports whether img is a non-empty 8-bit matrix with an
// image-like channel count (1, 3 or 4).
func Validate(img gocv.Mat) error {
	if img.Empty() {
		return errors.New("image matrix is empty")
	}
	if ch := img.Channels(); ch != 1 && ch != 3 && ch != 4 {
		return errors.Errorf("unsupported number of channels: %d", ch)
	}
	switch img.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return nil
	}
	return errors.Errorf("unsupported matrix type %d, want 8-bit unsigned", int(img.Type()))
}

// FetchBytes downloads the content at url. It follows redirects, keeping
// the path opaque so catalog URLs with unusual escaping survive the hop.
func FetchBytes(rawURL string) ([]byte, error) {
	client := http.Client{
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			r.URL.Opaque = r.URL.Path
			return nil
		},
	}
	resp, err := client.Get(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %q", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to fetch %q: status %d", rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read body of %q", rawURL)
	}
	return data, nil
}
