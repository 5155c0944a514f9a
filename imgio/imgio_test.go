package imgio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 20), G: uint8(y * 20), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, encodePNG(t, w, h), 0o644))
}

func TestReadModeChannels(t *testing.T) {
	assert.Equal(t, 3, ReadColor.Channels())
	assert.Equal(t, 1, ReadGrayscale.Channels())
	assert.Equal(t, 4, ReadUnchanged.Channels())
	assert.False(t, ReadMode(42).Valid())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	writePNG(t, path, 8, 6)

	tests := []struct {
		mode     ReadMode
		channels int
	}{
		{ReadColor, 3},
		{ReadGrayscale, 1},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			mat, err := Read(path, tc.mode)
			require.NoError(t, err)
			defer mat.Close()
			assert.Equal(t, 6, mat.Rows())
			assert.Equal(t, 8, mat.Cols())
			assert.Equal(t, tc.channels, mat.Channels())
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.png"), ReadColor)
	assert.Error(t, err)
}

func TestReadUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(path, []byte("this is not an image"), 0o644))

	_, err := Read(path, ReadColor)
	assert.Error(t, err)
}

func TestReadURL(t *testing.T) {
	payload := encodePNG(t, 10, 5)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	mat, err := Read(server.URL+"/img.png", ReadColor)
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, 5, mat.Rows())
	assert.Equal(t, 10, mat.Cols())
}

func TestReadURLFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := Read(server.URL+"/gone.png", ReadColor)
	assert.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	writePNG(t, src, 12, 9)

	mat, err := Read(src, ReadColor)
	require.NoError(t, err)
	defer mat.Close()

	dst := filepath.Join(dir, "dst.png")
	require.NoError(t, Write(dst, mat))

	back, err := Read(dst, ReadColor)
	require.NoError(t, err)
	defer back.Close()

	want, err := mat.ToBytes()
	require.NoError(t, err)
	got, err := back.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, want, got, "png round trip should be lossless")
}

func TestWriteRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, Write(filepath.Join(t.TempDir(), "x.png"), empty))
}

func TestDecode(t *testing.T) {
	mat, err := Decode(encodePNG(t, 4, 4), ReadGrayscale)
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, 1, mat.Channels())

	_, err = Decode([]byte("junk"), ReadColor)
	assert.Error(t, err)
}

func TestBridgeRoundTrip(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			gray.SetGray(x, y, color.Gray{Y: uint8(40*x + y)})
		}
	}

	mat, err := FromImage(gray)
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, 1, mat.Channels())
	assert.Equal(t, 4, mat.Rows())
	assert.Equal(t, 6, mat.Cols())

	img, err := ToImage(mat)
	require.NoError(t, err)
	back, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, gray.Pix, back.Pix)
}

func TestValidate(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, Validate(empty))

	two := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC2)
	defer two.Close()
	assert.Error(t, Validate(two))

	wide := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV64F)
	defer wide.Close()
	assert.Error(t, Validate(wide))

	ok := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer ok.Close()
	assert.NoError(t, Validate(ok))
}
