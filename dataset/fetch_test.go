package dataset

import (
	"bytes"
	"fmt"
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
)

func catalogServer(t *testing.T, goodImages, badImages int) *httptest.Server {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 99, A: 255})
		}
	}
	var payload bytes.Buffer
	require.NoError(t, png.Encode(&payload, img))

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < goodImages; i++ {
			fmt.Fprintf(w, "%s/image/%d\n", server.URL, i)
		}
		for i := 0; i < badImages; i++ {
			fmt.Fprintf(w, "%s/broken/%d\n", server.URL, i)
		}
	})
	mux.HandleFunc("/image/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload.Bytes())
	})
	mux.HandleFunc("/broken/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not an image"))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchSavesDecodableImages(t *testing.T) {
	server := catalogServer(t, 3, 2)
	dst := t.TempDir()

	result, err := Fetch(FetchConfig{
		Dest:       dst,
		Synsets:    []string{"n001"},
		CatalogURL: server.URL + "/catalog?wnid=",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Saved["n001"])
	assert.Equal(t, 2, result.Skipped)

	// Five catalog urls pad sequence names to one digit.
	for i := 0; i < 3; i++ {
		assert.FileExists(t, filepath.Join(dst, "n001", fmt.Sprintf("%d.jpg", i)))
	}
}

func TestFetchHonorsLimit(t *testing.T) {
	server := catalogServer(t, 4, 0)
	dst := t.TempDir()

	result, err := Fetch(FetchConfig{
		Dest:       dst,
		Synsets:    []string{"n002"},
		Limit:      2,
		CatalogURL: server.URL + "/catalog?wnid=",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Saved["n002"])
	entries, err := os.ReadDir(filepath.Join(dst, "n002"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFetchUnreachableCatalog(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := Fetch(FetchConfig{
		Dest:       t.TempDir(),
		Synsets:    []string{"n003"},
		CatalogURL: server.URL + "/catalog?wnid=",
	})
	assert.Error(t, err)
}

func TestSplitURLList(t *testing.T) {
	urls := splitURLList("http://a/1\r\nhttp://a/2\n\n  \nhttp://a/3")
	assert.Equal(t, []string{"http://a/1", "http://a/2", "http://a/3"}, urls)
}
