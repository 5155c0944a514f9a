package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"cvkit/imgio"
	"cvkit/internal/logger"
)

const fetchComponent = "CatalogFetcher"

// DefaultCatalogURL is the image catalog endpoint queried per synset id. It
// returns one image URL per line.
const DefaultCatalogURL = "http://image-net.org/api/text/imagenet.synset.geturls?wnid="

// FetchConfig drives a Fetch run.
type FetchConfig struct {
	// Dest receives one subdirectory per synset id.
	Dest string
	// Synsets lists the catalog synset ids to download.
	Synsets []string
	// Limit caps the number of images saved per synset. Zero or negative
	// means no cap.
	Limit int
	// CatalogURL overrides DefaultCatalogURL, mainly for tests.
	CatalogURL string
	// Progress shows a per-synset progress bar on stdout.
	Progress bool
	// Logger receives progress lines. Nil means silent.
	Logger logger.Logger
}

// FetchResult summarizes a Fetch run.
type FetchResult struct {
	// Saved maps each synset id to the number of images saved for it.
	Saved map[string]int
	// Skipped counts URLs whose download or decode failed.
	Skipped int
}

// Fetch downloads the images listed by a remote catalog for each synset id
// into Dest/<id>/<seq>.jpg. URLs that fail to download or decode are
// skipped and counted; a failure to reach the catalog itself is fatal for
// the run.
func Fetch(cfg FetchConfig) (*FetchResult, error) {
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = DefaultCatalogURL
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Silent()
	}

	result := &FetchResult{Saved: make(map[string]int, len(cfg.Synsets))}
	for _, synset := range cfg.Synsets {
		dir := filepath.Join(cfg.Dest, synset)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create synset directory %q", dir)
		}

		body, err := imgio.FetchBytes(cfg.CatalogURL + synset)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to fetch url list for synset %q", synset)
		}
		urls := splitURLList(string(body))
		log.Info(fetchComponent, "fetched url list", map[string]interface{}{
			"synset": synset,
			"urls":   len(urls),
		})

		var bar *progressbar.ProgressBar
		if cfg.Progress {
			bar = progressbar.Default(int64(len(urls)), "synset "+synset)
		}

		// Sequential file names are padded to the digit width of the
		// url-list length.
		pad := len(strconv.Itoa(len(urls)))
		saved := 0
		for _, url := range urls {
			if bar != nil {
				_ = bar.Add(1)
			}
			data, err := imgio.FetchBytes(url)
			if err != nil {
				result.Skipped++
				log.Debug(fetchComponent, "skipping url", map[string]interface{}{
					"url":    url,
					"reason": err.Error(),
				})
				continue
			}
			mat, err := imgio.Decode(data, imgio.ReadUnchanged)
			if err != nil {
				result.Skipped++
				log.Debug(fetchComponent, "skipping undecodable url", map[string]interface{}{
					"url": url,
				})
				continue
			}
			name := fmt.Sprintf("%0*d.jpg", pad, saved)
			err = imgio.Write(filepath.Join(dir, name), mat)
			mat.Close()
			if err != nil {
				result.Skipped++
				continue
			}
			saved++
			if cfg.Limit > 0 && saved >= cfg.Limit {
				break
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
		result.Saved[synset] = saved
		log.Info(fetchComponent, "synset complete", map[string]interface{}{
			"synset": synset,
			"saved":  saved,
		})
	}
	return result, nil
}

func splitURLList(body string) []string {
	var urls []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls
}
