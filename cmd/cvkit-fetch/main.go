// Command cvkit-fetch downloads the images of remote catalog synsets into a
// directory tree suitable for cvkit-build.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"cvkit/dataset"
	"cvkit/internal/logger"
)

func main() {
	var (
		dst     = flag.String("dst", "", "destination directory for downloaded images")
		synsets = flag.String("synsets", "", "comma-separated list of synset ids to download")
		limit   = flag.Int("limit", 0, "maximum images per synset, 0 for no cap")
		catalog = flag.String("catalog", dataset.DefaultCatalogURL, "catalog endpoint queried per synset id")
		verbose = flag.Bool("v", false, "print progress lines and a progress bar")
	)
	flag.Parse()

	ids := splitList(*synsets)
	if *dst == "" || len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "both -dst and -synsets are required")
		flag.Usage()
		os.Exit(2)
	}

	log := logger.Logger(logger.Silent())
	if *verbose {
		log = logger.NewConsoleLogger(zerolog.InfoLevel)
	}

	result, err := dataset.Fetch(dataset.FetchConfig{
		Dest:       *dst,
		Synsets:    ids,
		Limit:      *limit,
		CatalogURL: *catalog,
		Progress:   *verbose,
		Logger:     log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	total := 0
	for _, n := range result.Saved {
		total += n
	}
	fmt.Printf("saved %d images across %d synsets (%d urls skipped)\n",
		total, len(result.Saved), result.Skipped)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
