// Command cvkit-build walks a directory tree of labeled images and builds a
// flat partitioned dataset from it.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"cvkit/dataset"
	"cvkit/imgio"
	"cvkit/internal/logger"
)

func main() {
	var (
		src     = flag.String("src", "", "source directory: one subdirectory per class label")
		dst     = flag.String("dst", "", "destination directory for labelmap and partition files (must be empty or absent)")
		mode    = flag.String("mode", "color", "decode mode: color, gray or unchanged")
		width   = flag.Int("width", 128, "target image width")
		height  = flag.Int("height", 128, "target image height")
		cap     = flag.Int("cap", 10000, "maximum number of samples per partition file")
		verbose = flag.Bool("v", false, "print progress lines")
	)
	flag.Parse()

	if *src == "" || *dst == "" {
		fmt.Fprintln(os.Stderr, "both -src and -dst are required")
		flag.Usage()
		os.Exit(2)
	}

	readMode, err := parseMode(*mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.Logger(logger.Silent())
	if *verbose {
		log = logger.NewConsoleLogger(zerolog.InfoLevel)
	}

	result, err := dataset.Build(dataset.Config{
		Source:       *src,
		Dest:         *dst,
		Mode:         readMode,
		Width:        *width,
		Height:       *height,
		PartitionCap: *cap,
		Logger:       log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("built %d samples (%d skipped) across %d partitions for %d labels\n",
		result.Samples, result.Skipped, result.Partitions, len(result.Labels))
}

func parseMode(s string) (imgio.ReadMode, error) {
	switch strings.ToLower(s) {
	case "color":
		return imgio.ReadColor, nil
	case "gray", "grayscale":
		return imgio.ReadGrayscale, nil
	case "unchanged":
		return imgio.ReadUnchanged, nil
	}
	return 0, fmt.Errorf("unknown decode mode %q (want color, gray or unchanged)", s)
}
