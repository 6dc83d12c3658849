// genartwork generates the calendar artwork the stamp card renderer reads:
// a monthly background PNG and the shared stamp mark.
//
// Usage:
//
//	go run ./tools/genartwork -out artwork -key default
//	go run ./tools/genartwork -out artwork -year 2024 -month 7
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/example/stampcard/internal/calendar"
)

func main() {
	now := time.Now()
	outDir := flag.String("out", "artwork", "Output directory for the generated PNG files")
	key := flag.String("key", "default", "Artwork key used in the background filename")
	year := flag.Int("year", now.Year(), "Calendar year")
	month := flag.Int("month", int(now.Month()), "Calendar month (1-12)")
	flag.Parse()

	if *month < 1 || *month > 12 {
		fmt.Fprintf(os.Stderr, "error: month must be 1-12, got %d\n", *month)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: create output directory: %v\n", err)
		os.Exit(1)
	}

	style := calendar.DefaultTemplateStyle()

	base, err := calendar.DrawBase(*year, time.Month(*month), style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: draw background: %v\n", err)
		os.Exit(1)
	}
	basePath := filepath.Join(*outDir, calendar.BaseFilename(*key, *year, time.Month(*month)))
	if err := writePNG(basePath, base); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", basePath)

	stampPath := filepath.Join(*outDir, "stamp.png")
	if err := writePNG(stampPath, calendar.DrawStamp(style)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", stampPath)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
