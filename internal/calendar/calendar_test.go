package calendar

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newArtworkDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}
	writePNG(t, filepath.Join(dir, "calendar_base_default_2024_06.png"), solid(2400, 2000, white))
	writePNG(t, filepath.Join(dir, "stamp.png"), solid(100, 100, red))
	return dir
}

func TestDayPositions(t *testing.T) {
	t.Parallel()

	// June 2024 starts on a Saturday, so day 1 sits in the last column of
	// the first row.
	positions := DayPositions(2024, time.June)
	if len(positions) != 30 {
		t.Fatalf("expected 30 days, got %d", len(positions))
	}

	first := positions[1]
	if first.X != originX+6*cellW+(cellW-stampW)/2 {
		t.Fatalf("day 1 x = %d", first.X)
	}
	if first.Y != originY+(cellH-stampH)/2 {
		t.Fatalf("day 1 y = %d", first.Y)
	}

	// Day 2 wraps to the Sunday column of the second row.
	second := positions[2]
	if second.X != originX+(cellW-stampW)/2 || second.Y != originY+cellH+(cellH-stampH)/2 {
		t.Fatalf("day 2 at %v", second)
	}
}

func TestRenderStampsAwardedDays(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(newArtworkDir(t))
	today := time.Date(2024, time.June, 15, 12, 0, 0, 0, jst)
	days := []time.Time{
		time.Date(2024, time.June, 10, 0, 0, 0, 0, jst),
		time.Date(2024, time.May, 10, 0, 0, 0, 0, jst), // outside the month, ignored
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, "default", today, days); err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	positions := DayPositions(2024, time.June)
	stamped := positions[10]
	r, g, b, _ := img.At(stamped.X+stampW/2, stamped.Y+stampH/2).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Fatalf("expected stamp pixel at day 10, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}

	unstamped := positions[11]
	r, g, b, _ = img.At(unstamped.X+stampW/2, unstamped.Y+stampH/2).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Fatalf("expected background pixel at day 11, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestRenderPrefersKeySpecificStamp(t *testing.T) {
	t.Parallel()

	dir := newArtworkDir(t)
	blue := color.RGBA{0, 0, 255, 255}
	writePNG(t, filepath.Join(dir, "stamp_default.png"), solid(stampW, stampH, blue))

	renderer := NewRenderer(dir)
	today := time.Date(2024, time.June, 15, 12, 0, 0, 0, jst)
	days := []time.Time{time.Date(2024, time.June, 10, 0, 0, 0, 0, jst)}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, "default", today, days); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	stamped := DayPositions(2024, time.June)[10]
	_, _, b, _ := img.At(stamped.X+stampW/2, stamped.Y+stampH/2).RGBA()
	if b>>8 != 255 {
		t.Fatalf("expected key-specific stamp to win, blue=%d", b>>8)
	}
}

func TestRenderMissingBackground(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(newArtworkDir(t))
	today := time.Date(2024, time.July, 1, 12, 0, 0, 0, jst)

	var buf bytes.Buffer
	if err := renderer.Render(&buf, "default", today, nil); err == nil {
		t.Fatal("expected error for missing July background")
	}
}
