package calendar

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"
	"time"
)

func TestDrawBaseGeometry(t *testing.T) {
	t.Parallel()

	style := DefaultTemplateStyle()
	img, err := DrawBase(2024, time.June, style)
	if err != nil {
		t.Fatalf("draw base: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != canvasW || bounds.Dy() != canvasH {
		t.Fatalf("unexpected canvas size %dx%d", bounds.Dx(), bounds.Dy())
	}

	// Top-left corner stays background colored.
	if got := img.NRGBAAt(5, 5); got != style.Background {
		t.Fatalf("expected background at corner, got %v", got)
	}

	// Grid borders surround the day cells.
	if got := img.NRGBAAt(originX, originY); got != style.Grid {
		t.Fatalf("expected grid line at origin, got %v", got)
	}
	// June 2024 starts on a Saturday and spans six rows.
	if got := img.NRGBAAt(originX+7*cellW, originY+6*cellH); got != style.Grid {
		t.Fatalf("expected grid line at bottom-right cell corner, got %v", got)
	}
}

func TestDrawStampShape(t *testing.T) {
	t.Parallel()

	style := DefaultTemplateStyle()
	img := DrawStamp(style)

	if img.Bounds().Dx() != stampW || img.Bounds().Dy() != stampH {
		t.Fatalf("unexpected stamp size %v", img.Bounds())
	}
	if got := img.NRGBAAt(stampW/2, stampH/2); got.A == 0 {
		t.Fatal("expected opaque stamp center")
	}
	if got := img.NRGBAAt(0, 0); got.A != 0 {
		t.Fatalf("expected transparent corner, got %v", got)
	}
	if got := img.NRGBAAt(stampW/2, 6); got != style.Accent {
		t.Fatalf("expected solid ring at top edge, got %v", got)
	}
}

func TestGeneratedArtworkRendersCard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	style := DefaultTemplateStyle()

	base, err := DrawBase(2024, time.June, style)
	if err != nil {
		t.Fatalf("draw base: %v", err)
	}
	writePNG(t, filepath.Join(dir, BaseFilename("default", 2024, time.June)), base)
	writePNG(t, filepath.Join(dir, "stamp.png"), DrawStamp(style))

	var buf bytes.Buffer
	today := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	days := []time.Time{time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)}
	if err := NewRenderer(dir).Render(&buf, "default", today, days); err != nil {
		t.Fatalf("render: %v", err)
	}

	card, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode rendered card: %v", err)
	}

	// The translucent stamp fill must have blended over the background in
	// the awarded day's cell.
	pos := DayPositions(2024, time.June)[10]
	r, g, b, _ := card.At(pos.X+stampW/2, pos.Y+stampH/2).RGBA()
	bg := style.Background
	if r>>8 == uint32(bg.R) && g>>8 == uint32(bg.G) && b>>8 == uint32(bg.B) {
		t.Fatal("expected stamp to alter the awarded day's cell")
	}
}
