// Package calendar renders a member's monthly stamp card by compositing
// stamp marks onto a pre-drawn calendar background.
package calendar

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Grid geometry of the calendar backgrounds. Backgrounds place the first
// week's row of cells at the origin, Sunday in the leftmost column.
const (
	originX = 155
	originY = 395
	cellW   = 320
	cellH   = 265
	stampW  = 250
	stampH  = 250
)

// DayPositions returns the top-left stamp coordinates for each day of the
// given month, keyed by day of month.
func DayPositions(year int, month time.Month) map[int]image.Point {
	offsetX := (cellW - stampW) / 2
	offsetY := (cellH - stampH) / 2

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	startCol := int(first.Weekday())
	lastDay := first.AddDate(0, 1, -1).Day()

	positions := make(map[int]image.Point, lastDay)
	for day := 1; day <= lastDay; day++ {
		idx := startCol + day - 1
		row, col := idx/7, idx%7
		positions[day] = image.Point{
			X: originX + col*cellW + offsetX,
			Y: originY + row*cellH + offsetY,
		}
	}
	return positions
}

// Renderer composites stamp cards from artwork stored on disk.
type Renderer struct {
	dir string
}

// NewRenderer returns a Renderer reading artwork from dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render writes the PNG stamp card for the month containing today. Days
// outside that month are ignored. A missing background or stamp image is
// surfaced as an error rather than an empty card.
func (r *Renderer) Render(w io.Writer, artworkKey string, today time.Time, days []time.Time) error {
	year, month := today.Year(), today.Month()

	base, err := r.loadImage(BaseFilename(artworkKey, year, month))
	if err != nil {
		return fmt.Errorf("calendar: load background: %w", err)
	}
	stamp, err := r.loadStamp(artworkKey)
	if err != nil {
		return fmt.Errorf("calendar: load stamp: %w", err)
	}

	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	positions := DayPositions(year, month)
	for _, day := range days {
		if day.Year() != year || day.Month() != month {
			continue
		}
		pos, ok := positions[day.Day()]
		if !ok {
			continue
		}
		rect := image.Rect(pos.X, pos.Y, pos.X+stampW, pos.Y+stampH)
		draw.Draw(canvas, rect, stamp, stamp.Bounds().Min, draw.Over)
	}

	if err := png.Encode(w, canvas); err != nil {
		return fmt.Errorf("calendar: encode: %w", err)
	}
	return nil
}

// loadStamp loads the key-specific stamp mark, falling back to the shared
// stamp.png, scaled to the cell's stamp size.
func (r *Renderer) loadStamp(artworkKey string) (image.Image, error) {
	stamp, err := r.loadImage(StampFilename(artworkKey))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		stamp, err = r.loadImage("stamp.png")
		if err != nil {
			return nil, err
		}
	}

	bounds := stamp.Bounds()
	if bounds.Dx() == stampW && bounds.Dy() == stampH {
		return stamp, nil
	}
	scaled := image.NewRGBA(image.Rect(0, 0, stampW, stampH))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), stamp, bounds, xdraw.Over, nil)
	return scaled, nil
}

func (r *Renderer) loadImage(name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}
