package calendar

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Canvas dimensions shared by all generated backgrounds. The height always
// leaves room for a six-row month so stamp positions never fall off the card.
const (
	canvasW = originX*2 + 7*cellW
	canvasH = originY + 6*cellH + 155
)

// TemplateStyle holds the colors used when generating calendar artwork.
type TemplateStyle struct {
	Background color.NRGBA
	Grid       color.NRGBA
	Text       color.NRGBA
	Accent     color.NRGBA
}

// DefaultTemplateStyle returns the stock card palette.
func DefaultTemplateStyle() TemplateStyle {
	return TemplateStyle{
		Background: color.NRGBA{R: 0xFF, G: 0xFD, B: 0xF7, A: 0xFF},
		Grid:       color.NRGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0xFF},
		Text:       color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xFF},
		Accent:     color.NRGBA{R: 0xE5, G: 0x51, B: 0x5A, A: 0xFF},
	}
}

// BaseFilename is the artwork filename Render expects for a month's background.
func BaseFilename(artworkKey string, year int, month time.Month) string {
	return fmt.Sprintf("calendar_base_%s_%04d_%02d.png", artworkKey, year, month)
}

// StampFilename is the artwork filename of a key-specific stamp mark.
func StampFilename(artworkKey string) string {
	return fmt.Sprintf("stamp_%s.png", artworkKey)
}

// DrawBase renders a blank monthly calendar background on the same grid
// geometry Render composites stamps onto: title, weekday header, cell grid
// and day numbers.
func DrawBase(year int, month time.Month, style TemplateStyle) (*image.NRGBA, error) {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("calendar: parse font: %w", err)
	}
	titleFace, err := newFace(parsed, 140)
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	labelFace, err := newFace(parsed, 48)
	if err != nil {
		return nil, err
	}
	defer labelFace.Close()
	dayFace, err := newFace(parsed, 56)
	if err != nil {
		return nil, err
	}
	defer dayFace.Close()

	img := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(img, img.Bounds(), image.NewUniform(style.Background), image.Point{}, draw.Src)

	title := fmt.Sprintf("%s %d", month.String(), year)
	drawCentered(img, titleFace, style.Text, title, canvasW/2, 220)

	labels := [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}
	for col, label := range labels {
		drawCentered(img, labelFace, style.Text, label, originX+col*cellW+cellW/2, originY-30)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	startCol := int(first.Weekday())
	lastDay := first.AddDate(0, 1, -1).Day()
	rows := (startCol + lastDay + 6) / 7

	for row := 0; row <= rows; row++ {
		y := originY + row*cellH
		fillRect(img, image.Rect(originX, y-1, originX+7*cellW, y+1), style.Grid)
	}
	for col := 0; col <= 7; col++ {
		x := originX + col*cellW
		fillRect(img, image.Rect(x-1, originY, x+1, originY+rows*cellH), style.Grid)
	}

	for day := 1; day <= lastDay; day++ {
		idx := startCol + day - 1
		x := originX + (idx%7)*cellW + 18
		y := originY + (idx/7)*cellH + 62
		drawText(img, dayFace, style.Text, strconv.Itoa(day), x, y)
	}
	return img, nil
}

// DrawStamp renders the stock stamp mark: a translucent disc with a solid
// ring, sized to the stamp slot and transparent outside the circle.
func DrawStamp(style TemplateStyle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, stampW, stampH))
	cx, cy := stampW/2, stampH/2
	outer := stampW/2 - 4
	inner := outer - 18

	fill := style.Accent
	fill.A = 190
	for y := 0; y < stampH; y++ {
		for x := 0; x < stampW; x++ {
			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy
			switch {
			case d2 <= inner*inner:
				img.SetNRGBA(x, y, fill)
			case d2 <= outer*outer:
				img.SetNRGBA(x, y, style.Accent)
			}
		}
	}
	return img
}

func newFace(parsed *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("calendar: create font face: %w", err)
	}
	return face, nil
}

func fillRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	draw.Draw(img, rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawText(img *image.NRGBA, face font.Face, c color.NRGBA, s string, x, baseline int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func drawCentered(img *image.NRGBA, face font.Face, c color.NRGBA, s string, centerX, baseline int) {
	width := font.MeasureString(face, s)
	drawText(img, face, c, s, centerX-width.Ceil()/2, baseline)
}
