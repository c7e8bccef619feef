package cards

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

var (
	ErrRatingFormat = errors.New("rating cannot be drawn")
)

// RatingTiers are ascending upper bounds choosing the rating colour tier. A rating below
// Bounds[i] is tier i; anything at or above every bound is Fallback.
type RatingTiers struct {
	Bounds   []int
	Fallback int
}

// Index returns the tier for rating.
func (t RatingTiers) Index(rating int) int {
	for i, bound := range t.Bounds {
		if rating < bound {
			return i
		}
	}
	return t.Fallback
}

// FormatRating zero-pads rating to digits characters and inserts the decimal point after
// the second, so 1450 with 4 digits is "14.50" and 15234 with 5 digits is "15.234".
func FormatRating(rating int, digits int) string {
	s := fmt.Sprintf("%0*d", digits, rating)
	if len(s) < 2 {
		return s
	}
	return s[:2] + "." + s[2:]
}

// ratingGlyph is one digit sprite: a cell of the sprite sheet and where it goes.
type ratingGlyph struct {
	Cell int
	Box  Box
}

// ratingGlyphs maps a formatted rating to sprite placements. A leading '0' in the first
// position is not drawn.
func ratingGlyphs(formatted string, layout DigitLayout) ([]ratingGlyph, error) {
	glyphs := make([]ratingGlyph, 0, len(formatted))
	for n, ch := range []byte(formatted) {
		if n == 0 && ch == '0' {
			continue
		}
		if n == 2 {
			glyphs = append(glyphs, ratingGlyph{Cell: layout.PointCell, Box: layout.Point})
			continue
		}
		if ch < '0' || ch > '9' {
			return nil, errors.Wrapf(ErrRatingFormat, "unexpected %q in %q", ch, formatted)
		}
		digit := int(ch - '0')
		if n < 2 {
			box := layout.Large
			box.X += layout.LargeStep * n
			glyphs = append(glyphs, ratingGlyph{Cell: digit, Box: box})
			continue
		}
		box := layout.Small
		box.X += layout.SmallStep * n
		glyphs = append(glyphs, ratingGlyph{Cell: digit, Box: box})
	}
	return glyphs, nil
}

// sheetCell crops cell index out of a digit sprite sheet laid out in rows of SheetWidth.
func sheetCell(sheet image.Image, index int, layout DigitLayout) image.Image {
	w, h := layout.SheetCell.X, layout.SheetCell.Y
	col, row := index%layout.SheetWidth, index/layout.SheetWidth
	origin := sheet.Bounds().Min
	rect := image.Rect(w*col, h*row, w*(col+1), h*(row+1)).Add(origin)
	return imaging.Crop(sheet, rect)
}
