package cards

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
)

type faceKey struct {
	role FontRole
	size float64
}

// Canvas is the image a single render draws on. It is owned by exactly one render and
// keeps its own font faces.
type Canvas struct {
	dc    *gg.Context
	fonts *FontSet
	faces map[faceKey]font.Face
}

// NewCanvas creates a canvas of size with background stretched to cover it.
func NewCanvas(background image.Image, size image.Point, fonts *FontSet) *Canvas {
	dc := gg.NewContext(size.X, size.Y)
	if background != nil {
		b := background.Bounds()
		if b.Dx() != size.X || b.Dy() != size.Y {
			background = imaging.Resize(background, size.X, size.Y, imaging.Lanczos)
		}
		dc.DrawImage(background, 0, 0)
	}
	return &Canvas{
		dc:    dc,
		fonts: fonts,
		faces: make(map[faceKey]font.Face),
	}
}

// Composite alpha-blends img over the canvas, resized to box when the box has a size.
func (c *Canvas) Composite(img image.Image, box Box) {
	if box.Sized() {
		b := img.Bounds()
		if b.Dx() != box.W || b.Dy() != box.H {
			img = imaging.Resize(img, box.W, box.H, imaging.Lanczos)
		}
	}
	c.dc.DrawImage(img, box.X, box.Y)
}

// Fill paints box with a solid color.
func (c *Canvas) Fill(box Box, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(box.X), float64(box.Y), float64(box.W), float64(box.H))
	c.dc.Fill()
}

func (c *Canvas) face(role FontRole, size float64) (font.Face, error) {
	key := faceKey{role, size}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	f, err := c.fonts.Font(role)
	if err != nil {
		return nil, err
	}
	face, err := f.NewFace(size)
	if err != nil {
		return nil, errors.Wrapf(err, "face for role %d size %v", role, size)
	}
	c.faces[key] = face
	return face, nil
}

// Text draws s at slot.
func (c *Canvas) Text(slot TextSlot, s string, col color.Color) error {
	return c.StrokedText(slot, s, col, 0, nil)
}

// StrokedText draws s at slot with an outline of strokeWidth pixels.
func (c *Canvas) StrokedText(slot TextSlot, s string, col color.Color, strokeWidth int, strokeColor color.Color) error {
	face, err := c.face(slot.Font, slot.Size)
	if err != nil {
		return err
	}
	c.dc.SetFontFace(face)

	if strokeWidth > 0 && strokeColor != nil {
		c.dc.SetColor(strokeColor)
		for dy := -strokeWidth; dy <= strokeWidth; dy++ {
			for dx := -strokeWidth; dx <= strokeWidth; dx++ {
				if dx*dx+dy*dy > strokeWidth*strokeWidth || (dx == 0 && dy == 0) {
					continue
				}
				c.dc.DrawStringAnchored(s, slot.X+float64(dx), slot.Y+float64(dy), slot.Anchor.AX, slot.Anchor.AY)
			}
		}
	}

	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, slot.X, slot.Y, slot.Anchor.AX, slot.Anchor.AY)
	return nil
}

// Image returns the canvas contents.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// Close releases the canvas font faces.
func (c *Canvas) Close() {
	for key, face := range c.faces {
		_ = face.Close()
		delete(c.faces, key)
	}
}
