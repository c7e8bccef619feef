// Package resourcetest builds throwaway game resource directories for tests.
package resourcetest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// SpriteSize is large enough to hold a full 4x4 digit sheet of 34x37 cells.
var SpriteSize = image.Pt(136, 148) //nolint:gochecknoglobals

// PNG encodes a solid w x h image.
func PNG(t testing.TB, w int, h int, c color.Color) []byte {
	t.Helper()
	img := imaging.New(w, h, c)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to dir/name, creating parent directories.
func WriteFile(t testing.TB, dir string, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// Populate writes a solid sprite for every name. The decoder sniffs content, so PNG data
// is fine behind a .webp name.
func Populate(t testing.TB, dir string, names []string) {
	t.Helper()
	sprite := PNG(t, SpriteSize.X, SpriteSize.Y, color.NRGBA{R: 40, G: 80, B: 160, A: 255})
	for _, name := range names {
		WriteFile(t, dir, name, sprite)
	}
}
