package cards

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontRole selects which of the card fonts draws a piece of text.
type FontRole int

const (
	// FontLevel draws the player level.
	FontLevel FontRole = iota
	// FontTitle draws names, titles and short labels, and must cover CJK.
	FontTitle
	// FontNumbers draws scores and ratings.
	FontNumbers
	fontRoleCount
)

// Default font file names inside the static directory.
//nolint:gochecknoglobals
var DefaultFontFiles = map[FontRole]string{
	FontLevel:   "meiryo.ttc",
	FontTitle:   "SourceHanSansSC-Bold.otf",
	FontNumbers: "Torus SemiBold.otf",
}

var (
	ErrFontMissing = errors.New("font role not loaded")
)

// Font is a parsed font that can produce faces at any size. glyf-outline fonts go through
// freetype; CFF outlines and collections need the sfnt parser.
type Font struct {
	tt *truetype.Font
	ot *opentype.Font
}

var collectionTag = []byte("ttcf")

// ParseFont parses a TrueType, OpenType or collection font. For collections the first font
// is used.
func ParseFont(data []byte) (*Font, error) {
	if bytes.HasPrefix(data, collectionTag) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "ParseFont: collection")
		}
		f, err := coll.Font(0)
		if err != nil {
			return nil, errors.Wrap(err, "ParseFont: collection member")
		}
		return &Font{ot: f}, nil
	}

	if tt, err := truetype.Parse(data); err == nil {
		return &Font{tt: tt}, nil
	}

	ot, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "ParseFont")
	}
	return &Font{ot: ot}, nil
}

// NewFace returns a face at size pixels. Faces are not safe for concurrent use.
func (f *Font) NewFace(size float64) (font.Face, error) {
	if f.tt != nil {
		return truetype.NewFace(f.tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
	}
	face, err := opentype.NewFace(f.ot, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, errors.Wrap(err, "NewFace")
	}
	return face, nil
}

// FontSet holds one parsed font per role. It is shared by all renders.
type FontSet struct {
	fonts [fontRoleCount]*Font
}

// NewFontSet parses the raw font files for each role.
func NewFontSet(files map[FontRole][]byte) (*FontSet, error) {
	fs := new(FontSet)
	for role := FontRole(0); role < fontRoleCount; role++ {
		data, ok := files[role]
		if !ok {
			return nil, errors.Wrapf(ErrFontMissing, "role %d", role)
		}
		f, err := ParseFont(data)
		if err != nil {
			return nil, errors.Wrapf(err, "NewFontSet: role %d", role)
		}
		fs.fonts[role] = f
	}
	return fs, nil
}

// LoadFontSet reads the default font files from dir.
func LoadFontSet(dir string) (*FontSet, error) {
	files := make(map[FontRole][]byte, len(DefaultFontFiles))
	for role, name := range DefaultFontFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "LoadFontSet: %s", name)
		}
		files[role] = data
	}
	return NewFontSet(files)
}

// Font returns the font for role.
func (fs *FontSet) Font(role FontRole) (*Font, error) {
	if role < 0 || role >= fontRoleCount || fs.fonts[role] == nil {
		return nil, errors.Wrapf(ErrFontMissing, "role %d", role)
	}
	return fs.fonts[role], nil
}
