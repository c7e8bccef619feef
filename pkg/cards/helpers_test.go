package cards

import (
	"testing"

	"github.com/wrouesnel/ratingcard/pkg/assetstore"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"github.com/wrouesnel/ratingcard/pkg/resourcetest"
	"golang.org/x/image/font/gofont/goregular"
)

func testFonts(t *testing.T) *FontSet {
	t.Helper()
	fonts, err := NewFontSet(map[FontRole][]byte{
		FontLevel:   goregular.TTF,
		FontTitle:   goregular.TTF,
		FontNumbers: goregular.TTF,
	})
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	return fonts
}

// testRenderer builds a renderer over a resource directory holding every sprite the profile
// needs, one cover and the given catalog document.
func testRenderer(t *testing.T, profile *Profile, catalogJSON string) *Renderer {
	t.Helper()
	dir := t.TempDir()
	resourcetest.Populate(t, dir, profile.RequiredSprites())
	resourcetest.Populate(t, dir, []string{assetstore.CoverDir + "/known.webp"})
	if catalogJSON != "" {
		resourcetest.WriteFile(t, dir, catalog.FileName, []byte(catalogJSON))
	}

	catalogStore := catalog.NewStore(dir)
	if catalogJSON != "" {
		if _, err := catalogStore.Reload(); err != nil {
			t.Fatalf("catalog: %v", err)
		}
	}
	assets := assetstore.New(profile.Name, dir, catalogStore, nil, nil)
	return NewRenderer(profile, assets, testFonts(t))
}
