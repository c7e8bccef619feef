package assetstore

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"github.com/wrouesnel/ratingcard/pkg/resourcetest"
)

var fallbackColor = color.NRGBA{R: 1, G: 2, B: 3, A: 255}

func newTestStore(t *testing.T, avatarServer *httptest.Server) *Store {
	t.Helper()
	dir := t.TempDir()
	resourcetest.WriteFile(t, dir, FallbackImage, resourcetest.PNG(t, 4, 4, fallbackColor))
	resourcetest.WriteFile(t, dir, "cover_ori/known.webp", resourcetest.PNG(t, 10, 12, color.White))
	resourcetest.WriteFile(t, dir, "cover_ori/corrupt.webp", []byte("not an image"))
	resourcetest.WriteFile(t, dir, catalog.FileName,
		[]byte(`{"songs":[{"title":"Known","artist":"A","imageName":"known.webp","version":"SUMMER"}]}`))

	catalogStore := catalog.NewStore(dir)
	if _, err := catalogStore.Reload(); err != nil {
		t.Fatalf("catalog reload: %v", err)
	}

	if avatarServer == nil {
		return New("test", dir, catalogStore, nil, nil)
	}
	return New("test", dir, catalogStore, resty.New(), func(avatar string) (string, error) {
		return avatarServer.URL + "/" + avatar + ".webp", nil
	})
}

func TestCover(t *testing.T) {
	s := newTestStore(t, nil)

	cases := []struct {
		name      string
		wantWidth int
	}{
		{"known.webp", 10},
		{"missing.webp", 4},
		{"corrupt.webp", 4},
		{"../catalog.json", 4},
		{"", 4},
	}
	for _, c := range cases {
		img, err := s.Cover(c.name)
		if err != nil {
			t.Fatalf("Cover(%q): %v", c.name, err)
		}
		if got := img.Bounds().Dx(); got != c.wantWidth {
			t.Errorf("Cover(%q) width = %d, want %d", c.name, got, c.wantWidth)
		}
	}
}

func TestCoverFallbackMissing(t *testing.T) {
	s := newTestStore(t, nil)
	if err := os.Remove(filepath.Join(s.Dir(), FallbackImage)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Cover("missing.webp"); err == nil {
		t.Fatalf("expected error when the fallback itself is missing")
	}
}

func TestCoverFor(t *testing.T) {
	s := newTestStore(t, nil)

	img, song, ok, err := s.CoverFor("Known", "A")
	if err != nil || !ok {
		t.Fatalf("CoverFor(Known) = %v, %v", ok, err)
	}
	if song.Version != "SUMMER" || img.Bounds().Dx() != 10 {
		t.Errorf("CoverFor(Known) = %+v, width %d", song, img.Bounds().Dx())
	}

	img, _, ok, err = s.CoverFor("Known", "B")
	if err != nil || ok {
		t.Fatalf("CoverFor(unknown artist) = %v, %v", ok, err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("unknown song should use the fallback")
	}
}

func TestHasCover(t *testing.T) {
	s := newTestStore(t, nil)
	if !s.HasCover("known.webp") {
		t.Errorf("HasCover(known) = false")
	}
	if s.HasCover("missing.webp") || s.HasCover("../data.json") {
		t.Errorf("HasCover reported a missing or escaping file")
	}
}

func TestScaledCaches(t *testing.T) {
	s := newTestStore(t, nil)
	first, err := s.Scaled("cover_ori/known.webp", 20, 30)
	if err != nil {
		t.Fatalf("Scaled: %v", err)
	}
	if b := first.Bounds(); b.Dx() != 20 || b.Dy() != 30 {
		t.Errorf("Scaled size = %v", b)
	}
	second, err := s.Scaled("cover_ori/known.webp", 20, 30)
	if err != nil {
		t.Fatalf("Scaled: %v", err)
	}
	if first != second {
		t.Errorf("Scaled did not reuse the cached sprite")
	}
	if _, err := s.Sprite("nope.png"); err == nil {
		t.Errorf("expected error for a missing sprite")
	}
}

func TestAvatar(t *testing.T) {
	avatarPNG := resourcetest.PNG(t, 7, 7, color.White)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.webp":
			_, _ = w.Write(avatarPNG)
		case "/garbage.webp":
			_, _ = w.Write([]byte("<html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := newTestStore(t, server)
	cases := map[string]int{
		"ok":      7,
		"garbage": 4,
		"missing": 4,
	}
	for avatar, want := range cases {
		img, err := s.Avatar(context.Background(), avatar)
		if err != nil {
			t.Fatalf("Avatar(%q): %v", avatar, err)
		}
		if got := img.Bounds().Dx(); got != want {
			t.Errorf("Avatar(%q) width = %d, want %d", avatar, got, want)
		}
	}
}

func TestAvatarWithoutSource(t *testing.T) {
	s := newTestStore(t, nil)
	img, err := s.Avatar(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Avatar: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("expected fallback avatar")
	}
}
