package games

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/wrouesnel/ratingcard/pkg/cards"
	"github.com/wrouesnel/ratingcard/pkg/gameconfig"
	"github.com/wrouesnel/ratingcard/pkg/resourcetest"
	"golang.org/x/image/font/gofont/goregular"
)

const testConfig = `games:
  chunithm:
    resource_dir: chunithm
    catalog_url: http://127.0.0.1:1/chunithm/data.json
    cover_url: "http://127.0.0.1:1/chunithm/{{ image|safe }}"
  ongeki:
    resource_dir: ongeki
    catalog_url: http://127.0.0.1:1/ongeki/data.json
    cover_url: "http://127.0.0.1:1/ongeki/{{ image|safe }}"
  maimai:
    resource_dir: maimai
    catalog_url: http://127.0.0.1:1/maimai/data.json
    cover_url: "http://127.0.0.1:1/maimai/{{ image|safe }}"
`

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg, err := gameconfig.Load([]byte(testConfig))
	if err != nil {
		t.Fatal(err)
	}
	fonts, err := cards.NewFontSet(map[cards.FontRole][]byte{
		cards.FontLevel:   goregular.TTF,
		cards.FontTitle:   goregular.TTF,
		cards.FontNumbers: goregular.TTF,
	})
	if err != nil {
		t.Fatal(err)
	}

	staticDir := t.TempDir()
	resourcetest.Populate(t, staticDir+"/ongeki", cards.OngekiProfile().RequiredSprites())
	resourcetest.WriteFile(t, staticDir, "ongeki/data.json",
		[]byte(`{"songs":[{"title":"T","artist":"A","imageName":"t.webp","version":"SUMMER"}]}`))

	registry, err := New(cfg, Options{StaticDir: staticDir, Fonts: fonts})
	if err != nil {
		t.Fatal(err)
	}
	return registry
}

func TestRegistry(t *testing.T) {
	registry := newTestRegistry(t)

	names := registry.Names()
	if len(names) != 2 || names[0] != "chunithm" || names[1] != "ongeki" {
		t.Fatalf("names = %v", names)
	}
	if _, err := registry.Game("maimai"); !errors.Is(err, ErrUnknownGame) {
		t.Errorf("expected ErrUnknownGame for a game without artwork, got %v", err)
	}

	ongeki, err := registry.Game("ongeki")
	if err != nil {
		t.Fatal(err)
	}
	if ongeki.Catalog.Snapshot().Len() != 1 {
		t.Errorf("ongeki catalog not loaded")
	}
	chunithm, err := registry.Game("chunithm")
	if err != nil {
		t.Fatal(err)
	}
	if chunithm.Catalog.Snapshot().Len() != 0 {
		t.Errorf("chunithm catalog should start empty")
	}
}

func TestGameRender(t *testing.T) {
	ongeki, err := newTestRegistry(t).Game("ongeki")
	if err != nil {
		t.Fatal(err)
	}

	body := []byte(`{"data":{"user_name":"P","avatar":"x","level":1,"battle_point":0,"rating":1234,
		"calc_rating":0,"best_rating":0,"best_new_rating":0,"best_rating_list":[
		{"difficulty":10,"music":{"music_id":"1","name":"T","artist":"A"},"score":1,"rating":1,
		 "song_rating":1,"playlog":{"is_full_combo":false,"is_full_bell":false,"is_all_break":false,
		 "judge_miss":0,"judge_hit":0,"judge_break":0,"judge_critical_break":0,"tech_score_rank":3}}],
		"best_new_rating_list":[]}}`)
	img, err := ongeki.Render(context.Background(), body)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 1760 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}

	if _, err := ongeki.Render(context.Background(), []byte("{")); !errors.Is(err, ErrInvalidRender) {
		t.Errorf("expected ErrInvalidRender, got %v", err)
	}
}
