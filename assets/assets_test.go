package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedWeb(t *testing.T) {
	Configure(Config{})
	web, err := Web()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"index.html.p2", "static/style.css"} {
		if _, err := fs.Stat(web, name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := GameDefaults(); err != nil {
		t.Fatal(err)
	}
}

func TestConfigureFilesystem(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "games"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "games", "defaults.yml"), []byte("games: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	Configure(Config{UseFilesystem: true, Path: dir})
	t.Cleanup(func() { Configure(Config{}) })

	data, err := GameDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "games: {}\n" {
		t.Errorf("got %q", data)
	}
	if _, err := ReadFile("web/index.html.p2"); err == nil {
		t.Error("expected the embedded template to be hidden by the override")
	}
}
