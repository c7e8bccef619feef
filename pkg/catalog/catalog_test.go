package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const fixture = `{"songs": [
	{"title": "Xevel", "artist": "Junk", "imageName": "xevel.webp", "version": "CHUNITHM"},
	{"title": "Xevel", "artist": "Someone Else", "imageName": "xevel2.webp", "version": "AIR"},
	{"title": "Trrricksters!!", "artist": "EBIMAYO", "imageName": "tricks.webp", "version": "AIR", "extra": 1}
]}`

func writeFixture(t *testing.T, dir string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}

func TestStoreReload(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, fixture)

	store := NewStore(dir)
	if store.Snapshot().Len() != 0 {
		t.Fatalf("new store should start empty")
	}

	snap, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if snap.Len() != 3 {
		t.Errorf("Len = %d, want 3", snap.Len())
	}
	if snap.Version != 1 {
		t.Errorf("Version = %d, want 1", snap.Version)
	}

	song, ok := snap.Lookup("Xevel", "Someone Else")
	if !ok || song.ImageName != "xevel2.webp" {
		t.Errorf("Lookup = %+v, %v", song, ok)
	}
	if _, ok := snap.Lookup("Xevel", "Nobody"); ok {
		t.Errorf("Lookup matched on title alone")
	}

	versions := snap.Versions()
	if len(versions) != 2 || versions[0] != "CHUNITHM" || versions[1] != "AIR" {
		t.Errorf("Versions = %v", versions)
	}
}

func TestStoreReloadKeepsSnapshotOnError(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, fixture)
	store := NewStore(dir)
	before, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}

	writeFixture(t, dir, "{not json")
	if _, err := store.Reload(); err == nil {
		t.Fatalf("expected decode error")
	}
	if store.Snapshot() != before {
		t.Errorf("snapshot replaced after failed reload")
	}
}

func TestPublishDoesNotMutatePrevious(t *testing.T) {
	store := NewStore(t.TempDir())
	first := store.Publish([]Song{{Title: "A", Artist: "a"}})
	second := store.Publish([]Song{{Title: "B", Artist: "b"}})

	if first.Len() != 1 || first.Songs[0].Title != "A" {
		t.Errorf("first snapshot changed: %+v", first.Songs)
	}
	if second.Version <= first.Version {
		t.Errorf("versions not increasing: %d then %d", first.Version, second.Version)
	}
	if store.Snapshot() != second {
		t.Errorf("store does not serve the latest snapshot")
	}
}

func TestNilSnapshot(t *testing.T) {
	var snap *Snapshot
	if snap.Len() != 0 {
		t.Errorf("nil Len")
	}
	if _, ok := snap.Lookup("a", "b"); ok {
		t.Errorf("nil Lookup matched")
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	writeFixture(t, dir, fixture)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if store.Snapshot().Len() == 3 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("catalog not reloaded after change")
}
