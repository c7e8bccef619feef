package refresher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/wrouesnel/ratingcard/pkg/assetstore"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"github.com/wrouesnel/ratingcard/pkg/gameconfig"
	"github.com/wrouesnel/ratingcard/pkg/resourcetest"
)

const testCatalog = `{"songs":[
	{"title":"Cached","artist":"A","imageName":"cached.webp","version":"SUMMER"},
	{"title":"Fresh","artist":"B","imageName":"fresh.webp","version":"SUMMER"},
	{"title":"Gone","artist":"C","imageName":"gone.webp","version":"SUMMER"},
	{"title":"Slow","artist":"D","imageName":"slow.webp","version":"SUMMER"},
	{"title":"Sneaky","artist":"E","imageName":"../escape.webp","version":"SUMMER"}
]}`

type fixture struct {
	refresher *Refresher
	catalog   *catalog.Store
	dir       string
	hits      *int64
	userAgent *atomic.Value
}

func newFixture(t *testing.T, catalogBody string) *fixture {
	t.Helper()
	var hits int64
	var userAgent atomic.Value

	mux := http.NewServeMux()
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		if catalogBody == "" {
			http.Error(w, "nope", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(catalogBody))
	})
	mux.HandleFunc("/covers/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		userAgent.Store(r.Header.Get("User-Agent"))
		switch filepath.Base(r.URL.Path) {
		case "fresh.webp", "cached.webp":
			_, _ = w.Write([]byte("image bytes"))
		case "slow.webp":
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	defaults := []byte(`games:
  test:
    resource_dir: test
    catalog_url: ` + srv.URL + `/data.json
    cover_url: "` + srv.URL + `/covers/{{ image|safe }}"
`)
	cfg, err := gameconfig.Load(defaults)
	if err != nil {
		t.Fatal(err)
	}
	def, err := cfg.Game("test")
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	resourcetest.WriteFile(t, dir, assetstore.CoverDir+"/cached.webp", []byte("already here"))
	catalogStore := catalog.NewStore(dir)
	assets := assetstore.New("test", dir, catalogStore, nil, nil)

	r := New("test", def, assets, catalogStore, NewClient(""))
	r.coverTimeout = 200 * time.Millisecond
	return &fixture{refresher: r, catalog: catalogStore, dir: dir, hits: &hits, userAgent: &userAgent}
}

func TestRun(t *testing.T) {
	f := newFixture(t, testCatalog)

	result, err := f.refresher.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Songs != 5 || result.Skipped != 1 || result.Downloaded != 1 || result.Failed != 3 {
		t.Errorf("result = %+v", result)
	}

	if _, err := os.Stat(filepath.Join(f.dir, assetstore.CoverDir, "fresh.webp")); err != nil {
		t.Errorf("fresh cover not written: %v", err)
	}
	for _, name := range []string{"gone.webp", "slow.webp"} {
		if _, err := os.Stat(filepath.Join(f.dir, assetstore.CoverDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(f.dir, "escape.webp")); !os.IsNotExist(err) {
		t.Errorf("escaping name was written")
	}
	if got := atomic.LoadInt64(f.hits); got != 3 {
		t.Errorf("cover requests = %d, want 3", got)
	}
	if ua, _ := f.userAgent.Load().(string); ua != browserHeaders["User-Agent"] {
		t.Errorf("user agent = %q", ua)
	}

	snapshot := f.catalog.Snapshot()
	if snapshot.Len() != 5 || snapshot.Version != result.Version {
		t.Errorf("snapshot len %d version %d, result version %d", snapshot.Len(), snapshot.Version, result.Version)
	}
	if _, ok := snapshot.Lookup("Fresh", "B"); !ok {
		t.Errorf("published snapshot is missing Fresh")
	}
}

func TestRunCatalogFailureKeepsSnapshot(t *testing.T) {
	f := newFixture(t, "")
	before := f.catalog.Snapshot()

	if _, err := f.refresher.Run(context.Background()); !errors.Is(err, ErrCatalogFetch) {
		t.Fatalf("expected ErrCatalogFetch, got %v", err)
	}
	if f.catalog.Snapshot() != before {
		t.Errorf("snapshot replaced after a failed refresh")
	}
	if _, err := os.Stat(f.catalog.Path()); !os.IsNotExist(err) {
		t.Errorf("catalog file written after a failed refresh")
	}
}

func TestRunRejectsUndecodableCatalog(t *testing.T) {
	f := newFixture(t, "{not json")
	if _, err := f.refresher.Run(context.Background()); !errors.Is(err, catalog.ErrCatalogDecode) {
		t.Fatalf("expected ErrCatalogDecode, got %v", err)
	}
}

func TestRunInProgress(t *testing.T) {
	f := newFixture(t, testCatalog)
	f.refresher.mu.Lock()
	defer f.refresher.mu.Unlock()

	if _, err := f.refresher.Run(context.Background()); !errors.Is(err, ErrRefreshInProgress) {
		t.Fatalf("expected ErrRefreshInProgress, got %v", err)
	}
}

func TestResolveProxy(t *testing.T) {
	dir := t.TempDir()

	proxy, err := ResolveProxy("", dir)
	if err != nil || proxy != "" {
		t.Fatalf("no proxy file: %q, %v", proxy, err)
	}

	resourcetest.WriteFile(t, dir, ProxyFile, []byte("http://127.0.0.1:3128\n"))
	proxy, err = ResolveProxy("", dir)
	if err != nil || proxy != "http://127.0.0.1:3128" {
		t.Fatalf("proxy file: %q, %v", proxy, err)
	}

	proxy, err = ResolveProxy("socks5://example:1080", dir)
	if err != nil || proxy != "socks5://example:1080" {
		t.Fatalf("configured proxy: %q, %v", proxy, err)
	}
}
