// Package refresher downloads a game's song catalog and any cover art missing from the
// local resource directory.
package refresher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/wrouesnel/ratingcard/pkg/assetstore"
	"github.com/wrouesnel/ratingcard/pkg/atomicfile"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"github.com/wrouesnel/ratingcard/pkg/gameconfig"
	"go.uber.org/zap"
)

const (
	// CoverTimeout bounds each cover download.
	CoverTimeout = 5 * time.Second
	// ProxyFile in the static directory holds an outbound proxy URL.
	ProxyFile = "PROXY"
	// LockFile in the resource directory serialises refreshes across processes.
	LockFile = ".refresh.lock"
)

var (
	ErrRefreshInProgress = errors.New("a refresh is already running")
	ErrCatalogFetch      = errors.New("catalog download failed")
	ErrCoverFetch        = errors.New("cover download failed")
)

// browserHeaders are sent with cover downloads. The CDN refuses bare clients.
//nolint:gochecknoglobals
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept": "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
}

// Result summarises one refresh run.
type Result struct {
	Game       string        `json:"game"`
	Songs      int           `json:"songs"`
	Downloaded int           `json:"downloaded"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Version    uint64        `json:"catalog_version"`
	Duration   time.Duration `json:"duration"`
}

// Refresher updates the resource directory of one game. Runs never overlap.
type Refresher struct {
	game         string
	definition   gameconfig.GameDefinition
	assets       *assetstore.Store
	catalog      *catalog.Store
	client       *resty.Client
	coverTimeout time.Duration
	mu           sync.Mutex
	logger       *zap.Logger
}

// New returns a refresher writing into assets' resource directory and publishing to
// catalogStore.
func New(game string, definition gameconfig.GameDefinition, assets *assetstore.Store,
	catalogStore *catalog.Store, client *resty.Client) *Refresher {
	return &Refresher{
		game:         game,
		definition:   definition,
		assets:       assets,
		catalog:      catalogStore,
		client:       client,
		coverTimeout: CoverTimeout,
		logger:       zap.L().With(zap.String("subsystem", "refresher"), zap.String("game", game)),
	}
}

// Game returns the game name.
func (r *Refresher) Game() string {
	return r.game
}

// Run performs a refresh. It returns ErrRefreshInProgress immediately when another run in
// this process is active, and waits for runs in other processes.
func (r *Refresher) Run(ctx context.Context) (*Result, error) {
	if !r.mu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(r.assets.Dir(), assetstore.CoverDir), os.FileMode(0o755)); err != nil {
		return nil, errors.Wrap(err, "Run: resource directory")
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(r.assets.Dir(), LockFile)).Lock()
	if err != nil {
		return nil, errors.Wrap(err, "Run: lock")
	}
	defer unlock()

	start := time.Now()
	result := &Result{Game: r.game}
	r.logger.Info("Refreshing catalog", zap.String("catalog_url", r.definition.CatalogURL))

	doc, err := r.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	result.Songs = len(doc.Songs)

	for _, song := range doc.Songs {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "Run: cancelled")
		}
		if r.assets.HasCover(song.ImageName) {
			result.Skipped++
			continue
		}
		if err := r.fetchCover(ctx, song.ImageName); err != nil {
			r.logger.Warn("Cover download failed", zap.String("image", song.ImageName), zap.Error(err))
			downloads.WithLabelValues(r.game, "failed").Inc()
			result.Failed++
			continue
		}
		downloads.WithLabelValues(r.game, "downloaded").Inc()
		result.Downloaded++
	}

	snapshot, err := r.catalog.Reload()
	if err != nil {
		return nil, errors.Wrap(err, "Run: reload")
	}
	result.Version = snapshot.Version
	result.Duration = time.Since(start)

	r.logger.Info("Refresh finished",
		zap.Int("songs", result.Songs),
		zap.Int("downloaded", result.Downloaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// fetchCatalog downloads the catalog, checks it decodes and replaces the local copy.
func (r *Refresher) fetchCatalog(ctx context.Context) (*catalog.Document, error) {
	resp, err := r.client.R().SetContext(ctx).Get(r.definition.CatalogURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetchCatalog")
	}
	if resp.IsError() {
		return nil, errors.Wrapf(ErrCatalogFetch, "%s returned %s", r.definition.CatalogURL, resp.Status())
	}

	doc, err := catalog.Decode(resp.Body())
	if err != nil {
		return nil, errors.Wrap(err, "fetchCatalog")
	}
	if err := atomicfile.Write(r.catalog.Path(), resp.Body(), os.FileMode(0o644)); err != nil {
		return nil, errors.Wrap(err, "fetchCatalog: write")
	}
	return doc, nil
}

func (r *Refresher) fetchCover(ctx context.Context, imageName string) error {
	path, err := r.assets.CoverPath(imageName)
	if err != nil {
		return err
	}
	url, err := r.definition.Cover(imageName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.coverTimeout)
	defer cancel()

	resp, err := r.client.R().SetContext(ctx).SetHeaders(browserHeaders).Get(url)
	if err != nil {
		return errors.Wrap(err, "fetchCover")
	}
	if resp.IsError() {
		return errors.Wrapf(ErrCoverFetch, "%s returned %s", url, resp.Status())
	}
	return atomicfile.Write(path, resp.Body(), os.FileMode(0o644))
}

// ResolveProxy returns the configured proxy, or the contents of the PROXY file in
// staticDir when none is configured. A missing file means no proxy.
func ResolveProxy(configured string, staticDir string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	data, err := os.ReadFile(filepath.Join(staticDir, ProxyFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "ResolveProxy")
	}
	return strings.TrimSpace(string(data)), nil
}

// NewClient returns the HTTP client used for catalog and cover downloads.
func NewClient(proxy string) *resty.Client {
	client := resty.New()
	if proxy != "" {
		client.SetProxy(proxy)
	}
	return client
}
