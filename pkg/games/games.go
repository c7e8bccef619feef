// Package games wires each configured game's catalog, assets, renderer and refresher
// together. The API server and the CLI share one registry.
package games

import (
	"context"
	"encoding/json"
	"image"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/wrouesnel/ratingcard/pkg/assetstore"
	"github.com/wrouesnel/ratingcard/pkg/cards"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"github.com/wrouesnel/ratingcard/pkg/gameconfig"
	"github.com/wrouesnel/ratingcard/pkg/refresher"
	"go.uber.org/zap"
)

var (
	ErrUnknownGame   = errors.New("game is not configured")
	ErrNoRenderer    = errors.New("game has no card artwork")
	ErrInvalidRender = errors.New("render request could not be decoded")
)

// kind is a family of card artwork a configured game can use.
type kind struct {
	profile func() *cards.Profile
	render  func(ctx context.Context, r *cards.Renderer, body []byte) (image.Image, error)
}

//nolint:gochecknoglobals
var kinds = map[string]kind{
	"chunithm": {
		profile: cards.ChunithmProfile,
		render: func(ctx context.Context, r *cards.Renderer, body []byte) (image.Image, error) {
			var req cards.ChunithmRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, errors.Wrap(ErrInvalidRender, err.Error())
			}
			return cards.NewChunithmRenderer(r).Render(ctx, req.Data, req.Params)
		},
	},
	"ongeki": {
		profile: cards.OngekiProfile,
		render: func(ctx context.Context, r *cards.Renderer, body []byte) (image.Image, error) {
			var req cards.OngekiRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, errors.Wrap(ErrInvalidRender, err.Error())
			}
			return cards.NewOngekiRenderer(r).Render(ctx, req.Data, req.Params)
		},
	},
}

// Kinds returns the names of the supported card artwork families.
func Kinds() []string {
	names := lo.Keys(kinds)
	sort.Strings(names)
	return names
}

// Game is one configured game.
type Game struct {
	Name       string
	Definition gameconfig.GameDefinition
	Catalog    *catalog.Store
	Assets     *assetstore.Store
	Refresher  *refresher.Refresher
	renderer   *cards.Renderer
	render     func(ctx context.Context, r *cards.Renderer, body []byte) (image.Image, error)
}

// Renderer returns the card renderer.
func (g *Game) Renderer() *cards.Renderer {
	return g.renderer
}

// Render decodes a render request body and draws the card. The body should already have
// been checked against the request schema.
func (g *Game) Render(ctx context.Context, body []byte) (image.Image, error) {
	return g.render(ctx, g.renderer, body)
}

// Options are the shared collaborators every game is built with.
type Options struct {
	StaticDir string
	Fonts     *cards.FontSet
	// Client fetches avatars.
	Client *resty.Client
	// RefreshClient fetches catalogs and covers, possibly through a proxy.
	RefreshClient *resty.Client
}

// Registry holds every configured game.
type Registry struct {
	games map[string]*Game
	names []string
}

// New builds a game for every configured profile whose name has card artwork. Profiles
// without artwork are logged and left out. The catalog of each game is loaded if present.
func New(cfg *gameconfig.Config, opts Options) (*Registry, error) {
	logger := zap.L().With(zap.String("subsystem", "games"))
	registry := &Registry{games: make(map[string]*Game)}

	for _, name := range cfg.Names() {
		k, ok := kinds[name]
		if !ok {
			logger.Warn("Game has no card artwork, skipping", zap.String("game", name))
			continue
		}
		def := lo.Must(cfg.Game(name))
		dir, err := cfg.ResourcePath(opts.StaticDir, name)
		if err != nil {
			return nil, errors.Wrapf(err, "games.New: %s", name)
		}

		catalogStore := catalog.NewStore(dir)
		if _, err := catalogStore.Reload(); err != nil {
			logger.Warn("Catalog not loaded, starting empty", zap.String("game", name), zap.Error(err))
		}

		var avatarURL assetstore.AvatarURLFunc
		if def.AvatarURL.Template != nil {
			avatarURL = def.Avatar
		}
		assets := assetstore.New(name, dir, catalogStore, opts.Client, avatarURL)

		registry.games[name] = &Game{
			Name:       name,
			Definition: def,
			Catalog:    catalogStore,
			Assets:     assets,
			Refresher:  refresher.New(name, def, assets, catalogStore, opts.RefreshClient),
			renderer:   cards.NewRenderer(k.profile(), assets, opts.Fonts),
			render:     k.render,
		}
		registry.names = append(registry.names, name)
	}
	return registry, nil
}

// Game returns the named game.
func (r *Registry) Game(name string) (*Game, error) {
	g, ok := r.games[name]
	if !ok {
		return nil, errors.Wrap(ErrUnknownGame, name)
	}
	return g, nil
}

// Names returns the game names in sorted order.
func (r *Registry) Names() []string {
	return r.names
}

// All returns every game in name order.
func (r *Registry) All() []*Game {
	return lo.Map(r.names, func(name string, _ int) *Game { return r.games[name] })
}

// Watch reloads every game's catalog whenever its file changes, until ctx is done.
func (r *Registry) Watch(ctx context.Context) {
	logger := zap.L().With(zap.String("subsystem", "games"))
	for _, g := range r.All() {
		g := g
		go func() {
			if err := g.Catalog.Watch(ctx); err != nil {
				logger.Warn("Catalog watcher stopped", zap.String("game", g.Name), zap.Error(err))
			}
		}()
	}
}
