package entrypoint

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kong"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	api "github.com/wrouesnel/ratingcard/api/v1"
	"github.com/wrouesnel/ratingcard/assets"
	"github.com/wrouesnel/ratingcard/pkg/atomicfile"
	"github.com/wrouesnel/ratingcard/pkg/cards"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"github.com/wrouesnel/ratingcard/pkg/gameconfig"
	"github.com/wrouesnel/ratingcard/pkg/games"
	"github.com/wrouesnel/ratingcard/pkg/refresher"
	"github.com/wrouesnel/ratingcard/pkg/server"
	"go.uber.org/zap"
)

var (
	ErrCommandNotImplemented = errors.New("Command not implemented")
	ErrResourcesMissing      = errors.New("resources are missing")
)

// loadRegistry builds every configured game. Fonts are only loaded when the command draws
// cards.
func loadRegistry(opts Options, withFonts bool) (*games.Registry, error) {
	defaults, err := assets.GameDefaults()
	if err != nil {
		return nil, err
	}
	cfg, err := gameconfig.LoadDir(defaults, opts.GamesDir)
	if err != nil {
		return nil, errors.Wrap(err, "game profiles")
	}

	var fonts *cards.FontSet
	if withFonts {
		fonts, err = cards.LoadFontSet(lo.Ternary(opts.FontDir != "", opts.FontDir, opts.StaticDir))
		if err != nil {
			return nil, err
		}
	}

	proxy, err := refresher.ResolveProxy(opts.Proxy, opts.StaticDir)
	if err != nil {
		return nil, err
	}
	if proxy != "" {
		zap.L().Info("Using proxy for refreshes", zap.String("proxy", proxy))
	}

	return games.New(cfg, games.Options{
		StaticDir:     opts.StaticDir,
		Fonts:         fonts,
		Client:        resty.New().SetTimeout(opts.AvatarTimeout),
		RefreshClient: refresher.NewClient(proxy),
	})
}

func dispatchCommands(ctx *kong.Context, cli *CLI, appCtx context.Context, stdOut io.Writer) error {
	var err error
	logger := zap.L().With(zap.String("command", ctx.Command()))

	switch ctx.Command() {
	case "api":
		var registry *games.Registry
		if registry, err = loadRegistry(cli.Options, true); err == nil {
			err = server.Api(appCtx, cli.Api, cli.Assets, registry)
		}

	case "refresh <game>":
		err = refreshCommand(appCtx, cli.Options, cli.Refresh.Game, stdOut)

	case "render <game> <input> <output>":
		err = renderCommand(appCtx, cli.Options, cli.Render.Game, cli.Render.Input, cli.Render.Output)

	case "debug assets list":
		err = fs.WalkDir(assets.Assets(), ".", func(path string, d fs.DirEntry, err error) error {
			_, _ = fmt.Fprintf(stdOut, "%s\n", path)
			return nil
		})

	case "debug assets cat <filename>":
		var content []byte
		if content, err = assets.ReadFile(cli.Debug.Assets.Cat.Filename); err == nil {
			_, _ = stdOut.Write(content)
		} else {
			logger.Error("Error reading embedded file", zap.Error(err))
		}

	case "debug catalog list <game>":
		err = catalogListCommand(cli.Options, cli.Debug.Catalog.List.Game, stdOut)

	case "debug resources check <game>":
		err = resourcesCheckCommand(cli.Options, cli.Debug.Resources.Check.Game, stdOut)

	default:
		err = ErrCommandNotImplemented
		logger.Error("Command not implemented")
	}

	if err != nil {
		return errors.Wrap(err, ctx.Command())
	}
	return nil
}

func refreshCommand(ctx context.Context, opts Options, name string, stdOut io.Writer) error {
	registry, err := loadRegistry(opts, false)
	if err != nil {
		return err
	}
	game, err := registry.Game(name)
	if err != nil {
		return err
	}
	result, err := game.Refresher.Run(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdOut, "%s: %d songs, %d downloaded, %d cached, %d failed (catalog #%d, %s)\n",
		result.Game, result.Songs, result.Downloaded, result.Skipped, result.Failed, result.Version, result.Duration)
	return nil
}

func renderCommand(ctx context.Context, opts Options, name string, input string, output string) error {
	body, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(err, "reading request")
	}
	validator, err := api.NewValidator()
	if err != nil {
		return err
	}
	if err := validator.Validate(name, body); err != nil {
		return err
	}

	registry, err := loadRegistry(opts, true)
	if err != nil {
		return err
	}
	game, err := registry.Game(name)
	if err != nil {
		return err
	}
	img, err := game.Render(ctx, body)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := cards.EncodeJPEG(&buf, img); err != nil {
		return err
	}
	return atomicfile.Write(output, buf.Bytes(), os.FileMode(0o644))
}

func catalogListCommand(opts Options, name string, stdOut io.Writer) error {
	registry, err := loadRegistry(opts, false)
	if err != nil {
		return err
	}
	game, err := registry.Game(name)
	if err != nil {
		return err
	}

	snapshot := game.Catalog.Snapshot()
	rows := lo.Map(snapshot.Songs, func(song catalog.Song, _ int) []string {
		return []string{
			song.Title,
			song.Artist,
			song.Version,
			song.ImageName,
			lo.Ternary(game.Assets.HasCover(song.ImageName), "yes", "no"),
		}
	})
	writeTable(stdOut, []column{
		{title: "Title", width: 40},
		{title: "Artist", width: 30},
		{title: "Version", width: 16},
		{title: "Image", width: 24},
		{title: "Cached", width: 6},
	}, rows)
	_, _ = fmt.Fprintf(stdOut, "%d songs in catalog #%d\n", snapshot.Len(), snapshot.Version)
	return nil
}

func resourcesCheckCommand(opts Options, name string, stdOut io.Writer) error {
	registry, err := loadRegistry(opts, false)
	if err != nil {
		return err
	}
	game, err := registry.Game(name)
	if err != nil {
		return err
	}

	fontDir := lo.Ternary(opts.FontDir != "", opts.FontDir, opts.StaticDir)
	missing := missingFiles(game.Assets.Dir(), game.Renderer().Profile().RequiredSprites())
	fontFiles := lo.Values(cards.DefaultFontFiles)
	sort.Strings(fontFiles)
	missing = append(missing, missingFiles(fontDir, fontFiles)...)
	for _, path := range missing {
		_, _ = fmt.Fprintf(stdOut, "missing: %s\n", path)
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrResourcesMissing, "%d files", len(missing))
	}
	_, _ = fmt.Fprintf(stdOut, "%s: all resources present\n", name)
	return nil
}

// missingFiles returns the names under dir that do not exist.
func missingFiles(dir string, names []string) []string {
	return lo.FilterMap(names, func(name string, _ int) (string, bool) {
		path := filepath.Join(dir, filepath.FromSlash(name))
		_, err := os.Stat(path)
		return path, err != nil
	})
}
