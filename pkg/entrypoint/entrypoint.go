// package entrypoint is the actual entrypoint for the command line application
package entrypoint

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	gap "github.com/muesli/go-app-paths"
	"github.com/wrouesnel/ratingcard/assets"
	"github.com/wrouesnel/ratingcard/pkg/kongutil"
	"github.com/wrouesnel/ratingcard/pkg/server"
	"github.com/wrouesnel/ratingcard/version"
	"go.uber.org/zap"
)

// Options are the settings shared by every command.
type Options struct {
	Logging LoggingConfig `embed:"" prefix:"logging."`
	Assets  assets.Config `embed:"" prefix:"assets."`

	StaticDir string `help:"Directory holding the game resource directories" default:"static" type:"path"`
	FontDir   string `help:"Directory holding the card fonts, defaults to the static directory" type:"path"`
	GamesDir  string `help:"Directory of YAML game profiles merged over the built-in ones" type:"path"`
	Proxy     string `help:"Proxy for catalog and cover downloads, defaults to the PROXY file in the static directory"`

	AvatarTimeout time.Duration `help:"Timeout for avatar downloads" default:"10s"`
}

type CLI struct {
	Options `embed:""`

	Debug struct {
		Assets struct {
			List struct {
			} `cmd:"" help:"list embedded files in the binary"`
			Cat struct {
				Filename string `arg:"" name:"filename" help:"embedded file to emit to stdout"`
			} `cmd:"" help:"output the specified file to stdout"`
		} `cmd:""`
		Catalog struct {
			List struct {
				Game string `arg:"" help:"game to list"`
			} `cmd:"" help:"list the songs in a game's local catalog"`
		} `cmd:""`
		Resources struct {
			Check struct {
				Game string `arg:"" help:"game to check"`
			} `cmd:"" help:"report sprites and fonts missing from the static directory"`
		} `cmd:""`
	} `cmd:""`

	Api server.ApiServerConfig `cmd:"" help:"Launch the web API"`

	Refresh struct {
		Game string `arg:"" help:"game to refresh"`
	} `cmd:"" help:"Download a game's catalog and any missing cover art"`

	Render struct {
		Game   string `arg:"" help:"game the request is for"`
		Input  string `arg:"" type:"existingfile" help:"render request JSON"`
		Output string `arg:"" type:"path" help:"JPEG file to write"`
	} `cmd:"" help:"Render a card from a request file"`
}

func configFileName(prefix string, ext string) string {
	return fmt.Sprintf("%s%s.%s", prefix, version.Name, ext)
}

func configDirListGet() ([]string, []string) {
	deferredLogs := []string{}

	// Handle a sensible configuration loader path
	scope := gap.NewScope(gap.User, version.Name)
	baseConfigDirs, err := scope.ConfigDirs()
	if err != nil {
		deferredLogs = append(deferredLogs, err.Error())
	}

	configDirs := []string{}
	for _, configDir := range baseConfigDirs {
		configDirs = append(configDirs,
			path.Join(configDir, configFileName("", "json")),
			path.Join(configDir, configFileName("", "yml")),
			path.Join(configDir, configFileName("", "yaml")),
			path.Join(configDir, configFileName("", "toml")))
	}
	configDirs = append([]string{
		configFileName(".", "json"),
		configFileName(".", "yml"),
		configFileName(".", "yaml"),
		configFileName(".", "toml"),
		path.Join(os.Getenv("HOME"), configFileName(".", "json")),
		path.Join(os.Getenv("HOME"), configFileName(".", "yml")),
		path.Join(os.Getenv("HOME"), configFileName(".", "yaml")),
		path.Join(os.Getenv("HOME"), configFileName(".", "toml")),
	}, configDirs...)

	return configDirs, deferredLogs
}

func Entrypoint(stdOut io.Writer, stdErr io.Writer) int {
	appCtx, appCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer appCancel()

	configDirs, deferredLogs := configDirListGet()

	// Command line parsing can now happen
	cli := new(CLI)
	ctx := kong.Parse(cli,
		kong.Description(version.Description),
		kong.Configuration(kongutil.Hybrid, configDirs...))

	// Initialize logging as soon as possible
	logger, logDeferred, err := buildLogger(cli.Logging)
	if err != nil {
		// Error unhandled since this is a very early failure
		_, _ = io.WriteString(stdErr, "Failure while building logger")
		return 1
	}
	deferredLogs = append(deferredLogs, logDeferred...)

	// Install as the global logger
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	// Emit deferred logs
	logger.Info("Using config paths", zap.Strings("configDirs", configDirs))
	for _, line := range deferredLogs {
		logger.Error(line)
	}

	assets.Configure(cli.Assets)

	if err := dispatchCommands(ctx, cli, appCtx, stdOut); err != nil {
		logger.Error("Error from command", zap.Error(err))
		return 1
	}

	logger.Info("Exiting normally")
	return 0
}
