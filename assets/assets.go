// Package assets provides the files built into the binary: default game profiles and the
// status page templates. Game artwork is not embedded; it lives in the static directory.
package assets

import (
	"embed"
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

//go:embed games web
var embedded embed.FS

//nolint:gochecknoglobals
var override string

type Config struct {
	UseFilesystem  bool   `help:"Use assets from the filesystem rather then the embedded binary" default:"false"`
	Path           string `help:"Directory read when use-filesystem is set" default:"assets"`
	DebugTemplates bool   `help:"Enable template debugging (disables caching)" default:"false"`
}

// Configure selects the asset provider. With UseFilesystem set, assets are read from
// cfg.Path so templates and profiles can be edited without a rebuild.
func Configure(cfg Config) {
	override = ""
	if cfg.UseFilesystem {
		override = cfg.Path
	}
}

// Assets returns the active asset provider.
func Assets() fs.FS {
	if override != "" {
		return os.DirFS(override)
	}
	return embedded
}

// Web returns the status page tree, rooted at its templates.
func Web() (fs.FS, error) {
	root, err := fs.Sub(Assets(), "web")
	return root, errors.Wrap(err, "assets.Web")
}
