// Package version holds build identification set via ldflags.
package version

const (
	Name        = "ratingcard"
	Description = "Rhythm game best-score rating card renderer"
)

// Version is overridden at build time.
var Version = "0.0.0-dev" //nolint:gochecknoglobals
