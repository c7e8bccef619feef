package assets

import (
	"io"

	"github.com/pkg/errors"
)

// ReadFile reads a whole asset from the active provider.
func ReadFile(name string) ([]byte, error) {
	f, err := Assets().Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "assets.ReadFile Open Error (override: %q)", override)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	return content, errors.Wrapf(err, "assets.ReadFile ReadAll Error (override: %q)", override)
}

// GameDefaults returns the built-in game profile document.
func GameDefaults() ([]byte, error) {
	return ReadFile("games/defaults.yml")
}
