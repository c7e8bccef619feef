// Package gameconfig loads the per-game resource and remote URL profiles.
package gameconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/flosch/pongo2/v6"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/wrouesnel/ratingcard/pkg/pongo2utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownGame      = errors.New("unknown game")
	ErrIncompleteConfig = errors.New("game definition is incomplete")
)

// GameDefinition describes where a game's resources live locally and remotely.
type GameDefinition struct {
	Description string `mapstructure:"description"`
	// ResourceDir is relative to the static directory unless absolute.
	ResourceDir string `mapstructure:"resource_dir"`
	// CatalogURL is the remote song catalog document.
	CatalogURL string `mapstructure:"catalog_url"`
	// CoverURL is rendered with {"image": <imageName>}.
	CoverURL pongo2utils.Template `mapstructure:"cover_url"`
	// AvatarURL is rendered with {"avatar": <avatar id>}.
	AvatarURL pongo2utils.Template `mapstructure:"avatar_url"`
}

// Cover returns the remote URL for a cover image.
func (g GameDefinition) Cover(imageName string) (string, error) {
	return render(g.CoverURL, pongo2.Context{"image": imageName})
}

// Avatar returns the remote URL for an avatar image.
func (g GameDefinition) Avatar(avatar string) (string, error) {
	return render(g.AvatarURL, pongo2.Context{"avatar": avatar})
}

func render(tmpl pongo2utils.Template, ctx pongo2.Context) (string, error) {
	if tmpl.Template == nil {
		return "", errors.Wrap(ErrIncompleteConfig, "URL template not set")
	}
	result, err := tmpl.Execute(ctx)
	if err != nil {
		return "", errors.Wrap(err, "URL template execution failed")
	}
	return result, nil
}

// Config is the full set of game profiles.
type Config struct {
	Games map[string]GameDefinition `mapstructure:"games"`
}

// Game returns the named profile.
func (c *Config) Game(name string) (GameDefinition, error) {
	def, ok := c.Games[name]
	if !ok {
		return GameDefinition{}, errors.Wrap(ErrUnknownGame, name)
	}
	return def, nil
}

// Names returns the configured game names in sorted order.
func (c *Config) Names() []string {
	names := lo.Keys(c.Games)
	sort.Strings(names)
	return names
}

// ResourcePath resolves a game's resource directory against the static directory.
func (c *Config) ResourcePath(staticDir string, name string) (string, error) {
	def, err := c.Game(name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(def.ResourceDir) {
		return def.ResourceDir, nil
	}
	return filepath.Join(staticDir, def.ResourceDir), nil
}

// Decoder returns the decoder for config maps.
//nolint:exhaustruct
func Decoder(target interface{}, allowUnused bool) (*mapstructure.Decoder, error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: !allowUnused,
		DecodeHook:  mapstructure.ComposeDecodeHookFunc(mapstructure.TextUnmarshallerHookFunc()),
		Result:      target,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Load: BUG - decoder configuration rejected")
	}
	return decoder, nil
}

// configMapMerge merges config maps right-to-left. Maps and nested maps
// are merged key-by-key, but lists will be replaced.
func configMapMerge(left, right map[string]interface{}) {
	for k, leftValue := range left {
		rightValue, ok := right[k]
		if !ok {
			right[k] = leftValue
			continue
		}
		rightMap, ok := rightValue.(map[string]interface{})
		if !ok {
			continue
		}
		leftMap, ok := leftValue.(map[string]interface{})
		if !ok {
			continue
		}
		configMapMerge(leftMap, rightMap)
	}
}

// loadConfigMap unmarshals config bytes into the map for mapstructure.
func loadConfigMap(configBytes []byte) (map[string]interface{}, error) {
	configMap := make(map[string]interface{})
	if err := yaml.Unmarshal(configBytes, configMap); err != nil {
		return configMap, errors.Wrapf(err, "loadConfigMap: yaml unmarshalling failed")
	}
	return configMap, nil
}

// Load decodes defaults with each override merged over it in order. Unknown keys are
// rejected.
func Load(defaults []byte, overrides ...[]byte) (*Config, error) {
	configMap, err := loadConfigMap(defaults)
	if err != nil {
		return nil, errors.Wrap(err, "Load: defaults failed")
	}

	for idx, override := range overrides {
		overrideMap, err := loadConfigMap(override)
		if err != nil {
			return nil, errors.Wrapf(err, "Load: override %d failed", idx)
		}
		configMapMerge(configMap, overrideMap)
		configMap = overrideMap
	}

	cfg := new(Config)
	decoder, err := Decoder(cfg, false)
	if err != nil {
		return nil, errors.Wrapf(err, "Load: config map decoder failed to initialize")
	}
	if err := decoder.Decode(configMap); err != nil {
		return nil, errors.Wrap(err, "Load: config map decoding failed")
	}

	for name, def := range cfg.Games {
		if def.ResourceDir == "" || def.CatalogURL == "" || def.CoverURL.Template == nil {
			return nil, errors.Wrap(ErrIncompleteConfig, name)
		}
	}
	return cfg, nil
}

// LoadDir loads defaults and merges every YAML file in dirPath over them in name order.
// Unreadable or invalid files are logged and skipped.
func LoadDir(defaults []byte, dirPath string) (*Config, error) {
	logger := zap.L().With(zap.String("subsystem", "gameconfig"))

	if dirPath == "" {
		return Load(defaults)
	}

	matches := lo.FlatMap([]string{"yml", "yaml"}, func(ext string, _ int) []string {
		extMatches, _ := filepath.Glob(fmt.Sprintf("%s/*.%s", dirPath, ext))
		return extMatches
	})
	sort.Strings(matches)

	overrides := make([][]byte, 0, len(matches))
	for _, configPath := range matches {
		logger.Debug("Loading game definitions from config file", zap.String("config_path", configPath))
		configBytes, err := os.ReadFile(configPath)
		if err != nil {
			logger.Warn("Could not read config file", zap.String("config_path", configPath), zap.Error(err))
			continue
		}
		if _, err := Load(defaults, configBytes); err != nil {
			logger.Warn("Config parsing error", zap.String("config_path", configPath), zap.Error(err))
			continue
		}
		overrides = append(overrides, configBytes)
	}

	return Load(defaults, overrides...)
}
