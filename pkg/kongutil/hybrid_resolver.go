// package kongutil provides helper functions for working with the kong parser
package kongutil

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedConfigFormat = errors.New("Unsupported config format")
)

// Hybrid returns a Resolver that retrieves values from a JSON, YAML or TOML document.
//
// A flag such as --logging.max-size-mb is looked up as the flat key "logging.max_size_mb"
// first, then as the nested path logging -> max_size_mb. Keys may use either hyphens or
// underscores.
func Hybrid(r io.Reader) (kong.Resolver, error) {
	values, err := decodeConfig(r)
	if err != nil {
		return nil, errors.Wrap(err, "Hybrid: configuration could not be decoded into any supported format")
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		return lookup(values, flag.Name), nil
	}

	return f, nil
}

// lookupKey finds name in values under either its hyphenated or underscored spelling.
func lookupKey(values map[string]interface{}, name string) (interface{}, bool) {
	if raw, ok := values[strings.ReplaceAll(name, "-", "_")]; ok {
		return raw, true
	}
	raw, ok := values[name]
	return raw, ok
}

// lookup resolves a flag name to a leaf value, or nil when the document does not set it.
func lookup(values map[string]interface{}, name string) interface{} {
	if raw, ok := lookupKey(values, name); ok {
		return leaf(raw)
	}

	current := values
	parts := strings.Split(name, ".")
	for idx, part := range parts {
		raw, ok := lookupKey(current, part)
		if !ok {
			return nil
		}
		if idx == len(parts)-1 {
			return leaf(raw)
		}
		next, ok := raw.(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

// leaf discards sections, which are never flag values.
func leaf(raw interface{}) interface{} {
	if _, ok := raw.(map[string]interface{}); ok {
		return nil
	}
	return raw
}

func decodeConfig(r io.Reader) (map[string]interface{}, error) {
	values := map[string]interface{}{}

	configBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "decodeConfig: failed to read all config bytes")
	}

	// Attempt JSON decoding first
	err = json.Unmarshal(configBytes, &values)
	if err == nil {
		return values, nil
	}

	// Attempt YAML next
	err = yaml.Unmarshal(configBytes, &values)
	if err == nil {
		return values, nil
	}

	// Attempt TOML
	err = toml.Unmarshal(configBytes, &values)
	if err == nil {
		return values, nil
	}

	return nil, ErrUnsupportedConfigFormat
}
