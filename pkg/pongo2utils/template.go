// Package pongo2utils adapts pongo2 templates for use as configuration values.
package pongo2utils

import (
	"github.com/flosch/pongo2/v6"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Template is a pongo2 template that keeps its source text.
type Template struct {
	*pongo2.Template
	source string
}

// UnmarshalText implements encoding.TextUnmarshaler, which both kong and mapstructure use
// to decode string configuration into templates. An unparseable template is replaced by an
// empty one so the value stays usable.
func (t *Template) UnmarshalText(text []byte) error {
	loadedTemplate, err := pongo2.FromBytes(text)
	if loadedTemplate == nil {
		t.Template = lo.Must(pongo2.FromString(""))
	} else {
		t.Template = loadedTemplate
	}
	if err != nil {
		return errors.Wrap(err, "UnmarshalText")
	}
	t.source = string(text)
	return nil
}

// MarshalText returns the template source.
func (t Template) MarshalText() ([]byte, error) {
	return []byte(t.source), nil
}

// String returns the template source.
func (t Template) String() string {
	return t.source
}
