// Package pongorenderer renders pongo2 templates for echo.
package pongorenderer

import (
	"bytes"
	"io"
	"io/fs"
	"path"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/tdewolff/minify"
)

// htmlMediaType is minified when the renderer has a minifier.
const htmlMediaType = "text/html"

// FSLoader loads pongo2 templates from an fs.FS.
type FSLoader struct {
	root fs.FS
}

// NewFSLoader returns a loader reading templates from root.
func NewFSLoader(root fs.FS) *FSLoader {
	return &FSLoader{root: root}
}

// Abs implements pongo2.TemplateLoader. Includes are resolved relative to the including
// template.
func (l *FSLoader) Abs(base, name string) string {
	if path.IsAbs(name) || base == "" {
		return path.Clean(name)
	}
	return path.Join(path.Dir(base), name)
}

// Get implements pongo2.TemplateLoader.
func (l *FSLoader) Get(name string) (io.Reader, error) {
	data, err := fs.ReadFile(l.root, path.Clean(name))
	if err != nil {
		return nil, errors.Wrapf(err, "FSLoader.Get %s", name)
	}
	return bytes.NewReader(data), nil
}

// NewTemplateSet returns a template set over root. In debug mode templates are re-read on
// every render.
func NewTemplateSet(name string, root fs.FS, debug bool) *pongo2.TemplateSet {
	set := pongo2.NewSet(name, NewFSLoader(root))
	set.Debug = debug
	return set
}

type Renderer struct {
	templateSet *pongo2.TemplateSet
	minifier    *minify.M
}

// NewRenderer returns an echo.Renderer. minifier may be nil.
func NewRenderer(templateSet *pongo2.TemplateSet, minifier *minify.M) Renderer {
	return Renderer{
		templateSet: templateSet,
		minifier:    minifier,
	}
}

// Render impements echo.Renderer. Pongo2 context data is placed under the prefix "t"
// for access within templates.
func (r Renderer) Render(writer io.Writer, templateName string, templateData interface{}, context echo.Context) error {
	template, err := r.templateSet.FromCache(templateName)
	if err != nil {
		return errors.Wrapf(err, "pongorenderer.Render: loading template failed %s", templateName)
	}

	templateContext := pongo2.Context{}
	templateContext["t"] = templateData

	if r.minifier == nil {
		return template.ExecuteWriter(templateContext, writer)
	}

	var buf bytes.Buffer
	if err := template.ExecuteWriter(templateContext, &buf); err != nil {
		return errors.Wrapf(err, "pongorenderer.Render: executing %s", templateName)
	}
	return errors.Wrap(r.minifier.Minify(htmlMediaType, writer, &buf), "pongorenderer.Render: minify")
}
