package api

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/pkg/errors"
)

// OpenAPISpec is the API document served at /openapi.yaml and to the Swagger UI.
//go:embed openapi.yaml
var OpenAPISpec []byte

var (
	ErrNoSchema       = errors.New("no request schema for game")
	ErrRequestInvalid = errors.New("request does not match the schema")
	ErrSpecUnloadable = errors.New("embedded OpenAPI document is invalid")
)

// requestSchemas maps a game to the component schema its render request must satisfy.
//nolint:gochecknoglobals
var requestSchemas = map[string]string{
	"chunithm": "ChunithmRequest",
	"ongeki":   "OngekiRequest",
}

// Validator checks render request bodies against the component schemas of the API
// document.
type Validator struct {
	schemas map[string]*openapi3.Schema
}

// NewValidator loads the embedded API document.
func NewValidator() (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(OpenAPISpec)
	if err != nil {
		return nil, errors.Wrap(ErrSpecUnloadable, err.Error())
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, errors.Wrap(ErrSpecUnloadable, err.Error())
	}

	v := &Validator{schemas: make(map[string]*openapi3.Schema, len(requestSchemas))}
	for game, component := range requestSchemas {
		ref, ok := doc.Components.Schemas[component]
		if !ok || ref.Value == nil {
			return nil, errors.Wrapf(ErrSpecUnloadable, "component %s missing", component)
		}
		v.schemas[game] = ref.Value
	}
	return v, nil
}

// Validate checks body against the request schema for game.
func (v *Validator) Validate(game string, body []byte) error {
	schema, ok := v.schemas[game]
	if !ok {
		return errors.Wrap(ErrNoSchema, game)
	}
	var value interface{}
	if err := json.Unmarshal(body, &value); err != nil {
		return errors.Wrap(ErrRequestInvalid, fmt.Sprintf("body is not JSON: %s", err))
	}
	if err := schema.VisitJSON(value); err != nil {
		return errors.Wrap(ErrRequestInvalid, err.Error())
	}
	return nil
}
