package utils

import (
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// APIDocJSON converts the embedded OpenAPI document to JSON.
func APIDocJSON() ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
		return nil, errors.Wrap(err, "parse openapi document")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode openapi document")
	}
	return out, nil
}
