// Package apidoc serves and enforces the OpenAPI document of the reservation proxy.
package apidoc

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/brizzai/resy-client/internal/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:embed openapi.yaml
var spec []byte

var ErrEmptyBody = errors.New("request body is required")

// Operation is one method and path template of the proxy
type Operation struct {
	Method  string
	Path    string
	Summary string
}

type Document struct {
	doc  *openapi3.T
	json []byte
}

// Load parses and validates the embedded document
func Load(ctx context.Context) (*Document, error) {
	return Parse(ctx, spec)
}

// Parse parses and validates an OpenAPI 3 document
func Parse(ctx context.Context, data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document: %w", err)
	}

	d := &Document{doc: doc, json: encoded}
	logger.Debug("OpenAPI document loaded", zap.Int("operations", len(d.Operations())))
	return d, nil
}

// JSON returns the document encoded as JSON
func (d *Document) JSON() []byte {
	return d.json
}

// Operations lists the documented operations sorted by path then method
func (d *Document) Operations() []Operation {
	var ops []Operation
	for path, item := range d.doc.Paths.Map() {
		for method, op := range item.Operations() {
			ops = append(ops, Operation{Method: method, Path: path, Summary: op.Summary})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// ValidateBody checks a JSON request body against the schema documented for method and the path
// template. Operations without a JSON body schema accept anything.
func (d *Document) ValidateBody(method, pathTemplate string, body []byte) error {
	op := d.operation(method, pathTemplate)
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}

	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	if len(body) == 0 {
		if op.RequestBody.Value.Required {
			return ErrEmptyBody
		}
		return nil
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("request body is not valid JSON: %w", err)
	}
	if err := media.Schema.Value.VisitJSON(value); err != nil {
		return fmt.Errorf("request body does not match schema: %w", err)
	}
	return nil
}

func (d *Document) operation(method, pathTemplate string) *openapi3.Operation {
	item := d.doc.Paths.Find(pathTemplate)
	if item == nil {
		return nil
	}
	switch method {
	case http.MethodGet:
		return item.Get
	case http.MethodPost:
		return item.Post
	case http.MethodPut:
		return item.Put
	case http.MethodPatch:
		return item.Patch
	case http.MethodDelete:
		return item.Delete
	}
	return nil
}

// Module provides the proxy's OpenAPI document
var Module = fx.Module("apidoc",
	fx.Provide(func() (*Document, error) {
		return Load(context.Background())
	}),
)
