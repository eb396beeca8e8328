//go:build swag

package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/swaggo/swag/v2"
)

// SpecMutator lets modules tweak the parsed swagger spec before it is served
type SpecMutator func(map[string]any)

// mutators is the in process registry for spec mutators
var mutators []SpecMutator

// docReader is a seam so tests can inject invalid JSON
var docReader = func() string {
	doc, err := swag.ReadDoc("api")
	if err != nil {
		return `{"openapi":"3.0.3","info":{"title":"Gavel API","version":"0.0.0"},"paths":{}}`
	}
	return doc
}

// Register adds a spec mutator for swagger JSON.
// Call from module init so it is wired automatically
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}

// serveDocJSON serves swagger JSON and lets modules adjust details
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := docReader()

		var spec map[string]any
		if err := json.Unmarshal([]byte(raw), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		// OAS3 base url lives in servers, not BasePath
		ensureServers(spec, "/api/v1")

		ensureErrorResponseDefinition(spec)
		addDefaultError(spec)

		for _, m := range mutators {
			m(spec)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers makes sure the spec is OAS3 and has a servers array.
// The UI can't render 3.1 yet so downconvert when needed
func ensureServers(spec map[string]any, url string) {
	if _, hasSwagger := spec["swagger"]; hasSwagger {
		spec["openapi"] = "3.0.3"
		delete(spec, "swagger")
	}
	if v, ok := spec["openapi"].(string); ok {
		if strings.HasPrefix(v, "3.1") {
			spec["openapi"] = "3.0.3"
		}
	} else {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{
			map[string]any{"url": url},
		}
	}
}

// ensureErrorResponseDefinition creates the error envelope model if missing.
// Kept minimal so it does not drift from the runtime wire
func ensureErrorResponseDefinition(spec map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Standard error response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

// addDefaultError walks every operation and injects a 500 response if absent
func addDefaultError(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	errResp := map[string]any{
		"description": "Internal Server Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			if _, exists := responses["500"]; !exists {
				responses["500"] = errResp
			}
		}
	}
}
