// Package docs serves the embedded OpenAPI document and a Swagger UI page.
package docs

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml index.html
var files embed.FS

// Handler serves the API documentation.
type Handler struct {
	spec []byte
	ui   []byte
}

// NewHandler renders the embedded OpenAPI document as JSON, reporting
// version as the API version.
func NewHandler(version string) (*Handler, error) {
	raw, err := files.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("read openapi.yaml: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	if info, ok := doc["info"].(map[string]any); ok && version != "" {
		info["version"] = version
	}
	spec, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}

	ui, err := files.ReadFile("index.html")
	if err != nil {
		return nil, fmt.Errorf("read index.html: %w", err)
	}
	return &Handler{spec: spec, ui: ui}, nil
}

// Spec handles GET /api-docs.json.
func (h *Handler) Spec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.spec)
}

// UI handles GET /api-docs.
func (h *Handler) UI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.ui)
}
