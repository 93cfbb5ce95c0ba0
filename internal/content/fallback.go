package content

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

//go:embed fallback.yaml
var fallbackYAML []byte

// Fallback is the built-in content used when a section cannot be read.
type Fallback struct {
	Navigation    []models.NavigationItem `json:"navigation"`
	Hero          []models.Hero           `json:"hero"`
	About         []models.AboutItem      `json:"about"`
	Products      []models.Product        `json:"products"`
	Videos        []models.Video          `json:"videos"`
	Documents     []models.Document       `json:"documents"`
	ProductModals []models.ProductModal   `json:"product_modals"`
	Footer        models.FooterSettings   `json:"footer"`
	Requisites    models.Requisites       `json:"requisites"`
	ScrollSection models.ScrollSection    `json:"scroll_section"`
}

// ParseFallback decodes a fallback document. Keys follow the JSON names of the models.
func ParseFallback(data []byte) (*Fallback, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fallback content: %w", err)
	}

	// the models carry json tags only, so the YAML tree is re-encoded through JSON
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert fallback content: %w", err)
	}

	fb := new(Fallback)
	if err = json.Unmarshal(buf, fb); err != nil {
		return nil, fmt.Errorf("decode fallback content: %w", err)
	}

	return fb, nil
}

// DefaultFallback returns the embedded fallback content.
func DefaultFallback() (*Fallback, error) {
	return ParseFallback(fallbackYAML)
}
