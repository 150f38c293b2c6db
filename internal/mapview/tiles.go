package mapview

import (
	"errors"
	"strings"
)

const (
	DefaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution = "&copy; OpenStreetMap contributors"
)

// TileSource is all the map widget needs to know about the tile provider
type TileSource struct {
	URLTemplate string `json:"urlTemplate"`
	Attribution string `json:"attribution"`
}

func DefaultTileSource() TileSource {
	return TileSource{URLTemplate: DefaultTileURL, Attribution: DefaultAttribution}
}

// Validate checks the template carries the {z}, {x} and {y} placeholders
func (t TileSource) Validate() error {
	if t.URLTemplate == "" {
		return errors.New("tile URL template is required")
	}
	for _, p := range []string{"{z}", "{x}", "{y}"} {
		if !strings.Contains(t.URLTemplate, p) {
			return errors.New("tile URL template is missing " + p)
		}
	}
	return nil
}
