package model

import (
	"fmt"
	"math"
)

// Coordinates is a WGS 84 point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate rejects points outside lat/lng bounds
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinates, c.Lat, c.Lng)
	}
	return nil
}

// Near reports whether both axes differ by at most eps
func (c Coordinates) Near(o Coordinates, eps float64) bool {
	return math.Abs(c.Lat-o.Lat) <= eps && math.Abs(c.Lng-o.Lng) <= eps
}

// Place is a named location from the gazetteer
type Place struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}
