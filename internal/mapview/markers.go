package mapview

import (
	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/pubsub"

	"go.uber.org/zap"
)

// Color of a request marker
type Color string

const (
	ColorCritical Color = "#dc2626"
	ColorDone     Color = "#16a34a"
	ColorProgress Color = "#2563eb"
	ColorPending  Color = "#f59e0b"
)

type Marker struct {
	ID          int64             `json:"id"`
	Coordinates model.Coordinates `json:"coordinates"`
	Color       Color             `json:"color"`
}

// MarkerColor picks a color with fixed precedence: critical priority, then
// done, then progress, then the pending default.
func MarkerColor(r model.Request) Color {
	switch {
	case r.Priority == model.PriorityCritical:
		return ColorCritical
	case r.Status == model.StatusDone:
		return ColorDone
	case r.Status == model.StatusProgress:
		return ColorProgress
	default:
		return ColorPending
	}
}

// Markers derives one marker per visible request, in order
func Markers(visible []model.Request) []Marker {
	out := make([]Marker, 0, len(visible))
	for _, r := range visible {
		out = append(out, Marker{ID: r.ID, Coordinates: r.Coordinates, Color: MarkerColor(r)})
	}
	return out
}

// SetVisible sets the source of requests drawn as markers
func (c *Controller) SetVisible(visible func() []model.Request) {
	c.visible = visible
}

// Markers returns the markers last pushed to the widget
func (c *Controller) Markers() []Marker {
	return append([]Marker(nil), c.markers...)
}

// RefreshMarkers re-derives the marker set and pushes it if it changed
func (c *Controller) RefreshMarkers() bool {
	if c.visible == nil {
		return false
	}
	next := Markers(c.visible())
	if c.drawn && sameMarkers(c.markers, next) {
		return false
	}
	c.markers = next
	c.drawn = true
	c.log.Debug("Refreshing markers", zap.Int("count", len(next)))
	c.widget.SetMarkers(next)
	return true
}

func sameMarkers(a, b []Marker) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Color != b[i].Color || !a[i].Coordinates.Near(b[i].Coordinates, Epsilon) {
			return false
		}
	}
	return true
}

// Attach refreshes markers after every lifecycle event on bus
func (c *Controller) Attach(bus *pubsub.Bus) {
	bus.SubscribeAll(func(pubsub.Event) {
		c.RefreshMarkers()
	})
}
