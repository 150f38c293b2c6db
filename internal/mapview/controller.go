// Package mapview keeps the map widget in step with the view the rest of the
// system wants, without echoing the widget's own changes back at it.
//
// The controller holds a desired view and a snapshot of the last view applied
// to the widget. Reconcile pushes to the widget only when the two differ, and
// widget events update both, so a value reported by the widget never bounces
// back as a new SetView call.
package mapview

import (
	"github.com/LuanAssis01/sgi-maraba/internal/model"

	"go.uber.org/zap"
)

const (
	MinZoom = 10
	MaxZoom = 18

	HighlightZoom = 16
	PlaceZoom     = 17
	HomeZoom      = 14
	InitialZoom   = 13

	// Epsilon is the largest coordinate difference treated as no change
	Epsilon = 1e-7
)

// ViewState is the map view the controller wants on screen
type ViewState struct {
	Center      model.Coordinates
	Zoom        int
	Highlighted *int64
}

// Widget is the interactive map the controller drives
type Widget interface {
	SetView(center model.Coordinates, zoom int)
	SetMarkers(markers []Marker)
}

// RequestLookup resolves highlighted ids to requests
type RequestLookup interface {
	Request(id int64) (model.Request, bool)
}

// ClickHandler receives map clicks, e.g. to start a report at that point
type ClickHandler func(model.Coordinates)

type applied struct {
	center model.Coordinates
	zoom   int
}

// Controller is driven from the UI event loop and is not safe for concurrent use.
type Controller struct {
	widget   Widget
	requests RequestLookup
	origin   model.Coordinates
	log      *zap.Logger

	desired ViewState
	applied *applied
	onClick ClickHandler

	visible func() []model.Request
	markers []Marker
	drawn   bool
}

// NewController starts with the desired view at origin. Nothing is pushed to
// the widget until the first Reconcile.
func NewController(widget Widget, requests RequestLookup, origin model.Coordinates, log *zap.Logger) *Controller {
	return &Controller{
		widget:   widget,
		requests: requests,
		origin:   origin,
		log:      log,
		desired:  ViewState{Center: origin, Zoom: InitialZoom},
	}
}

// Desired returns the current desired view
func (c *Controller) Desired() ViewState {
	v := c.desired
	if v.Highlighted != nil {
		id := *v.Highlighted
		v.Highlighted = &id
	}
	return v
}

// Reconcile applies the desired view to the widget if it differs from the
// last applied one. It reports whether the widget was called.
func (c *Controller) Reconcile() bool {
	if c.applied != nil && c.applied.zoom == c.desired.Zoom && c.applied.center.Near(c.desired.Center, Epsilon) {
		return false
	}
	// snapshot first so a widget that reports back synchronously sees a match
	c.applied = &applied{center: c.desired.Center, zoom: c.desired.Zoom}
	c.log.Debug("Applying map view",
		zap.Float64("lat", c.desired.Center.Lat),
		zap.Float64("lng", c.desired.Center.Lng),
		zap.Int("zoom", c.desired.Zoom),
	)
	c.widget.SetView(c.desired.Center, c.desired.Zoom)
	return true
}

// SetDesiredZoom clamps z to [MinZoom, MaxZoom] and reconciles
func (c *Controller) SetDesiredZoom(z int) {
	c.desired.Zoom = ClampZoom(z)
	c.Reconcile()
}

// SetHighlighted marks a request and recentres on it at HighlightZoom,
// replacing whatever view was desired. A nil id clears the highlight without
// moving the map. It reports whether the map was recentred.
func (c *Controller) SetHighlighted(id *int64) bool {
	if id == nil {
		c.desired.Highlighted = nil
		return false
	}
	r, ok := c.requests.Request(*id)
	if !ok {
		c.log.Debug("Highlight ignored, unknown request", zap.Int64("id", *id))
		return false
	}
	hid := r.ID
	c.desired = ViewState{Center: r.Coordinates, Zoom: HighlightZoom, Highlighted: &hid}
	c.Reconcile()
	return true
}

// FocusPlace recentres on a named place at PlaceZoom
func (c *Controller) FocusPlace(center model.Coordinates) {
	c.desired.Center = center
	c.desired.Zoom = PlaceZoom
	c.Reconcile()
}

// RecentreOnKnownOrigin is the "home" action
func (c *Controller) RecentreOnKnownOrigin() {
	c.desired.Center = c.origin
	c.desired.Zoom = HomeZoom
	c.Reconcile()
}

// OnZoomEnd records a zoom made by the user on the widget
func (c *Controller) OnZoomEnd(z int) {
	c.desired.Zoom = ClampZoom(z)
	c.syncSnapshot()
}

// OnMoveEnd records a pan made by the user on the widget
func (c *Controller) OnMoveEnd(center model.Coordinates) {
	c.desired.Center = center
	c.syncSnapshot()
}

func (c *Controller) syncSnapshot() {
	c.applied = &applied{center: c.desired.Center, zoom: c.desired.Zoom}
}

// SetClickHandler registers the receiver of OnWidgetClick
func (c *Controller) SetClickHandler(h ClickHandler) {
	c.onClick = h
}

// OnWidgetClick forwards the clicked point unchanged. The view is not touched.
func (c *Controller) OnWidgetClick(at model.Coordinates) {
	if c.onClick == nil {
		return
	}
	c.onClick(at)
}

// ClampZoom limits z to [MinZoom, MaxZoom]
func ClampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}
