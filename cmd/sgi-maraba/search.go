package main

import (
	"context"
	"fmt"

	"github.com/LuanAssis01/sgi-maraba/internal/mapview"
	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/search"
	"github.com/LuanAssis01/sgi-maraba/internal/service"

	"go.uber.org/zap"
)

// printWidget stands in for the map: it prints whatever the controller applies
type printWidget struct {
	tiles mapview.TileSource
}

func (w printWidget) SetView(center model.Coordinates, zoom int) {
	fmt.Printf("map view: lat=%.6f lng=%.6f zoom=%d\n", center.Lat, center.Lng, zoom)
}

func (w printWidget) SetMarkers(markers []mapview.Marker) {
	fmt.Printf("map markers: %d (tiles %s)\n", len(markers), w.tiles.URLTemplate)
}

type printDetail struct {
	requests *service.RequestService
}

func (d printDetail) OpenDetail(id int64) {
	r, err := d.requests.GetRequest(id)
	if err != nil {
		fmt.Printf("detail: %v\n", err)
		return
	}
	_ = printJSON(r)
}

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("search")
	selectIdx := fs.Int("select", -1, "index of the suggestion to select")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: sgi-maraba search QUERY [--select N]")
	}

	visible := func() []model.Request { return a.requests.ListRequests(service.Filter{}) }

	ctrl := mapview.NewController(printWidget{tiles: a.cfg.Tiles}, a.store, service.DefaultOrigin, a.log)
	ctrl.SetVisible(visible)
	ctrl.Attach(a.bus)
	ctrl.Reconcile()
	ctrl.RefreshMarkers()

	box := search.NewBox(search.NewRanker(search.DefaultGazetteer(), a.log), visible, ctrl, printDetail{a.requests})
	box.SetQuery(fs.Arg(0))

	for i, s := range box.Suggestions() {
		kind := "place"
		if s.Request != nil {
			kind = "request"
		}
		fmt.Printf("%d\t%s\t%s\n", i, kind, s.Label())
	}

	if *selectIdx < 0 {
		return nil
	}
	if err := box.Select(*selectIdx); err != nil {
		return err
	}
	v := ctrl.Desired()
	a.log.Info("Suggestion selected",
		zap.String("query", box.Query()),
		zap.Int("zoom", v.Zoom),
	)
	return nil
}
