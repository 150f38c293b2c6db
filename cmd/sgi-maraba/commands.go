package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
	"github.com/LuanAssis01/sgi-maraba/internal/schema"
	"github.com/LuanAssis01/sgi-maraba/internal/service"
	"github.com/LuanAssis01/sgi-maraba/internal/storage"
	"github.com/LuanAssis01/sgi-maraba/internal/store"
)

var blobKeys = []string{schema.KeyUsers, schema.KeyRequests, schema.KeyNotifications, schema.KeyCurrentUser, schema.KeyCurrentView}

func runSeed(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("seed")
	reset := fs.Bool("reset", false, "discard stored state and write the defaults")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := a.store
	if *reset {
		st = store.New(a.blobs, nil, a.log)
	}
	st.Save(ctx)
	fmt.Printf("seeded %d users, %d requests, %d notifications\n",
		len(st.Users()), len(st.Requests()), len(st.Notifications()))
	return nil
}

func runDump(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dump")
	if err := fs.Parse(args); err != nil {
		return err
	}

	keys := fs.Args()
	if len(keys) == 0 {
		keys = blobKeys
		if a.pool != nil {
			stored, err := a.pool.ListBlobKeys(ctx)
			if err != nil {
				return err
			}
			keys = stored
		}
	}

	out := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		raw, err := a.blobs.Load(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}
		out[key] = raw
	}
	return printJSON(out)
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	status := fs.String("status", "", "pending, progress, done or cancelled")
	priority := fs.String("priority", "", "low, medium, high or critical")
	email := fs.String("email", "", "reporter email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f := service.Filter{Status: model.Status(*status), Priority: model.Priority(*priority), ReporterEmail: *email}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("unknown status %q", *status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", *priority)
	}
	return printJSON(a.requests.ListRequests(f))
}

func runStats(ctx context.Context, a *app, args []string) error {
	return printJSON(a.requests.Stats())
}

func runReport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("report")
	email := fs.String("email", "", "citizen email")
	password := fs.String("password", "", "citizen password")
	requestType := fs.String("type", "", "problem type, e.g. \"damaged pole\"")
	address := fs.String("address", "", "street address")
	description := fs.String("description", "", "free text")
	lat := fs.Float64("lat", 0, "latitude of the defect")
	lng := fs.Float64("lng", 0, "longitude of the defect")
	priority := fs.String("priority", "", "override the default priority")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *requestType == "" {
		return errors.New("--type is required")
	}

	user, err := a.auth.Login(ctx, *email, *password, model.RoleCitizen)
	if err != nil {
		return err
	}

	opts := service.CreateOptions{Address: *address, Description: *description}
	if fs.Changed("lat") || fs.Changed("lng") {
		opts = service.OptionsAt(model.Coordinates{Lat: *lat, Lng: *lng})
		opts.Address, opts.Description = *address, *description
	}
	if *priority != "" {
		p := model.Priority(*priority)
		opts.Priority = &p
	}

	reporter := model.Reporter{Name: user.Name, Email: user.Email, Phone: user.Phone}
	r, err := a.requests.CreateRequest(ctx, *requestType, reporter, opts)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func runDispatch(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("dispatch")
	id := fs.Int64("id", 0, "request id")
	team := fs.String("team", "", "assigned team")
	eta := fs.String("eta", "", "estimated time, e.g. 24h")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *team == "" || *eta == "" {
		return errors.New("--team and --eta are required")
	}

	r, err := a.requests.Dispatch(ctx, *id, *team, *eta)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func runComplete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("complete")
	id := fs.Int64("id", 0, "request id")
	note := fs.String("note", "", "completion note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := a.requests.Complete(ctx, *id, *note)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func runCancel(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("cancel")
	id := fs.Int64("id", 0, "request id")
	reason := fs.String("reason", "", "cancellation reason")
	email := fs.String("email", "", "administrator email")
	password := fs.String("password", "", "administrator password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	actor := model.Anonymous()
	if u := a.auth.Authenticate(*email, *password, model.RoleAdmin); u != nil {
		actor = *u
	}
	r, err := a.requests.Cancel(ctx, actor, *id, *reason)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func runNotifications(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("notifications")
	markAll := fs.Bool("mark-all", false, "mark every notification read")
	mark := fs.StringSlice("mark", nil, "notification ids to mark read")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *markAll {
		a.notifications.MarkAllRead(ctx)
	}
	for _, id := range *mark {
		if err := a.notifications.MarkRead(ctx, id); err != nil {
			return err
		}
	}
	return printJSON(struct {
		Unread        int                  `json:"unread"`
		Notifications []model.Notification `json:"notifications"`
	}{a.notifications.UnreadCount(), a.notifications.List()})
}
