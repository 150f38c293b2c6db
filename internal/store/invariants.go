package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LuanAssis01/sgi-maraba/internal/model"
)

func checkRequest(r model.Request) error {
	if r.ID <= 0 {
		return fmt.Errorf("request id must be positive, got %d", r.ID)
	}
	if r.Protocol == "" {
		return errors.New("request protocol is empty")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("request %d has unknown status %q", r.ID, r.Status)
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("request %d has unknown priority %q", r.ID, r.Priority)
	}
	if err := r.Coordinates.Validate(); err != nil {
		return err
	}
	if len(r.Timeline) == 0 {
		return fmt.Errorf("request %d has an empty timeline", r.ID)
	}
	for i := 1; i < len(r.Timeline); i++ {
		if r.Timeline[i].At.Before(r.Timeline[i-1].At) {
			return &model.OutOfOrderEventError{RequestID: r.ID, Last: r.Timeline[i-1].At, Attempted: r.Timeline[i].At}
		}
	}
	return nil
}

func checkRequests(rs []model.Request) error {
	ids := make(map[int64]bool, len(rs))
	protocols := make(map[string]bool, len(rs))
	for _, r := range rs {
		if err := checkRequest(r); err != nil {
			return err
		}
		if ids[r.ID] {
			return fmt.Errorf("duplicate request id %d", r.ID)
		}
		if protocols[r.Protocol] {
			return fmt.Errorf("%w: %s", model.ErrDuplicateProtocol, r.Protocol)
		}
		ids[r.ID] = true
		protocols[r.Protocol] = true
	}
	return nil
}

func checkUsers(us []model.User) error {
	seen := make(map[string]bool, len(us))
	for _, u := range us {
		email := strings.ToLower(u.Email)
		if seen[email] {
			return fmt.Errorf("%w: %s", model.ErrDuplicateEmail, u.Email)
		}
		seen[email] = true
	}
	return nil
}

// checkUpdate rejects updates that rewrite identity or history
func checkUpdate(before, after model.Request) error {
	if after.ID != before.ID || after.Protocol != before.Protocol {
		return fmt.Errorf("request %d: id and protocol are immutable", before.ID)
	}
	if len(after.Timeline) < len(before.Timeline) {
		return fmt.Errorf("request %d: timeline events cannot be removed", before.ID)
	}
	for i := range before.Timeline {
		if after.Timeline[i] != before.Timeline[i] {
			return fmt.Errorf("request %d: timeline event %d cannot be modified", before.ID, i)
		}
	}
	if after.Status != before.Status && len(after.Timeline) == len(before.Timeline) {
		return fmt.Errorf("request %d: status change to %s has no timeline event", before.ID, after.Status)
	}
	return checkRequest(after)
}
