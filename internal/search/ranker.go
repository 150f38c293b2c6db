// Package search resolves free text into suggestions: live requests first,
// named places from the gazetteer only when no request matches.
package search

import (
	"strings"
	"time"

	"github.com/LuanAssis01/sgi-maraba/internal/model"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// MaxRequestMatches caps the request suggestions returned for one query
const MaxRequestMatches = 5

// Suggestion is either a request or a gazetteer place. Exactly one field is set.
type Suggestion struct {
	Request *model.Request
	Place   *model.Place
}

// Label is the text shown for the suggestion
func (s Suggestion) Label() string {
	if s.Request != nil {
		return s.Request.Protocol + " - " + s.Request.Address
	}
	if s.Place != nil {
		return s.Place.Name
	}
	return ""
}

type Ranker struct {
	places []model.Place
	cache  *expirable.LRU[string, []model.Place]
	log    *zap.Logger
}

// NewRanker creates a ranker over a static gazetteer
func NewRanker(gazetteer []model.Place, log *zap.Logger) *Ranker {
	return &Ranker{
		places: append([]model.Place(nil), gazetteer...),
		cache:  expirable.NewLRU[string, []model.Place](128, nil, time.Hour),
		log:    log,
	}
}

// Suggest ranks visible requests and, failing those, gazetteer places
func (r *Ranker) Suggest(query string, visible []model.Request) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Suggestion
	for i := range visible {
		if matchesRequest(visible[i], q) {
			req := visible[i].Clone()
			out = append(out, Suggestion{Request: &req})
			if len(out) == MaxRequestMatches {
				break
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, p := range r.matchPlaces(q) {
		place := p
		out = append(out, Suggestion{Place: &place})
	}
	r.log.Debug("Suggestions ranked", zap.String("query", q), zap.Int("places", len(out)))
	return out
}

func matchesRequest(req model.Request, q string) bool {
	return strings.Contains(strings.ToLower(req.Address), q) ||
		strings.Contains(strings.ToLower(req.Protocol), q) ||
		strings.Contains(strings.ToLower(req.Type), q)
}

// matchPlaces is cached per query since the gazetteer never changes
func (r *Ranker) matchPlaces(q string) []model.Place {
	if hit, ok := r.cache.Get(q); ok {
		return hit
	}
	var matches []model.Place
	for _, p := range r.places {
		if strings.Contains(strings.ToLower(p.Name), q) {
			matches = append(matches, p)
		}
	}
	r.cache.Add(q, matches)
	return matches
}
