package router

import "sort"

// RouteDescription is the read-only listing form of a registered route,
// served by the operational routes endpoint.
type RouteDescription struct {
	Verb   string `json:"verb"`
	Path   string `json:"path"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// Routes returns a snapshot of every registered route, sorted by path
// then verb for stable listings.
func (r *Registry) Routes() []RouteDescription {
	out := make([]RouteDescription, len(r.routes))
	copy(out, r.routes)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Verb < out[j].Verb
	})

	return out
}

// CountByVerb returns the number of registered routes per verb, feeding
// the routes-registered gauge.
func (r *Registry) CountByVerb() map[string]int {
	counts := make(map[string]int)
	for _, route := range r.routes {
		counts[route.Verb]++
	}
	return counts
}
