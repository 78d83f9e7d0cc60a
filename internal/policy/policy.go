package policy

import (
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// Func is an origin policy: it reports whether the request, arriving from
// the parsed Origin, may proceed. Policies run on every cross-origin
// request to a non-public endpoint and must be safe for concurrent use.
type Func func(r *http.Request, origin *url.URL) bool

// AllowAll admits every origin.
func AllowAll(*http.Request, *url.URL) bool { return true }

// DenyAll rejects every origin.
func DenyAll(*http.Request, *url.URL) bool { return false }

// AllowList is an origin policy built from a static list. Entries may be
// exact origins ("https://app.example.com"), subdomain wildcards
// ("*.example.com"), or a bare "*" admitting everyone.
type AllowList struct {
	exact     map[string]bool
	wildcards []string // suffixes like ".example.com"
	allowAll  bool
}

// NewAllowList classifies the configured origins once so per-request
// checks are a map hit plus suffix comparisons.
func NewAllowList(origins []string) *AllowList {
	list := &AllowList{exact: make(map[string]bool)}

	for _, origin := range origins {
		switch {
		case origin == "*":
			list.allowAll = true
		case strings.HasPrefix(origin, "*."):
			list.wildcards = append(list.wildcards, strings.ToLower(origin[1:]))
		default:
			list.exact[strings.ToLower(origin)] = true
		}
	}

	return list
}

// Allow implements Func.
func (l *AllowList) Allow(_ *http.Request, origin *url.URL) bool {
	if l.allowAll {
		return true
	}

	if l.exact[strings.ToLower(origin.Scheme+"://"+origin.Host)] {
		return true
	}

	host := strings.ToLower(origin.Hostname())
	for _, suffix := range l.wildcards {
		// The host needs at least one label before the suffix.
		if len(host) > len(suffix) && strings.HasSuffix(host, suffix) {
			return true
		}
	}

	return false
}

// Store holds the active origin policy behind an atomic pointer so a
// configuration reload can swap it without re-wiring the dispatcher.
// Consumers capture the Store once and call Load per request.
type Store struct {
	current atomic.Pointer[Func]
}

// NewStore creates a Store with fn as the active policy. A nil fn denies
// everything.
func NewStore(fn Func) *Store {
	s := &Store{}
	s.Swap(fn)
	return s
}

// Swap atomically replaces the active policy. A nil fn denies everything.
func (s *Store) Swap(fn Func) {
	if fn == nil {
		fn = DenyAll
	}
	s.current.Store(&fn)
}

// Load returns the active policy. The zero-value Store denies everything.
func (s *Store) Load() Func {
	if ptr := s.current.Load(); ptr != nil {
		return *ptr
	}
	return DenyAll
}
