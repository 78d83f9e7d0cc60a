package dispatch

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

// corsCheck decides the Access-Control-Allow-Origin value for a
// non-preflight request: empty for same-origin traffic, "*" for public
// endpoints, or the echoed origin when policy approves. A cross-origin
// request denied by policy fails the request.
func (d *Dispatcher) corsCheck(r *http.Request, public bool) (string, error) {
	originHeader := r.Header.Get("Origin")
	if originHeader == "" {
		// Same-origin or non-browser caller.
		return "", nil
	}

	if public {
		return "*", nil
	}

	origin, err := url.Parse(originHeader)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return "", fmt.Errorf("unparseable origin %q: %w", originHeader, util.ErrOriginForbidden)
	}

	if !d.policy.Load()(r, origin) {
		return "", fmt.Errorf("origin %q rejected by policy: %w", originHeader, util.ErrOriginForbidden)
	}

	return originHeader, nil
}

// writeAllowOrigin sets the allow-origin header. Echoed origins vary the
// response by Origin so caches keep per-origin entries apart.
func writeAllowOrigin(header http.Header, allowOrigin string) {
	if allowOrigin == "" {
		return
	}

	header.Set("Access-Control-Allow-Origin", allowOrigin)
	if allowOrigin != "*" {
		header.Add("Vary", "Origin")
	}
}

// preflight answers an OPTIONS request. The endpoint targeted by
// Access-Control-Request-Method decides the public flag; a target that
// does not resolve is treated as not public and left to policy. Denied
// preflights stay 204 but carry no CORS headers, which browsers read as
// a refusal.
func (d *Dispatcher) preflight(w http.ResponseWriter, r *http.Request) {
	allowOrigin := d.preflightOrigin(r)
	if allowOrigin == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	header := w.Header()
	writeAllowOrigin(header, allowOrigin)

	if requested := r.Header.Get("Access-Control-Request-Method"); requested != "" {
		header.Set("Access-Control-Allow-Methods", requested)
	}
	if d.allowHeaders != "" {
		header.Set("Access-Control-Allow-Headers", d.allowHeaders)
	} else if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
		header.Set("Access-Control-Allow-Headers", requested)
	}
	header.Set("Access-Control-Max-Age", strconv.Itoa(int(d.maxAge.Seconds())))

	w.WriteHeader(http.StatusNoContent)
}

// preflightOrigin returns the allow-origin value to grant a preflight, or
// empty when the preflight is denied.
func (d *Dispatcher) preflightOrigin(r *http.Request) string {
	public := false
	if target := r.Header.Get("Access-Control-Request-Method"); target != "" {
		if match, err := d.registry.Lookup(target, r.URL.Path); err == nil {
			public = match.Endpoint.Public

			if info := util.RouteInfoFromContext(r.Context()); info != nil {
				info.Pattern = match.Endpoint.Path
			}
		}
	}

	if public {
		return "*"
	}

	originHeader := r.Header.Get("Origin")
	if originHeader == "" {
		return ""
	}

	origin, err := url.Parse(originHeader)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return ""
	}

	if !d.policy.Load()(r, origin) {
		return ""
	}

	return originHeader
}
