package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/binding"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// Registry holds one route trie per HTTP verb. Registration happens
// single-threaded during startup; Freeze seals the registry, after which
// Lookup is safe for unlimited concurrent use because nothing is written
// again.
type Registry struct {
	tries  map[string]*trie
	shapes map[string]map[string]string // verb -> normalized shape -> declared path
	routes []RouteDescription
	frozen bool
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{
		tries:  make(map[string]*trie),
		shapes: make(map[string]map[string]string),
	}
}

// Register validates an endpoint declaration and adds it to the verb's
// trie. Every check runs before the trie is touched, so a failed
// registration leaves the registry unchanged. Registration errors are
// startup validation failures and must abort boot.
func (r *Registry) Register(ep *Endpoint) error {
	if r.frozen {
		return fmt.Errorf("cannot register %s %s: %w", ep.Verb, ep.Path, util.ErrRegistryFrozen)
	}

	if err := util.ValidateHTTPVerb(ep.Verb); err != nil {
		return util.NewStartupValidationError(ep.Name, ep.Path, err.Error())
	}

	verb := strings.ToUpper(ep.Verb)
	if verb == "OPTIONS" {
		return util.NewStartupValidationError(ep.Name, ep.Path,
			"OPTIONS cannot be registered: preflight is answered by the dispatcher")
	}

	if ep.Handler == nil {
		return util.NewStartupValidationError(ep.Name, ep.Path, "handler must not be nil")
	}

	segments, err := parsePattern(ep.Path)
	if err != nil {
		return util.NewStartupValidationError(ep.Name, ep.Path, err.Error())
	}

	shape := normalizeShape(segments)
	if existing, ok := r.shapes[verb][shape]; ok {
		return util.NewStartupValidationError(ep.Name, ep.Path,
			fmt.Sprintf("duplicate route: same shape as %s", existing))
	}

	if err := validateBindings(ep.Bindings, parameterNames(segments)); err != nil {
		return util.NewStartupValidationError(ep.Name, ep.Path, err.Error())
	}

	ep.Verb = verb

	fragment := newTrie()
	fragment.insert(ep.Path, segments, ep)

	if _, ok := r.tries[verb]; !ok {
		r.tries[verb] = newTrie()
	}
	r.tries[verb].merge(fragment)

	if _, ok := r.shapes[verb]; !ok {
		r.shapes[verb] = make(map[string]string)
	}
	r.shapes[verb][shape] = ep.Path

	r.routes = append(r.routes, RouteDescription{
		Verb:   verb,
		Path:   ep.Path,
		Name:   ep.Name,
		Public: ep.Public,
	})

	return nil
}

// normalizeShape reduces a parsed pattern to its positional shape: literal
// text kept, parameter names erased. Two patterns with the same shape
// would compete for identical request paths.
func normalizeShape(segments []segment) string {
	var shape strings.Builder
	for _, seg := range segments {
		shape.WriteString("/")
		switch seg.kind {
		case segmentLiteral:
			shape.WriteString(seg.raw)
		case segmentParameter:
			shape.WriteString("{}")
		case segmentWildcard:
			shape.WriteString("{*}")
		}
	}
	if shape.Len() == 0 {
		return "/"
	}
	return shape.String()
}

// validateBindings checks the declared bindings against the pattern's
// parameters: every path binding must name a pattern parameter, every
// pattern parameter must have exactly one path binding, named bindings
// must carry a name, and at most one body or binary binding may appear
// because the request body can only be consumed once.
func validateBindings(bindings []binding.Binding, paramNames []string) error {
	params := make(map[string]struct{}, len(paramNames))
	for _, name := range paramNames {
		params[name] = struct{}{}
	}

	seenPath := make(map[string]struct{})
	bodyBindings := 0

	for _, b := range bindings {
		switch b.Kind {
		case binding.KindPath:
			if _, ok := params[b.Name]; !ok {
				return fmt.Errorf("path binding %q does not match any pattern parameter", b.Name)
			}
			if _, dup := seenPath[b.Name]; dup {
				return fmt.Errorf("duplicate path binding %q", b.Name)
			}
			seenPath[b.Name] = struct{}{}

		case binding.KindQuery, binding.KindHeader, binding.KindCookie:
			if b.Name == "" {
				return fmt.Errorf("%s binding must carry a name", b.Kind)
			}

		case binding.KindBody, binding.KindBinary:
			bodyBindings++
			if bodyBindings > 1 {
				return errors.New("at most one body or binary binding is allowed")
			}
		}
	}

	if len(seenPath) != len(paramNames) {
		return fmt.Errorf("pattern declares %d parameters but %d are bound", len(paramNames), len(seenPath))
	}

	return nil
}

// Freeze seals the registry. Further Register calls fail, and lookups
// become safe for concurrent use.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry has been sealed.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Lookup resolves a request verb and path to a registered endpoint. A
// verb with no routes at all yields a verb-not-supported error; a known
// verb with no matching path yields a route-not-found error; several
// equally plausible dynamic routes yield an ambiguous-route error.
func (r *Registry) Lookup(verb, path string) (*Match, error) {
	t, ok := r.tries[strings.ToUpper(verb)]
	if !ok {
		return nil, util.NewVerbNotSupportedError(verb, path)
	}

	match, err := t.resolve(path)
	if err != nil {
		var ambiguous *util.AmbiguousRouteError
		if errors.As(err, &ambiguous) {
			return nil, err
		}
		return nil, util.NewRouteNotFoundError(verb, path)
	}

	return match, nil
}
