package router

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

// node is one segment-keyed level of a route trie. Children are keyed by
// raw segment text, so "{id}" and "{siteId}" are distinct siblings. A node
// can be an intermediate hop for one route and the terminal of another at
// the same time.
type node struct {
	segment  string
	children map[string]*node

	isParameter bool
	isWildcard  bool

	// Terminal metadata. A non-nil endpoint marks the node terminal;
	// matcher is nil for all-literal routes, which never need it.
	endpoint     *Endpoint
	declaredPath string
	matcher      *regexp.Regexp
}

func newNode(seg segment) *node {
	return &node{
		segment:     seg.raw,
		children:    make(map[string]*node),
		isParameter: seg.kind == segmentParameter,
		isWildcard:  seg.kind == segmentWildcard,
	}
}

// dynamicChildren returns the parameter and wildcard children of n.
func (n *node) dynamicChildren() []*node {
	var out []*node
	for _, child := range n.children {
		if child.isParameter || child.isWildcard {
			out = append(out, child)
		}
	}
	return out
}

// trie is a per-verb routing tree. It is built single-threaded during
// registration and must not be mutated once lookups begin; resolve takes
// no locks.
type trie struct {
	root *node
}

func newTrie() *trie {
	return &trie{root: &node{children: make(map[string]*node)}}
}

// insert adds one parsed pattern to the trie, creating nodes as needed.
// A wildcard segment terminates consumption, so the terminal lands on the
// wildcard node itself.
func (t *trie) insert(pattern string, segments []segment, ep *Endpoint) {
	current := t.root

	for _, seg := range segments {
		child, ok := current.children[seg.raw]
		if !ok {
			child = newNode(seg)
			current.children[seg.raw] = child
		}
		current = child

		if seg.kind == segmentWildcard {
			break
		}
	}

	current.endpoint = ep
	current.declaredPath = pattern
	current.matcher = compileMatcher(segments)
}

// compileMatcher builds the anchored full-path regex for a parsed pattern:
// literals are quoted verbatim, parameters capture one path component, and
// a wildcard captures everything left. It returns nil when every segment
// is literal.
func compileMatcher(segments []segment) *regexp.Regexp {
	dynamic := false
	for _, seg := range segments {
		if seg.kind != segmentLiteral {
			dynamic = true
			break
		}
	}
	if !dynamic {
		return nil
	}

	var pattern strings.Builder
	pattern.WriteString("^")

	for _, seg := range segments {
		pattern.WriteString("/")

		switch seg.kind {
		case segmentLiteral:
			pattern.WriteString(regexp.QuoteMeta(seg.raw))
		case segmentParameter:
			pattern.WriteString("(?P<")
			pattern.WriteString(seg.name)
			pattern.WriteString(">[^/]+)")
		case segmentWildcard:
			pattern.WriteString("(?P<")
			pattern.WriteString(seg.name)
			pattern.WriteString(">.+)")
		}
	}

	pattern.WriteString("$")

	// Capture names are validated at classification and literals are
	// quoted, so compilation cannot fail.
	return regexp.MustCompile(pattern.String())
}

// resolve descends the trie one request segment at a time. An exact
// literal child always wins over dynamic siblings; a lone dynamic child is
// followed without further checks; multiple dynamic siblings are
// disambiguated by testing every compiled matcher in their subtrees
// against the full request path. Descent never backtracks: committing to
// a literal subtree is final even if a dynamic sibling could have matched
// deeper.
func (t *trie) resolve(path string) (*Match, error) {
	current := t.root

	for _, seg := range splitPath(path) {
		if child, ok := current.children[seg]; ok && !child.isParameter && !child.isWildcard {
			current = child
			continue
		}

		candidates := current.dynamicChildren()
		switch len(candidates) {
		case 0:
			return nil, util.ErrRouteNotFound
		case 1:
			current = candidates[0]
		default:
			return tieBreak(candidates, path)
		}

		if current.isWildcard {
			// The wildcard consumes the rest of the path.
			return terminalMatch(current)
		}
	}

	return terminalMatch(current)
}

// terminalMatch converts a node into a Match, or reports not-found when
// the node carries no endpoint.
func terminalMatch(n *node) (*Match, error) {
	if n.endpoint == nil {
		return nil, util.ErrRouteNotFound
	}

	return &Match{Endpoint: n.endpoint, matcher: n.matcher}, nil
}

// tieBreak disambiguates sibling dynamic branches by running every
// compiled matcher reachable below them against the full request path.
// Exactly one accepting terminal wins; several accepting terminals mean
// the route table itself is ambiguous for this path.
func tieBreak(candidates []*node, path string) (*Match, error) {
	var accepted []*node
	for _, candidate := range candidates {
		collectAccepting(candidate, path, &accepted)
	}

	switch len(accepted) {
	case 0:
		return nil, util.ErrRouteNotFound
	case 1:
		terminal := accepted[0]
		return &Match{Endpoint: terminal.endpoint, matcher: terminal.matcher, TieBroken: true}, nil
	default:
		patterns := make([]string, 0, len(accepted))
		for _, terminal := range accepted {
			patterns = append(patterns, terminal.declaredPath)
		}
		sort.Strings(patterns)
		return nil, util.NewAmbiguousRouteError(path, patterns)
	}
}

// collectAccepting appends every terminal in the subtree rooted at n whose
// matcher accepts the full request path.
func collectAccepting(n *node, path string, out *[]*node) {
	if n.endpoint != nil && n.matcher != nil && n.matcher.MatchString(path) {
		*out = append(*out, n)
	}
	for _, child := range n.children {
		collectAccepting(child, path, out)
	}
}

// merge folds a fragment trie holding a single route chain into this trie.
// The walk descends only through children whose raw segment text matches
// exactly, so "{id}" and "{siteId}" stay separate branches and a literal
// is never absorbed into a parameter node. On divergence the remaining
// fragment subtree is spliced in wholesale; when the fragment is consumed
// entirely inside existing nodes, its terminal metadata is copied onto the
// destination node without touching any existing flags or children.
func (t *trie) merge(fragment *trie) {
	dst := t.root
	src := fragment.root

	for {
		var next *node
		for _, child := range src.children {
			next = child
		}
		if next == nil {
			break
		}

		existing, ok := dst.children[next.segment]
		if !ok {
			dst.children[next.segment] = next
			return
		}

		dst = existing
		src = next
	}

	if src.endpoint != nil {
		dst.endpoint = src.endpoint
		dst.declaredPath = src.declaredPath
		dst.matcher = src.matcher
	}
}

// Match is the outcome of a successful route resolution.
type Match struct {
	// Endpoint is the registered endpoint the path resolved to.
	Endpoint *Endpoint

	// TieBroken reports that regex tie-breaking between sibling dynamic
	// branches was needed to produce this match.
	TieBroken bool

	matcher *regexp.Regexp
}

// PathVars extracts the declared path parameters from the request path
// using the compiled matcher. All-literal routes have no parameters and
// return an empty map.
func (m *Match) PathVars(path string) map[string]string {
	vars := make(map[string]string)
	if m.matcher == nil {
		return vars
	}

	matches := m.matcher.FindStringSubmatch(path)
	if matches == nil {
		return vars
	}

	for i, name := range m.matcher.SubexpNames() {
		if i > 0 && name != "" && i < len(matches) {
			vars[name] = matches[i]
		}
	}

	return vars
}
