// Package router implements the route table: a per-verb registry of
// segment-classified tries with regex tie-breaking between ambiguous
// dynamic branches.
//
// Declared patterns are split into literal, parameter ("{id}"), and
// wildcard ("{rest*}") segments. Each verb owns a trie whose nodes are
// keyed by raw segment text, so differently named parameters occupy
// separate branches; resolution prefers exact literal children, follows a
// lone dynamic child directly, and otherwise tests the compiled full-path
// matchers of every candidate subtree to pick the single accepting
// terminal.
//
// # Lifecycle
//
// The registry is built single-threaded at startup. Register validates
// the declaration (pattern syntax, duplicate shapes, binding consistency)
// before mutating any trie, so a failed registration leaves the table
// unchanged. Freeze seals the registry; from then on Lookup is lock-free
// and safe for concurrent use.
//
// # Example Usage
//
//	reg := router.NewRegistry()
//	err := reg.Register(&router.Endpoint{
//		Verb:    "GET",
//		Path:    "/content/sites/{siteId}",
//		Name:    "getSite",
//		Handler: getSite,
//		Bindings: []binding.Binding{
//			binding.Path("siteId", binding.String),
//		},
//	})
//	if err != nil {
//		return err
//	}
//	reg.Freeze()
//
//	match, err := reg.Lookup("GET", "/content/sites/42")
package router
