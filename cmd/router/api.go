package main

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/avrouter/internal/binding"
	"github.com/vyrodovalexey/avrouter/internal/router"
	"github.com/vyrodovalexey/avrouter/internal/util"
)

// The example content API: an in-memory site/page store whose routes
// exercise every binding kind the router supports, plus a public
// documentation tree behind a greedy wildcard.

type site struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Domain  string    `json:"domain"`
	Created time.Time `json:"created"`
}

type siteSettings struct {
	SiteID   string `json:"siteId"`
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

type page struct {
	ID      uuid.UUID `json:"id"`
	SiteID  string    `json:"siteId"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Updated time.Time `json:"updated"`
}

type createSiteRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type updatePageRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type assetInfo struct {
	SiteID      string `json:"siteId"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// contentAPI backs the example routes.
type contentAPI struct {
	mu      sync.RWMutex
	sites   map[string]*site
	pages   map[string]map[uuid.UUID]*page
	docs    map[string]string
	started time.Time
}

func newContentAPI() *contentAPI {
	api := &contentAPI{
		sites:   make(map[string]*site),
		pages:   make(map[string]map[uuid.UUID]*page),
		started: time.Now(),
		docs: map[string]string{
			"getting-started.md": "# Getting Started\n\nRegister routes, freeze, serve.\n",
			"reference/routes.md": "# Route Patterns\n\nLiterals, {parameters}, and trailing {wildcards*}.\n",
		},
	}

	blog := &site{ID: "blog", Name: "Acme Blog", Domain: "blog.example.com", Created: api.started}
	docs := &site{ID: "docs", Name: "Acme Docs", Domain: "docs.example.com", Created: api.started}
	api.sites[blog.ID] = blog
	api.sites[docs.ID] = docs

	welcome := &page{
		ID:      uuid.New(),
		SiteID:  blog.ID,
		Title:   "Welcome",
		Body:    "First post.",
		Updated: api.started,
	}
	api.pages[blog.ID] = map[uuid.UUID]*page{welcome.ID: welcome}

	return api
}

// registerAPI declares the example routes. Registration order is not
// significant; the registry merges each route into the per-verb tables.
func registerAPI(reg *router.Registry, api *contentAPI) error {
	endpoints := []*router.Endpoint{
		{
			Verb:    http.MethodGet,
			Path:    "/status",
			Name:    "status",
			Public:  true,
			Handler: api.status,
		},
		{
			Verb:    http.MethodGet,
			Path:    "/content/sites",
			Name:    "listSites",
			Handler: api.listSites,
			Bindings: []binding.Binding{
				binding.QueryDefault("limit", binding.Int, "50"),
			},
		},
		{
			Verb:    http.MethodPost,
			Path:    "/content/sites",
			Name:    "createSite",
			Handler: api.createSite,
			Bindings: []binding.Binding{
				binding.Body(func() interface{} { return &createSiteRequest{} }),
			},
		},
		{
			Verb:    http.MethodGet,
			Path:    "/content/sites/{siteId}",
			Name:    "getSite",
			Handler: api.getSite,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
			},
		},
		{
			Verb:    http.MethodDelete,
			Path:    "/content/sites/{siteId}",
			Name:    "deleteSite",
			Handler: api.deleteSite,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
			},
		},
		{
			Verb:    http.MethodGet,
			Path:    "/content/sites/{siteId}/settings",
			Name:    "siteSettings",
			Handler: api.siteSettingsFor,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
			},
		},
		{
			Verb:    http.MethodGet,
			Path:    "/content/sites/{siteId}/pages",
			Name:    "listPages",
			Handler: api.listPages,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
				binding.QueryDefault("limit", binding.Int, "20"),
			},
		},
		{
			Verb:    http.MethodGet,
			Path:    "/content/sites/{siteId}/pages/{pageId}",
			Name:    "getPage",
			Handler: api.getPage,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
				binding.Path("pageId", binding.UUID),
			},
		},
		{
			Verb:    http.MethodPut,
			Path:    "/content/sites/{siteId}/pages/{pageId}",
			Name:    "updatePage",
			Handler: api.updatePage,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
				binding.Path("pageId", binding.UUID),
				binding.Body(func() interface{} { return &updatePageRequest{} }),
			},
		},
		{
			Verb:    http.MethodPost,
			Path:    "/content/sites/{siteId}/assets",
			Name:    "uploadAsset",
			Handler: api.uploadAsset,
			Bindings: []binding.Binding{
				binding.Path("siteId", binding.String),
				binding.Binary(),
				binding.Header("Content-Type", binding.String),
			},
		},
		{
			Verb:    http.MethodGet,
			Path:    "/session",
			Name:    "session",
			Handler: api.session,
			Bindings: []binding.Binding{
				binding.Cookie("sessionId", binding.String),
				binding.Header("User-Agent", binding.String),
			},
		},
		{
			Verb:    http.MethodGet,
			Path:    "/api-docs/{path*}",
			Name:    "apiDocs",
			Public:  true,
			Handler: api.doc,
			Bindings: []binding.Binding{
				binding.Path("path", binding.String),
			},
		},
	}

	for _, ep := range endpoints {
		if err := reg.Register(ep); err != nil {
			return fmt.Errorf("register %s %s: %w", ep.Verb, ep.Path, err)
		}
	}

	return nil
}

func (a *contentAPI) status(_ *router.Call) (interface{}, error) {
	return map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(a.started).String(),
	}, nil
}

func (a *contentAPI) listSites(c *router.Call) (interface{}, error) {
	limit := c.Int(0)

	a.mu.RLock()
	defer a.mu.RUnlock()

	sites := make([]*site, 0, len(a.sites))
	for _, s := range a.sites {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })

	if limit >= 0 && limit < len(sites) {
		sites = sites[:limit]
	}
	return sites, nil
}

func (a *contentAPI) createSite(c *router.Call) (interface{}, error) {
	req := c.Arg(0).(*createSiteRequest)
	if req.ID == "" || req.Name == "" {
		return nil, util.NewServerError(http.StatusUnprocessableEntity, "site id and name are required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.sites[req.ID]; exists {
		return nil, util.NewServerError(http.StatusConflict, fmt.Sprintf("site %q already exists", req.ID))
	}

	s := &site{ID: req.ID, Name: req.Name, Domain: req.Domain, Created: time.Now()}
	a.sites[s.ID] = s

	c.SetHeader("Location", "/content/sites/"+s.ID)
	return s, nil
}

func (a *contentAPI) getSite(c *router.Call) (interface{}, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.sites[c.String(0)]
	if !ok {
		return nil, util.NewServerError(http.StatusNotFound, "site not found")
	}
	return s, nil
}

func (a *contentAPI) deleteSite(c *router.Call) (interface{}, error) {
	siteID := c.String(0)

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sites[siteID]; !ok {
		return nil, util.NewServerError(http.StatusNotFound, "site not found")
	}
	delete(a.sites, siteID)
	delete(a.pages, siteID)

	return nil, nil
}

func (a *contentAPI) siteSettingsFor(c *router.Call) (interface{}, error) {
	siteID := c.String(0)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.sites[siteID]; !ok {
		return nil, util.NewServerError(http.StatusNotFound, "site not found")
	}
	return &siteSettings{SiteID: siteID, Theme: "default", Language: "en"}, nil
}

func (a *contentAPI) listPages(c *router.Call) (interface{}, error) {
	siteID := c.String(0)
	limit := c.Int(1)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, ok := a.sites[siteID]; !ok {
		return nil, util.NewServerError(http.StatusNotFound, "site not found")
	}

	pages := make([]*page, 0, len(a.pages[siteID]))
	for _, p := range a.pages[siteID] {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Title < pages[j].Title })

	if limit >= 0 && limit < len(pages) {
		pages = pages[:limit]
	}
	return pages, nil
}

func (a *contentAPI) getPage(c *router.Call) (interface{}, error) {
	siteID := c.String(0)
	pageID := c.UUID(1)

	a.mu.RLock()
	defer a.mu.RUnlock()

	p, ok := a.pages[siteID][pageID]
	if !ok {
		return nil, util.NewServerError(http.StatusNotFound, "page not found")
	}
	return p, nil
}

func (a *contentAPI) updatePage(c *router.Call) (interface{}, error) {
	siteID := c.String(0)
	pageID := c.UUID(1)
	req := c.Arg(2).(*updatePageRequest)

	if req.Title == "" {
		return nil, util.NewServerError(http.StatusUnprocessableEntity, "page title is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.sites[siteID]; !ok {
		return nil, util.NewServerError(http.StatusNotFound, "site not found")
	}
	if a.pages[siteID] == nil {
		a.pages[siteID] = make(map[uuid.UUID]*page)
	}

	p := &page{ID: pageID, SiteID: siteID, Title: req.Title, Body: req.Body, Updated: time.Now()}
	a.pages[siteID][pageID] = p

	return p, nil
}

func (a *contentAPI) uploadAsset(c *router.Call) (interface{}, error) {
	siteID := c.String(0)
	stream := c.Stream(1)
	contentType := c.String(2)
	defer func() { _ = stream.Body.Close() }()

	a.mu.RLock()
	_, ok := a.sites[siteID]
	a.mu.RUnlock()
	if !ok {
		return nil, util.NewServerError(http.StatusNotFound, "site not found")
	}

	size, err := io.Copy(io.Discard, stream.Body)
	if err != nil {
		return nil, fmt.Errorf("reading asset body: %w", err)
	}

	return &assetInfo{SiteID: siteID, Size: size, ContentType: contentType}, nil
}

func (a *contentAPI) session(c *router.Call) (interface{}, error) {
	return map[string]string{
		"sessionId": c.String(0),
		"userAgent": c.String(1),
	}, nil
}

// doc serves the documentation tree. The wildcard capture is the
// remainder of the request path, so nested documents resolve through a
// single route.
func (a *contentAPI) doc(c *router.Call) (interface{}, error) {
	name := strings.TrimPrefix(c.String(0), "/")

	content, ok := a.docs[name]
	if !ok {
		return nil, util.NewServerError(http.StatusNotFound, "no such document")
	}

	c.SetHeader("Content-Type", "text/markdown; charset=utf-8")
	return []byte(content), nil
}
