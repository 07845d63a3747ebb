package template

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	cache "github.com/patrickmn/go-cache"

	"ecar.org/esign/internal/rest"
)

// NotFoundError reports a template name with no match in the account.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}

// Resolver maps template display names to vendor-assigned template IDs,
// memoizing results for the life of the instance. Entries are never evicted:
// renaming or recreating a template mid-process will keep serving the stale
// ID until the process restarts.
//
// When several templates share a display name the first search result wins;
// the account's template names must be unique for resolution to be
// deterministic.
type Resolver struct {
	api   *rest.Client
	cache *cache.Cache
	mu    sync.Mutex // serializes misses so one search runs per name
}

// NewResolver constructs a Resolver with its own cache.
func NewResolver(api *rest.Client) *Resolver {
	return &Resolver{
		api:   api,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// templateSearch is the subset of the template list response we read.
type templateSearch struct {
	ResultSetSize     string `json:"resultSetSize"`
	EnvelopeTemplates []struct {
		TemplateID string `json:"templateId"`
		Name       string `json:"name"`
	} `json:"envelopeTemplates"`
}

// Resolve returns the template ID for the given display name, cache-first.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if id, found := r.cache.Get(name); found {
		return id.(string), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, found := r.cache.Get(name); found {
		return id.(string), nil
	}

	var result templateSearch
	path := "/templates?search_text=" + url.QueryEscape(name)
	if err := r.api.Do(ctx, "template.search", http.MethodGet, path, nil, &result); err != nil {
		return "", err
	}
	if len(result.EnvelopeTemplates) == 0 {
		return "", &NotFoundError{Name: name}
	}

	id := result.EnvelopeTemplates[0].TemplateID
	r.cache.Set(name, id, cache.NoExpiration)
	return id, nil
}
