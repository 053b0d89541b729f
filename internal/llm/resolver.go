package llm

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Default model selection
const (
	DefaultPreferredModel = "gemini-1.5-flash"
	DefaultFallbackModel  = "models/gemini-1.5-flash"
)

// ModelLister lists the model identifiers available to the API key
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Generator produces text for a prompt with the named model
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ResolveModel picks the first listed model containing preferred, else the
// first listed model, else fallback. A listing failure yields fallback.
func ResolveModel(ctx context.Context, lister ModelLister, preferred, fallback string) string {
	if lister == nil {
		return fallback
	}
	names, err := lister.ListModels(ctx)
	if err != nil {
		return fallback
	}
	return pickModel(names, preferred, fallback)
}

func pickModel(names []string, preferred, fallback string) string {
	if preferred != "" {
		for _, name := range names {
			if strings.Contains(name, preferred) {
				return name
			}
		}
	}
	for _, name := range names {
		if name != "" {
			return name
		}
	}
	return fallback
}

// Resolver caches the resolved model name
type Resolver struct {
	lister    ModelLister
	preferred string
	fallback  string

	group    singleflight.Group
	mu       sync.Mutex
	model    string
	resolved bool
}

// NewResolver creates a resolver; empty preferred/fallback use the defaults
func NewResolver(lister ModelLister, preferred, fallback string) *Resolver {
	if preferred == "" {
		preferred = DefaultPreferredModel
	}
	if fallback == "" {
		fallback = DefaultFallbackModel
	}
	return &Resolver{
		lister:    lister,
		preferred: preferred,
		fallback:  fallback,
	}
}

// Model returns the resolved model, resolving on first use. Concurrent first
// callers share one listing call; the lock is never held across it.
func (r *Resolver) Model(ctx context.Context) string {
	if model, ok := r.cached(); ok {
		return model
	}

	v, _, _ := r.group.Do("resolve", func() (interface{}, error) {
		if model, ok := r.cached(); ok {
			return model, nil
		}
		model := ResolveModel(ctx, r.lister, r.preferred, r.fallback)

		r.mu.Lock()
		defer r.mu.Unlock()
		// A concurrent Refresh wins
		if !r.resolved {
			r.model = model
			r.resolved = true
		}
		return r.model, nil
	})
	return v.(string)
}

func (r *Resolver) cached() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model, r.resolved
}

// Refresh re-runs model discovery
func (r *Resolver) Refresh(ctx context.Context) string {
	model := ResolveModel(ctx, r.lister, r.preferred, r.fallback)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.model = model
	r.resolved = true
	return model
}

// IsFallback reports whether model is the hard-coded fallback
func (r *Resolver) IsFallback(model string) bool {
	return model == r.fallback
}
