package llm

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubLister struct {
	names []string
	err   error
	calls int
}

func (s *stubLister) ListModels(ctx context.Context) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name   string
		lister *stubLister
		want   string
	}{
		{
			name:   "preferred present",
			lister: &stubLister{names: []string{"models/gemini-pro", "models/gemini-1.5-flash-002", "models/gemini-1.5-flash"}},
			want:   "models/gemini-1.5-flash-002",
		},
		{
			name:   "preferred absent picks first",
			lister: &stubLister{names: []string{"models/gemini-pro", "models/embedding-001"}},
			want:   "models/gemini-pro",
		},
		{
			name:   "empty list",
			lister: &stubLister{names: nil},
			want:   DefaultFallbackModel,
		},
		{
			name:   "listing error",
			lister: &stubLister{names: []string{"models/gemini-1.5-flash"}, err: errors.New("403 billing disabled")},
			want:   DefaultFallbackModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveModel(context.Background(), tt.lister, DefaultPreferredModel, DefaultFallbackModel)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveModel_NilLister(t *testing.T) {
	assert.Equal(t, "fallback", ResolveModel(context.Background(), nil, "x", "fallback"))
}

func TestResolveModel_SkipsBlankNames(t *testing.T) {
	lister := &stubLister{names: []string{"", "models/gemini-pro"}}
	assert.Equal(t, "models/gemini-pro", ResolveModel(context.Background(), lister, "flash", "fallback"))
}

func TestResolver_CachesUntilRefresh(t *testing.T) {
	lister := &stubLister{names: []string{"models/gemini-pro"}}
	r := NewResolver(lister, "", "")

	assert.Equal(t, "models/gemini-pro", r.Model(context.Background()))
	assert.Equal(t, "models/gemini-pro", r.Model(context.Background()))
	assert.Equal(t, 1, lister.calls)
	assert.False(t, r.IsFallback("models/gemini-pro"))

	lister.names = []string{"models/gemini-1.5-flash-latest"}
	assert.Equal(t, "models/gemini-1.5-flash-latest", r.Refresh(context.Background()))
	assert.Equal(t, "models/gemini-1.5-flash-latest", r.Model(context.Background()))
	assert.Equal(t, 2, lister.calls)

	lister.err = errors.New("offline")
	got := r.Refresh(context.Background())
	assert.Equal(t, DefaultFallbackModel, got)
	assert.True(t, r.IsFallback(got))
}

type blockingLister struct {
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingLister) ListModels(ctx context.Context) ([]string, error) {
	if atomic.AddInt32(&b.calls, 1) == 1 {
		close(b.started)
	}
	<-b.release
	return []string{"models/gemini-1.5-flash-001"}, nil
}

func TestResolver_ConcurrentFirstUseListsOnce(t *testing.T) {
	lister := &blockingLister{started: make(chan struct{}), release: make(chan struct{})}
	r := NewResolver(lister, "", "")

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Model(context.Background())
		}(i)
	}

	<-lister.started
	// The cache lock stays free while the listing call is in flight
	_, resolved := r.cached()
	assert.False(t, resolved)

	close(lister.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&lister.calls))
	for _, got := range results {
		assert.Equal(t, "models/gemini-1.5-flash-001", got)
	}
}
