package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skillboard/internal/analysis"
	"skillboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableWith(n int) *analysis.RuleTable {
	rules := make([]models.Rule, n)
	return &analysis.RuleTable{Rules: rules, Source: "test"}
}

func TestTableCache_LoadsOnce(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	cache := NewTableCache(func(ctx context.Context) (*analysis.RuleTable, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return tableWith(3), nil
	})

	var wg sync.WaitGroup
	results := make([]*analysis.RuleTable, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = table
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.True(t, cache.Loaded())
}

func TestTableCache_FailureNotCached(t *testing.T) {
	var calls int
	cache := NewTableCache(func(ctx context.Context) (*analysis.RuleTable, error) {
		calls++
		if calls == 1 {
			return nil, analysis.ErrDataNotFound
		}
		return tableWith(2), nil
	})

	_, err := cache.Get(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrDataNotFound))
	assert.False(t, cache.Loaded())
	assert.Nil(t, cache.Peek())

	table, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 2, calls)
}

func TestTableCache_Reload(t *testing.T) {
	var calls int
	cache := NewTableCache(func(ctx context.Context) (*analysis.RuleTable, error) {
		calls++
		switch calls {
		case 1:
			return tableWith(1), nil
		case 2:
			return nil, errors.New("disk gone")
		default:
			return tableWith(5), nil
		}
	})

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	_, err = cache.Reload(context.Background())
	require.Error(t, err)
	assert.Same(t, first, cache.Peek())

	fresh, err := cache.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Len())
	assert.Same(t, fresh, cache.Peek())
}

func TestSessions(t *testing.T) {
	s := NewSessions()
	id := NewSessionID()

	assert.True(t, ValidSessionID(id))
	assert.False(t, ValidSessionID("not-a-session"))
	assert.Equal(t, models.PageDashboard, s.Current(id))
	assert.Equal(t, 0, s.Len())

	s.Navigate(id, models.PageAssistant)
	assert.Equal(t, models.PageAssistant, s.Current(id))
	assert.Equal(t, models.PageDashboard, s.Current(NewSessionID()))
	assert.Equal(t, 1, s.Len())
}

func TestSessions_Prune(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions()
	s.now = func() time.Time { return now }

	s.Navigate("old", models.PageExport)
	now = now.Add(2 * time.Hour)
	s.Navigate("fresh", models.PageExplorer)

	removed := s.Prune(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, models.PageDashboard, s.Current("old"))
	assert.Equal(t, models.PageExplorer, s.Current("fresh"))
}
