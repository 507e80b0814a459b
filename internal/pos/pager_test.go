package pos

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyhq/pos-sync-server/internal/config"
)

func feedPages(pages ...*FeedPage) PageFetcher {
	return func(_ context.Context, page int) (*FeedPage, error) {
		if page < 1 || page > len(pages) {
			return nil, fmt.Errorf("unexpected page request: %d", page)
		}
		return pages[page-1], nil
	}
}

func pageOf(n int, current, last, total int) *FeedPage {
	records := make([]RemoteRecord, n)
	for i := range records {
		records[i] = RemoteRecord{PosID: fmt.Sprintf("p%d-%d", current, i)}
	}
	return &FeedPage{Records: records, CurrentPage: current, LastPage: last, Total: total}
}

func TestFetchAllReportedLast(t *testing.T) {
	t.Parallel()

	pager := NewPager(config.PageLoopReportedLast)
	var handled int
	stats, err := pager.FetchAll(context.Background(),
		feedPages(
			pageOf(2, 1, 3, 5),
			pageOf(2, 2, 3, 5),
			pageOf(1, 3, 3, 5),
		),
		func(p *FeedPage) error {
			handled += len(p.Records)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.PagesFetched)
	assert.Equal(t, 5, stats.RecordsFetched)
	assert.Equal(t, 5, handled)
	assert.False(t, stats.TotalMismatch())
}

func TestFetchAllUntilEmpty(t *testing.T) {
	t.Parallel()

	// last_page claims 2, but the until-empty mode keeps going to the
	// first empty page
	pager := NewPager(config.PageLoopUntilEmpty)
	stats, err := pager.FetchAll(context.Background(),
		feedPages(
			pageOf(2, 1, 2, 0),
			pageOf(2, 2, 2, 0),
			pageOf(1, 3, 2, 0),
			pageOf(0, 4, 2, 0),
		),
		func(*FeedPage) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 4, stats.PagesFetched)
	assert.Equal(t, 5, stats.RecordsFetched)
}

func TestFetchAllSinglePage(t *testing.T) {
	t.Parallel()

	pager := NewPager("")
	stats, err := pager.FetchAll(context.Background(),
		feedPages(pageOf(3, 1, 1, 3)),
		func(*FeedPage) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PagesFetched)
	assert.Equal(t, 3, stats.RecordsFetched)
}

func TestFetchAllSurfacesTotalMismatch(t *testing.T) {
	t.Parallel()

	// the feed reports total=10 but only hands back 3 records; the walk
	// still succeeds, with the mismatch visible in the stats
	pager := NewPager(config.PageLoopReportedLast)
	stats, err := pager.FetchAll(context.Background(),
		feedPages(pageOf(3, 1, 1, 10)),
		func(*FeedPage) error { return nil })
	require.NoError(t, err)
	assert.True(t, stats.TotalMismatch())
	assert.Equal(t, 10, stats.ReportedTotal)
	assert.Equal(t, 3, stats.RecordsFetched)
}

func TestFetchAllPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("feed down")
	pager := NewPager(config.PageLoopReportedLast)
	_, err := pager.FetchAll(context.Background(),
		func(_ context.Context, page int) (*FeedPage, error) {
			if page == 2 {
				return nil, fetchErr
			}
			return pageOf(1, 1, 3, 3), nil
		},
		func(*FeedPage) error { return nil })
	assert.ErrorIs(t, err, fetchErr)
}

func TestFetchAllPropagatesHandleError(t *testing.T) {
	t.Parallel()

	handleErr := errors.New("bad page")
	pager := NewPager(config.PageLoopReportedLast)
	_, err := pager.FetchAll(context.Background(),
		feedPages(pageOf(1, 1, 1, 1)),
		func(*FeedPage) error { return handleErr })
	assert.ErrorIs(t, err, handleErr)
}

func TestFetchAllStopsRunawayFeed(t *testing.T) {
	t.Parallel()

	// last_page always one ahead of current_page
	pager := NewPager(config.PageLoopReportedLast)
	_, err := pager.FetchAll(context.Background(),
		func(_ context.Context, page int) (*FeedPage, error) {
			return &FeedPage{
				Records:     []RemoteRecord{{PosID: "p"}},
				CurrentPage: page,
				LastPage:    page + 1,
			}, nil
		},
		func(*FeedPage) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page loop exceeded")
}

func TestFetchAllRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	pager := &Pager{Mode: "guess", StartPage: 1}
	_, err := pager.FetchAll(context.Background(),
		feedPages(pageOf(1, 1, 1, 1)),
		func(*FeedPage) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported page loop mode")
}
