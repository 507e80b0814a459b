package pos

import (
	"context"
	"fmt"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/logger"
)

// maxPages is a hard ceiling on the page loop so a feed that keeps moving
// last_page forward cannot spin forever.
const maxPages = 10000

// PageFetcher fetches a single feed page.
type PageFetcher func(ctx context.Context, page int) (*FeedPage, error)

// PageStats summarizes one full walk of a paginated feed.
type PageStats struct {
	PagesFetched   int
	RecordsFetched int
	ReportedTotal  int
}

// TotalMismatch reports whether the feed's reported total disagrees with
// the number of records actually fetched. The upstream integrations have a
// suspected off-by-one in their loop condition; we surface the discrepancy
// instead of guessing which side is right.
func (s *PageStats) TotalMismatch() bool {
	return s.ReportedTotal > 0 && s.RecordsFetched != s.ReportedTotal
}

// Pager walks a paginated feed sequentially, invoking handle for each page.
// Mode selects the stop condition; StartPage is the protocol's native first
// page (1 for the supported vendors).
type Pager struct {
	Mode      string
	StartPage int
}

// NewPager creates a pager with the configured loop mode.
func NewPager(mode string) *Pager {
	if mode == "" {
		mode = config.PageLoopReportedLast
	}
	return &Pager{Mode: mode, StartPage: 1}
}

// FetchAll fetches pages until the stop condition holds, calling handle for
// each page in order. Pages are fetched strictly sequentially. After the
// loop it compares fetched records against the feed's reported total and
// logs a warning on mismatch.
func (p *Pager) FetchAll(ctx context.Context, fetch PageFetcher, handle func(*FeedPage) error) (*PageStats, error) {
	stats := &PageStats{}
	page := p.StartPage
	if page == 0 {
		page = 1
	}

	for {
		feedPage, err := fetch(ctx, page)
		if err != nil {
			return stats, err
		}

		stats.PagesFetched++
		stats.RecordsFetched += len(feedPage.Records)
		if feedPage.Total > 0 {
			stats.ReportedTotal = feedPage.Total
		}

		if err := handle(feedPage); err != nil {
			return stats, err
		}

		done, err := p.done(feedPage)
		if err != nil {
			return stats, err
		}
		if done {
			break
		}

		page++
		if stats.PagesFetched >= maxPages {
			return stats, fmt.Errorf("page loop exceeded %d pages without reaching the last page", maxPages)
		}
	}

	if stats.TotalMismatch() {
		logger.Warnw("Feed total does not match records fetched",
			"reported_total", stats.ReportedTotal,
			"records_fetched", stats.RecordsFetched,
			"pages_fetched", stats.PagesFetched,
			"mode", p.Mode)
	}

	return stats, nil
}

func (p *Pager) done(page *FeedPage) (bool, error) {
	switch p.Mode {
	case config.PageLoopReportedLast, "":
		return page.CurrentPage >= page.LastPage, nil
	case config.PageLoopUntilEmpty:
		return len(page.Records) == 0, nil
	default:
		return false, fmt.Errorf("unsupported page loop mode: %s", p.Mode)
	}
}
