package pos

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/canopyhq/pos-sync-server/internal/httpclient"
)

// biotrackClient speaks the Biotrack feed protocol. Customers arrive over
// the paginated HTTP feed; inventory arrives as a flat CSV snapshot that is
// turned into a single in-memory batch instead of paginated HTTP.
type biotrackClient struct {
	httpClient httpclient.Client
}

// NewBiotrackClient creates a new Biotrack client
func NewBiotrackClient(httpClient httpclient.Client) Client {
	return &biotrackClient{httpClient: httpClient}
}

func (c *biotrackClient) headers(scope Scope) map[string]string {
	h := map[string]string{
		"x-biotrack-api-key": scope.APIKey,
		"x-biotrack-org-id":  scope.PosOrgID,
	}
	if scope.UserID != "" {
		h["x-biotrack-user-id"] = scope.UserID
	}
	return h
}

// FetchCatalogPage is not part of the Biotrack protocol; inventory comes in
// as a CSV batch via ParseInventoryCSV and BatchPage.
func (*biotrackClient) FetchCatalogPage(_ context.Context, _ Scope, _ int) (*FeedPage, error) {
	return nil, fmt.Errorf("biotrack inventory is batch-based, not paginated")
}

// FetchConsumerPage fetches one page of the customer feed.
// Page numbering starts at 1.
func (c *biotrackClient) FetchConsumerPage(ctx context.Context, scope Scope, page int) (*FeedPage, error) {
	url := fmt.Sprintf("%s/consumers?page=%d", scope.Endpoint, page)
	if scope.PerPage > 0 {
		url = fmt.Sprintf("%s&per_page=%d", url, scope.PerPage)
	}
	body, err := c.httpClient.Get(ctx, url, c.headers(scope))
	if err != nil {
		return nil, err
	}
	return parseFeedPage(body, "customerid")
}

// ParseInventoryCSV reads a Biotrack inventory export and converts each row
// into a RemoteRecord whose payload is a JSON object keyed by the CSV
// header, so the shared decode path applies. The first row must be the
// header.
func ParseInventoryCSV(r io.Reader) ([]RemoteRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idIdx := -1
	for i, col := range header {
		if col == "inventoryid" || col == "id" {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("CSV header missing inventoryid column")
	}

	var records []RemoteRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				fields[col] = row[i]
			}
		}

		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode CSV row: %w", err)
		}

		records = append(records, RemoteRecord{
			PosID: row[idIdx],
			Raw:   raw,
		})
	}

	return records, nil
}

// BatchPage wraps an in-memory record batch as a single feed page so batch
// and paginated inventories share the reconciliation path.
func BatchPage(records []RemoteRecord) *FeedPage {
	return &FeedPage{
		Records:     records,
		CurrentPage: 1,
		LastPage:    1,
		Total:       len(records),
	}
}
