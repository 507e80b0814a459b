package pos

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/canopyhq/pos-sync-server/internal/httpclient"
)

// freewayClient speaks the MJ Freeway feed protocol.
// Feed format: GET {base}/catalog?available_online=1&page=N and
// GET {base}/consumers?page=N[&per_page=M], response body
// {data: [...], current_page, last_page, total}. Page numbering starts at 1.
type freewayClient struct {
	httpClient httpclient.Client
}

// NewFreewayClient creates a new MJ Freeway client
func NewFreewayClient(httpClient httpclient.Client) Client {
	return &freewayClient{httpClient: httpClient}
}

func (c *freewayClient) headers(scope Scope) map[string]string {
	h := map[string]string{
		"x-mjf-api-key":         scope.APIKey,
		"x-mjf-organization-id": scope.PosOrgID,
	}
	if scope.FacilityID != "" {
		h["x-mjf-facility-id"] = scope.FacilityID
	}
	if scope.UserID != "" {
		h["x-mjf-user-id"] = scope.UserID
	}
	return h
}

// FetchCatalogPage fetches one page of the inventory feed
func (c *freewayClient) FetchCatalogPage(ctx context.Context, scope Scope, page int) (*FeedPage, error) {
	url := fmt.Sprintf("%s/catalog?available_online=1&page=%d", scope.Endpoint, page)
	body, err := c.httpClient.Get(ctx, url, c.headers(scope))
	if err != nil {
		return nil, err
	}
	return parseFeedPage(body, "productId")
}

// FetchConsumerPage fetches one page of the customer feed
func (c *freewayClient) FetchConsumerPage(ctx context.Context, scope Scope, page int) (*FeedPage, error) {
	url := fmt.Sprintf("%s/consumers?page=%d", scope.Endpoint, page)
	if scope.PerPage > 0 {
		url = fmt.Sprintf("%s&per_page=%d", url, scope.PerPage)
	}
	body, err := c.httpClient.Get(ctx, url, c.headers(scope))
	if err != nil {
		return nil, err
	}
	return parseFeedPage(body, "consumerId")
}

// parseFeedPage decodes the common {data, current_page, last_page, total}
// envelope. gjson is used deliberately: the POS feeds are loosely typed and
// hand back numbers as strings often enough that strict struct decoding
// breaks on real payloads.
func parseFeedPage(body []byte, idField string) (*FeedPage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("malformed feed response: not valid JSON")
	}

	root := gjson.ParseBytes(body)
	data := root.Get("data")
	if !data.Exists() || !data.IsArray() {
		return nil, fmt.Errorf("malformed feed response: missing data array")
	}

	page := &FeedPage{
		CurrentPage: int(root.Get("current_page").Int()),
		LastPage:    int(root.Get("last_page").Int()),
		Total:       int(root.Get("total").Int()),
	}

	items := data.Array()
	page.Records = make([]RemoteRecord, 0, len(items))
	for _, item := range items {
		posID := item.Get(idField).String()
		if posID == "" {
			posID = item.Get("id").String()
		}
		page.Records = append(page.Records, RemoteRecord{
			PosID: posID,
			Raw:   []byte(item.Raw),
		})
	}

	return page, nil
}
