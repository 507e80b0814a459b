package pos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/httpclient"
)

func TestBiotrackCatalogPageIsNotPaginated(t *testing.T) {
	t.Parallel()

	client := NewBiotrackClient(httpclient.NewDefaultClient(0))
	_, err := client.FetchCatalogPage(context.Background(), Scope{}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch-based")
}

func TestBiotrackFetchConsumerPage(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotHeaders = r.Header.Clone()
		_, _ = w.Write([]byte(`{"data":[{"customerid":"77","first_name":"Ann"}],"current_page":1,"last_page":1,"total":1}`))
	}))
	defer server.Close()

	scope := Scope{
		Endpoint: server.URL,
		APIKey:   "bt-key",
		PosOrgID: "bt-55",
		UserID:   "u-1",
	}
	client := NewBiotrackClient(httpclient.NewDefaultClient(0))
	page, err := client.FetchConsumerPage(context.Background(), scope, 1)
	require.NoError(t, err)

	assert.Equal(t, "/consumers?page=1", gotPath)
	assert.Equal(t, "bt-key", gotHeaders.Get("x-biotrack-api-key"))
	assert.Equal(t, "bt-55", gotHeaders.Get("x-biotrack-org-id"))
	assert.Equal(t, "u-1", gotHeaders.Get("x-biotrack-user-id"))
	require.Len(t, page.Records, 1)
	assert.Equal(t, "77", page.Records[0].PosID)
}

func TestParseInventoryCSV(t *testing.T) {
	t.Parallel()

	csv := strings.Join([]string{
		"inventoryid,name,quantity,uom",
		"b1,Sour Diesel,40,gm",
		"b2,Preroll,3,ea",
	}, "\n")

	records, err := ParseInventoryCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b1", records[0].PosID)
	assert.Equal(t, "b2", records[1].PosID)

	// rows decode through the shared inventory path
	item, err := DecodeInventoryItem(records[0])
	require.NoError(t, err)
	assert.Equal(t, "Sour Diesel", item.Name)
	assert.Equal(t, float64(40), item.Quantity)
	assert.Equal(t, PricingWeight, item.PricingType)
}

func TestParseInventoryCSVIDColumnFallback(t *testing.T) {
	t.Parallel()

	records, err := ParseInventoryCSV(strings.NewReader("id,name,quantity\nx1,Thing,5\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x1", records[0].PosID)
}

func TestParseInventoryCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		csv  string
	}{
		{name: "empty input", csv: ""},
		{name: "no id column", csv: "name,quantity\nThing,5\n"},
		{name: "ragged row", csv: "inventoryid,name\nb1,Thing,extra,fields\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseInventoryCSV(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestBatchPage(t *testing.T) {
	t.Parallel()

	records := []RemoteRecord{{PosID: "a"}, {PosID: "b"}}
	page := BatchPage(records)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.LastPage)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Records, 2)
}

func TestClientFactory(t *testing.T) {
	t.Parallel()

	factory := NewClientFactory()

	for _, vendor := range []string{config.VendorFreeway, config.VendorBiotrack} {
		client, err := factory.CreateClient(vendor)
		require.NoError(t, err)
		assert.NotNil(t, client)
	}

	_, err := factory.CreateClient("square")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported POS vendor")
}
