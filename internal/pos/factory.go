package pos

import (
	"fmt"

	"github.com/canopyhq/pos-sync-server/internal/config"
	"github.com/canopyhq/pos-sync-server/internal/httpclient"
)

// ClientFactory creates POS clients by vendor
//
//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go ClientFactory
type ClientFactory interface {
	// CreateClient returns the client for the given vendor
	CreateClient(vendor string) (Client, error)
}

type defaultClientFactory struct {
	httpClient httpclient.Client
}

// NewClientFactory creates a factory whose clients share one HTTP client.
func NewClientFactory() ClientFactory {
	return &defaultClientFactory{
		httpClient: httpclient.NewDefaultClient(0), // Use default timeout
	}
}

// NewClientFactoryWithHTTPClient creates a factory with an injected HTTP
// client, for tests.
func NewClientFactoryWithHTTPClient(httpClient httpclient.Client) ClientFactory {
	return &defaultClientFactory{httpClient: httpClient}
}

// CreateClient returns the client for the given vendor
func (f *defaultClientFactory) CreateClient(vendor string) (Client, error) {
	switch vendor {
	case config.VendorFreeway:
		return NewFreewayClient(f.httpClient), nil
	case config.VendorBiotrack:
		return NewBiotrackClient(f.httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported POS vendor: %s", vendor)
	}
}
