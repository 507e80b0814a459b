// Package pos contains the clients for the third-party Point-of-Sale
// platforms the server synchronizes from. Each vendor gets a handler that
// speaks its feed protocol; the rest of the system only sees FeedPage and
// the decoded item types.
package pos

import (
	"context"
	"fmt"
)

// PricingType describes how a product is priced.
type PricingType string

const (
	// PricingWeight prices the product per weight tier
	PricingWeight PricingType = "weight"

	// PricingUnit prices the product per unit
	PricingUnit PricingType = "unit"
)

// RemoteRecord is one opaque payload from a POS feed. PosID is extracted
// eagerly because, combined with the scope, it forms the natural key used
// for local matching; everything else stays raw until decode time.
type RemoteRecord struct {
	PosID string
	Raw   []byte
}

// FeedPage is one page of a paginated POS feed.
type FeedPage struct {
	Records     []RemoteRecord
	CurrentPage int
	LastPage    int
	Total       int
}

// Scope carries the per-organization/location credentials and identifiers
// one fetch needs. Built by the orchestrator from configuration.
type Scope struct {
	OrgID      string
	LocationID string

	Endpoint   string
	APIKey     string
	PosOrgID   string
	FacilityID string
	UserID     string
	PerPage    int
}

// Client fetches paginated feeds from a POS platform. Implementations do
// not retry; transport failures surface as httpclient typed errors.
//
//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=types.go Client
type Client interface {
	// FetchCatalogPage fetches one page of the inventory feed.
	// Page numbering is protocol-native; callers must not assume 0-based.
	FetchCatalogPage(ctx context.Context, scope Scope, page int) (*FeedPage, error)

	// FetchConsumerPage fetches one page of the customer feed.
	FetchConsumerPage(ctx context.Context, scope Scope, page int) (*FeedPage, error)
}

// ValidationError marks a single record the POS feed handed us in a shape
// we cannot process: missing identifier, unparseable quantity, unknown
// unit of measure. These are skippable at the item level.
type ValidationError struct {
	PosID  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.PosID == "" {
		return fmt.Sprintf("invalid POS record: %s", e.Reason)
	}
	return fmt.Sprintf("invalid POS record %s: %s", e.PosID, e.Reason)
}

// WeightPrice is one weight-tier price row.
type WeightPrice struct {
	Label string
	Price float64
}

// Image is one product image keyed by size.
type Image struct {
	Size string
	URL  string
}

// InventoryItem is a decoded inventory feed record.
type InventoryItem struct {
	PosID              string
	Name               string
	Category           string
	Strain             string
	Quantity           float64
	PricingType        PricingType
	UnitPrice          float64
	PricingTier        string
	WeightPrices       []WeightPrice
	Images             []Image
	NotAvailableOnline bool
}

// CustomerRecord is a decoded customer feed record. PosOrgID is empty for
// vendors whose customer ids are globally unique (MJ Freeway) and carries
// the vendor-side organization id where the natural key is compound
// (Biotrack).
type CustomerRecord struct {
	PosID     string
	PosOrgID  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
