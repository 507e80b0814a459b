package writer

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/canopyhq/pos-sync-server/internal/pos"
)

// StoredProduct is a materialized product row in the in-memory store.
type StoredProduct struct {
	ID                 uuid.UUID
	PosID              string
	Name               string
	Category           string
	Strain             string
	Quantity           float64
	PricingType        pos.PricingType
	UnitPrice          float64
	PricingTier        string
	WeightPrices       []pos.WeightPrice
	Images             []pos.Image
	NotAvailableOnline bool
	Deleted            bool
	CreatedBy          string
	ModifiedBy         string
}

// StoredCustomer is a materialized customer row in the in-memory store.
type StoredCustomer struct {
	ID        uuid.UUID
	Vendor    string
	PosOrgID  string
	PosID     string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CreatedBy string
}

// StoredAccount is a materialized account row in the in-memory store.
type StoredAccount struct {
	Email          string
	CustomerID     uuid.UUID
	Role           string
	MarketingOptIn bool
}

// InMemoryStore is a SyncWriter over maps, used in tests and anywhere a
// database is unwanted. All operations are safe for concurrent use.
type InMemoryStore struct {
	mu        sync.RWMutex
	products  map[string]map[string]*StoredProduct
	customers map[string]*StoredCustomer
	accounts  map[string]*StoredAccount
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products:  make(map[string]map[string]*StoredProduct),
		customers: make(map[string]*StoredCustomer),
		accounts:  make(map[string]*StoredAccount),
	}
}

// ReconcileInventory mirrors the database semantics: tombstone everything
// for the location, then re-upsert what the snapshot carries. Identity and
// creator survive across syncs.
func (s *InMemoryStore) ReconcileInventory(_ context.Context, locationID string, items []*pos.InventoryItem, actor string) (*InventoryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := s.products[locationID]
	if loc == nil {
		loc = make(map[string]*StoredProduct)
		s.products[locationID] = loc
	}

	var swept int64
	for _, p := range loc {
		if !p.Deleted {
			p.Deleted = true
			swept++
		}
	}

	for _, item := range items {
		existing, ok := loc[item.PosID]
		if !ok {
			existing = &StoredProduct{
				ID:        uuid.New(),
				PosID:     item.PosID,
				CreatedBy: actor,
			}
			loc[item.PosID] = existing
		}
		existing.Name = item.Name
		existing.Category = item.Category
		existing.Strain = item.Strain
		existing.Quantity = item.Quantity
		existing.PricingType = item.PricingType
		existing.UnitPrice = item.UnitPrice
		existing.PricingTier = item.PricingTier
		existing.WeightPrices = append([]pos.WeightPrice(nil), item.WeightPrices...)
		existing.Images = append([]pos.Image(nil), item.Images...)
		existing.NotAvailableOnline = item.NotAvailableOnline
		existing.Deleted = Hidden(item)
		existing.ModifiedBy = actor
	}

	return &InventoryResult{Upserted: len(items), Swept: swept}, nil
}

func customerKey(vendor, posOrgID, posID string) string {
	return vendor + "/" + posOrgID + "/" + posID
}

// UpsertCustomers upserts one page by natural key. Nothing is ever deleted.
func (s *InMemoryStore) UpsertCustomers(_ context.Context, vendor string, records []*pos.CustomerRecord, actor string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for _, r := range records {
		key := customerKey(vendor, r.PosOrgID, r.PosID)
		existing, ok := s.customers[key]
		if !ok {
			existing = &StoredCustomer{
				ID:        uuid.New(),
				Vendor:    vendor,
				PosOrgID:  r.PosOrgID,
				PosID:     r.PosID,
				CreatedBy: actor,
			}
			s.customers[key] = existing
		}
		existing.FirstName = r.FirstName
		existing.LastName = r.LastName
		existing.Email = r.Email
		existing.Phone = r.Phone
		affected++
	}
	return affected, nil
}

// ListCustomersMissingAccount returns customers with a non-empty email that
// has no account yet, matching case-insensitively.
func (s *InMemoryStore) ListCustomersMissingAccount(_ context.Context) ([]*StoredCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []*StoredCustomer
	for _, c := range s.customers {
		if c.Email == "" {
			continue
		}
		if _, ok := s.accounts[strings.ToLower(c.Email)]; ok {
			continue
		}
		cp := *c
		missing = append(missing, &cp)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].PosID < missing[j].PosID })
	return missing, nil
}

// InsertAccount creates an account unless one already exists for the email,
// compared case-insensitively.
func (s *InMemoryStore) InsertAccount(_ context.Context, account *StoredAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, ok := s.accounts[key]; ok {
		return nil
	}
	cp := *account
	s.accounts[key] = &cp
	return nil
}

// Product returns a copy of one product row, or nil.
func (s *InMemoryStore) Product(locationID, posID string) *StoredProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[locationID][posID]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ActiveProductIDs returns the sorted pos ids of non-tombstoned products
// for a location.
func (s *InMemoryStore) ActiveProductIDs(locationID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for posID, p := range s.products[locationID] {
		if !p.Deleted {
			ids = append(ids, posID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ProductCount returns the number of stored rows for a location, tombstoned
// included.
func (s *InMemoryStore) ProductCount(locationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products[locationID])
}

// Customer returns a copy of one customer row, or nil.
func (s *InMemoryStore) Customer(vendor, posOrgID, posID string) *StoredCustomer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[customerKey(vendor, posOrgID, posID)]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// CustomerCount returns the number of stored customers.
func (s *InMemoryStore) CustomerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

// Account returns a copy of the account for an email, or nil. Lookup is
// case-insensitive.
func (s *InMemoryStore) Account(email string) *StoredAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// AccountCount returns the number of stored accounts.
func (s *InMemoryStore) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
