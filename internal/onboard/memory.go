package onboard

import (
	"context"

	"github.com/canopyhq/pos-sync-server/internal/sync/writer"
)

// memoryStore adapts the in-memory customer store to the onboarding Store.
type memoryStore struct {
	store *writer.InMemoryStore
}

// NewMemoryStore creates a Store over an in-memory customer store.
func NewMemoryStore(store *writer.InMemoryStore) Store {
	return &memoryStore{store: store}
}

func (s *memoryStore) ListCandidates(ctx context.Context) ([]Candidate, error) {
	customers, err := s.store.ListCustomersMissingAccount(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(customers))
	for _, c := range customers {
		candidates = append(candidates, Candidate{
			CustomerID: c.ID,
			Email:      c.Email,
			Phone:      c.Phone,
		})
	}
	return candidates, nil
}

func (s *memoryStore) CreateAccount(ctx context.Context, account Account) error {
	return s.store.InsertAccount(ctx, &writer.StoredAccount{
		Email:          account.Email,
		CustomerID:     account.CustomerID,
		Role:           account.Role,
		MarketingOptIn: account.MarketingOptIn,
	})
}
