package onboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/canopyhq/pos-sync-server/internal/db/sqlc"
)

// dbStore reads candidates from pos_customer and writes accounts.
type dbStore struct {
	q *sqlc.Queries
}

// NewDBStore creates a Store backed by the given pool.
func NewDBStore(pool *pgxpool.Pool) Store {
	return &dbStore{q: sqlc.New(pool)}
}

func (s *dbStore) ListCandidates(ctx context.Context) ([]Candidate, error) {
	customers, err := s.q.ListCustomersMissingAccount(ctx)
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

func (s *dbStore) CreateAccount(ctx context.Context, account Account) error {
	customerID := account.CustomerID
	return s.q.InsertAccount(ctx, sqlc.InsertAccountParams{
		Email:          account.Email,
		CustomerID:     &customerID,
		Role:           account.Role,
		MarketingOptIn: account.MarketingOptIn,
	})
}
