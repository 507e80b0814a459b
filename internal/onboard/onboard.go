// Package onboard creates accounts for synced customers that do not have
// one yet. Onboarding is a follow-up pass over the customer store, kept
// separate from the sync itself so a bad candidate never affects a run.
package onboard

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/canopyhq/pos-sync-server/internal/logger"
)

const (
	// RoleMember is the role assigned to onboarded accounts.
	RoleMember = "member"

	minPhoneDigits = 10
	maxPhoneDigits = 11
)

// Candidate is a synced customer without an account.
type Candidate struct {
	CustomerID uuid.UUID
	Email      string
	Phone      string
}

// Account is a new account to create for a candidate.
type Account struct {
	Email          string
	CustomerID     uuid.UUID
	Role           string
	MarketingOptIn bool
}

// Store reads onboarding candidates and creates their accounts. Email
// matching is case-insensitive on both sides.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=onboard.go Store
type Store interface {
	// ListCandidates returns customers with a non-empty email and no
	// matching account.
	ListCandidates(ctx context.Context) ([]Candidate, error)

	// CreateAccount creates the account unless one already exists for the
	// email. Duplicate emails are a silent no-op, not an error.
	CreateAccount(ctx context.Context, account Account) error
}

// Service runs onboarding passes.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService creates an onboarding service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		validate: validator.New(),
	}
}

// OnboardMissing creates an account for every eligible candidate and
// returns how many were created. Ineligible candidates are skipped, never
// failed: POS data quality is not this system's to fix.
func (s *Service) OnboardMissing(ctx context.Context) (int, error) {
	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, c := range candidates {
		if !s.Eligible(c) {
			logger.Debugw("Skipping onboarding candidate",
				"customer_id", c.CustomerID,
				"reason", "invalid email or phone")
			continue
		}
		customerID := c.CustomerID
		err := s.store.CreateAccount(ctx, Account{
			Email:          strings.ToLower(strings.TrimSpace(c.Email)),
			CustomerID:     customerID,
			Role:           RoleMember,
			MarketingOptIn: true,
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Eligible reports whether a candidate has data good enough to open an
// account: a deliverable-looking email and a US-length phone number.
func (s *Service) Eligible(c Candidate) bool {
	if !s.validEmail(c.Email) {
		return false
	}
	_, ok := NormalizePhone(c.Phone)
	return ok
}

// validEmail applies the standard email check plus a dotted-domain
// requirement, since POS exports are full of "user@localhost" style
// placeholders that would otherwise pass.
func (s *Service) validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

// NormalizePhone strips everything but digits and accepts 10 digits, or 11
// with a leading country 1. The normalized form keeps digits only.
func NormalizePhone(phone string) (string, bool) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == minPhoneDigits:
		return d, true
	case len(d) == maxPhoneDigits && d[0] == '1':
		return d, true
	default:
		return "", false
	}
}
