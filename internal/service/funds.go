package service

import (
	"context"
	"fmt"
	"strings"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
	"catering/backend/internal/syncstore"
	"catering/backend/internal/xid"
)

// CreateBankAccount registers an account with its opening balance. After
// that only requisition payments and reversals move the balance.
func (s *Service) CreateBankAccount(ctx context.Context, req domain.BankAccountCreateRequest) (domain.BankAccount, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return domain.BankAccount{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.BankAccount{}, store.ErrInvalidRequest
	}

	created, err := s.repo.CreateBankAccount(ctx, domain.BankAccount{
		ID:           xid.New("bank"),
		Name:         name,
		Number:       strings.TrimSpace(req.Number),
		Currency:     strings.ToUpper(strings.TrimSpace(req.Currency)),
		BalanceCents: req.OpeningBalanceCents,
		Active:       true,
	})
	if err != nil {
		return domain.BankAccount{}, err
	}

	s.logAudit(ctx, "bank_account_create", "bank_account", created.ID, fmt.Sprintf("name=%s,opening=%d", created.Name, created.BalanceCents))
	s.publish(syncstore.CollectionBankAccounts, created.ID, created)
	return *created, nil
}

func (s *Service) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	return s.repo.ListBankAccounts(ctx)
}

func (s *Service) GetCashAtHand(ctx context.Context) (domain.CashAtHand, error) {
	balance, err := s.repo.GetCashAtHand(ctx)
	if err != nil {
		return domain.CashAtHand{}, err
	}
	return domain.CashAtHand{BalanceCents: balance}, nil
}

func (s *Service) ListBankTransactions(ctx context.Context, referenceID string, limit int) ([]domain.BankTransaction, error) {
	if limit < 1 {
		limit = 200
	}
	return s.repo.ListBankTransactions(ctx, strings.TrimSpace(referenceID), limit)
}

func (s *Service) ListBookkeepingEntries(ctx context.Context, referenceID string, limit int) ([]domain.BookkeepingEntry, error) {
	if limit < 1 {
		limit = 200
	}
	return s.repo.ListBookkeepingEntries(ctx, strings.TrimSpace(referenceID), limit)
}
