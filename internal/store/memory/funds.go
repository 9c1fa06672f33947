package memory

import (
	"catering/backend/internal/domain"
	"catering/backend/internal/store"
)

// funds is the cash-at-hand scalar plus every bank account balance. Debit
// and credit are the only writers; the owning Store holds its write lock
// around each call.
type funds struct {
	cashCents int64
	accounts  map[string]*domain.BankAccount
}

func newFunds(openingCashCents int64) *funds {
	return &funds{
		cashCents: openingCashCents,
		accounts:  make(map[string]*domain.BankAccount),
	}
}

func (f *funds) open(account domain.BankAccount) {
	opened := account
	f.accounts[account.ID] = &opened
}

// debit takes amount from the source. Balances may go negative but never
// past the int64 range.
func (f *funds) debit(sourceID string, amount int64) error {
	if domain.IsCashSource(sourceID) {
		return moveBalance(&f.cashCents, -amount)
	}
	account, ok := f.accounts[sourceID]
	if !ok || !account.Active {
		return store.ErrInvalidFundingSource
	}
	return moveBalance(&account.BalanceCents, -amount)
}

// credit returns amount to the source. Deactivated accounts still accept
// credits so a reversal can always land where the debit came from.
func (f *funds) credit(sourceID string, amount int64) error {
	if domain.IsCashSource(sourceID) {
		return moveBalance(&f.cashCents, amount)
	}
	account, ok := f.accounts[sourceID]
	if !ok {
		return store.ErrInvalidFundingSource
	}
	return moveBalance(&account.BalanceCents, amount)
}

func moveBalance(balance *int64, delta int64) error {
	next, ok := domain.AddCents(*balance, delta)
	if !ok {
		return store.ErrInvalidRequest
	}
	*balance = next
	return nil
}
