package syncstore

import (
	"context"
	"encoding/json"
)

const (
	CollectionRequisitions       = "requisitions"
	CollectionBankAccounts       = "bank_accounts"
	CollectionCash               = "cash"
	CollectionBankTransactions   = "bank_transactions"
	CollectionBookkeepingEntries = "bookkeeping_entries"
	CollectionInventoryItems     = "inventory_items"
	CollectionRecipes            = "recipes"
	CollectionIngredients        = "ingredients"
)

// Store is the remote key-value mirror of local state. Upsert replaces one
// record in a collection; Pull returns every record of a collection keyed
// by id.
type Store interface {
	Upsert(ctx context.Context, collection string, id string, payload []byte) error
	Pull(ctx context.Context, collection string) (map[string]json.RawMessage, error)
}

type NoopStore struct{}

func (NoopStore) Upsert(_ context.Context, _ string, _ string, _ []byte) error {
	return nil
}

func (NoopStore) Pull(_ context.Context, _ string) (map[string]json.RawMessage, error) {
	return map[string]json.RawMessage{}, nil
}

func KnownCollection(name string) bool {
	switch name {
	case CollectionRequisitions, CollectionBankAccounts, CollectionCash, CollectionBankTransactions,
		CollectionBookkeepingEntries, CollectionInventoryItems, CollectionRecipes, CollectionIngredients:
		return true
	}
	return false
}
