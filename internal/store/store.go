package store

import (
	"context"
	"errors"
	"time"

	"catering/backend/internal/domain"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidFundingSource = errors.New("invalid funding source")
	ErrDuplicate            = errors.New("already exists")
)

type Repository interface {
	ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error)
	UpsertInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	UpsertRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	UpsertIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error)

	CreateRequisition(ctx context.Context, req domain.Requisition) (*domain.Requisition, error)
	GetRequisition(ctx context.Context, id string) (*domain.Requisition, error)
	ListRequisitions(ctx context.Context, status string, limit int) ([]domain.Requisition, error)
	// UpdateRequisition persists editable fields; it fails with
	// ErrInvalidTransition unless the stored status is Pending or Rejected.
	UpdateRequisition(ctx context.Context, req domain.Requisition) (*domain.Requisition, error)
	// PayRequisition debits the funding source and appends the posting rows
	// in one unit. The stored status must be Pending.
	PayRequisition(ctx context.Context, posting domain.RequisitionPosting) (*domain.PostedRequisition, error)
	// ReverseRequisition credits the amount debited at payment back to the
	// same source and appends the compensating rows in one unit. The stored
	// status must be Approved or Paid. The credited source and amount are
	// read under the lock and returned in the posted rows.
	ReverseRequisition(ctx context.Context, posting domain.RequisitionPosting) (*domain.PostedRequisition, error)
	RejectRequisition(ctx context.Context, id string, actor string, reason string, at time.Time) (*domain.Requisition, error)
	ResubmitRequisition(ctx context.Context, id string, at time.Time) (*domain.Requisition, error)

	CreateBankAccount(ctx context.Context, account domain.BankAccount) (*domain.BankAccount, error)
	GetBankAccount(ctx context.Context, id string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)
	GetCashAtHand(ctx context.Context) (int64, error)
	ListBankTransactions(ctx context.Context, referenceID string, limit int) ([]domain.BankTransaction, error)
	ListBookkeepingEntries(ctx context.Context, referenceID string, limit int) ([]domain.BookkeepingEntry, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
