package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
	"catering/backend/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates missing tables and seeds the cash-at-hand row with
// openingCashCents. An existing cash balance is left untouched.
func (s *Store) EnsureSchema(ctx context.Context, openingCashCents int64) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_at_hand (id, balance_cents, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO NOTHING
	`, openingCashCents)
	if err != nil {
		return fmt.Errorf("seed cash at hand: %w", err)
	}
	return nil
}

func (s *Store) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, unit_price_cents, COALESCE(recipe_id, '')
		FROM inventory_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 64)
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Category, &item.UnitPriceCents, &item.RecipeID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertInventoryItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || item.UnitPriceCents < 0 {
		return nil, store.ErrInvalidRequest
	}
	if item.ID == "" {
		item.ID = xid.New("itm")
	}
	if item.RecipeID != "" {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM recipes WHERE id = $1)`, item.RecipeID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, store.ErrNotFound
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id, name, category, unit_price_cents, recipe_id, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
			unit_price_cents = EXCLUDED.unit_price_cents, recipe_id = EXCLUDED.recipe_id, updated_at = now()
	`, item.ID, item.Name, item.Category, item.UnitPriceCents, nullIfEmpty(item.RecipeID))
	if err != nil {
		return nil, err
	}
	saved := item
	return &saved, nil
}

func (s *Store) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, ingredients
		FROM recipes
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := make([]domain.Recipe, 0, 32)
	for rows.Next() {
		var (
			recipe domain.Recipe
			raw    []byte
		)
		if err := rows.Scan(&recipe.ID, &recipe.Name, &recipe.Category, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &recipe.Ingredients); err != nil {
			return nil, fmt.Errorf("decode recipe %s ingredients: %w", recipe.ID, err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *Store) UpsertRecipe(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		return nil, store.ErrInvalidRequest
	}
	for _, ri := range recipe.Ingredients {
		if strings.TrimSpace(ri.Name) == "" || ri.QtyPerPortion < 0 {
			return nil, store.ErrInvalidRequest
		}
	}
	if recipe.ID == "" {
		recipe.ID = xid.New("rcp")
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []domain.RecipeIngredient{}
	}
	raw, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recipes (id, name, category, ingredients, updated_at)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
			ingredients = EXCLUDED.ingredients, updated_at = now()
	`, recipe.ID, recipe.Name, recipe.Category, raw)
	if err != nil {
		return nil, err
	}
	saved := recipe
	return &saved, nil
}

func (s *Store) ListIngredients(ctx context.Context) ([]domain.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit, current_cost_cents, market_price_cents, stock_level
		FROM ingredients
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ingredients := make([]domain.Ingredient, 0, 128)
	for rows.Next() {
		var (
			ing    domain.Ingredient
			market sql.NullInt64
		)
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit, &ing.CurrentCostCents, &market, &ing.StockLevel); err != nil {
			return nil, err
		}
		if market.Valid {
			price := market.Int64
			ing.MarketPriceCents = &price
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *Store) UpsertIngredient(ctx context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	ingredient.Name = strings.TrimSpace(ingredient.Name)
	if ingredient.Name == "" || ingredient.CurrentCostCents < 0 {
		return nil, store.ErrInvalidRequest
	}
	if ingredient.MarketPriceCents != nil && *ingredient.MarketPriceCents < 0 {
		return nil, store.ErrInvalidRequest
	}
	if ingredient.ID == "" {
		ingredient.ID = xid.New("ing")
	}

	var market any
	if ingredient.MarketPriceCents != nil {
		market = *ingredient.MarketPriceCents
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingredients (id, name, unit, current_cost_cents, market_price_cents, stock_level, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
		ON CONFLICT (id)
		DO UPDATE SET name = EXCLUDED.name, unit = EXCLUDED.unit,
			current_cost_cents = EXCLUDED.current_cost_cents, market_price_cents = EXCLUDED.market_price_cents,
			stock_level = EXCLUDED.stock_level, updated_at = now()
	`, ingredient.ID, ingredient.Name, ingredient.Unit, ingredient.CurrentCostCents, market, ingredient.StockLevel)
	if err != nil {
		return nil, err
	}
	saved := ingredient
	return &saved, nil
}

const requisitionColumns = `
	id, type, category, item_name, COALESCE(ingredient_id, ''), quantity, price_per_unit_cents,
	total_amount_cents, requestor_id, status, COALESCE(reference_id, ''), COALESCE(source_account_id, ''),
	paid_amount_cents, notes, approved_by, approved_at, rejected_by, rejection_reason, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequisition(row rowScanner) (*domain.Requisition, error) {
	var (
		req        domain.Requisition
		approvedAt sql.NullTime
	)
	err := row.Scan(
		&req.ID, &req.Type, &req.Category, &req.ItemName, &req.IngredientID, &req.Quantity, &req.PricePerUnitCents,
		&req.TotalAmountCents, &req.RequestorID, &req.Status, &req.ReferenceID, &req.SourceAccountID,
		&req.PaidAmountCents, &req.Notes, &req.ApprovedBy, &approvedAt, &req.RejectedBy, &req.RejectionReason,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if approvedAt.Valid {
		at := approvedAt.Time.UTC()
		req.ApprovedAt = &at
	}
	req.CreatedAt = req.CreatedAt.UTC()
	req.UpdatedAt = req.UpdatedAt.UTC()
	return &req, nil
}

func (s *Store) CreateRequisition(ctx context.Context, req domain.Requisition) (*domain.Requisition, error) {
	total, ok := domain.RequisitionTotal(req.Quantity, req.PricePerUnitCents)
	if !ok || strings.TrimSpace(req.ItemName) == "" {
		return nil, store.ErrInvalidRequest
	}
	if req.ID == "" {
		req.ID = xid.New("req")
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.UpdatedAt = req.CreatedAt
	req.Status = domain.RequisitionStatusPending
	req.TotalAmountCents = total
	req.SourceAccountID = ""
	req.PaidAmountCents = 0

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requisitions (
			id, type, category, item_name, ingredient_id, quantity, price_per_unit_cents,
			total_amount_cents, requestor_id, status, reference_id, notes, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, req.ID, req.Type, req.Category, req.ItemName, nullIfEmpty(req.IngredientID), req.Quantity, req.PricePerUnitCents,
		req.TotalAmountCents, req.RequestorID, req.Status, nullIfEmpty(req.ReferenceID), req.Notes, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	created := req
	return &created, nil
}

func (s *Store) GetRequisition(ctx context.Context, id string) (*domain.Requisition, error) {
	return scanRequisition(s.db.QueryRowContext(ctx, `SELECT `+requisitionColumns+` FROM requisitions WHERE id = $1`, id))
}

func (s *Store) ListRequisitions(ctx context.Context, status string, limit int) ([]domain.Requisition, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requisitionColumns+`
		FROM requisitions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Requisition, 0, limit)
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) UpdateRequisition(ctx context.Context, req domain.Requisition) (*domain.Requisition, error) {
	total, ok := domain.RequisitionTotal(req.Quantity, req.PricePerUnitCents)
	if !ok || strings.TrimSpace(req.ItemName) == "" {
		return nil, store.ErrInvalidRequest
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	current, err := lockRequisition(ctx, pgTx, req.ID)
	if err != nil {
		return nil, err
	}
	if !current.IsEditable() {
		return nil, store.ErrInvalidTransition
	}

	current.ItemName = req.ItemName
	current.Quantity = req.Quantity
	current.PricePerUnitCents = req.PricePerUnitCents
	current.Notes = req.Notes
	current.TotalAmountCents = total
	current.UpdatedAt = time.Now().UTC()

	_, err = pgTx.ExecContext(ctx, `
		UPDATE requisitions
		SET item_name = $2, quantity = $3, price_per_unit_cents = $4, notes = $5,
			total_amount_cents = $6, updated_at = $7
		WHERE id = $1
	`, current.ID, current.ItemName, current.Quantity, current.PricePerUnitCents, current.Notes,
		current.TotalAmountCents, current.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Store) PayRequisition(ctx context.Context, posting domain.RequisitionPosting) (*domain.PostedRequisition, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	req, err := lockRequisition(ctx, pgTx, posting.RequisitionID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequisitionStatusPending {
		return nil, store.ErrInvalidTransition
	}
	if err := moveFunds(ctx, pgTx, posting.FundingSourceID, -req.TotalAmountCents, true); err != nil {
		return nil, err
	}

	at := atOrNow(posting.At)
	bankTx, entry, err := insertPosting(ctx, pgTx, posting, req.TotalAmountCents, at)
	if err != nil {
		return nil, err
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE requisitions
		SET status = $2, source_account_id = $3, paid_amount_cents = $4, approved_by = $5,
			approved_at = $6, rejected_by = '', rejection_reason = '', updated_at = $6
		WHERE id = $1 AND status = $7
	`, req.ID, domain.RequisitionStatusPaid, posting.FundingSourceID, req.TotalAmountCents, posting.Actor,
		at, domain.RequisitionStatusPending)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	req.Status = domain.RequisitionStatusPaid
	req.SourceAccountID = posting.FundingSourceID
	req.PaidAmountCents = req.TotalAmountCents
	req.ApprovedBy = posting.Actor
	req.ApprovedAt = &at
	req.RejectedBy = ""
	req.RejectionReason = ""
	req.UpdatedAt = at
	return &domain.PostedRequisition{Requisition: *req, BankTransaction: bankTx, Bookkeeping: entry}, nil
}

func (s *Store) ReverseRequisition(ctx context.Context, posting domain.RequisitionPosting) (*domain.PostedRequisition, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	req, err := lockRequisition(ctx, pgTx, posting.RequisitionID)
	if err != nil {
		return nil, err
	}
	if !req.IsPaid() {
		return nil, store.ErrInvalidTransition
	}
	if err := moveFunds(ctx, pgTx, req.SourceAccountID, req.PaidAmountCents, false); err != nil {
		return nil, err
	}

	at := atOrNow(posting.At)
	posting.FundingSourceID = req.SourceAccountID
	bankTx, entry, err := insertPosting(ctx, pgTx, posting, req.PaidAmountCents, at)
	if err != nil {
		return nil, err
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE requisitions
		SET status = $2, source_account_id = NULL, paid_amount_cents = 0, approved_by = '',
			approved_at = NULL, updated_at = $3
		WHERE id = $1
	`, req.ID, domain.RequisitionStatusPending, at)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	req.Status = domain.RequisitionStatusPending
	req.SourceAccountID = ""
	req.PaidAmountCents = 0
	req.ApprovedBy = ""
	req.ApprovedAt = nil
	req.UpdatedAt = at
	return &domain.PostedRequisition{Requisition: *req, BankTransaction: bankTx, Bookkeeping: entry}, nil
}

func lockRequisition(ctx context.Context, pgTx *sql.Tx, id string) (*domain.Requisition, error) {
	return scanRequisition(pgTx.QueryRowContext(ctx, `SELECT `+requisitionColumns+` FROM requisitions WHERE id = $1 FOR UPDATE`, id))
}

// moveFunds applies delta to the cash row or a bank account row under a row
// lock. requireActive refuses deactivated accounts; credits skip the check
// so a reversal always returns money to the account it left.
func moveFunds(ctx context.Context, pgTx *sql.Tx, sourceID string, delta int64, requireActive bool) error {
	if domain.IsCashSource(sourceID) {
		var balance int64
		err := pgTx.QueryRowContext(ctx, `SELECT balance_cents FROM cash_at_hand WHERE id = 1 FOR UPDATE`).Scan(&balance)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrInvalidFundingSource
			}
			return err
		}
		_, err = pgTx.ExecContext(ctx, `
			UPDATE cash_at_hand SET balance_cents = balance_cents + $1, updated_at = now() WHERE id = 1
		`, delta)
		return balanceOutOfRange(err)
	}

	var active bool
	err := pgTx.QueryRowContext(ctx, `SELECT active FROM bank_accounts WHERE id = $1 FOR UPDATE`, sourceID).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrInvalidFundingSource
		}
		return err
	}
	if requireActive && !active {
		return store.ErrInvalidFundingSource
	}
	_, err = pgTx.ExecContext(ctx, `
		UPDATE bank_accounts SET balance_cents = balance_cents + $2 WHERE id = $1
	`, sourceID, delta)
	return balanceOutOfRange(err)
}

// insertPosting appends the bank transaction and bookkeeping rows of one
// posting and returns them as written.
func insertPosting(ctx context.Context, pgTx *sql.Tx, posting domain.RequisitionPosting, amount int64, at time.Time) (domain.BankTransaction, domain.BookkeepingEntry, error) {
	bankTx := posting.BankTransaction
	if bankTx.ID == "" {
		bankTx.ID = xid.New("btx")
	}
	bankTx.BankAccountID = posting.FundingSourceID
	bankTx.AmountCents = amount
	bankTx.ReferenceID = posting.RequisitionID
	bankTx.Date = at
	_, err := pgTx.ExecContext(ctx, `
		INSERT INTO bank_transactions (id, bank_account_id, amount_cents, direction, reference_id, description, date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, bankTx.ID, bankTx.BankAccountID, bankTx.AmountCents, bankTx.Direction, bankTx.ReferenceID, bankTx.Description, bankTx.Date)
	if err != nil {
		return domain.BankTransaction{}, domain.BookkeepingEntry{}, err
	}

	entry := posting.Bookkeeping
	if entry.ID == "" {
		entry.ID = xid.New("bk")
	}
	entry.AmountCents = amount
	entry.ReferenceID = posting.RequisitionID
	entry.PaymentMethod = domain.PaymentMethodFor(posting.FundingSourceID)
	entry.Date = at
	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO bookkeeping_entries (id, date, direction, category, description, amount_cents, reference_id, payment_method)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.Date, entry.Direction, entry.Category, entry.Description, entry.AmountCents, entry.ReferenceID,
		entry.PaymentMethod)
	if err != nil {
		return domain.BankTransaction{}, domain.BookkeepingEntry{}, err
	}
	return bankTx, entry, nil
}

func (s *Store) RejectRequisition(ctx context.Context, id string, actor string, reason string, at time.Time) (*domain.Requisition, error) {
	req, err := scanRequisition(s.db.QueryRowContext(ctx, `
		UPDATE requisitions
		SET status = $2, rejected_by = $3, rejection_reason = $4, updated_at = $5
		WHERE id = $1 AND status = $6
		RETURNING `+requisitionColumns,
		id, domain.RequisitionStatusRejected, actor, reason, atOrNow(at), domain.RequisitionStatusPending,
	))
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.transitionMiss(ctx, id)
	}
	return req, err
}

func (s *Store) ResubmitRequisition(ctx context.Context, id string, at time.Time) (*domain.Requisition, error) {
	req, err := scanRequisition(s.db.QueryRowContext(ctx, `
		UPDATE requisitions
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING `+requisitionColumns,
		id, domain.RequisitionStatusPending, atOrNow(at), domain.RequisitionStatusRejected,
	))
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.transitionMiss(ctx, id)
	}
	return req, err
}

// transitionMiss tells an unknown id apart from a status precondition
// failure after a conditional update touched no row.
func (s *Store) transitionMiss(ctx context.Context, id string) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM requisitions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrInvalidTransition
}

func (s *Store) CreateBankAccount(ctx context.Context, account domain.BankAccount) (*domain.BankAccount, error) {
	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" || domain.IsCashSource(account.ID) {
		return nil, store.ErrInvalidRequest
	}
	if account.ID == "" {
		account.ID = xid.New("bank")
	}
	if account.Currency == "" {
		account.Currency = "NGN"
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (id, name, number, currency, balance_cents, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, account.ID, account.Name, account.Number, account.Currency, account.BalanceCents, account.Active, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	created := account
	return &created, nil
}

func (s *Store) GetBankAccount(ctx context.Context, id string) (*domain.BankAccount, error) {
	var account domain.BankAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, number, currency, balance_cents, active, created_at
		FROM bank_accounts
		WHERE id = $1
	`, id).Scan(&account.ID, &account.Name, &account.Number, &account.Currency, &account.BalanceCents, &account.Active, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	account.CreatedAt = account.CreatedAt.UTC()
	return &account, nil
}

func (s *Store) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, number, currency, balance_cents, active, created_at
		FROM bank_accounts
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.BankAccount, 0, 8)
	for rows.Next() {
		var account domain.BankAccount
		if err := rows.Scan(&account.ID, &account.Name, &account.Number, &account.Currency, &account.BalanceCents, &account.Active, &account.CreatedAt); err != nil {
			return nil, err
		}
		account.CreatedAt = account.CreatedAt.UTC()
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Store) GetCashAtHand(ctx context.Context) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `SELECT balance_cents FROM cash_at_hand WHERE id = 1`).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (s *Store) ListBankTransactions(ctx context.Context, referenceID string, limit int) ([]domain.BankTransaction, error) {
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, bank_account_id, amount_cents, direction, reference_id, description, date
		FROM bank_transactions
		WHERE ($1 = '' OR reference_id = $1)
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, referenceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.BankTransaction, 0, 32)
	for rows.Next() {
		var tx domain.BankTransaction
		if err := rows.Scan(&tx.ID, &tx.BankAccountID, &tx.AmountCents, &tx.Direction, &tx.ReferenceID, &tx.Description, &tx.Date); err != nil {
			return nil, err
		}
		tx.Date = tx.Date.UTC()
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ListBookkeepingEntries(ctx context.Context, referenceID string, limit int) ([]domain.BookkeepingEntry, error) {
	if limit < 1 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, direction, category, description, amount_cents, reference_id, payment_method
		FROM bookkeeping_entries
		WHERE ($1 = '' OR reference_id = $1)
		ORDER BY date DESC, id DESC
		LIMIT $2
	`, referenceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.BookkeepingEntry, 0, 32)
	for rows.Next() {
		var entry domain.BookkeepingEntry
		if err := rows.Scan(&entry.ID, &entry.Date, &entry.Direction, &entry.Category, &entry.Description, &entry.AmountCents, &entry.ReferenceID, &entry.PaymentMethod); err != nil {
			return nil, err
		}
		entry.Date = entry.Date.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1
			AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRequest
	}
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRequest
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return hasSQLState(err, "23505")
}

// balanceOutOfRange maps a bigint overflow on a balance update to a rejected
// request.
func balanceOutOfRange(err error) error {
	if hasSQLState(err, "22003") {
		return store.ErrInvalidRequest
	}
	return err
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func atOrNow(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at.UTC()
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
