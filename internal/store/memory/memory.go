package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
	"catering/backend/internal/xid"
)

type Store struct {
	mu                 sync.RWMutex
	inventoryByID      map[string]domain.InventoryItem
	recipesByID        map[string]domain.Recipe
	ingredientsByID    map[string]domain.Ingredient
	requisitionsByID   map[string]domain.Requisition
	funds              *funds
	bankTransactions   []domain.BankTransaction
	bookkeepingEntries []domain.BookkeepingEntry
	auditLogs          []domain.AuditLog
	usersByUsername    map[string]domain.UserAccount
	currency           string
	log                *zap.Logger
}

type Option func(*options)

type options struct {
	openingCashCents int64
	currency         string
	log              *zap.Logger
	seedUsers        bool
}

func WithOpeningCash(cents int64) Option {
	return func(o *options) { o.openingCashCents = cents }
}

func WithCurrency(currency string) Option {
	return func(o *options) {
		if strings.TrimSpace(currency) != "" {
			o.currency = strings.ToUpper(strings.TrimSpace(currency))
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithoutSeedUsers skips the bcrypt-hashed dev accounts.
func WithoutSeedUsers() Option {
	return func(o *options) { o.seedUsers = false }
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD.
// If unset, dev defaults are used and a warning is logged. The memory store
// is never used when DATABASE_URL is set.
func seedUsers(log *zap.Logger) map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Warn("using default dev credentials; set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"staff", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("failed to hash seed password", zap.String("username", u.username), zap.Error(err))
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// New returns an empty store holding only the cash-at-hand opening balance.
func New(opts ...Option) *Store {
	cfg := options{currency: "NGN", log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Store{
		inventoryByID:      make(map[string]domain.InventoryItem),
		recipesByID:        make(map[string]domain.Recipe),
		ingredientsByID:    make(map[string]domain.Ingredient),
		requisitionsByID:   make(map[string]domain.Requisition),
		funds:              newFunds(cfg.openingCashCents),
		bankTransactions:   make([]domain.BankTransaction, 0, 64),
		bookkeepingEntries: make([]domain.BookkeepingEntry, 0, 64),
		auditLogs:          make([]domain.AuditLog, 0, 128),
		usersByUsername:    make(map[string]domain.UserAccount),
		currency:           cfg.currency,
		log:                cfg.log.Named("memory-store"),
	}
	if cfg.seedUsers {
		s.usersByUsername = seedUsers(s.log)
	}
	return s
}

// NewSeeded returns a store with a demo catalog, two bank accounts and the
// dev user accounts.
func NewSeeded(opts ...Option) *Store {
	s := New(append([]Option{func(o *options) { o.seedUsers = true }}, opts...)...)
	now := time.Now().UTC()

	ingredients := []domain.Ingredient{
		{ID: "ing-rice", Name: "Rice", Unit: "kg", CurrentCostCents: 150000, StockLevel: 250},
		{ID: "ing-tomato-paste", Name: "Tomato Paste", Unit: "kg", CurrentCostCents: 220000, StockLevel: 40},
		{ID: "ing-salt", Name: "Salt", Unit: "kg", CurrentCostCents: 50000, StockLevel: 20},
		{ID: "ing-water", Name: "Water", Unit: "l", CurrentCostCents: 10000, StockLevel: 500},
		{ID: "ing-vegetable-oil", Name: "Vegetable Oil", Unit: "l", CurrentCostCents: 180000, StockLevel: 60},
		{ID: "ing-chicken", Name: "Chicken", Unit: "kg", CurrentCostCents: 450000, StockLevel: 80},
		{ID: "ing-pepper-mix", Name: "Pepper Mix", Unit: "kg", CurrentCostCents: 120000, StockLevel: 30},
		{ID: "ing-curry-thyme", Name: "Curry & Thyme", Unit: "kg", CurrentCostCents: 900000, StockLevel: 5},
	}
	recipes := []domain.Recipe{
		{
			ID: "rcp-jollof", Name: "Party Jollof Rice", Category: "Main",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Rice", QtyPerPortion: 0.05, Unit: "kg"},
				{Name: "Tomato Paste", QtyPerPortion: 10, Unit: "g"},
				{Name: "Vegetable Oil", QtyPerPortion: 2, Unit: "cl"},
				{Name: "Salt", QtyPerPortion: 2, Unit: "g"},
				{Name: "Curry & Thyme", QtyPerPortion: 1, Unit: "g", ScalingTiers: map[int]float64{100: 80, 200: 140, 500: 300}},
			},
		},
		{
			ID: "rcp-chicken-stew", Name: "Chicken Stew", Category: "Protein",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Chicken", QtyPerPortion: 0.12, Unit: "kg"},
				{Name: "Pepper Mix", QtyPerPortion: 15, Unit: "g"},
				{Name: "Vegetable Oil", QtyPerPortion: 10, Unit: "ml"},
				{Name: "Water", QtyPerPortion: 50, Unit: "ml"},
			},
		},
	}
	items := []domain.InventoryItem{
		{ID: "itm-jollof", Name: "Party Jollof Rice", Category: "Food", UnitPriceCents: 350000, RecipeID: "rcp-jollof"},
		{ID: "itm-chicken-stew", Name: "Chicken Stew", Category: "Food", UnitPriceCents: 450000, RecipeID: "rcp-chicken-stew"},
		{ID: "itm-chair-hire", Name: "Chiavari Chair Hire", Category: "Rental", UnitPriceCents: 150000},
	}
	accounts := []domain.BankAccount{
		{ID: "bank-operations", Name: "Operations Account", Number: "0123456789", Currency: s.currency, BalanceCents: 500000000, Active: true, CreatedAt: now},
		{ID: "bank-reserve", Name: "Reserve Account", Number: "9876543210", Currency: s.currency, BalanceCents: 1000000000, Active: false, CreatedAt: now},
	}

	for _, ing := range ingredients {
		s.ingredientsByID[ing.ID] = ing
	}
	for _, recipe := range recipes {
		s.recipesByID[recipe.ID] = cloneRecipe(recipe)
	}
	for _, item := range items {
		s.inventoryByID[item.ID] = item
	}
	for _, account := range accounts {
		s.funds.open(account)
	}
	return s
}

func (s *Store) ListInventoryItems(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.inventoryByID))
	for _, item := range s.inventoryByID {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})
	return items, nil
}

func (s *Store) UpsertInventoryItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || item.UnitPriceCents < 0 {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.RecipeID != "" {
		if _, ok := s.recipesByID[item.RecipeID]; !ok {
			return nil, store.ErrNotFound
		}
	}
	if item.ID == "" {
		item.ID = xid.New("itm")
	}
	s.inventoryByID[item.ID] = item
	saved := item
	return &saved, nil
}

func (s *Store) ListRecipes(_ context.Context) ([]domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]domain.Recipe, 0, len(s.recipesByID))
	for _, recipe := range s.recipesByID {
		recipes = append(recipes, cloneRecipe(recipe))
	}
	slices.SortFunc(recipes, func(a, b domain.Recipe) int {
		return cmpString(a.Name, b.Name)
	})
	return recipes, nil
}

func (s *Store) UpsertRecipe(_ context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		return nil, store.ErrInvalidRequest
	}
	for _, ri := range recipe.Ingredients {
		if strings.TrimSpace(ri.Name) == "" || ri.QtyPerPortion < 0 {
			return nil, store.ErrInvalidRequest
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID == "" {
		recipe.ID = xid.New("rcp")
	}
	s.recipesByID[recipe.ID] = cloneRecipe(recipe)
	saved := cloneRecipe(recipe)
	return &saved, nil
}

func (s *Store) ListIngredients(_ context.Context) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ingredients := make([]domain.Ingredient, 0, len(s.ingredientsByID))
	for _, ing := range s.ingredientsByID {
		ingredients = append(ingredients, cloneIngredient(ing))
	}
	slices.SortFunc(ingredients, func(a, b domain.Ingredient) int {
		if a.Name == b.Name {
			return cmpString(a.ID, b.ID)
		}
		return cmpString(a.Name, b.Name)
	})
	return ingredients, nil
}

func (s *Store) UpsertIngredient(_ context.Context, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	ingredient.Name = strings.TrimSpace(ingredient.Name)
	if ingredient.Name == "" || ingredient.CurrentCostCents < 0 {
		return nil, store.ErrInvalidRequest
	}
	if ingredient.MarketPriceCents != nil && *ingredient.MarketPriceCents < 0 {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ingredient.ID == "" {
		ingredient.ID = xid.New("ing")
	}
	s.ingredientsByID[ingredient.ID] = cloneIngredient(ingredient)
	saved := cloneIngredient(ingredient)
	return &saved, nil
}

func (s *Store) CreateRequisition(_ context.Context, req domain.Requisition) (*domain.Requisition, error) {
	total, ok := domain.RequisitionTotal(req.Quantity, req.PricePerUnitCents)
	if !ok || strings.TrimSpace(req.ItemName) == "" {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if req.ID == "" {
		req.ID = xid.New("req")
	}
	if _, exists := s.requisitionsByID[req.ID]; exists {
		return nil, store.ErrDuplicate
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt
	req.Status = domain.RequisitionStatusPending
	req.TotalAmountCents = total
	req.SourceAccountID = ""
	req.PaidAmountCents = 0

	s.requisitionsByID[req.ID] = req
	created := cloneRequisition(req)
	return &created, nil
}

func (s *Store) GetRequisition(_ context.Context, id string) (*domain.Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requisitionsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := cloneRequisition(req)
	return &found, nil
}

func (s *Store) ListRequisitions(_ context.Context, status string, limit int) ([]domain.Requisition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Requisition, 0, len(s.requisitionsByID))
	for _, req := range s.requisitionsByID {
		if status != "" && req.Status != status {
			continue
		}
		result = append(result, cloneRequisition(req))
	}
	slices.SortFunc(result, func(a, b domain.Requisition) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) UpdateRequisition(_ context.Context, req domain.Requisition) (*domain.Requisition, error) {
	total, ok := domain.RequisitionTotal(req.Quantity, req.PricePerUnitCents)
	if !ok || strings.TrimSpace(req.ItemName) == "" {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.requisitionsByID[req.ID]
	if !ok {
		return nil, store.ErrNotFound
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

	s.requisitionsByID[current.ID] = current
	updated := cloneRequisition(current)
	return &updated, nil
}

func (s *Store) PayRequisition(_ context.Context, posting domain.RequisitionPosting) (*domain.PostedRequisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requisitionsByID[posting.RequisitionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if req.Status != domain.RequisitionStatusPending {
		return nil, store.ErrInvalidTransition
	}
	if err := s.funds.debit(posting.FundingSourceID, req.TotalAmountCents); err != nil {
		return nil, err
	}

	at := atOrNow(posting.At)
	bankTx, entry := s.appendPosting(posting, req.TotalAmountCents, at)

	req.Status = domain.RequisitionStatusPaid
	req.SourceAccountID = posting.FundingSourceID
	req.PaidAmountCents = req.TotalAmountCents
	req.ApprovedBy = posting.Actor
	req.ApprovedAt = &at
	req.RejectedBy = ""
	req.RejectionReason = ""
	req.UpdatedAt = at

	s.requisitionsByID[req.ID] = req
	return &domain.PostedRequisition{Requisition: cloneRequisition(req), BankTransaction: bankTx, Bookkeeping: entry}, nil
}

func (s *Store) ReverseRequisition(_ context.Context, posting domain.RequisitionPosting) (*domain.PostedRequisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requisitionsByID[posting.RequisitionID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !req.IsPaid() {
		return nil, store.ErrInvalidTransition
	}
	if err := s.funds.credit(req.SourceAccountID, req.PaidAmountCents); err != nil {
		return nil, err
	}

	at := atOrNow(posting.At)
	posting.FundingSourceID = req.SourceAccountID
	bankTx, entry := s.appendPosting(posting, req.PaidAmountCents, at)

	req.Status = domain.RequisitionStatusPending
	req.SourceAccountID = ""
	req.PaidAmountCents = 0
	req.ApprovedBy = ""
	req.ApprovedAt = nil
	req.UpdatedAt = at

	s.requisitionsByID[req.ID] = req
	return &domain.PostedRequisition{Requisition: cloneRequisition(req), BankTransaction: bankTx, Bookkeeping: entry}, nil
}

// appendPosting writes the bank transaction and bookkeeping rows of one
// posting and returns them. The caller holds the write lock.
func (s *Store) appendPosting(posting domain.RequisitionPosting, amount int64, at time.Time) (domain.BankTransaction, domain.BookkeepingEntry) {
	bankTx := posting.BankTransaction
	if bankTx.ID == "" {
		bankTx.ID = xid.New("btx")
	}
	bankTx.BankAccountID = posting.FundingSourceID
	bankTx.AmountCents = amount
	bankTx.ReferenceID = posting.RequisitionID
	bankTx.Date = at
	s.bankTransactions = append(s.bankTransactions, bankTx)

	entry := posting.Bookkeeping
	if entry.ID == "" {
		entry.ID = xid.New("bk")
	}
	entry.AmountCents = amount
	entry.ReferenceID = posting.RequisitionID
	entry.PaymentMethod = domain.PaymentMethodFor(posting.FundingSourceID)
	entry.Date = at
	s.bookkeepingEntries = append(s.bookkeepingEntries, entry)
	return bankTx, entry
}

func (s *Store) RejectRequisition(_ context.Context, id string, actor string, reason string, at time.Time) (*domain.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requisitionsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if req.Status != domain.RequisitionStatusPending {
		return nil, store.ErrInvalidTransition
	}
	req.Status = domain.RequisitionStatusRejected
	req.RejectedBy = actor
	req.RejectionReason = reason
	req.UpdatedAt = atOrNow(at)

	s.requisitionsByID[id] = req
	rejected := cloneRequisition(req)
	return &rejected, nil
}

func (s *Store) ResubmitRequisition(_ context.Context, id string, at time.Time) (*domain.Requisition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requisitionsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if req.Status != domain.RequisitionStatusRejected {
		return nil, store.ErrInvalidTransition
	}
	req.Status = domain.RequisitionStatusPending
	req.UpdatedAt = atOrNow(at)

	s.requisitionsByID[id] = req
	resubmitted := cloneRequisition(req)
	return &resubmitted, nil
}

func (s *Store) CreateBankAccount(_ context.Context, account domain.BankAccount) (*domain.BankAccount, error) {
	account.Name = strings.TrimSpace(account.Name)
	if account.Name == "" || domain.IsCashSource(account.ID) {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if account.ID == "" {
		account.ID = xid.New("bank")
	}
	if _, exists := s.funds.accounts[account.ID]; exists {
		return nil, store.ErrDuplicate
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	if account.Currency == "" {
		account.Currency = s.currency
	}
	s.funds.open(account)
	created := account
	return &created, nil
}

func (s *Store) GetBankAccount(_ context.Context, id string) (*domain.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.funds.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := *account
	return &found, nil
}

func (s *Store) ListBankAccounts(_ context.Context) ([]domain.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]domain.BankAccount, 0, len(s.funds.accounts))
	for _, account := range s.funds.accounts {
		accounts = append(accounts, *account)
	}
	slices.SortFunc(accounts, func(a, b domain.BankAccount) int {
		if a.Name == b.Name {
			return cmpString(a.ID, b.ID)
		}
		return cmpString(a.Name, b.Name)
	})
	return accounts, nil
}

func (s *Store) GetCashAtHand(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.funds.cashCents, nil
}

func (s *Store) ListBankTransactions(_ context.Context, referenceID string, limit int) ([]domain.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.BankTransaction, 0, len(s.bankTransactions))
	for i := len(s.bankTransactions) - 1; i >= 0; i-- {
		tx := s.bankTransactions[i]
		if referenceID != "" && tx.ReferenceID != referenceID {
			continue
		}
		result = append(result, tx)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *Store) ListBookkeepingEntries(_ context.Context, referenceID string, limit int) ([]domain.BookkeepingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.BookkeepingEntry, 0, len(s.bookkeepingEntries))
	for i := len(s.bookkeepingEntries) - 1; i >= 0; i-- {
		entry := s.bookkeepingEntries[i]
		if referenceID != "" && entry.ReferenceID != referenceID {
			continue
		}
		result = append(result, entry)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidRequest
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrDuplicate
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidRequest
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func atOrNow(at time.Time) time.Time {
	if at.IsZero() {
		return time.Now().UTC()
	}
	return at.UTC()
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneRequisition(src domain.Requisition) domain.Requisition {
	dup := src
	if src.ApprovedAt != nil {
		at := *src.ApprovedAt
		dup.ApprovedAt = &at
	}
	return dup
}

func cloneRecipe(src domain.Recipe) domain.Recipe {
	dup := src
	dup.Ingredients = make([]domain.RecipeIngredient, len(src.Ingredients))
	for i, ri := range src.Ingredients {
		if ri.ScalingTiers != nil {
			tiers := make(map[int]float64, len(ri.ScalingTiers))
			for k, v := range ri.ScalingTiers {
				tiers[k] = v
			}
			ri.ScalingTiers = tiers
		}
		dup.Ingredients[i] = ri
	}
	return dup
}

func cloneIngredient(src domain.Ingredient) domain.Ingredient {
	dup := src
	if src.MarketPriceCents != nil {
		price := *src.MarketPriceCents
		dup.MarketPriceCents = &price
	}
	return dup
}
