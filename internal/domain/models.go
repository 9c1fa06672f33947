package domain

import "time"

type InventoryItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	RecipeID       string `json:"recipe_id,omitempty"`
}

type Recipe struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Ingredients []RecipeIngredient `json:"ingredients"`
}

// RecipeIngredient joins to the catalog by normalized name, not by id.
// ScalingTiers maps a portion-count threshold to the absolute base quantity
// needed at that threshold.
type RecipeIngredient struct {
	Name           string          `json:"name"`
	QtyPerPortion  float64         `json:"qty_per_portion"`
	Unit           string          `json:"unit"`
	ScalingTiers   map[int]float64 `json:"scaling_tiers,omitempty"`
	SubRecipeGroup string          `json:"sub_recipe_group,omitempty"`
}

type Ingredient struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Unit             string  `json:"unit"`
	CurrentCostCents int64   `json:"current_cost_cents"`
	MarketPriceCents *int64  `json:"market_price_cents,omitempty"`
	StockLevel       float64 `json:"stock_level"`
}

type CostLine struct {
	Name               string  `json:"name"`
	RequiredQty        float64 `json:"required_qty"`
	QtyPerPortion      float64 `json:"qty_per_portion"`
	Unit               string  `json:"unit"`
	UnitCostCents      int64   `json:"unit_cost_cents"`
	TotalCostCents     int64   `json:"total_cost_cents"`
	HasError           bool    `json:"has_error"`
	ErrorDetail        string  `json:"error_detail,omitempty"`
	ScalingTierApplied *int    `json:"scaling_tier_applied,omitempty"`
	PortionStrategy    string  `json:"portion_strategy"`
	SubRecipeGroup     string  `json:"sub_recipe_group,omitempty"`
}

type ItemCosting struct {
	InventoryItemID          string     `json:"inventory_item_id"`
	Name                     string     `json:"name"`
	Quantity                 int        `json:"quantity"`
	RequiredPortions         int        `json:"required_portions"`
	PortionStrategy          string     `json:"portion_strategy"`
	TotalIngredientCostCents int64      `json:"total_ingredient_cost_cents"`
	RevenueCents             int64      `json:"revenue_cents"`
	GrossMarginCents         int64      `json:"gross_margin_cents"`
	GrossMarginPercentage    float64    `json:"gross_margin_percentage"`
	Breakdown                []CostLine `json:"breakdown"`
}

type CostingRequest struct {
	ProductID    string             `json:"product_id"`
	Quantity     int                `json:"quantity"`
	QtyOverrides map[string]float64 `json:"qty_overrides,omitempty"`
}

type OrderQuoteLine struct {
	ProductID    string             `json:"product_id"`
	Quantity     int                `json:"quantity"`
	QtyOverrides map[string]float64 `json:"qty_overrides,omitempty"`
}

type OrderQuoteRequest struct {
	ReferenceID string           `json:"reference_id,omitempty"`
	Lines       []OrderQuoteLine `json:"lines"`
}

type OrderQuoteResponse struct {
	ReferenceID              string        `json:"reference_id,omitempty"`
	Items                    []ItemCosting `json:"items"`
	UnknownProductIDs        []string      `json:"unknown_product_ids,omitempty"`
	FlaggedLines             int           `json:"flagged_lines"`
	TotalIngredientCostCents int64         `json:"total_ingredient_cost_cents"`
	RevenueCents             int64         `json:"revenue_cents"`
	GrossMarginCents         int64         `json:"gross_margin_cents"`
	GrossMarginPercentage    float64       `json:"gross_margin_percentage"`
}

type Requisition struct {
	ID                string     `json:"id"`
	Type              string     `json:"type"`
	Category          string     `json:"category"`
	ItemName          string     `json:"item_name"`
	IngredientID      string     `json:"ingredient_id,omitempty"`
	Quantity          int64      `json:"quantity"`
	PricePerUnitCents int64      `json:"price_per_unit_cents"`
	TotalAmountCents  int64      `json:"total_amount_cents"`
	RequestorID       string     `json:"requestor_id"`
	Status            string     `json:"status"`
	ReferenceID       string     `json:"reference_id,omitempty"`
	SourceAccountID   string     `json:"source_account_id,omitempty"`
	PaidAmountCents   int64      `json:"paid_amount_cents,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectedBy        string     `json:"rejected_by,omitempty"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type RequisitionCreateRequest struct {
	Type              string `json:"type"`
	Category          string `json:"category"`
	ItemName          string `json:"item_name"`
	IngredientID      string `json:"ingredient_id,omitempty"`
	Quantity          int64  `json:"quantity"`
	PricePerUnitCents int64  `json:"price_per_unit_cents"`
	RequestorID       string `json:"requestor_id,omitempty"`
	ReferenceID       string `json:"reference_id,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

// RequisitionUpdateRequest carries the editable fields only. Status moves
// through the dedicated approve/reject/reverse/resubmit operations.
type RequisitionUpdateRequest struct {
	ItemName          *string `json:"item_name,omitempty"`
	Quantity          *int64  `json:"quantity,omitempty"`
	PricePerUnitCents *int64  `json:"price_per_unit_cents,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

type RequisitionApproveRequest struct {
	FundingSourceID string `json:"funding_source_id"`
}

type RequisitionRejectRequest struct {
	Reason string `json:"reason"`
}

type RequisitionReverseRequest struct {
	ManagerPIN string `json:"manager_pin"`
}

// RequisitionPosting is everything the store writes in one unit when a
// requisition is paid or reversed.
type RequisitionPosting struct {
	RequisitionID   string
	FundingSourceID string
	Actor           string
	BankTransaction BankTransaction
	Bookkeeping     BookkeepingEntry
	At              time.Time
}

// PostedRequisition is the state the store committed for one posting: the
// requisition after the move and the two rows it appended.
type PostedRequisition struct {
	Requisition     Requisition
	BankTransaction BankTransaction
	Bookkeeping     BookkeepingEntry
}

type RequisitionResponse struct {
	Requisition Requisition `json:"requisition"`
}

type RequisitionListResponse struct {
	Requisitions []Requisition `json:"requisitions"`
}

type BankAccount struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Number       string    `json:"number"`
	Currency     string    `json:"currency"`
	BalanceCents int64     `json:"balance_cents"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type BankAccountCreateRequest struct {
	Name                string `json:"name"`
	Number              string `json:"number"`
	Currency            string `json:"currency"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
}

type CashAtHand struct {
	BalanceCents int64 `json:"balance_cents"`
}

type BankTransaction struct {
	ID            string    `json:"id"`
	BankAccountID string    `json:"bank_account_id"`
	AmountCents   int64     `json:"amount_cents"`
	Direction     string    `json:"direction"`
	ReferenceID   string    `json:"reference_id"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
}

type BookkeepingEntry struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Direction     string    `json:"direction"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	AmountCents   int64     `json:"amount_cents"`
	ReferenceID   string    `json:"reference_id"`
	PaymentMethod string    `json:"payment_method"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	RequisitionTypePurchase = "Purchase"
	RequisitionTypeRelease  = "Release"
	RequisitionTypeRental   = "Rental"
	RequisitionTypeHiring   = "Hiring"
	RequisitionTypeLoan     = "Loan"
)

const (
	RequisitionCategoryFood      = "Food"
	RequisitionCategoryHardware  = "Hardware"
	RequisitionCategoryService   = "Service"
	RequisitionCategoryFinancial = "Financial"
)

const (
	RequisitionStatusPending  = "Pending"
	RequisitionStatusApproved = "Approved"
	RequisitionStatusPaid     = "Paid"
	RequisitionStatusRejected = "Rejected"
)

const (
	DirectionInflow  = "Inflow"
	DirectionOutflow = "Outflow"
)

const (
	PaymentMethodCash         = "Cash"
	PaymentMethodBankTransfer = "Bank Transfer"
)

// CashSourceID selects the cash-at-hand balance as a funding source.
const CashSourceID = "cash"

const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

var requisitionTypes = map[string]struct{}{
	RequisitionTypePurchase: {},
	RequisitionTypeRelease:  {},
	RequisitionTypeRental:   {},
	RequisitionTypeHiring:   {},
	RequisitionTypeLoan:     {},
}

var requisitionCategories = map[string]struct{}{
	RequisitionCategoryFood:      {},
	RequisitionCategoryHardware:  {},
	RequisitionCategoryService:   {},
	RequisitionCategoryFinancial: {},
}

func IsRequisitionType(value string) bool {
	_, ok := requisitionTypes[value]
	return ok
}

func IsRequisitionCategory(value string) bool {
	_, ok := requisitionCategories[value]
	return ok
}

// IsPaid reports whether the requisition currently holds a funding debit.
func (r Requisition) IsPaid() bool {
	return r.Status == RequisitionStatusPaid || r.Status == RequisitionStatusApproved
}

// IsEditable reports whether the editable fields may still change.
func (r Requisition) IsEditable() bool {
	return r.Status == RequisitionStatusPending || r.Status == RequisitionStatusRejected
}

func IsCashSource(fundingSourceID string) bool {
	return fundingSourceID == CashSourceID
}

func PaymentMethodFor(fundingSourceID string) string {
	if IsCashSource(fundingSourceID) {
		return PaymentMethodCash
	}
	return PaymentMethodBankTransfer
}
