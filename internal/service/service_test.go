package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
	"catering/backend/internal/store/memory"
	"catering/backend/internal/syncstore"
)

const openingCash = 1_000_000

func newTestService() (*Service, *memory.Store) {
	repo := memory.NewSeeded(memory.WithoutSeedUsers(), memory.WithOpeningCash(openingCash))
	return New(repo), repo
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: domain.RoleAdmin})
}

func staffCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "staff", Role: domain.RoleStaff})
}

func createRequisition(t *testing.T, svc *Service, qty int64, price int64) domain.Requisition {
	t.Helper()
	resp, err := svc.CreateRequisition(staffCtx(), domain.RequisitionCreateRequest{
		Type:              domain.RequisitionTypePurchase,
		Category:          domain.RequisitionCategoryFood,
		ItemName:          "Tomato paste carton",
		Quantity:          qty,
		PricePerUnitCents: price,
	})
	if err != nil {
		t.Fatalf("create requisition failed: %v", err)
	}
	return resp.Requisition
}

func approve(t *testing.T, svc *Service, id string, source string) domain.Requisition {
	t.Helper()
	resp, err := svc.ApproveRequisition(adminCtx(), id, domain.RequisitionApproveRequest{FundingSourceID: source})
	if err != nil {
		t.Fatalf("approve via %s failed: %v", source, err)
	}
	return resp.Requisition
}

func cashBalance(t *testing.T, svc *Service) int64 {
	t.Helper()
	cash, err := svc.GetCashAtHand(adminCtx())
	if err != nil {
		t.Fatalf("get cash failed: %v", err)
	}
	return cash.BalanceCents
}

func bankBalance(t *testing.T, repo *memory.Store, id string) int64 {
	t.Helper()
	account, err := repo.GetBankAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("get bank account %s failed: %v", id, err)
	}
	return account.BalanceCents
}

func TestCreateRequisitionDefaultsRequestorToActor(t *testing.T) {
	svc, _ := newTestService()

	req := createRequisition(t, svc, 4, 25000)

	if req.Status != domain.RequisitionStatusPending {
		t.Fatalf("expected Pending, got %s", req.Status)
	}
	if req.TotalAmountCents != 100000 {
		t.Fatalf("expected total 100000, got %d", req.TotalAmountCents)
	}
	if req.RequestorID != "staff" {
		t.Fatalf("expected requestor staff, got %q", req.RequestorID)
	}
}

func TestCreateRequisitionRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateRequisition(staffCtx(), domain.RequisitionCreateRequest{
		Type:              "Gift",
		Category:          domain.RequisitionCategoryFood,
		ItemName:          "Cake",
		Quantity:          1,
		PricePerUnitCents: 100,
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreateRequisitionRejectsOverflowingTotal(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateRequisition(staffCtx(), domain.RequisitionCreateRequest{
		Type:              domain.RequisitionTypePurchase,
		Category:          domain.RequisitionCategoryFood,
		ItemName:          "Rice 50kg bag",
		Quantity:          1 << 62,
		PricePerUnitCents: 3,
	})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	list, err := svc.ListRequisitions(adminCtx(), "", 0)
	if err != nil {
		t.Fatalf("list requisitions failed: %v", err)
	}
	if len(list.Requisitions) != 0 {
		t.Fatalf("expected nothing stored, got %d requisitions", len(list.Requisitions))
	}
	if got := cashBalance(t, svc); got != openingCash {
		t.Fatalf("expected cash untouched at %d, got %d", openingCash, got)
	}
}

func TestUpdateRequisitionRejectsOverflowingTotal(t *testing.T) {
	svc, _ := newTestService()
	req := createRequisition(t, svc, 2, 10000)

	qty := int64(1 << 62)
	price := int64(4)
	_, err := svc.UpdateRequisition(staffCtx(), req.ID, domain.RequisitionUpdateRequest{Quantity: &qty, PricePerUnitCents: &price})
	if !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	stored, err := svc.GetRequisition(staffCtx(), req.ID)
	if err != nil {
		t.Fatalf("get requisition failed: %v", err)
	}
	if stored.Requisition.TotalAmountCents != 20000 || stored.Requisition.Quantity != 2 {
		t.Fatalf("expected requisition unchanged, got %+v", stored.Requisition)
	}
}

func TestApproveWithBankAccountDebitsAndPosts(t *testing.T) {
	svc, repo := newTestService()
	ctx := adminCtx()
	before := bankBalance(t, repo, "bank-operations")

	req := createRequisition(t, svc, 3, 120000)
	paid := approve(t, svc, req.ID, "bank-operations")

	if paid.Status != domain.RequisitionStatusPaid || paid.SourceAccountID != "bank-operations" || paid.ApprovedBy != "admin" {
		t.Fatalf("unexpected paid requisition: %+v", paid)
	}
	if got := bankBalance(t, repo, "bank-operations"); got != before-360000 {
		t.Fatalf("expected balance %d, got %d", before-360000, got)
	}

	txs, err := svc.ListBankTransactions(ctx, req.ID, 0)
	if err != nil {
		t.Fatalf("list bank transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 bank transaction, got %d", len(txs))
	}
	if txs[0].AmountCents != 360000 || txs[0].Direction != domain.DirectionOutflow || txs[0].BankAccountID != "bank-operations" {
		t.Fatalf("unexpected bank transaction: %+v", txs[0])
	}

	entries, err := svc.ListBookkeepingEntries(ctx, req.ID, 0)
	if err != nil {
		t.Fatalf("list bookkeeping entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 bookkeeping entry, got %d", len(entries))
	}
	if entries[0].PaymentMethod != domain.PaymentMethodBankTransfer || entries[0].Category != domain.RequisitionCategoryFood {
		t.Fatalf("unexpected bookkeeping entry: %+v", entries[0])
	}

	if got := cashBalance(t, svc); got != openingCash {
		t.Fatalf("expected cash untouched at %d, got %d", openingCash, got)
	}
}

func TestApproveWithCashDebitsCashAtHand(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	req := createRequisition(t, svc, 2, 150000)
	paid := approve(t, svc, req.ID, domain.CashSourceID)
	if paid.Status != domain.RequisitionStatusPaid || paid.SourceAccountID != domain.CashSourceID {
		t.Fatalf("unexpected paid requisition: %+v", paid)
	}

	if got := cashBalance(t, svc); got != openingCash-300000 {
		t.Fatalf("expected cash %d, got %d", openingCash-300000, got)
	}

	entries, err := svc.ListBookkeepingEntries(ctx, req.ID, 0)
	if err != nil {
		t.Fatalf("list bookkeeping entries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].PaymentMethod != domain.PaymentMethodCash || entries[0].Direction != domain.DirectionOutflow {
		t.Fatalf("expected one cash outflow entry, got %+v", entries)
	}

	txs, err := svc.ListBankTransactions(ctx, req.ID, 0)
	if err != nil {
		t.Fatalf("list bank transactions failed: %v", err)
	}
	if len(txs) != 1 || txs[0].BankAccountID != domain.CashSourceID {
		t.Fatalf("expected one cash transaction, got %+v", txs)
	}
}

func TestApproveAllowsOverdraft(t *testing.T) {
	svc, _ := newTestService()

	req := createRequisition(t, svc, 1, openingCash+5000)
	approve(t, svc, req.ID, domain.CashSourceID)

	if got := cashBalance(t, svc); got != -5000 {
		t.Fatalf("expected cash -5000, got %d", got)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	req := createRequisition(t, svc, 1, 1000)

	_, err := svc.ApproveRequisition(staffCtx(), req.ID, domain.RequisitionApproveRequest{FundingSourceID: domain.CashSourceID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApproveRejectsInvalidFundingSource(t *testing.T) {
	svc, repo := newTestService()
	ctx := adminCtx()
	req := createRequisition(t, svc, 1, 1000)

	for _, source := range []string{"", "bank-missing", "bank-reserve"} {
		_, err := svc.ApproveRequisition(ctx, req.ID, domain.RequisitionApproveRequest{FundingSourceID: source})
		if !errors.Is(err, store.ErrInvalidFundingSource) {
			t.Fatalf("source %q: expected ErrInvalidFundingSource, got %v", source, err)
		}
	}

	stored, err := repo.GetRequisition(ctx, req.ID)
	if err != nil {
		t.Fatalf("get requisition failed: %v", err)
	}
	if stored.Status != domain.RequisitionStatusPending {
		t.Fatalf("expected Pending, got %s", stored.Status)
	}
	entries, err := svc.ListBookkeepingEntries(ctx, req.ID, 0)
	if err != nil {
		t.Fatalf("list bookkeeping entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no bookkeeping entries, got %d", len(entries))
	}
}

func TestApproveTwiceFailsWithoutSecondDebit(t *testing.T) {
	svc, _ := newTestService()
	req := createRequisition(t, svc, 1, 40000)

	approve(t, svc, req.ID, domain.CashSourceID)
	_, err := svc.ApproveRequisition(adminCtx(), req.ID, domain.RequisitionApproveRequest{FundingSourceID: domain.CashSourceID})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if got := cashBalance(t, svc); got != openingCash-40000 {
		t.Fatalf("expected cash %d, got %d", openingCash-40000, got)
	}
}

func TestReversePendingIsRejectedWithoutCredit(t *testing.T) {
	svc, _ := newTestService()
	req := createRequisition(t, svc, 1, 70000)

	if _, err := svc.ReverseRequisition(adminCtx(), req.ID); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got := cashBalance(t, svc); got != openingCash {
		t.Fatalf("expected cash untouched at %d, got %d", openingCash, got)
	}
}

func TestApproveReverseRoundTripHasNoDrift(t *testing.T) {
	svc, repo := newTestService()
	ctx := adminCtx()
	before := bankBalance(t, repo, "bank-operations")

	req := createRequisition(t, svc, 7, 33333)
	for i := 0; i < 3; i++ {
		approve(t, svc, req.ID, "bank-operations")
		resp, err := svc.ReverseRequisition(ctx, req.ID)
		if err != nil {
			t.Fatalf("round %d: reverse failed: %v", i, err)
		}
		if resp.Requisition.Status != domain.RequisitionStatusPending || resp.Requisition.SourceAccountID != "" {
			t.Fatalf("round %d: unexpected reversed state: %+v", i, resp.Requisition)
		}
	}

	if got := bankBalance(t, repo, "bank-operations"); got != before {
		t.Fatalf("expected balance back at %d, got %d", before, got)
	}
	if _, err := svc.ReverseRequisition(ctx, req.ID); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	entries, err := svc.ListBookkeepingEntries(ctx, req.ID, 0)
	if err != nil {
		t.Fatalf("list bookkeeping entries failed: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("expected 6 bookkeeping entries, got %d", len(entries))
	}
	inflows := 0
	for _, entry := range entries {
		if entry.Direction == domain.DirectionInflow {
			inflows++
		}
	}
	if inflows != 3 {
		t.Fatalf("expected 3 inflows, got %d", inflows)
	}
}

func TestReverseToSourceAfterEditBeforeReapproval(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()
	req := createRequisition(t, svc, 2, 10000)

	approve(t, svc, req.ID, domain.CashSourceID)

	qty := int64(5)
	if _, err := svc.UpdateRequisition(ctx, req.ID, domain.RequisitionUpdateRequest{Quantity: &qty}); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected edit of paid requisition to fail with ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.ReverseRequisition(ctx, req.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}

	resp, err := svc.UpdateRequisition(ctx, req.ID, domain.RequisitionUpdateRequest{Quantity: &qty})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if resp.Requisition.TotalAmountCents != 50000 {
		t.Fatalf("expected total 50000, got %d", resp.Requisition.TotalAmountCents)
	}

	approve(t, svc, req.ID, domain.CashSourceID)
	if _, err := svc.ReverseRequisition(ctx, req.ID); err != nil {
		t.Fatalf("second reverse failed: %v", err)
	}

	if got := cashBalance(t, svc); got != openingCash {
		t.Fatalf("expected cash back at %d, got %d", openingCash, got)
	}
}

func TestRejectThenEditAndResubmit(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()
	req := createRequisition(t, svc, 1, 90000)

	if _, err := svc.ResubmitRequisition(ctx, req.ID); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected resubmit of Pending to fail, got %v", err)
	}

	rejected, err := svc.RejectRequisition(ctx, req.ID, domain.RequisitionRejectRequest{Reason: "get a second quote"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Requisition.Status != domain.RequisitionStatusRejected {
		t.Fatalf("expected Rejected, got %s", rejected.Requisition.Status)
	}

	_, err = svc.ApproveRequisition(ctx, req.ID, domain.RequisitionApproveRequest{FundingSourceID: domain.CashSourceID})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("expected approve of Rejected to fail, got %v", err)
	}

	price := int64(75000)
	notes := "cheaper vendor"
	updated, err := svc.UpdateRequisition(ctx, req.ID, domain.RequisitionUpdateRequest{PricePerUnitCents: &price, Notes: &notes})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Requisition.Status != domain.RequisitionStatusRejected || updated.Requisition.TotalAmountCents != 75000 {
		t.Fatalf("unexpected updated requisition: %+v", updated.Requisition)
	}

	resubmitted, err := svc.ResubmitRequisition(ctx, req.ID)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if resubmitted.Requisition.Status != domain.RequisitionStatusPending {
		t.Fatalf("expected Pending, got %s", resubmitted.Requisition.Status)
	}

	approve(t, svc, req.ID, domain.CashSourceID)
}

func TestListRequisitionsFiltersByStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()
	first := createRequisition(t, svc, 1, 100)
	createRequisition(t, svc, 1, 200)

	if _, err := svc.RejectRequisition(ctx, first.ID, domain.RequisitionRejectRequest{}); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	resp, err := svc.ListRequisitions(ctx, domain.RequisitionStatusRejected, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Requisitions) != 1 || resp.Requisitions[0].ID != first.ID {
		t.Fatalf("expected only %s, got %+v", first.ID, resp.Requisitions)
	}
	if resp.Requisitions[0].RejectionReason != "unspecified" {
		t.Fatalf("expected reason unspecified, got %q", resp.Requisitions[0].RejectionReason)
	}

	if _, err := svc.ListRequisitions(ctx, "Archived", 0); !errors.Is(err, store.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestConcurrentApprovalsDebitOnce(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()
	req := createRequisition(t, svc, 1, 10000)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApproveRequisition(ctx, req.ID, domain.RequisitionApproveRequest{FundingSourceID: domain.CashSourceID})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one approval, got %d", successes)
	}
	if got := cashBalance(t, svc); got != openingCash-10000 {
		t.Fatalf("expected cash %d, got %d", openingCash-10000, got)
	}
}

type failingSyncStore struct{}

func (failingSyncStore) Upsert(_ context.Context, _ string, _ string, _ []byte) error {
	return errors.New("remote unavailable")
}

func (failingSyncStore) Pull(_ context.Context, _ string) (map[string]json.RawMessage, error) {
	return nil, errors.New("remote unavailable")
}

type recordingSyncStore struct {
	mu      sync.Mutex
	records map[string][][]byte
}

func (r *recordingSyncStore) Upsert(_ context.Context, collection string, _ string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = make(map[string][][]byte)
	}
	r.records[collection] = append(r.records[collection], payload)
	return nil
}

func (r *recordingSyncStore) Pull(_ context.Context, _ string) (map[string]json.RawMessage, error) {
	return map[string]json.RawMessage{}, nil
}

// staleSourceRepo hands the service a requisition whose source differs from
// the one the store will credit, as a concurrent reverse and re-approve can.
type staleSourceRepo struct {
	*memory.Store
	source string
}

func (r staleSourceRepo) GetRequisition(ctx context.Context, id string) (*domain.Requisition, error) {
	req, err := r.Store.GetRequisition(ctx, id)
	if err == nil {
		req.SourceAccountID = r.source
	}
	return req, err
}

func TestReverseReportsSourceCreditedByStore(t *testing.T) {
	repo := memory.NewSeeded(memory.WithoutSeedUsers(), memory.WithOpeningCash(openingCash))
	req := createRequisition(t, New(repo), 2, 10000)
	approve(t, New(repo), req.ID, "bank-operations")

	remote := &recordingSyncStore{}
	publisher := syncstore.NewPublisher(remote, 64, nil, nil)
	svc := New(staleSourceRepo{Store: repo, source: domain.CashSourceID}, WithPublisher(publisher))

	if _, err := svc.ReverseRequisition(adminCtx(), req.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("close publisher failed: %v", err)
	}

	if got := cashBalance(t, svc); got != openingCash {
		t.Fatalf("expected cash untouched at %d, got %d", openingCash, got)
	}

	logs, err := svc.ListAuditLogs(adminCtx(), "", 10)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	var detail string
	for _, entry := range logs {
		if entry.Action == "requisition_reverse" {
			detail = entry.Detail
		}
	}
	if detail != "source=bank-operations,amount=20000" {
		t.Fatalf("expected audit detail for bank-operations credit, got %q", detail)
	}

	var inflow *domain.BankTransaction
	for _, payload := range remote.records[syncstore.CollectionBankTransactions] {
		var tx domain.BankTransaction
		if err := json.Unmarshal(payload, &tx); err != nil {
			t.Fatalf("decode synced bank transaction: %v", err)
		}
		if tx.Direction == domain.DirectionInflow {
			inflow = &tx
		}
	}
	if inflow == nil {
		t.Fatal("expected the reversal bank transaction to be synced")
	}
	if inflow.BankAccountID != "bank-operations" || inflow.AmountCents != 20000 {
		t.Fatalf("expected synced credit of 20000 to bank-operations, got %+v", inflow)
	}
	if len(remote.records[syncstore.CollectionBankAccounts]) != 1 || len(remote.records[syncstore.CollectionCash]) != 0 {
		t.Fatalf("expected only the bank account balance synced, got accounts=%d cash=%d",
			len(remote.records[syncstore.CollectionBankAccounts]), len(remote.records[syncstore.CollectionCash]))
	}
	if !strings.Contains(string(remote.records[syncstore.CollectionBankAccounts][0]), `"bank-operations"`) {
		t.Fatalf("expected bank-operations synced, got %s", remote.records[syncstore.CollectionBankAccounts][0])
	}
}

func TestSyncFailureNeverFailsLedger(t *testing.T) {
	repo := memory.NewSeeded(memory.WithoutSeedUsers(), memory.WithOpeningCash(openingCash))
	publisher := syncstore.NewPublisher(failingSyncStore{}, 1, nil, nil)
	svc := New(repo, WithPublisher(publisher))
	ctx := adminCtx()

	req := createRequisition(t, svc, 1, 5000)
	approve(t, svc, req.ID, domain.CashSourceID)
	if _, err := svc.ReverseRequisition(ctx, req.ID); err != nil {
		t.Fatalf("reverse failed: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("close publisher failed: %v", err)
	}

	if _, err := svc.PullRemote(ctx, syncstore.CollectionRequisitions); err == nil {
		t.Fatal("expected pull from failing remote to error")
	}
}

func TestPullRemoteUnknownCollection(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.PullRemote(adminCtx(), "shifts"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateBankAccountThenApprove(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()

	account, err := svc.CreateBankAccount(ctx, domain.BankAccountCreateRequest{
		Name: "Events Float", Number: "5550001111", Currency: "ngn", OpeningBalanceCents: 250000,
	})
	if err != nil {
		t.Fatalf("create bank account failed: %v", err)
	}
	if !account.Active || account.Currency != "NGN" {
		t.Fatalf("unexpected account: %+v", account)
	}

	req := createRequisition(t, svc, 1, 50000)
	approve(t, svc, req.ID, account.ID)

	accounts, err := svc.ListBankAccounts(ctx)
	if err != nil {
		t.Fatalf("list bank accounts failed: %v", err)
	}
	var found bool
	for _, a := range accounts {
		if a.ID == account.ID {
			found = true
			if a.BalanceCents != 200000 {
				t.Fatalf("expected balance 200000, got %d", a.BalanceCents)
			}
		}
	}
	if !found {
		t.Fatalf("expected %s in account list", account.ID)
	}

	if _, err := svc.CreateBankAccount(staffCtx(), domain.BankAccountCreateRequest{Name: "Nope"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuditLogRecordsLedgerActions(t *testing.T) {
	svc, _ := newTestService()
	ctx := adminCtx()
	req := createRequisition(t, svc, 1, 5000)

	approve(t, svc, req.ID, domain.CashSourceID)

	logs, err := svc.ListAuditLogs(ctx, "", 10)
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	seen := make(map[string]bool, len(logs))
	for _, entry := range logs {
		seen[entry.Action] = true
	}
	for _, action := range []string{"requisition_create", "requisition_approve"} {
		if !seen[action] {
			t.Fatalf("expected audit action %s, got %v", action, seen)
		}
	}
}
