package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"catering/backend/internal/domain"
	"catering/backend/internal/store"
	"catering/backend/internal/syncstore"
	"catering/backend/internal/xid"
)

func (s *Service) CreateRequisition(ctx context.Context, req domain.RequisitionCreateRequest) (domain.RequisitionResponse, error) {
	req.Type = strings.TrimSpace(req.Type)
	req.Category = strings.TrimSpace(req.Category)
	req.ItemName = strings.TrimSpace(req.ItemName)
	if !domain.IsRequisitionType(req.Type) || !domain.IsRequisitionCategory(req.Category) {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}
	if _, ok := domain.RequisitionTotal(req.Quantity, req.PricePerUnitCents); !ok || req.ItemName == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}

	requestor := strings.TrimSpace(req.RequestorID)
	if actor, ok := ActorFromContext(ctx); ok && requestor == "" {
		requestor = actor.Username
	}

	created, err := s.repo.CreateRequisition(ctx, domain.Requisition{
		ID:                xid.New("req"),
		Type:              req.Type,
		Category:          req.Category,
		ItemName:          req.ItemName,
		IngredientID:      strings.TrimSpace(req.IngredientID),
		Quantity:          req.Quantity,
		PricePerUnitCents: req.PricePerUnitCents,
		RequestorID:       requestor,
		ReferenceID:       strings.TrimSpace(req.ReferenceID),
		Notes:             strings.TrimSpace(req.Notes),
	})
	s.metrics.RequisitionOperation("create", err)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	s.logAudit(ctx, "requisition_create", "requisition", created.ID, fmt.Sprintf("type=%s,total=%d", created.Type, created.TotalAmountCents))
	s.publish(syncstore.CollectionRequisitions, created.ID, created)
	return domain.RequisitionResponse{Requisition: *created}, nil
}

func (s *Service) GetRequisition(ctx context.Context, id string) (domain.RequisitionResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}
	req, err := s.repo.GetRequisition(ctx, id)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}
	return domain.RequisitionResponse{Requisition: *req}, nil
}

func (s *Service) ListRequisitions(ctx context.Context, status string, limit int) (domain.RequisitionListResponse, error) {
	status = strings.TrimSpace(status)
	switch status {
	case "", domain.RequisitionStatusPending, domain.RequisitionStatusApproved,
		domain.RequisitionStatusPaid, domain.RequisitionStatusRejected:
	default:
		return domain.RequisitionListResponse{}, store.ErrInvalidRequest
	}
	if limit < 1 {
		limit = 100
	}
	reqs, err := s.repo.ListRequisitions(ctx, status, limit)
	if err != nil {
		return domain.RequisitionListResponse{}, err
	}
	return domain.RequisitionListResponse{Requisitions: reqs}, nil
}

// UpdateRequisition applies edits to a Pending or Rejected requisition and
// recomputes its total. Status never changes here.
func (s *Service) UpdateRequisition(ctx context.Context, id string, patch domain.RequisitionUpdateRequest) (domain.RequisitionResponse, error) {
	existing, err := s.repo.GetRequisition(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.RequisitionResponse{}, err
	}
	if !existing.IsEditable() {
		s.metrics.RequisitionOperation("update", store.ErrInvalidTransition)
		return domain.RequisitionResponse{}, store.ErrInvalidTransition
	}

	updated := *existing
	if patch.ItemName != nil {
		name := strings.TrimSpace(*patch.ItemName)
		if name == "" {
			return domain.RequisitionResponse{}, store.ErrInvalidRequest
		}
		updated.ItemName = name
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 1 {
			return domain.RequisitionResponse{}, store.ErrInvalidRequest
		}
		updated.Quantity = *patch.Quantity
	}
	if patch.PricePerUnitCents != nil {
		if *patch.PricePerUnitCents < 0 {
			return domain.RequisitionResponse{}, store.ErrInvalidRequest
		}
		updated.PricePerUnitCents = *patch.PricePerUnitCents
	}
	if patch.Notes != nil {
		updated.Notes = strings.TrimSpace(*patch.Notes)
	}
	if _, ok := domain.RequisitionTotal(updated.Quantity, updated.PricePerUnitCents); !ok {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}

	saved, err := s.repo.UpdateRequisition(ctx, updated)
	s.metrics.RequisitionOperation("update", err)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	s.logAudit(ctx, "requisition_update", "requisition", saved.ID, fmt.Sprintf("qty=%d,unit=%d,total=%d", saved.Quantity, saved.PricePerUnitCents, saved.TotalAmountCents))
	s.publish(syncstore.CollectionRequisitions, saved.ID, saved)
	return domain.RequisitionResponse{Requisition: *saved}, nil
}

// ApproveRequisition pays a Pending requisition from cash or an active bank
// account, writing one outflow bank transaction and bookkeeping entry.
func (s *Service) ApproveRequisition(ctx context.Context, id string, req domain.RequisitionApproveRequest) (domain.RequisitionResponse, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}
	id = strings.TrimSpace(id)
	source := strings.TrimSpace(req.FundingSourceID)
	if id == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}
	if source == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidFundingSource
	}

	existing, err := s.repo.GetRequisition(ctx, id)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	posting := s.newPosting(*existing, source, actor, domain.DirectionOutflow, "Payment for requisition: "+existing.ItemName)
	paid, err := s.repo.PayRequisition(ctx, posting)
	s.metrics.RequisitionOperation("approve", err)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	s.recordPosting(ctx, "requisition_approve", *paid)
	return domain.RequisitionResponse{Requisition: paid.Requisition}, nil
}

func (s *Service) RejectRequisition(ctx context.Context, id string, req domain.RequisitionRejectRequest) (domain.RequisitionResponse, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "unspecified"
	}

	rejected, err := s.repo.RejectRequisition(ctx, id, actor.Username, reason, time.Now().UTC())
	s.metrics.RequisitionOperation("reject", err)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	s.logAudit(ctx, "requisition_reject", "requisition", rejected.ID, reason)
	s.publish(syncstore.CollectionRequisitions, rejected.ID, rejected)
	return domain.RequisitionResponse{Requisition: *rejected}, nil
}

// ReverseRequisition undoes the payment of an Approved or Paid requisition:
// the amount debited goes back to the same source, compensating inflow rows
// are appended and the requisition returns to Pending.
func (s *Service) ReverseRequisition(ctx context.Context, id string) (domain.RequisitionResponse, error) {
	actor, err := s.requireAdmin(ctx)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}

	existing, err := s.repo.GetRequisition(ctx, id)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}
	if !existing.IsPaid() {
		s.metrics.RequisitionOperation("reverse", store.ErrInvalidTransition)
		return domain.RequisitionResponse{}, store.ErrInvalidTransition
	}

	// The store credits whatever source it finds under its lock; the posted
	// rows it returns are the ones recorded below.
	posting := s.newPosting(*existing, existing.SourceAccountID, actor, domain.DirectionInflow, "Reversal of requisition payment: "+existing.ItemName)
	reversed, err := s.repo.ReverseRequisition(ctx, posting)
	s.metrics.RequisitionOperation("reverse", err)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	s.recordPosting(ctx, "requisition_reverse", *reversed)
	return domain.RequisitionResponse{Requisition: reversed.Requisition}, nil
}

// ResubmitRequisition sends a Rejected requisition back to Pending so it
// can be approved again.
func (s *Service) ResubmitRequisition(ctx context.Context, id string) (domain.RequisitionResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.RequisitionResponse{}, store.ErrInvalidRequest
	}

	resubmitted, err := s.repo.ResubmitRequisition(ctx, id, time.Now().UTC())
	s.metrics.RequisitionOperation("resubmit", err)
	if err != nil {
		return domain.RequisitionResponse{}, err
	}

	s.logAudit(ctx, "requisition_resubmit", "requisition", resubmitted.ID, "")
	s.publish(syncstore.CollectionRequisitions, resubmitted.ID, resubmitted)
	return domain.RequisitionResponse{Requisition: *resubmitted}, nil
}

func (s *Service) newPosting(req domain.Requisition, source string, actor domain.Actor, direction string, description string) domain.RequisitionPosting {
	at := time.Now().UTC()
	return domain.RequisitionPosting{
		RequisitionID:   req.ID,
		FundingSourceID: source,
		Actor:           actor.Username,
		BankTransaction: domain.BankTransaction{
			ID:          xid.New("btx"),
			Direction:   direction,
			Description: description,
		},
		Bookkeeping: domain.BookkeepingEntry{
			ID:          xid.New("bk"),
			Direction:   direction,
			Category:    req.Category,
			Description: description,
		},
		At: at,
	}
}

// recordPosting meters, audits and mirrors a committed posting from the rows
// the store wrote. Sync failures are logged and never reach the caller.
func (s *Service) recordPosting(ctx context.Context, action string, posted domain.PostedRequisition) {
	bankTx := posted.BankTransaction
	source := bankTx.BankAccountID
	s.metrics.FundMovement(bankTx.Direction, posted.Bookkeeping.PaymentMethod, bankTx.AmountCents)
	s.logAudit(ctx, action, "requisition", posted.Requisition.ID, fmt.Sprintf("source=%s,amount=%d", source, bankTx.AmountCents))

	s.publish(syncstore.CollectionRequisitions, posted.Requisition.ID, posted.Requisition)
	s.publish(syncstore.CollectionBankTransactions, bankTx.ID, bankTx)
	s.publish(syncstore.CollectionBookkeepingEntries, posted.Bookkeeping.ID, posted.Bookkeeping)

	if domain.IsCashSource(source) {
		balance, err := s.repo.GetCashAtHand(ctx)
		if err != nil {
			s.log.Warn("read cash for sync", zap.Error(err))
			return
		}
		s.publish(syncstore.CollectionCash, domain.CashSourceID, domain.CashAtHand{BalanceCents: balance})
		return
	}
	account, err := s.repo.GetBankAccount(ctx, source)
	if err != nil {
		s.log.Warn("read bank account for sync", zap.String("bank_account_id", source), zap.Error(err))
		return
	}
	s.publish(syncstore.CollectionBankAccounts, account.ID, account)
}
