package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/gymflex/ops-engine/gym"
)

// Service exposes the installment operations. Plan creation and settlement
// are compound writes and run inside the store's transaction.
type Service struct {
	store gym.TxStore

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store gym.TxStore) *Service {
	return &Service{store: store, Now: time.Now}
}

// =============================================================================
// PLAN CREATION
// =============================================================================

// PlanWithInstallments pairs an installment plan with its schedule.
type PlanWithInstallments struct {
	Plan         *gym.InstallmentPlan
	Installments []gym.Installment
}

// CreatePlan opens an installment agreement for clientID buying planID in
// count parts at the given interest rate. The plan and its installments are
// inserted atomically.
//
// This grants no membership and writes no transaction: the client's
// admission is untouched until the first installment is settled.
func (s *Service) CreatePlan(ctx context.Context, clientID gym.ClientID, planID gym.PlanID, count int, interestRate float64) (*PlanWithInstallments, error) {
	now := s.Now()

	var result *PlanWithInstallments
	err := s.store.WithTx(ctx, func(store gym.Store) error {
		client, err := store.GetClient(ctx, clientID)
		if err != nil {
			return err
		}
		plan, err := store.GetPlan(ctx, planID)
		if err != nil {
			return err
		}

		p, installments, err := GeneratePlan(client.ID, plan, count, interestRate, now)
		if err != nil {
			return err
		}

		if err := store.InsertInstallmentPlan(ctx, p); err != nil {
			return err
		}
		if err := store.InsertInstallments(ctx, installments); err != nil {
			return err
		}

		result = &PlanWithInstallments{Plan: p, Installments: installments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PlansForClient returns the client's installment plans with their
// schedules, most recent plan first.
func (s *Service) PlansForClient(ctx context.Context, clientID gym.ClientID) ([]PlanWithInstallments, error) {
	plans, err := s.store.ListInstallmentPlansByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	result := make([]PlanWithInstallments, 0, len(plans))
	for i := range plans {
		installments, err := s.store.ListInstallmentsByPlan(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		result = append(result, PlanWithInstallments{Plan: &plans[i], Installments: installments})
	}
	return result, nil
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// Progress describes where a plan stands after a settlement. It carries
// everything a receipt needs, so the caller renders documents without a
// second read.
type Progress struct {
	Sequence          int // position of the installment just paid
	InstallmentCount  int
	PaidCount         int
	InstallmentAmount gym.Money
	TotalAmount       gym.Money
	InterestRate      float64
	MembershipName    string
	PlanCompleted     bool
}

// SettlementResult is returned by MarkPaid.
type SettlementResult struct {
	Transaction *gym.Transaction
	Progress    Progress
}

// MarkPaid settles one pending installment. Atomically, as one unit:
//
//  1. the installment becomes paid (paid date, method, note recorded)
//  2. one installment_payment transaction is appended
//  3. the plan completes if no sibling remains pending
//  4. the client becomes active: partial payment grants current access
//
// Settling an installment that is no longer pending fails with
// ErrInstallmentAlreadyPaid; there is no reversal.
func (s *Service) MarkPaid(ctx context.Context, installmentID gym.InstallmentID, method gym.PaymentMethod, note string) (*SettlementResult, error) {
	if !method.Valid() {
		return nil, &gym.ValidationError{Field: "payment_method", Reason: "unknown method"}
	}

	now := s.Now()
	today := gym.DateOf(now)

	var result *SettlementResult
	err := s.store.WithTx(ctx, func(store gym.Store) error {
		installment, err := store.GetInstallment(ctx, installmentID)
		if err != nil {
			return err
		}
		if installment.Status != gym.InstallmentPending {
			return gym.ErrInstallmentAlreadyPaid
		}

		plan, err := store.GetInstallmentPlan(ctx, installment.PlanID)
		if err != nil {
			return err
		}
		membership, err := store.GetPlan(ctx, plan.MembershipID)
		if err != nil {
			return err
		}
		client, err := store.GetClient(ctx, plan.ClientID)
		if err != nil {
			return err
		}

		installment.Status = gym.InstallmentPaid
		installment.PaidDate = &today
		installment.PaymentMethod = method
		installment.Note = note
		if err := store.UpdateInstallment(ctx, installment); err != nil {
			return err
		}

		tx := &gym.Transaction{
			ID:       gym.NewTransactionID(),
			ClientID: &client.ID,
			ClientName: client.FullName(),
			ItemDescription: fmt.Sprintf("%s - Cuota %d/%d",
				membership.Name, installment.Sequence, plan.InstallmentCount),
			Amount: installment.Amount,
			Date:   now,
			Type:   gym.TxInstallmentPayment,
		}
		if err := store.InsertTransaction(ctx, tx); err != nil {
			return err
		}

		siblings, err := store.ListInstallmentsByPlan(ctx, plan.ID)
		if err != nil {
			return err
		}
		paid := 0
		for i := range siblings {
			if siblings[i].Status == gym.InstallmentPaid {
				paid++
			}
		}
		if paid == len(siblings) && plan.Status != gym.PlanCompleted {
			plan.Status = gym.PlanCompleted
			if err := store.UpdateInstallmentPlan(ctx, plan); err != nil {
				return err
			}
		}

		if err := s.activateClient(ctx, store, client, membership, today); err != nil {
			return err
		}

		result = &SettlementResult{
			Transaction: tx,
			Progress: Progress{
				Sequence:          installment.Sequence,
				InstallmentCount:  plan.InstallmentCount,
				PaidCount:         paid,
				InstallmentAmount: plan.InstallmentAmount,
				TotalAmount:       plan.TotalAmount,
				InterestRate:      plan.InterestRate,
				MembershipName:    membership.Name,
				PlanCompleted:     plan.Status == gym.PlanCompleted,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// activateClient makes the paying client active. Status is derived, never
// set raw: when the current window is absent or lapsed a fresh window for
// the financed membership is granted (start today), and a still-valid
// window is left untouched. Either way the derived status comes out active.
func (s *Service) activateClient(ctx context.Context, store gym.Store, client *gym.Client, membership *gym.MembershipPlan, today gym.Date) error {
	client.ActiveMembershipID = &membership.ID

	lapsed := client.MembershipExpiry == nil || client.MembershipExpiry.Before(today)
	if lapsed {
		start := today
		expiry := start.AddDays(membership.DurationDays)
		client.MembershipStart = &start
		client.MembershipExpiry = &expiry
	}

	client.RefreshStatus(today)
	return store.UpdateClient(ctx, client)
}

// =============================================================================
// OVERDUE DETECTION
// =============================================================================

// ListOverdue returns every installment that is still pending with a due
// date before today. Read-only; nothing is written, and the installments'
// stored status stays pending.
func (s *Service) ListOverdue(ctx context.Context) ([]gym.Installment, error) {
	return s.store.ListPendingInstallmentsDueBefore(ctx, gym.DateOf(s.Now()))
}
