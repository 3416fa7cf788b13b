package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/gymflex/ops-engine/gym"
)

// Service exposes the client lifecycle operations. All compound writes run
// inside the store's transaction so that the client window, its status, and
// the financial record commit as one unit.
type Service struct {
	store gym.TxStore

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store gym.TxStore) *Service {
	return &Service{store: store, Now: time.Now}
}

// =============================================================================
// REGISTRATION
// =============================================================================

// RegisterInput carries the contact fields for a new client. Free-text
// validation happens before the engine; the engine only assigns identity
// and initial state.
type RegisterInput struct {
	FirstName string
	LastName  string
	Phone     string
	DNI       string
	Email     string
}

// Register creates a client with the next sequential human code. New
// clients start inactive with no membership window.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*gym.Client, error) {
	if in.FirstName == "" {
		return nil, &gym.ValidationError{Field: "first_name", Reason: "required"}
	}

	var client *gym.Client
	err := s.store.WithTx(ctx, func(store gym.Store) error {
		last, err := store.LastHumanCode(ctx)
		if err != nil {
			return fmt.Errorf("assign human code: %w", err)
		}

		client = &gym.Client{
			ID:           gym.NewClientID(),
			HumanCode:    NextHumanCode(last),
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Phone:        in.Phone,
			DNI:          in.DNI,
			Email:        in.Email,
			RegisteredAt: s.Now(),
			Status:       gym.StatusInactive,
		}
		return store.CreateClient(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// =============================================================================
// RENEWAL
// =============================================================================

// RenewalResult is returned to the caller so a receipt can be rendered
// without a second read.
type RenewalResult struct {
	Client      *gym.Client
	Transaction *gym.Transaction
}

// Renew grants or extends clientID's membership with planID at full price.
//
// Atomically: persists the new window on the client, recomputes status
// (which becomes active), and appends exactly one transaction. Installment
// renewals never go through here; they activate at settlement time instead.
func (s *Service) Renew(ctx context.Context, clientID gym.ClientID, planID gym.PlanID) (*RenewalResult, error) {
	now := s.Now()
	today := gym.DateOf(now)

	var result *RenewalResult
	err := s.store.WithTx(ctx, func(store gym.Store) error {
		client, err := store.GetClient(ctx, clientID)
		if err != nil {
			return err
		}
		plan, err := store.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		if plan.DurationDays <= 0 {
			return &gym.ValidationError{Field: "duration_days", Reason: "must be positive"}
		}
		if plan.Cost.IsNegative() {
			return &gym.ValidationError{Field: "cost", Reason: "must not be negative"}
		}

		window := ComputeRenewal(client, plan, today)

		client.ActiveMembershipID = &plan.ID
		client.MembershipStart = &window.Start
		client.MembershipExpiry = &window.Expiry
		client.RefreshStatus(today)
		if err := store.UpdateClient(ctx, client); err != nil {
			return err
		}

		tx := &gym.Transaction{
			ID:              gym.NewTransactionID(),
			ClientID:        &client.ID,
			ClientName:      renewalClientLabel(client, plan),
			ItemDescription: plan.Name,
			Amount:          plan.Cost,
			Date:            now,
			Type:            gym.TxMembershipNew,
		}
		if window.SamePlan {
			tx.Type = gym.TxMembershipRenewal
		}
		if err := store.InsertTransaction(ctx, tx); err != nil {
			return err
		}

		result = &RenewalResult{Client: client, Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// renewalClientLabel echoes the beneficiary count on promotional bundles.
// One person pays; the extra beneficiaries are a staff-side note only.
func renewalClientLabel(client *gym.Client, plan *gym.MembershipPlan) string {
	if plan.IsPromotion && plan.BeneficiariesCount > 1 {
		return fmt.Sprintf("%s (+ %d más)", client.FullName(), plan.BeneficiariesCount-1)
	}
	return client.FullName()
}

// =============================================================================
// CONTACT UPDATES
// =============================================================================

// UpdateContact persists the client's contact fields. The membership window
// and status are deliberately untouched: they change only through Renew and
// installment settlement.
func (s *Service) UpdateContact(ctx context.Context, clientID gym.ClientID, in RegisterInput) (*gym.Client, error) {
	var client *gym.Client
	err := s.store.WithTx(ctx, func(store gym.Store) error {
		var err error
		client, err = store.GetClient(ctx, clientID)
		if err != nil {
			return err
		}
		client.FirstName = in.FirstName
		client.LastName = in.LastName
		client.Phone = in.Phone
		client.DNI = in.DNI
		client.Email = in.Email
		return store.UpdateClient(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
