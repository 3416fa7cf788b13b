/*
Package billing implements the installment engine: generating a
fractional-payment agreement for a membership, settling its installments,
and detecting overdue obligations.

MONEY RULES:
  totalAmount       = round2(plan cost × (1 + interest rate))
  installmentAmount = round2(totalAmount / installment count)

  Every installment carries the same rounded amount. The sum may miss the
  total by a rounding epsilon (100.00 over 3 → 3×33.33 = 99.99); the
  difference is accepted, never corrected.

DUE DATE RULES:
  Installment N falls due N calendar months after plan creation, with
  end-of-month clamping (Jan 31 → Feb 28). See gym.Date.AddMonths.

ACTIVATION POLICY:
  Creating a plan grants nothing: admission stays governed by whatever
  membership window is already on file. The first settled installment
  activates access (see settlement in service.go).

SEE ALSO:
  - membership/renewal.go: the full-price alternative
  - gym/money.go: the single rounding rule
*/
package billing

import (
	"time"

	"github.com/gymflex/ops-engine/gym"
)

// GeneratePlan produces an installment plan and its child installments for
// clientID buying plan in count parts. Pure: no storage, no side effects.
//
// count must be at least 2; a count of 1 degenerates to a full-price
// renewal and is rejected with ErrInvalidInstallmentCount.
func GeneratePlan(clientID gym.ClientID, plan *gym.MembershipPlan, count int, interestRate float64, now time.Time) (*gym.InstallmentPlan, []gym.Installment, error) {
	if count < 2 {
		return nil, nil, gym.ErrInvalidInstallmentCount
	}
	if interestRate < 0 {
		return nil, nil, &gym.ValidationError{Field: "interest_rate", Reason: "must not be negative"}
	}
	if !plan.Cost.IsPositive() {
		return nil, nil, &gym.ValidationError{Field: "cost", Reason: "must be positive"}
	}

	total := plan.Cost.MulFloat(1 + interestRate).Round2()
	perInstallment := total.DivInt(count).Round2()

	p := &gym.InstallmentPlan{
		ID:                gym.NewInstallmentPlanID(),
		ClientID:          clientID,
		MembershipID:      plan.ID,
		TotalAmount:       total,
		InstallmentCount:  count,
		InstallmentAmount: perInstallment,
		InterestRate:      interestRate,
		Status:            gym.PlanActive,
		CreatedAt:         now,
	}

	created := gym.DateOf(now)
	installments := make([]gym.Installment, count)
	for i := range installments {
		installments[i] = gym.Installment{
			ID:       gym.NewInstallmentID(),
			PlanID:   p.ID,
			Sequence: i + 1,
			Amount:   perInstallment,
			DueDate:  created.AddMonths(i + 1),
			Status:   gym.InstallmentPending,
		}
	}

	return p, installments, nil
}
