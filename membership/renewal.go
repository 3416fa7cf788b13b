/*
Package membership implements the client lifecycle: registration with
sequential human codes, and membership renewal (fresh assignment or
roll-forward of an existing window).

RENEWAL DATE RULES:
  - lapsed or never-granted membership: the new period starts today
  - early renewal (current expiry still in the future): the new period
    stacks onto the remaining time, starting at the current expiry, so no
    paid days are lost or double-counted
  - expiry = start + plan duration in calendar days

Whether the renewal is "same plan" only classifies the resulting
transaction (membership_renewal vs membership_new); it never changes the
date math.

SEE ALSO:
  - gym/status.go: status derivation applied after every renewal
  - billing/plan.go: the fractional-payment alternative to full renewal
*/
package membership

import "github.com/gymflex/ops-engine/gym"

// RenewalWindow is the computed membership window for a renewal.
type RenewalWindow struct {
	Start    gym.Date
	Expiry   gym.Date
	SamePlan bool
}

// ComputeRenewal derives the new membership window for client+plan as of
// today. Pure: no storage, no side effects.
func ComputeRenewal(client *gym.Client, plan *gym.MembershipPlan, today gym.Date) RenewalWindow {
	start := today
	if client.MembershipExpiry != nil && client.MembershipExpiry.After(today) {
		start = *client.MembershipExpiry
	}

	samePlan := client.ActiveMembershipID != nil && *client.ActiveMembershipID == plan.ID

	return RenewalWindow{
		Start:    start,
		Expiry:   start.AddDays(plan.DurationDays),
		SamePlan: samePlan,
	}
}
