package membership_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gymflex/ops-engine/gym"
	"github.com/gymflex/ops-engine/membership"
)

// =============================================================================
// RENEWAL DATE RULES
// =============================================================================

func TestComputeRenewal_FirstMembershipStartsToday(t *testing.T) {
	today := gym.NewDate(2025, time.June, 10)
	plan := &gym.MembershipPlan{ID: gym.NewPlanID(), DurationDays: 30}
	client := &gym.Client{ID: gym.NewClientID()}

	w := membership.ComputeRenewal(client, plan, today)

	assert.Equal(t, today, w.Start)
	assert.Equal(t, today.AddDays(30), w.Expiry)
	assert.False(t, w.SamePlan)
}

func TestComputeRenewal_EarlyRenewalStacksRemainingDays(t *testing.T) {
	// GIVEN: A client with 10 days left on a 30-day plan
	// WHEN: Renewing the same plan early
	// THEN: The new window starts at the current expiry; the client ends up
	//       with 40 days of access from today

	today := gym.NewDate(2025, time.June, 10)
	plan := &gym.MembershipPlan{ID: gym.NewPlanID(), DurationDays: 30}

	expiry := today.AddDays(10)
	client := &gym.Client{
		ID:                 gym.NewClientID(),
		ActiveMembershipID: &plan.ID,
		MembershipExpiry:   &expiry,
	}

	w := membership.ComputeRenewal(client, plan, today)

	assert.Equal(t, expiry, w.Start)
	assert.Equal(t, today.AddDays(40), w.Expiry)
	assert.True(t, w.SamePlan)
}

func TestComputeRenewal_LapsedMembershipStartsToday(t *testing.T) {
	// Remaining time never goes negative: a window that lapsed a month ago
	// contributes nothing.
	today := gym.NewDate(2025, time.June, 10)
	plan := &gym.MembershipPlan{ID: gym.NewPlanID(), DurationDays: 30}

	expiry := today.AddDays(-30)
	client := &gym.Client{
		ID:                 gym.NewClientID(),
		ActiveMembershipID: &plan.ID,
		MembershipExpiry:   &expiry,
	}

	w := membership.ComputeRenewal(client, plan, today)

	assert.Equal(t, today, w.Start)
	assert.Equal(t, today.AddDays(30), w.Expiry)
}

func TestComputeRenewal_ExpiryTodayStartsToday(t *testing.T) {
	// Expiring today means zero whole days remain; the new window starts
	// today, not tomorrow.
	today := gym.NewDate(2025, time.June, 10)
	plan := &gym.MembershipPlan{ID: gym.NewPlanID(), DurationDays: 30}

	expiry := today
	client := &gym.Client{
		ID:                 gym.NewClientID(),
		ActiveMembershipID: &plan.ID,
		MembershipExpiry:   &expiry,
	}

	w := membership.ComputeRenewal(client, plan, today)

	assert.Equal(t, today, w.Start)
	assert.Equal(t, today.AddDays(30), w.Expiry)
}

func TestComputeRenewal_DifferentPlanStillStacks(t *testing.T) {
	// GIVEN: A client switching plans with time remaining
	// WHEN: Renewing onto a different plan
	// THEN: The dates stack just the same; only the classification changes

	today := gym.NewDate(2025, time.June, 10)
	oldPlanID := gym.NewPlanID()
	newPlan := &gym.MembershipPlan{ID: gym.NewPlanID(), DurationDays: 90}

	expiry := today.AddDays(5)
	client := &gym.Client{
		ID:                 gym.NewClientID(),
		ActiveMembershipID: &oldPlanID,
		MembershipExpiry:   &expiry,
	}

	w := membership.ComputeRenewal(client, newPlan, today)

	assert.Equal(t, expiry, w.Start)
	assert.Equal(t, today.AddDays(95), w.Expiry)
	assert.False(t, w.SamePlan)
}

// =============================================================================
// HUMAN CODES
// =============================================================================

func TestNextHumanCode_FirstClient(t *testing.T) {
	assert.Equal(t, "1001a", membership.NextHumanCode(""))
}

func TestNextHumanCode_Increments(t *testing.T) {
	assert.Equal(t, "1002a", membership.NextHumanCode("1001a"))
	assert.Equal(t, "1043a", membership.NextHumanCode("1042a"))
	assert.Equal(t, "10000a", membership.NextHumanCode("9999a"))
}

func TestNextHumanCode_UnparseableFallsBackToFirst(t *testing.T) {
	assert.Equal(t, "1001a", membership.NextHumanCode("garbage"))
}
