package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/ops-engine/gym"
	"github.com/gymflex/ops-engine/membership"
	"github.com/gymflex/ops-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testNow = time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*membership.Service, *memory.Memory) {
	t.Helper()
	store := memory.New()
	svc := membership.NewService(store)
	svc.Now = func() time.Time { return testNow }
	return svc, store
}

func seedPlan(t *testing.T, store *memory.Memory, cost float64, days int) *gym.MembershipPlan {
	t.Helper()
	plan := &gym.MembershipPlan{
		ID:                 gym.NewPlanID(),
		Name:               "Mensual",
		Cost:               gym.NewMoney(cost),
		DurationDays:       days,
		BeneficiariesCount: 1,
	}
	require.NoError(t, store.SavePlan(context.Background(), plan))
	return plan
}

// =============================================================================
// REGISTRATION
// =============================================================================

func TestRegister_AssignsSequentialCodes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana", LastName: "Torres"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Luis", LastName: "Paz"})
	require.NoError(t, err)

	assert.Equal(t, "1001a", first.HumanCode)
	assert.Equal(t, "1002a", second.HumanCode)
}

func TestRegister_StartsInactiveWithNoWindow(t *testing.T) {
	svc, _ := newTestService(t)

	client, err := svc.Register(context.Background(), membership.RegisterInput{FirstName: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, gym.StatusInactive, client.Status)
	assert.Nil(t, client.ActiveMembershipID)
	assert.Nil(t, client.MembershipStart)
	assert.Nil(t, client.MembershipExpiry)
	assert.Equal(t, testNow, client.RegisteredAt)
}

func TestRegister_RequiresFirstName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), membership.RegisterInput{})
	assert.True(t, gym.IsValidation(err))
}

// =============================================================================
// RENEWAL
// =============================================================================

func TestRenew_FirstMembership(t *testing.T) {
	// GIVEN: A freshly registered (inactive) client and a 30-day plan
	// WHEN: Renewing
	// THEN: Window starts today, the client is active, and one
	//       membership_new transaction is written

	svc, store := newTestService(t)
	ctx := context.Background()
	plan := seedPlan(t, store, 150, 30)

	client, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana", LastName: "Torres"})
	require.NoError(t, err)

	result, err := svc.Renew(ctx, client.ID, plan.ID)
	require.NoError(t, err)

	today := gym.DateOf(testNow)
	assert.Equal(t, gym.StatusActive, result.Client.Status)
	assert.Equal(t, today, *result.Client.MembershipStart)
	assert.Equal(t, today.AddDays(30), *result.Client.MembershipExpiry)
	assert.Equal(t, plan.ID, *result.Client.ActiveMembershipID)

	assert.Equal(t, gym.TxMembershipNew, result.Transaction.Type)
	assert.Equal(t, "Ana Torres", result.Transaction.ClientName)
	assert.Equal(t, "Mensual", result.Transaction.ItemDescription)
	assert.Equal(t, "150.00", result.Transaction.Amount.String())

	// The transaction was persisted, not just returned.
	txs, err := store.ListTransactions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, result.Transaction.ID, txs[0].ID)
}

func TestRenew_SamePlanClassifiesAsRenewal(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	plan := seedPlan(t, store, 150, 30)

	client, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana"})
	require.NoError(t, err)

	_, err = svc.Renew(ctx, client.ID, plan.ID)
	require.NoError(t, err)

	// Renewing again while active: same plan, stacked dates.
	result, err := svc.Renew(ctx, client.ID, plan.ID)
	require.NoError(t, err)

	today := gym.DateOf(testNow)
	assert.Equal(t, gym.TxMembershipRenewal, result.Transaction.Type)
	assert.Equal(t, today.AddDays(60), *result.Client.MembershipExpiry)
}

func TestRenew_PromotionEchoesBeneficiaries(t *testing.T) {
	// GIVEN: A 2x1 promotional plan
	// WHEN: Renewing
	// THEN: The transaction's client label carries the extra beneficiary
	//       count; only the paying client gets a window

	svc, store := newTestService(t)
	ctx := context.Background()

	promo := &gym.MembershipPlan{
		ID:                 gym.NewPlanID(),
		Name:               "Promo 2x1",
		Cost:               gym.NewMoney(200),
		DurationDays:       30,
		IsPromotion:        true,
		BeneficiariesCount: 2,
	}
	require.NoError(t, store.SavePlan(ctx, promo))

	client, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana", LastName: "Torres"})
	require.NoError(t, err)

	result, err := svc.Renew(ctx, client.ID, promo.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana Torres (+ 1 más)", result.Transaction.ClientName)
}

func TestRenew_UnknownClientOrPlan(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	plan := seedPlan(t, store, 150, 30)

	_, err := svc.Renew(ctx, gym.NewClientID(), plan.ID)
	assert.True(t, gym.IsNotFound(err))

	client, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana"})
	require.NoError(t, err)

	_, err = svc.Renew(ctx, client.ID, gym.NewPlanID())
	assert.True(t, gym.IsNotFound(err))
}

func TestRenew_RejectsNonPositiveDuration(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	bad := &gym.MembershipPlan{ID: gym.NewPlanID(), Name: "Broken", DurationDays: 0}
	require.NoError(t, store.SavePlan(ctx, bad))

	client, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana"})
	require.NoError(t, err)

	_, err = svc.Renew(ctx, client.ID, bad.ID)
	assert.True(t, gym.IsValidation(err))

	// Nothing was written.
	txs, err := store.ListTransactions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

// =============================================================================
// CONTACT UPDATES
// =============================================================================

func TestUpdateContact_LeavesWindowUntouched(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	plan := seedPlan(t, store, 150, 30)

	client, err := svc.Register(ctx, membership.RegisterInput{FirstName: "Ana", Phone: "111"})
	require.NoError(t, err)
	result, err := svc.Renew(ctx, client.ID, plan.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateContact(ctx, client.ID, membership.RegisterInput{
		FirstName: "Ana", LastName: "Torres", Phone: "222",
	})
	require.NoError(t, err)

	assert.Equal(t, "222", updated.Phone)
	assert.Equal(t, "Torres", updated.LastName)
	assert.Equal(t, *result.Client.MembershipExpiry, *updated.MembershipExpiry)
	assert.Equal(t, gym.StatusActive, updated.Status)
}
