package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/ops-engine/attendance"
	"github.com/gymflex/ops-engine/gym"
	"github.com/gymflex/ops-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var kioskNow = time.Date(2025, time.June, 10, 7, 30, 0, 0, time.UTC)

func newKiosk(t *testing.T) (*attendance.Service, *memory.Memory) {
	t.Helper()
	store := memory.New()
	svc := attendance.NewService(store, 5)
	svc.Now = func() time.Time { return kioskNow }
	return svc, store
}

// seedMember stores a client whose membership expires daysFromNow days from
// the fixed clock. Negative values produce a lapsed membership.
func seedMember(t *testing.T, store *memory.Memory, code string, daysFromNow int) *gym.Client {
	t.Helper()
	today := gym.DateOf(kioskNow)
	planID := gym.NewPlanID()
	start := today.AddDays(daysFromNow - 30)
	expiry := today.AddDays(daysFromNow)

	client := &gym.Client{
		ID:                 gym.NewClientID(),
		HumanCode:          code,
		FirstName:          "Luis",
		LastName:           "Mora",
		RegisteredAt:       kioskNow,
		ActiveMembershipID: &planID,
		MembershipStart:    &start,
		MembershipExpiry:   &expiry,
	}
	client.RefreshStatus(today)
	require.NoError(t, store.CreateClient(context.Background(), client))
	return client
}

func lastLog(t *testing.T, store *memory.Memory) *gym.AttendanceLog {
	t.Helper()
	logs, err := store.ListAttendanceLogs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, logs, 1, "every check-in must leave exactly one log entry")
	return &logs[0]
}

// =============================================================================
// DENIALS
// =============================================================================

func TestCheckIn_UnknownCode(t *testing.T) {
	// GIVEN: A code no client carries
	// WHEN: Checking in
	// THEN: Denied, and the audit entry records the attempt with no client

	svc, store := newKiosk(t)

	decision, err := svc.CheckIn(context.Background(), "9999z")
	require.NoError(t, err)

	assert.False(t, decision.Granted)
	assert.Equal(t, "code not found", decision.Message)
	assert.Nil(t, decision.Client)

	entry := lastLog(t, store)
	assert.Nil(t, entry.ClientID)
	assert.Equal(t, "unknown", entry.ClientName)
	assert.False(t, entry.Success)
}

func TestCheckIn_NoMembership(t *testing.T) {
	svc, store := newKiosk(t)

	client := &gym.Client{
		ID:           gym.NewClientID(),
		HumanCode:    "1001a",
		FirstName:    "Luis",
		LastName:     "Mora",
		RegisteredAt: kioskNow,
		Status:       gym.StatusInactive,
	}
	require.NoError(t, store.CreateClient(context.Background(), client))

	decision, err := svc.CheckIn(context.Background(), "1001a")
	require.NoError(t, err)

	assert.False(t, decision.Granted)
	assert.Equal(t, "no active membership", decision.Message)
	require.NotNil(t, decision.Client)

	entry := lastLog(t, store)
	require.NotNil(t, entry.ClientID)
	assert.Equal(t, client.ID, *entry.ClientID)
	assert.Equal(t, "Luis Mora", entry.ClientName)
}

func TestCheckIn_ExpiredMembership(t *testing.T) {
	svc, store := newKiosk(t)
	seedMember(t, store, "1001a", -1)

	decision, err := svc.CheckIn(context.Background(), "1001a")
	require.NoError(t, err)

	assert.False(t, decision.Granted)
	assert.Equal(t, "membership expired", decision.Message)
	assert.False(t, lastLog(t, store).Success)
}

// =============================================================================
// GRANTS
// =============================================================================

func TestCheckIn_ExpiryTodayStillAdmits(t *testing.T) {
	// The last covered day counts: expiry == today is a valid membership.
	svc, store := newKiosk(t)
	seedMember(t, store, "1001a", 0)

	decision, err := svc.CheckIn(context.Background(), "1001a")
	require.NoError(t, err)

	assert.True(t, decision.Granted)
	assert.True(t, decision.Warning)
	assert.Equal(t, "access granted, membership expires in 0 day(s)", decision.Message)
	assert.True(t, lastLog(t, store).IsWarning)
}

func TestCheckIn_WarningAtThreshold(t *testing.T) {
	// GIVEN: A membership expiring exactly at the warning threshold
	// WHEN: Checking in
	// THEN: Admitted, but flagged as expiring soon

	svc, store := newKiosk(t)
	seedMember(t, store, "1001a", 5)

	decision, err := svc.CheckIn(context.Background(), "1001a")
	require.NoError(t, err)

	assert.True(t, decision.Granted)
	assert.True(t, decision.Warning)
	assert.Equal(t, "access granted, membership expires in 5 day(s)", decision.Message)

	entry := lastLog(t, store)
	assert.True(t, entry.Success)
	assert.True(t, entry.IsWarning)
}

func TestCheckIn_NoWarningBeyondThreshold(t *testing.T) {
	svc, store := newKiosk(t)
	seedMember(t, store, "1001a", 6)

	decision, err := svc.CheckIn(context.Background(), "1001a")
	require.NoError(t, err)

	assert.True(t, decision.Granted)
	assert.False(t, decision.Warning)
	assert.Equal(t, "access granted", decision.Message)
	assert.False(t, lastLog(t, store).IsWarning)
}

func TestCheckIn_CodeIsCaseInsensitive(t *testing.T) {
	svc, store := newKiosk(t)
	seedMember(t, store, "1001a", 30)

	decision, err := svc.CheckIn(context.Background(), "1001A")
	require.NoError(t, err)
	assert.True(t, decision.Granted)
}

// =============================================================================
// AUDIT TRAIL
// =============================================================================

type logFailStore struct {
	gym.Store
}

func (s *logFailStore) InsertAttendanceLog(ctx context.Context, entry *gym.AttendanceLog) error {
	return errors.New("disk full")
}

func TestCheckIn_LogWriteFailureSurfaces(t *testing.T) {
	// GIVEN: A store whose attendance log writes fail
	// WHEN: Checking in with a valid membership
	// THEN: The check-in itself fails; admission without an audit record
	//       is not an option

	backing := memory.New()
	svc := attendance.NewService(&logFailStore{Store: backing}, 5)
	svc.Now = func() time.Time { return kioskNow }
	seedMember(t, backing, "1001a", 30)

	decision, err := svc.CheckIn(context.Background(), "1001a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attendance log write failed")
	assert.Nil(t, decision)
}

func TestCheckIn_EveryBranchLogsOnce(t *testing.T) {
	svc, store := newKiosk(t)
	seedMember(t, store, "1001a", 30)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "nope")
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "1001a")
	require.NoError(t, err)

	logs, err := store.ListAttendanceLogs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
