/*
Package attendance implements the admission decision at the check-in kiosk.

CHECK ORDER (short-circuit, first match wins):
  1. unknown code                          -> deny
  2. no membership reference or no expiry  -> deny
  3. expiry before today (date-only)       -> deny
  4. expiring within the warning window    -> grant with warning
  5. otherwise                             -> grant

Every branch, including denials, writes exactly one attendance log entry
before returning. A failed log write fails the whole check-in: access
control is only as good as its audit trail, so the failure is surfaced to
the caller rather than swallowed.

Unknown codes and lapsed memberships are normal business outcomes here,
logged and returned as denials, never as errors.
*/
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/gymflex/ops-engine/gym"
)

// DefaultWarningThresholdDays is the "expiring soon" cutoff used when no
// configuration is supplied.
const DefaultWarningThresholdDays = 5

// Decision is the outcome of one check-in attempt.
type Decision struct {
	Granted bool
	Warning bool
	Message string
	Client  *gym.Client // nil when the code did not resolve
}

// Service decides admission and records the audit trail.
type Service struct {
	store gym.Store

	// WarningThresholdDays flags a successful check-in when the membership
	// expires within this many days (inclusive).
	WarningThresholdDays int

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewService(store gym.Store, warningThresholdDays int) *Service {
	if warningThresholdDays <= 0 {
		warningThresholdDays = DefaultWarningThresholdDays
	}
	return &Service{store: store, WarningThresholdDays: warningThresholdDays, Now: time.Now}
}

// CheckIn resolves a human code (case-insensitive) and decides admission.
func (s *Service) CheckIn(ctx context.Context, code string) (*Decision, error) {
	now := s.Now()
	today := gym.DateOf(now)

	client, err := s.store.FindClientByHumanCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if client == nil {
		return s.logged(ctx, now, nil, &Decision{
			Granted: false,
			Message: "code not found",
		})
	}

	if client.ActiveMembershipID == nil || client.MembershipExpiry == nil {
		return s.logged(ctx, now, client, &Decision{
			Granted: false,
			Message: "no active membership",
			Client:  client,
		})
	}

	if client.MembershipExpiry.Before(today) {
		return s.logged(ctx, now, client, &Decision{
			Granted: false,
			Message: "membership expired",
			Client:  client,
		})
	}

	daysRemaining := today.DaysUntil(*client.MembershipExpiry)
	if daysRemaining <= s.WarningThresholdDays {
		return s.logged(ctx, now, client, &Decision{
			Granted: true,
			Warning: true,
			Message: fmt.Sprintf("access granted, membership expires in %d day(s)", daysRemaining),
			Client:  client,
		})
	}

	return s.logged(ctx, now, client, &Decision{
		Granted: true,
		Message: "access granted",
		Client:  client,
	})
}

// logged writes the audit entry for a decision and returns it. The entry is
// written on every branch; a write failure is the caller's problem, not a
// silently dropped log line.
func (s *Service) logged(ctx context.Context, now time.Time, client *gym.Client, d *Decision) (*Decision, error) {
	entry := &gym.AttendanceLog{
		ID:         gym.NewLogID(),
		ClientName: "unknown",
		Timestamp:  now,
		Success:    d.Granted,
		Message:    d.Message,
		IsWarning:  d.Warning,
	}
	if client != nil {
		entry.ClientID = &client.ID
		entry.ClientName = client.FullName()
	}

	if err := s.store.InsertAttendanceLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("attendance log write failed: %w", err)
	}
	return d, nil
}
