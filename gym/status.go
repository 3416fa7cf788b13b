package gym

// =============================================================================
// CLIENT STATUS DERIVATION
// =============================================================================

// DeriveStatus computes a client's admission status from the stored
// membership fields. It is the single source of truth: the persisted
// Status column exists for listing/filtering only and must be recomputed
// through this function by every operation that touches the membership
// window.
//
// Rules (date-only, time-of-day ignored):
//   - no plan reference or no expiry date     -> inactive
//   - expiry on or after today                -> active
//   - expiry before today                     -> expired
func DeriveStatus(activeMembershipID *PlanID, expiry *Date, today Date) ClientStatus {
	if activeMembershipID == nil || expiry == nil {
		return StatusInactive
	}
	if expiry.AfterOrEqual(today) {
		return StatusActive
	}
	return StatusExpired
}

// RefreshStatus recomputes and sets c.Status. Callers persist the client in
// the same store transaction as whatever mutation made the refresh
// necessary, so no reader observes a stale status.
func (c *Client) RefreshStatus(today Date) {
	c.Status = DeriveStatus(c.ActiveMembershipID, c.MembershipExpiry, today)
}
