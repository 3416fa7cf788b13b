package billing

import "github.com/gymflex/ops-engine/gym"

// IsOverdue reports whether an installment is overdue as of today: still
// pending and past its due date (date-only). Overdue is a derived view,
// never a stored status, and is unrelated to the client's active/expired
// status.
func IsOverdue(i *gym.Installment, today gym.Date) bool {
	return i.Status == gym.InstallmentPending && i.DueDate.Before(today)
}
