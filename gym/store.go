/*
store.go - Persistence contracts for the gym engine

PURPOSE:
  Defines the interface between the engine and the record store. The engine
  never talks SQL; it reads and writes entities through these contracts.
  Different implementations can use SQLite, PostgreSQL, or in-memory storage.

KEY INTERFACES:
  Store:   the full record-store surface (clients, plans, installments,
           transactions, attendance, products, measurements, settings)
  TxStore: Store plus WithTx for atomic multi-entity writes

ATOMICITY CONTRACT:
  Compound operations (renewal = client update + transaction insert;
  settlement = installment update + transaction insert + plan/client
  updates) run inside WithTx. Either every write in the unit commits or
  none does; no reader may observe intermediate state.

PER-CLIENT SERIALIZATION:
  Implementations must not interleave two read-modify-write sequences
  against the same client. The SQLite store guarantees this with a single
  writer (store-level mutex + WAL); a PostgreSQL implementation would use
  row locks instead.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - store/memory: in-memory store for tests

SEE ALSO:
  - membership/service.go, billing/service.go: the engine's use of WithTx
*/
package gym

import "context"

// =============================================================================
// ENTITY STORES
// =============================================================================

// ClientStore persists clients. GetClient fails with ErrClientNotFound;
// FindClientByHumanCode returns (nil, nil) for an unknown code because an
// unknown code at the kiosk is a normal business outcome, not a fault.
type ClientStore interface {
	GetClient(ctx context.Context, id ClientID) (*Client, error)
	FindClientByHumanCode(ctx context.Context, code string) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	CreateClient(ctx context.Context, c *Client) error
	UpdateClient(ctx context.Context, c *Client) error

	// LastHumanCode returns the most recently assigned human code, or ""
	// when no client exists. Used for monotonic code assignment.
	LastHumanCode(ctx context.Context) (string, error)
}

type PlanStore interface {
	GetPlan(ctx context.Context, id PlanID) (*MembershipPlan, error)
	ListPlans(ctx context.Context) ([]MembershipPlan, error)
	SavePlan(ctx context.Context, p *MembershipPlan) error

	// DeletePlan removes a plan. Implementations must first null out any
	// client's reference to it: no client may reference a non-existent plan.
	DeletePlan(ctx context.Context, id PlanID) error
}

type ProductStore interface {
	GetProduct(ctx context.Context, id ProductID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	SaveProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id ProductID) error
}

// TransactionStore is append-only: transactions are never updated or
// deleted.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *Transaction) error

	// ListTransactions returns transactions most recent first.
	// limit <= 0 means no limit.
	ListTransactions(ctx context.Context, limit int) ([]Transaction, error)
}

type InstallmentStore interface {
	InsertInstallmentPlan(ctx context.Context, p *InstallmentPlan) error
	GetInstallmentPlan(ctx context.Context, id InstallmentPlanID) (*InstallmentPlan, error)
	UpdateInstallmentPlan(ctx context.Context, p *InstallmentPlan) error
	ListInstallmentPlansByClient(ctx context.Context, clientID ClientID) ([]InstallmentPlan, error)

	InsertInstallments(ctx context.Context, list []Installment) error
	GetInstallment(ctx context.Context, id InstallmentID) (*Installment, error)
	UpdateInstallment(ctx context.Context, i *Installment) error
	ListInstallmentsByPlan(ctx context.Context, planID InstallmentPlanID) ([]Installment, error)

	// ListPendingInstallmentsDueBefore returns installments still pending
	// whose due date is strictly before day, ordered by due date.
	ListPendingInstallmentsDueBefore(ctx context.Context, day Date) ([]Installment, error)
}

// AttendanceStore is append-only.
type AttendanceStore interface {
	InsertAttendanceLog(ctx context.Context, log *AttendanceLog) error
	ListAttendanceLogs(ctx context.Context, limit int) ([]AttendanceLog, error)
}

type MeasurementStore interface {
	InsertMeasurement(ctx context.Context, m *Measurement) error
	ListMeasurementsByClient(ctx context.Context, clientID ClientID) ([]Measurement, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}

// =============================================================================
// COMPOSED STORE
// =============================================================================

// Store is the full record-store surface consumed by the engine.
type Store interface {
	ClientStore
	PlanStore
	ProductStore
	TransactionStore
	InstallmentStore
	AttendanceStore
	MeasurementStore
	SettingsStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
