/*
Package gym provides the core domain model for the gym operations engine.

PURPOSE:
  This package contains the entities and rules shared by every operation:
  clients and their membership windows, membership plans, installment
  agreements, the financial transaction record, and the attendance audit log.

KEY CONCEPTS IN THIS FILE (types.go):
  - Client: a person with gym access, identified internally by an opaque ID
    and externally by a short human code used at the check-in kiosk
  - MembershipPlan: a named, priced, fixed-duration offering
  - InstallmentPlan / Installment: a fractional-payment agreement and its
    scheduled obligations
  - Transaction: an immutable financial ledger entry
  - AttendanceLog: an immutable audit record of a check-in attempt

DESIGN PRINCIPLES:
  1. Derived status: Client.Status is never set directly; it is always
     recomputed from the membership dates (see status.go)
  2. Precision: all money uses decimal arithmetic (see money.go)
  3. Immutability: transactions and attendance logs are written once
  4. Type safety: strong typing for IDs prevents mixing client/plan IDs

SEE ALSO:
  - date.go: day-granularity date arithmetic
  - money.go: currency amounts and rounding
  - status.go: client status derivation
  - store.go: persistence contracts
*/
package gym

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	ClientID          string
	PlanID            string
	ProductID         string
	InstallmentPlanID string
	InstallmentID     string
	TransactionID     string
	LogID             string
	MeasurementID     string
)

func NewClientID() ClientID                   { return ClientID(uuid.NewString()) }
func NewPlanID() PlanID                       { return PlanID(uuid.NewString()) }
func NewProductID() ProductID                 { return ProductID(uuid.NewString()) }
func NewInstallmentPlanID() InstallmentPlanID { return InstallmentPlanID(uuid.NewString()) }
func NewInstallmentID() InstallmentID         { return InstallmentID(uuid.NewString()) }
func NewTransactionID() TransactionID         { return TransactionID(uuid.NewString()) }
func NewLogID() LogID                         { return LogID(uuid.NewString()) }
func NewMeasurementID() MeasurementID         { return MeasurementID(uuid.NewString()) }

// =============================================================================
// CLIENT
// =============================================================================

// ClientStatus is always derived from the membership dates, never set
// independently. See DeriveStatus in status.go.
type ClientStatus string

const (
	StatusActive   ClientStatus = "active"
	StatusExpired  ClientStatus = "expired"
	StatusInactive ClientStatus = "inactive"
)

// Client is a person with gym access.
//
// The membership fields are optional: they are present only once a plan has
// been granted at least once. Status must equal
// DeriveStatus(ActiveMembershipID, MembershipExpiry, today) after every
// mutation; operations that change the window persist both in one step.
type Client struct {
	ID        ClientID
	HumanCode string // short sequential code, printed on the credential
	FirstName string
	LastName  string
	Phone     string
	DNI       string
	Email     string

	ActiveMembershipID *PlanID
	MembershipStart    *Date
	MembershipExpiry   *Date

	RegisteredAt time.Time
	Status       ClientStatus
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// =============================================================================
// MEMBERSHIP PLAN
// =============================================================================

// MembershipPlan is a named, priced, fixed-duration offering.
//
// BeneficiariesCount > 1 marks a promotional bundle (2 for 2x1, etc.). The
// count is inert metadata: it is echoed on renewal transactions but does not
// grant access to anyone beyond the paying client.
type MembershipPlan struct {
	ID                 PlanID
	Name               string
	Description        string
	Cost               Money
	DurationDays       int
	IsPromotion        bool
	BeneficiariesCount int
}

// =============================================================================
// INSTALLMENT AGREEMENT
// =============================================================================

type InstallmentPlanStatus string

const (
	PlanActive    InstallmentPlanStatus = "active"
	PlanCompleted InstallmentPlanStatus = "completed"
)

// InstallmentPlan is a fractional-payment agreement tied to exactly one
// client and one membership plan.
//
// InstallmentAmount is always round2(TotalAmount / InstallmentCount); the
// sum of the child amounts may miss TotalAmount by a rounding epsilon,
// which is accepted, not corrected.
//
// "overdue" is never a stored status; it exists only in query results
// (see billing.Overdue).
type InstallmentPlan struct {
	ID                InstallmentPlanID
	ClientID          ClientID
	MembershipID      PlanID
	TotalAmount       Money
	InstallmentCount  int
	InstallmentAmount Money
	InterestRate      float64 // fraction, 0.05 = 5%
	Status            InstallmentPlanStatus
	CreatedAt         time.Time
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
)

// PaymentMethod is the fixed set of ways an installment can be settled.
type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayTransfer PaymentMethod = "transfer"
	PayOther    PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayTransfer, PayOther:
		return true
	}
	return false
}

// Installment is one scheduled obligation within an InstallmentPlan.
// It is mutated exactly once, at payment time, from pending to paid.
type Installment struct {
	ID            InstallmentID
	PlanID        InstallmentPlanID
	Sequence      int // 1-based, unique within the plan
	Amount        Money
	DueDate       Date
	Status        InstallmentStatus
	PaidDate      *Date
	PaymentMethod PaymentMethod
	Note          string
}

// =============================================================================
// TRANSACTION - immutable financial ledger entry
// =============================================================================

type TransactionType string

const (
	TxMembershipNew      TransactionType = "membership_new"
	TxMembershipRenewal  TransactionType = "membership_renewal"
	TxProductSale        TransactionType = "product_sale"
	TxInstallmentPayment TransactionType = "installment_payment"
)

// Transaction records a payment. Amounts are always positive; the semantics
// are carried by Type. ClientID is nil for walk-in product sales.
// Transactions are never mutated or deleted.
type Transaction struct {
	ID              TransactionID
	ClientID        *ClientID
	ClientName      string
	ItemDescription string
	Amount          Money
	Date            time.Time
	Type            TransactionType
}

// =============================================================================
// ATTENDANCE LOG - immutable audit record
// =============================================================================

// AttendanceLog records one check-in attempt, successful or not.
// ClientID is nil when the presented code did not resolve.
type AttendanceLog struct {
	ID         LogID
	ClientID   *ClientID
	ClientName string
	Timestamp  time.Time
	Success    bool
	Message    string
	IsWarning  bool
}

// =============================================================================
// PRODUCTS, MEASUREMENTS, SETTINGS
// =============================================================================

type ProductCategory string

const (
	CategorySupplements ProductCategory = "suplementos"
	CategoryDrinks      ProductCategory = "bebidas"
	CategoryApparel     ProductCategory = "ropa"
	CategoryOther       ProductCategory = "otros"
)

type Product struct {
	ID       ProductID
	Name     string
	Price    Money
	Stock    int
	Category ProductCategory
}

// Measurement is an append-only body measurement record for a client.
type Measurement struct {
	ID       MeasurementID
	ClientID ClientID
	Date     time.Time
	Weight   float64 // kg
	Height   *float64
	Chest    *float64
	Waist    *float64
	Arm      *float64
	Notes    string
}

// Settings is the single-row gym configuration record, including the legal
// data printed on receipts.
type Settings struct {
	GymName      string
	PrimaryColor string
	LogoURL      *string
	DarkMode     bool
	BusinessName string
	RUC          string
	Address      string
	Phone        string
}
