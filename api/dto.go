/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

CONVENTIONS:
  - Money is serialized as a fixed two-decimal string ("150.00")
  - Dates are ISO (YYYY-MM-DD); instants are RFC3339
  - Optional references serialize as null, not as the empty string

SEE ALSO:
  - handlers.go: Uses these types
  - gym/types.go: The domain entities these mirror
*/
package api

import (
	"time"

	"github.com/gymflex/ops-engine/billing"
	"github.com/gymflex/ops-engine/gym"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID                 string            `json:"id"`
	HumanCode          string            `json:"human_code"`
	FirstName          string            `json:"first_name"`
	LastName           string            `json:"last_name"`
	Phone              string            `json:"phone,omitempty"`
	DNI                string            `json:"dni,omitempty"`
	Email              string            `json:"email,omitempty"`
	ActiveMembershipID *string           `json:"active_membership_id"`
	MembershipStart    *string           `json:"membership_start"`
	MembershipExpiry   *string           `json:"membership_expiry"`
	RegisteredAt       string            `json:"registered_at"`
	Status             string            `json:"status"`
	Measurements       []MeasurementDTO  `json:"measurements,omitempty"`
}

// SaveClientRequest carries the contact fields for registration and
// contact updates.
type SaveClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	DNI       string `json:"dni"`
	Email     string `json:"email"`
}

// PlanDTO represents a membership plan.
type PlanDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Cost               string `json:"cost"`
	DurationDays       int    `json:"duration_days"`
	IsPromotion        bool   `json:"is_promotion"`
	BeneficiariesCount int    `json:"beneficiaries_count"`
}

// SavePlanRequest creates or updates a membership plan. An empty ID
// means create.
type SavePlanRequest struct {
	ID                 string  `json:"id,omitempty"`
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Cost               float64 `json:"cost"`
	DurationDays       int     `json:"duration_days"`
	IsPromotion        bool    `json:"is_promotion"`
	BeneficiariesCount int     `json:"beneficiaries_count"`
}

// RenewRequest selects the plan for a membership renewal.
type RenewRequest struct {
	PlanID string `json:"plan_id"`
}

// RenewalResponseDTO is the receipt payload after a renewal.
type RenewalResponseDTO struct {
	Client      ClientDTO      `json:"client"`
	Transaction TransactionDTO `json:"transaction"`
}

// CreateInstallmentPlanRequest opens a fractional-payment agreement.
type CreateInstallmentPlanRequest struct {
	PlanID       string  `json:"plan_id"`
	Count        int     `json:"count"`
	InterestRate float64 `json:"interest_rate"`
}

// InstallmentPlanDTO pairs an agreement with its schedule.
type InstallmentPlanDTO struct {
	ID                string           `json:"id"`
	ClientID          string           `json:"client_id"`
	MembershipID      string           `json:"membership_id"`
	TotalAmount       string           `json:"total_amount"`
	InstallmentCount  int              `json:"installment_count"`
	InstallmentAmount string           `json:"installment_amount"`
	InterestRate      float64          `json:"interest_rate"`
	Status            string           `json:"status"`
	CreatedAt         string           `json:"created_at"`
	Installments      []InstallmentDTO `json:"installments"`
}

// InstallmentDTO represents one scheduled obligation. Overdue is derived
// from status and due date at render time, never stored.
type InstallmentDTO struct {
	ID            string  `json:"id"`
	Sequence      int     `json:"sequence"`
	Amount        string  `json:"amount"`
	DueDate       string  `json:"due_date"`
	Status        string  `json:"status"`
	Overdue       bool    `json:"overdue"`
	PaidDate      *string `json:"paid_date"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// PayInstallmentRequest settles one installment.
type PayInstallmentRequest struct {
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
}

// SettlementResponseDTO is the receipt payload after a settlement.
type SettlementResponseDTO struct {
	Transaction       TransactionDTO `json:"transaction"`
	Sequence          int            `json:"sequence"`
	InstallmentCount  int            `json:"installment_count"`
	PaidCount         int            `json:"paid_count"`
	InstallmentAmount string         `json:"installment_amount"`
	TotalAmount       string         `json:"total_amount"`
	InterestRate      float64        `json:"interest_rate"`
	MembershipName    string         `json:"membership_name"`
	PlanCompleted     bool           `json:"plan_completed"`
}

// ProductDTO represents a POS product.
type ProductDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
	Category string `json:"category"`
}

// SaveProductRequest creates or updates a product. An empty ID means
// create.
type SaveProductRequest struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
}

// SellRequest records a product sale. ClientID is omitted for walk-ins.
type SellRequest struct {
	Quantity int     `json:"quantity"`
	ClientID *string `json:"client_id,omitempty"`
}

// TransactionDTO represents a ledger entry.
type TransactionDTO struct {
	ID              string  `json:"id"`
	ClientID        *string `json:"client_id"`
	ClientName      string  `json:"client_name"`
	ItemDescription string  `json:"item_description"`
	Amount          string  `json:"amount"`
	Date            string  `json:"date"`
	Type            string  `json:"type"`
}

// CheckInRequest carries the code presented at the kiosk.
type CheckInRequest struct {
	Code string `json:"code"`
}

// CheckInResponseDTO is the kiosk decision.
type CheckInResponseDTO struct {
	Granted bool       `json:"granted"`
	Warning bool       `json:"warning"`
	Message string     `json:"message"`
	Client  *ClientDTO `json:"client,omitempty"`
}

// AttendanceLogDTO represents one check-in attempt.
type AttendanceLogDTO struct {
	ID         string  `json:"id"`
	ClientID   *string `json:"client_id"`
	ClientName string  `json:"client_name"`
	Timestamp  string  `json:"timestamp"`
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	IsWarning  bool    `json:"is_warning"`
}

// MeasurementDTO represents a body measurement record.
type MeasurementDTO struct {
	ID       string   `json:"id"`
	ClientID string   `json:"client_id"`
	Date     string   `json:"date"`
	Weight   float64  `json:"weight"`
	Height   *float64 `json:"height,omitempty"`
	Chest    *float64 `json:"chest,omitempty"`
	Waist    *float64 `json:"waist,omitempty"`
	Arm      *float64 `json:"arm,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// AddMeasurementRequest appends a measurement for a client.
type AddMeasurementRequest struct {
	Weight float64  `json:"weight"`
	Height *float64 `json:"height,omitempty"`
	Chest  *float64 `json:"chest,omitempty"`
	Waist  *float64 `json:"waist,omitempty"`
	Arm    *float64 `json:"arm,omitempty"`
	Notes  string   `json:"notes"`
}

// SettingsDTO is the single gym configuration record.
type SettingsDTO struct {
	GymName      string  `json:"gym_name"`
	PrimaryColor string  `json:"primary_color"`
	LogoURL      *string `json:"logo_url"`
	DarkMode     bool    `json:"dark_mode"`
	BusinessName string  `json:"business_name"`
	RUC          string  `json:"ruc"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toClientDTO(c *gym.Client) ClientDTO {
	dto := ClientDTO{
		ID:           string(c.ID),
		HumanCode:    c.HumanCode,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Phone:        c.Phone,
		DNI:          c.DNI,
		Email:        c.Email,
		RegisteredAt: c.RegisteredAt.Format(time.RFC3339),
		Status:       string(c.Status),
	}
	if c.ActiveMembershipID != nil {
		id := string(*c.ActiveMembershipID)
		dto.ActiveMembershipID = &id
	}
	if c.MembershipStart != nil {
		s := c.MembershipStart.String()
		dto.MembershipStart = &s
	}
	if c.MembershipExpiry != nil {
		s := c.MembershipExpiry.String()
		dto.MembershipExpiry = &s
	}
	return dto
}

func toPlanDTO(p *gym.MembershipPlan) PlanDTO {
	return PlanDTO{
		ID:                 string(p.ID),
		Name:               p.Name,
		Description:        p.Description,
		Cost:               p.Cost.String(),
		DurationDays:       p.DurationDays,
		IsPromotion:        p.IsPromotion,
		BeneficiariesCount: p.BeneficiariesCount,
	}
}

func toProductDTO(p *gym.Product) ProductDTO {
	return ProductDTO{
		ID:       string(p.ID),
		Name:     p.Name,
		Price:    p.Price.String(),
		Stock:    p.Stock,
		Category: string(p.Category),
	}
}

func toTransactionDTO(tx *gym.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:              string(tx.ID),
		ClientName:      tx.ClientName,
		ItemDescription: tx.ItemDescription,
		Amount:          tx.Amount.String(),
		Date:            tx.Date.Format(time.RFC3339),
		Type:            string(tx.Type),
	}
	if tx.ClientID != nil {
		id := string(*tx.ClientID)
		dto.ClientID = &id
	}
	return dto
}

func toInstallmentDTO(inst *gym.Installment, today gym.Date) InstallmentDTO {
	dto := InstallmentDTO{
		ID:            string(inst.ID),
		Sequence:      inst.Sequence,
		Amount:        inst.Amount.String(),
		DueDate:       inst.DueDate.String(),
		Status:        string(inst.Status),
		Overdue:       billing.IsOverdue(inst, today),
		PaymentMethod: string(inst.PaymentMethod),
		Note:          inst.Note,
	}
	if inst.PaidDate != nil {
		s := inst.PaidDate.String()
		dto.PaidDate = &s
	}
	return dto
}

func toInstallmentPlanDTO(p *billing.PlanWithInstallments, today gym.Date) InstallmentPlanDTO {
	dto := InstallmentPlanDTO{
		ID:                string(p.Plan.ID),
		ClientID:          string(p.Plan.ClientID),
		MembershipID:      string(p.Plan.MembershipID),
		TotalAmount:       p.Plan.TotalAmount.String(),
		InstallmentCount:  p.Plan.InstallmentCount,
		InstallmentAmount: p.Plan.InstallmentAmount.String(),
		InterestRate:      p.Plan.InterestRate,
		Status:            string(p.Plan.Status),
		CreatedAt:         p.Plan.CreatedAt.Format(time.RFC3339),
		Installments:      make([]InstallmentDTO, 0, len(p.Installments)),
	}
	for i := range p.Installments {
		dto.Installments = append(dto.Installments, toInstallmentDTO(&p.Installments[i], today))
	}
	return dto
}

func toMeasurementDTO(m *gym.Measurement) MeasurementDTO {
	return MeasurementDTO{
		ID:       string(m.ID),
		ClientID: string(m.ClientID),
		Date:     m.Date.Format(time.RFC3339),
		Weight:   m.Weight,
		Height:   m.Height,
		Chest:    m.Chest,
		Waist:    m.Waist,
		Arm:      m.Arm,
		Notes:    m.Notes,
	}
}

func toAttendanceLogDTO(l *gym.AttendanceLog) AttendanceLogDTO {
	dto := AttendanceLogDTO{
		ID:         string(l.ID),
		ClientName: l.ClientName,
		Timestamp:  l.Timestamp.Format(time.RFC3339),
		Success:    l.Success,
		Message:    l.Message,
		IsWarning:  l.IsWarning,
	}
	if l.ClientID != nil {
		id := string(*l.ClientID)
		dto.ClientID = &id
	}
	return dto
}

func toSettingsDTO(s *gym.Settings) SettingsDTO {
	return SettingsDTO{
		GymName:      s.GymName,
		PrimaryColor: s.PrimaryColor,
		LogoURL:      s.LogoURL,
		DarkMode:     s.DarkMode,
		BusinessName: s.BusinessName,
		RUC:          s.RUC,
		Address:      s.Address,
		Phone:        s.Phone,
	}
}
