/*
handlers.go - HTTP API handlers for the gym operations engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the domain services.

ENDPOINTS:
  Clients:
    GET    /api/clients                         List (with measurements)
    POST   /api/clients                         Register
    GET    /api/clients/{id}                    Get one
    PUT    /api/clients/{id}                    Update contact fields
    POST   /api/clients/{id}/measurements       Add measurement
    POST   /api/clients/{id}/renew              Renew membership
    POST   /api/clients/{id}/installment-plans  Open installment plan
    GET    /api/clients/{id}/installment-plans  List plans with schedule

  Memberships:
    GET    /api/memberships                     List plan catalog
    POST   /api/memberships                     Create/update plan
    DELETE /api/memberships/{id}                Delete plan

  Products:
    GET    /api/products                        List inventory
    POST   /api/products                        Create/update product
    DELETE /api/products/{id}                   Delete product
    POST   /api/products/{id}/sell              Record sale

  Billing:
    POST   /api/installments/{id}/pay           Settle one installment
    GET    /api/installments/overdue            Derived overdue list

  Attendance:
    POST   /api/checkin                         Kiosk admission decision
    GET    /api/attendance                      Recent check-in log

  Misc:
    GET    /api/transactions                    Recent ledger entries
    GET    /api/settings                        Gym configuration
    PUT    /api/settings                        Update configuration

ERROR HANDLING:
  Domain errors map to HTTP status by classification:
  - 400: validation errors, malformed input
  - 404: unknown client/plan/product/installment
  - 409: invalid state (already paid, insufficient stock)
  - 500: everything else

  A denied check-in is NOT an error: the kiosk always gets 200 with the
  decision in the body.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymflex/ops-engine/attendance"
	"github.com/gymflex/ops-engine/billing"
	"github.com/gymflex/ops-engine/gym"
	"github.com/gymflex/ops-engine/membership"
	"github.com/gymflex/ops-engine/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      gym.TxStore
	Membership *membership.Service
	Billing    *billing.Service
	Attendance *attendance.Service
	Sales      *sales.Service
}

// NewHandler wires the services over one shared store.
func NewHandler(store gym.TxStore, warningThresholdDays int) *Handler {
	return &Handler{
		Store:      store,
		Membership: membership.NewService(store),
		Billing:    billing.NewService(store),
		Attendance: attendance.NewService(store, warningThresholdDays),
		Sales:      sales.NewService(store),
	}
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients, newest first, each with its
// measurement history.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]ClientDTO, 0, len(clients))
	for i := range clients {
		dto := toClientDTO(&clients[i])
		measurements, err := h.Store.ListMeasurementsByClient(r.Context(), clients[i].ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for j := range measurements {
			dto.Measurements = append(dto.Measurements, toMeasurementDTO(&measurements[j]))
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := gym.ClientID(chi.URLParam(r, "id"))

	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(client))
}

// RegisterClient creates a client with the next sequential code.
func (h *Handler) RegisterClient(w http.ResponseWriter, r *http.Request) {
	var req SaveClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}

	client, err := h.Membership.Register(r.Context(), membership.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		DNI:       req.DNI,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(client))
}

// UpdateClient updates the contact fields only. The membership window is
// untouched here; it changes through renewal and settlement.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := gym.ClientID(chi.URLParam(r, "id"))

	var req SaveClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}

	client, err := h.Membership.UpdateContact(r.Context(), id, membership.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		DNI:       req.DNI,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(client))
}

// RenewClient grants or extends the client's membership.
func (h *Handler) RenewClient(w http.ResponseWriter, r *http.Request) {
	id := gym.ClientID(chi.URLParam(r, "id"))

	var req RenewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}
	if req.PlanID == "" {
		writeBadRequest(w, "plan_id is required", nil)
		return
	}

	result, err := h.Membership.Renew(r.Context(), id, gym.PlanID(req.PlanID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenewalResponseDTO{
		Client:      toClientDTO(result.Client),
		Transaction: toTransactionDTO(result.Transaction),
	})
}

// AddMeasurement appends a body measurement for a client.
func (h *Handler) AddMeasurement(w http.ResponseWriter, r *http.Request) {
	id := gym.ClientID(chi.URLParam(r, "id"))

	var req AddMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}
	if req.Weight <= 0 {
		writeBadRequest(w, "weight must be positive", nil)
		return
	}

	// The client must exist; measurements never dangle.
	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m := &gym.Measurement{
		ID:       gym.NewMeasurementID(),
		ClientID: client.ID,
		Date:     h.Billing.Now(),
		Weight:   req.Weight,
		Height:   req.Height,
		Chest:    req.Chest,
		Waist:    req.Waist,
		Arm:      req.Arm,
		Notes:    req.Notes,
	}
	if err := h.Store.InsertMeasurement(r.Context(), m); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMeasurementDTO(m))
}

// =============================================================================
// INSTALLMENT HANDLERS
// =============================================================================

// CreateInstallmentPlan opens a fractional-payment agreement. No
// membership is granted and no transaction is written until the first
// installment is settled.
func (h *Handler) CreateInstallmentPlan(w http.ResponseWriter, r *http.Request) {
	clientID := gym.ClientID(chi.URLParam(r, "id"))

	var req CreateInstallmentPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}
	if req.PlanID == "" {
		writeBadRequest(w, "plan_id is required", nil)
		return
	}

	result, err := h.Billing.CreatePlan(r.Context(), clientID, gym.PlanID(req.PlanID), req.Count, req.InterestRate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInstallmentPlanDTO(result, gym.DateOf(h.Billing.Now())))
}

// ListInstallmentPlans returns the client's agreements with schedules.
func (h *Handler) ListInstallmentPlans(w http.ResponseWriter, r *http.Request) {
	clientID := gym.ClientID(chi.URLParam(r, "id"))

	plans, err := h.Billing.PlansForClient(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	today := gym.DateOf(h.Billing.Now())
	dtos := make([]InstallmentPlanDTO, 0, len(plans))
	for i := range plans {
		dtos = append(dtos, toInstallmentPlanDTO(&plans[i], today))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PayInstallment settles one pending installment.
func (h *Handler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	id := gym.InstallmentID(chi.URLParam(r, "id"))

	var req PayInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}

	result, err := h.Billing.MarkPaid(r.Context(), id, gym.PaymentMethod(req.PaymentMethod), req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SettlementResponseDTO{
		Transaction:       toTransactionDTO(result.Transaction),
		Sequence:          result.Progress.Sequence,
		InstallmentCount:  result.Progress.InstallmentCount,
		PaidCount:         result.Progress.PaidCount,
		InstallmentAmount: result.Progress.InstallmentAmount.String(),
		TotalAmount:       result.Progress.TotalAmount.String(),
		InterestRate:      result.Progress.InterestRate,
		MembershipName:    result.Progress.MembershipName,
		PlanCompleted:     result.Progress.PlanCompleted,
	})
}

// ListOverdueInstallments returns pending installments past their due
// date, oldest first.
func (h *Handler) ListOverdueInstallments(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.Billing.ListOverdue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	today := gym.DateOf(h.Billing.Now())
	dtos := make([]InstallmentDTO, 0, len(overdue))
	for i := range overdue {
		dtos = append(dtos, toInstallmentDTO(&overdue[i], today))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// MEMBERSHIP PLAN HANDLERS
// =============================================================================

// ListPlans returns the plan catalog.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Store.ListPlans(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]PlanDTO, 0, len(plans))
	for i := range plans {
		dtos = append(dtos, toPlanDTO(&plans[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SavePlan creates or updates a membership plan.
func (h *Handler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var req SavePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required", nil)
		return
	}
	if req.DurationDays <= 0 {
		writeBadRequest(w, "duration_days must be positive", nil)
		return
	}
	if req.Cost < 0 {
		writeBadRequest(w, "cost must not be negative", nil)
		return
	}

	plan := &gym.MembershipPlan{
		ID:                 gym.PlanID(req.ID),
		Name:               req.Name,
		Description:        req.Description,
		Cost:               gym.NewMoney(req.Cost).Round2(),
		DurationDays:       req.DurationDays,
		IsPromotion:        req.IsPromotion,
		BeneficiariesCount: req.BeneficiariesCount,
	}
	if plan.ID == "" {
		plan.ID = gym.NewPlanID()
	}
	if plan.BeneficiariesCount < 1 {
		plan.BeneficiariesCount = 1
	}

	if err := h.Store.SavePlan(r.Context(), plan); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// DeletePlan removes a plan; client references are nulled by the store.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := gym.PlanID(chi.URLParam(r, "id"))
	if err := h.Store.DeletePlan(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns the inventory.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, toProductDTO(&products[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveProduct creates or updates a product.
func (h *Handler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required", nil)
		return
	}
	if req.Price < 0 {
		writeBadRequest(w, "price must not be negative", nil)
		return
	}
	if req.Stock < 0 {
		writeBadRequest(w, "stock must not be negative", nil)
		return
	}

	product := &gym.Product{
		ID:       gym.ProductID(req.ID),
		Name:     req.Name,
		Price:    gym.NewMoney(req.Price).Round2(),
		Stock:    req.Stock,
		Category: gym.ProductCategory(req.Category),
	}
	if product.ID == "" {
		product.ID = gym.NewProductID()
	}
	if product.Category == "" {
		product.Category = gym.CategoryOther
	}

	if err := h.Store.SaveProduct(r.Context(), product); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(product))
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := gym.ProductID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SellProduct records a sale, decrementing stock atomically.
func (h *Handler) SellProduct(w http.ResponseWriter, r *http.Request) {
	id := gym.ProductID(chi.URLParam(r, "id"))

	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}

	var clientID *gym.ClientID
	if req.ClientID != nil && *req.ClientID != "" {
		cid := gym.ClientID(*req.ClientID)
		clientID = &cid
	}

	tx, err := h.Sales.Sell(r.Context(), id, req.Quantity, clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// CheckIn decides admission for a presented code. Denial is a normal
// outcome: the kiosk always receives 200 with the decision.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}
	if req.Code == "" {
		writeBadRequest(w, "code is required", nil)
		return
	}

	decision, err := h.Attendance.CheckIn(r.Context(), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := CheckInResponseDTO{
		Granted: decision.Granted,
		Warning: decision.Warning,
		Message: decision.Message,
	}
	if decision.Client != nil {
		dto := toClientDTO(decision.Client)
		resp.Client = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAttendanceLogs returns recent check-in attempts, newest first.
func (h *Handler) ListAttendanceLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100)

	logs, err := h.Store.ListAttendanceLogs(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]AttendanceLogDTO, 0, len(logs))
	for i := range logs {
		dtos = append(dtos, toAttendanceLogDTO(&logs[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TRANSACTION AND SETTINGS HANDLERS
// =============================================================================

// ListTransactions returns recent ledger entries, newest first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100)

	txs, err := h.Store.ListTransactions(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for i := range txs {
		dtos = append(dtos, toTransactionDTO(&txs[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSettings returns the gym configuration.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// UpdateSettings replaces the gym configuration.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body", err)
		return
	}

	settings := &gym.Settings{
		GymName:      req.GymName,
		PrimaryColor: req.PrimaryColor,
		LogoURL:      req.LogoURL,
		DarkMode:     req.DarkMode,
		BusinessName: req.BusinessName,
		RUC:          req.RUC,
		Address:      req.Address,
		Phone:        req.Phone,
	}
	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a domain error to an HTTP status by its classification.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case gym.IsNotFound(err):
		status = http.StatusNotFound
	case gym.IsInvalidState(err):
		status = http.StatusConflict
	case gym.IsValidation(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, resp)
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
