/*
Package memory provides an in-memory gym.TxStore for tests and development.

All values crossing the boundary are cloned, so stored state is never
aliased by callers. WithTx snapshots the full state and restores it when
the function fails, giving the same all-or-nothing behavior as the SQLite
store's transactions.
*/
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gymflex/ops-engine/gym"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex
	d  *storeData
}

func New() *Memory {
	return &Memory{d: newStoreData()}
}

// WithTx executes fn against the live state under the write lock,
// restoring a snapshot if fn fails.
func (m *Memory) WithTx(ctx context.Context, fn func(gym.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.d.snapshot()
	if err := fn(m.d); err != nil {
		m.d = snapshot
		return err
	}
	return nil
}

// ---- locked delegation to storeData ----

func (m *Memory) GetClient(ctx context.Context, id gym.ClientID) (*gym.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetClient(ctx, id)
}

func (m *Memory) FindClientByHumanCode(ctx context.Context, code string) (*gym.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.FindClientByHumanCode(ctx, code)
}

func (m *Memory) ListClients(ctx context.Context) ([]gym.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListClients(ctx)
}

func (m *Memory) CreateClient(ctx context.Context, c *gym.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.CreateClient(ctx, c)
}

func (m *Memory) UpdateClient(ctx context.Context, c *gym.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.UpdateClient(ctx, c)
}

func (m *Memory) LastHumanCode(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.LastHumanCode(ctx)
}

func (m *Memory) GetPlan(ctx context.Context, id gym.PlanID) (*gym.MembershipPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetPlan(ctx, id)
}

func (m *Memory) ListPlans(ctx context.Context) ([]gym.MembershipPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListPlans(ctx)
}

func (m *Memory) SavePlan(ctx context.Context, p *gym.MembershipPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.SavePlan(ctx, p)
}

func (m *Memory) DeletePlan(ctx context.Context, id gym.PlanID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeletePlan(ctx, id)
}

func (m *Memory) GetProduct(ctx context.Context, id gym.ProductID) (*gym.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetProduct(ctx, id)
}

func (m *Memory) ListProducts(ctx context.Context) ([]gym.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListProducts(ctx)
}

func (m *Memory) SaveProduct(ctx context.Context, p *gym.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.SaveProduct(ctx, p)
}

func (m *Memory) DeleteProduct(ctx context.Context, id gym.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeleteProduct(ctx, id)
}

func (m *Memory) InsertTransaction(ctx context.Context, tx *gym.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertTransaction(ctx, tx)
}

func (m *Memory) ListTransactions(ctx context.Context, limit int) ([]gym.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListTransactions(ctx, limit)
}

func (m *Memory) InsertInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertInstallmentPlan(ctx, p)
}

func (m *Memory) GetInstallmentPlan(ctx context.Context, id gym.InstallmentPlanID) (*gym.InstallmentPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetInstallmentPlan(ctx, id)
}

func (m *Memory) UpdateInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.UpdateInstallmentPlan(ctx, p)
}

func (m *Memory) ListInstallmentPlansByClient(ctx context.Context, clientID gym.ClientID) ([]gym.InstallmentPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListInstallmentPlansByClient(ctx, clientID)
}

func (m *Memory) InsertInstallments(ctx context.Context, list []gym.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertInstallments(ctx, list)
}

func (m *Memory) GetInstallment(ctx context.Context, id gym.InstallmentID) (*gym.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetInstallment(ctx, id)
}

func (m *Memory) UpdateInstallment(ctx context.Context, i *gym.Installment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.UpdateInstallment(ctx, i)
}

func (m *Memory) ListInstallmentsByPlan(ctx context.Context, planID gym.InstallmentPlanID) ([]gym.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListInstallmentsByPlan(ctx, planID)
}

func (m *Memory) ListPendingInstallmentsDueBefore(ctx context.Context, day gym.Date) ([]gym.Installment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListPendingInstallmentsDueBefore(ctx, day)
}

func (m *Memory) InsertAttendanceLog(ctx context.Context, log *gym.AttendanceLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertAttendanceLog(ctx, log)
}

func (m *Memory) ListAttendanceLogs(ctx context.Context, limit int) ([]gym.AttendanceLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListAttendanceLogs(ctx, limit)
}

func (m *Memory) InsertMeasurement(ctx context.Context, msr *gym.Measurement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertMeasurement(ctx, msr)
}

func (m *Memory) ListMeasurementsByClient(ctx context.Context, clientID gym.ClientID) ([]gym.Measurement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListMeasurementsByClient(ctx, clientID)
}

func (m *Memory) GetSettings(ctx context.Context) (*gym.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetSettings(ctx)
}

func (m *Memory) SaveSettings(ctx context.Context, s *gym.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.SaveSettings(ctx, s)
}

// =============================================================================
// STORE DATA - unlocked state, also serves as the WithTx view
// =============================================================================

type storeData struct {
	clients       map[gym.ClientID]gym.Client
	plans         map[gym.PlanID]gym.MembershipPlan
	products      map[gym.ProductID]gym.Product
	iplans        map[gym.InstallmentPlanID]gym.InstallmentPlan
	installments  map[gym.InstallmentID]gym.Installment
	transactions  []gym.Transaction
	logs          []gym.AttendanceLog
	measurements  map[gym.ClientID][]gym.Measurement
	settings      *gym.Settings
	lastHumanCode string
}

func newStoreData() *storeData {
	return &storeData{
		clients:      make(map[gym.ClientID]gym.Client),
		plans:        make(map[gym.PlanID]gym.MembershipPlan),
		products:     make(map[gym.ProductID]gym.Product),
		iplans:       make(map[gym.InstallmentPlanID]gym.InstallmentPlan),
		installments: make(map[gym.InstallmentID]gym.Installment),
		measurements: make(map[gym.ClientID][]gym.Measurement),
	}
}

// snapshot copies the container level. Stored values are never mutated in
// place (every read and write clones), so sharing them is safe.
func (d *storeData) snapshot() *storeData {
	s := newStoreData()
	for k, v := range d.clients {
		s.clients[k] = v
	}
	for k, v := range d.plans {
		s.plans[k] = v
	}
	for k, v := range d.products {
		s.products[k] = v
	}
	for k, v := range d.iplans {
		s.iplans[k] = v
	}
	for k, v := range d.installments {
		s.installments[k] = v
	}
	s.transactions = append([]gym.Transaction(nil), d.transactions...)
	s.logs = append([]gym.AttendanceLog(nil), d.logs...)
	for k, v := range d.measurements {
		s.measurements[k] = append([]gym.Measurement(nil), v...)
	}
	s.settings = d.settings
	s.lastHumanCode = d.lastHumanCode
	return s
}

// ---- clients ----

func (d *storeData) GetClient(_ context.Context, id gym.ClientID) (*gym.Client, error) {
	c, ok := d.clients[id]
	if !ok {
		return nil, gym.ErrClientNotFound
	}
	return cloneClient(&c), nil
}

func (d *storeData) FindClientByHumanCode(_ context.Context, code string) (*gym.Client, error) {
	for id := range d.clients {
		c := d.clients[id]
		if strings.EqualFold(c.HumanCode, code) {
			return cloneClient(&c), nil
		}
	}
	return nil, nil
}

func (d *storeData) ListClients(_ context.Context) ([]gym.Client, error) {
	result := make([]gym.Client, 0, len(d.clients))
	for id := range d.clients {
		c := d.clients[id]
		result = append(result, *cloneClient(&c))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RegisteredAt.After(result[j].RegisteredAt)
	})
	return result, nil
}

func (d *storeData) CreateClient(_ context.Context, c *gym.Client) error {
	d.clients[c.ID] = *cloneClient(c)
	d.lastHumanCode = c.HumanCode
	return nil
}

func (d *storeData) UpdateClient(_ context.Context, c *gym.Client) error {
	if _, ok := d.clients[c.ID]; !ok {
		return gym.ErrClientNotFound
	}
	d.clients[c.ID] = *cloneClient(c)
	return nil
}

func (d *storeData) LastHumanCode(_ context.Context) (string, error) {
	return d.lastHumanCode, nil
}

// ---- membership plans ----

func (d *storeData) GetPlan(_ context.Context, id gym.PlanID) (*gym.MembershipPlan, error) {
	p, ok := d.plans[id]
	if !ok {
		return nil, gym.ErrPlanNotFound
	}
	return &p, nil
}

func (d *storeData) ListPlans(_ context.Context) ([]gym.MembershipPlan, error) {
	result := make([]gym.MembershipPlan, 0, len(d.plans))
	for id := range d.plans {
		result = append(result, d.plans[id])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (d *storeData) SavePlan(_ context.Context, p *gym.MembershipPlan) error {
	d.plans[p.ID] = *p
	return nil
}

func (d *storeData) DeletePlan(_ context.Context, id gym.PlanID) error {
	// Null out references first: no client may point at a missing plan.
	for cid := range d.clients {
		c := d.clients[cid]
		if c.ActiveMembershipID != nil && *c.ActiveMembershipID == id {
			c.ActiveMembershipID = nil
			d.clients[cid] = *cloneClient(&c)
		}
	}
	delete(d.plans, id)
	return nil
}

// ---- products ----

func (d *storeData) GetProduct(_ context.Context, id gym.ProductID) (*gym.Product, error) {
	p, ok := d.products[id]
	if !ok {
		return nil, gym.ErrProductNotFound
	}
	return &p, nil
}

func (d *storeData) ListProducts(_ context.Context) ([]gym.Product, error) {
	result := make([]gym.Product, 0, len(d.products))
	for id := range d.products {
		result = append(result, d.products[id])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (d *storeData) SaveProduct(_ context.Context, p *gym.Product) error {
	d.products[p.ID] = *p
	return nil
}

func (d *storeData) DeleteProduct(_ context.Context, id gym.ProductID) error {
	delete(d.products, id)
	return nil
}

// ---- transactions ----

func (d *storeData) InsertTransaction(_ context.Context, tx *gym.Transaction) error {
	d.transactions = append(d.transactions, *cloneTransaction(tx))
	return nil
}

func (d *storeData) ListTransactions(_ context.Context, limit int) ([]gym.Transaction, error) {
	result := make([]gym.Transaction, len(d.transactions))
	for i := range d.transactions {
		result[i] = *cloneTransaction(&d.transactions[i])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ---- installment plans ----

func (d *storeData) InsertInstallmentPlan(_ context.Context, p *gym.InstallmentPlan) error {
	d.iplans[p.ID] = *p
	return nil
}

func (d *storeData) GetInstallmentPlan(_ context.Context, id gym.InstallmentPlanID) (*gym.InstallmentPlan, error) {
	p, ok := d.iplans[id]
	if !ok {
		return nil, gym.ErrInstallmentPlanNotFound
	}
	return &p, nil
}

func (d *storeData) UpdateInstallmentPlan(_ context.Context, p *gym.InstallmentPlan) error {
	if _, ok := d.iplans[p.ID]; !ok {
		return gym.ErrInstallmentPlanNotFound
	}
	d.iplans[p.ID] = *p
	return nil
}

func (d *storeData) ListInstallmentPlansByClient(_ context.Context, clientID gym.ClientID) ([]gym.InstallmentPlan, error) {
	var result []gym.InstallmentPlan
	for id := range d.iplans {
		if d.iplans[id].ClientID == clientID {
			result = append(result, d.iplans[id])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ---- installments ----

func (d *storeData) InsertInstallments(_ context.Context, list []gym.Installment) error {
	for i := range list {
		d.installments[list[i].ID] = *cloneInstallment(&list[i])
	}
	return nil
}

func (d *storeData) GetInstallment(_ context.Context, id gym.InstallmentID) (*gym.Installment, error) {
	inst, ok := d.installments[id]
	if !ok {
		return nil, gym.ErrInstallmentNotFound
	}
	return cloneInstallment(&inst), nil
}

func (d *storeData) UpdateInstallment(_ context.Context, i *gym.Installment) error {
	if _, ok := d.installments[i.ID]; !ok {
		return gym.ErrInstallmentNotFound
	}
	d.installments[i.ID] = *cloneInstallment(i)
	return nil
}

func (d *storeData) ListInstallmentsByPlan(_ context.Context, planID gym.InstallmentPlanID) ([]gym.Installment, error) {
	var result []gym.Installment
	for id := range d.installments {
		inst := d.installments[id]
		if inst.PlanID == planID {
			result = append(result, *cloneInstallment(&inst))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Sequence < result[j].Sequence })
	return result, nil
}

func (d *storeData) ListPendingInstallmentsDueBefore(_ context.Context, day gym.Date) ([]gym.Installment, error) {
	var result []gym.Installment
	for id := range d.installments {
		inst := d.installments[id]
		if inst.Status == gym.InstallmentPending && inst.DueDate.Before(day) {
			result = append(result, *cloneInstallment(&inst))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

// ---- attendance ----

func (d *storeData) InsertAttendanceLog(_ context.Context, log *gym.AttendanceLog) error {
	d.logs = append(d.logs, *cloneLog(log))
	return nil
}

func (d *storeData) ListAttendanceLogs(_ context.Context, limit int) ([]gym.AttendanceLog, error) {
	result := make([]gym.AttendanceLog, len(d.logs))
	for i := range d.logs {
		result[i] = *cloneLog(&d.logs[i])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ---- measurements ----

func (d *storeData) InsertMeasurement(_ context.Context, m *gym.Measurement) error {
	d.measurements[m.ClientID] = append(d.measurements[m.ClientID], *cloneMeasurement(m))
	return nil
}

func (d *storeData) ListMeasurementsByClient(_ context.Context, clientID gym.ClientID) ([]gym.Measurement, error) {
	list := d.measurements[clientID]
	result := make([]gym.Measurement, len(list))
	for i := range list {
		result[i] = *cloneMeasurement(&list[i])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

// ---- settings ----

func (d *storeData) GetSettings(_ context.Context) (*gym.Settings, error) {
	if d.settings == nil {
		return &gym.Settings{}, nil
	}
	s := *d.settings
	return &s, nil
}

func (d *storeData) SaveSettings(_ context.Context, s *gym.Settings) error {
	copied := *s
	d.settings = &copied
	return nil
}

// =============================================================================
// CLONING - pointer fields must not be shared across the boundary
// =============================================================================

func cloneClient(c *gym.Client) *gym.Client {
	out := *c
	if c.ActiveMembershipID != nil {
		v := *c.ActiveMembershipID
		out.ActiveMembershipID = &v
	}
	if c.MembershipStart != nil {
		v := *c.MembershipStart
		out.MembershipStart = &v
	}
	if c.MembershipExpiry != nil {
		v := *c.MembershipExpiry
		out.MembershipExpiry = &v
	}
	return &out
}

func cloneInstallment(i *gym.Installment) *gym.Installment {
	out := *i
	if i.PaidDate != nil {
		v := *i.PaidDate
		out.PaidDate = &v
	}
	return &out
}

func cloneTransaction(tx *gym.Transaction) *gym.Transaction {
	out := *tx
	if tx.ClientID != nil {
		v := *tx.ClientID
		out.ClientID = &v
	}
	return &out
}

func cloneLog(l *gym.AttendanceLog) *gym.AttendanceLog {
	out := *l
	if l.ClientID != nil {
		v := *l.ClientID
		out.ClientID = &v
	}
	return &out
}

func cloneMeasurement(m *gym.Measurement) *gym.Measurement {
	out := *m
	cloneFloat := func(f *float64) *float64 {
		if f == nil {
			return nil
		}
		v := *f
		return &v
	}
	out.Height = cloneFloat(m.Height)
	out.Chest = cloneFloat(m.Chest)
	out.Waist = cloneFloat(m.Waist)
	out.Arm = cloneFloat(m.Arm)
	return &out
}
