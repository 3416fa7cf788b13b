/*
Package sqlite provides the SQLite-backed implementation of gym.TxStore.

KEY TABLES:
  clients:           client records with their current membership window
  membership_plans:  plan catalog
  products:          POS inventory
  installment_plans: fractional-payment agreements
  installments:      scheduled obligations, one row per installment
  transactions:      immutable financial ledger
  attendance_logs:   immutable check-in audit trail
  measurements:      append-only body measurements
  settings:          single-row gym configuration

STORAGE CONVENTIONS:
  - Money as decimal TEXT ("33.33"); parsed with gym.MoneyFromString
  - Dates as ISO text (YYYY-MM-DD), instants as RFC3339
  - "overdue" is never stored; it is derived in queries from status +
    due date

CONCURRENCY:
  A store-level mutex serializes writers on top of WAL mode. This is what
  gives compound read-modify-write sequences (renewal, settlement) their
  per-client serialization; a PostgreSQL port would use row locks instead.

MIGRATION:
  Schema is auto-migrated on New(). For production at scale, use a
  versioned migration tool instead.

SEE ALSO:
  - gym/store.go: the contracts implemented here
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gymflex/ops-engine/gym"
)

// Store implements gym.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
	q  queries
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, q: queries{db: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		human_code TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		dni TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		active_membership_id TEXT,
		membership_start TEXT,
		membership_expiry TEXT,
		registered_at TEXT NOT NULL,
		status TEXT NOT NULL
	);

	-- Kiosk lookup is case-insensitive.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_human_code
		ON clients(human_code COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_clients_registered_at
		ON clients(registered_at DESC);

	CREATE TABLE IF NOT EXISTS membership_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		cost TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		is_promotion BOOLEAN NOT NULL DEFAULT FALSE,
		beneficiaries_count INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT 'otros'
	);

	CREATE TABLE IF NOT EXISTS installment_plans (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		membership_id TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		installment_count INTEGER NOT NULL,
		installment_amount TEXT NOT NULL,
		interest_rate REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_installment_plans_client
		ON installment_plans(client_id);

	CREATE TABLE IF NOT EXISTS installments (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL REFERENCES installment_plans(id),
		sequence INTEGER NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_date TEXT,
		payment_method TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		UNIQUE(plan_id, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_installments_plan
		ON installments(plan_id);
	-- Overdue scan (hot path for the daily report).
	CREATE INDEX IF NOT EXISTS idx_installments_status_due
		ON installments(status, due_date);

	-- Append-only ledger: no UPDATE or DELETE is ever issued here.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		client_id TEXT,
		client_name TEXT NOT NULL,
		item_description TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions(date DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_client
		ON transactions(client_id) WHERE client_id IS NOT NULL;

	-- Append-only audit trail.
	CREATE TABLE IF NOT EXISTS attendance_logs (
		id TEXT PRIMARY KEY,
		client_id TEXT,
		client_name TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		message TEXT NOT NULL,
		is_warning BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_logs_timestamp
		ON attendance_logs(timestamp DESC);

	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		date TEXT NOT NULL,
		weight REAL NOT NULL,
		height REAL,
		chest REAL,
		waist REAL,
		arm REAL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_client
		ON measurements(client_id, date DESC);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		gym_name TEXT NOT NULL DEFAULT '',
		primary_color TEXT NOT NULL DEFAULT '',
		logo_url TEXT,
		dark_mode BOOLEAN NOT NULL DEFAULT FALSE,
		business_name TEXT NOT NULL DEFAULT '',
		ruc TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (gym.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction, serialized by the
// store mutex.
func (s *Store) WithTx(ctx context.Context, fn func(gym.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{q: queries{db: sqlTx}}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore runs the shared query set against an open *sql.Tx. It is only
// handed out inside WithTx, under the store mutex.
type txStore struct {
	q queries
}

// =============================================================================
// LOCKED DELEGATION
// =============================================================================

func (s *Store) GetClient(ctx context.Context, id gym.ClientID) (*gym.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.getClient(ctx, id)
}

func (s *Store) FindClientByHumanCode(ctx context.Context, code string) (*gym.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.findClientByHumanCode(ctx, code)
}

func (s *Store) ListClients(ctx context.Context) ([]gym.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listClients(ctx)
}

func (s *Store) CreateClient(ctx context.Context, c *gym.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.createClient(ctx, c)
}

func (s *Store) UpdateClient(ctx context.Context, c *gym.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.updateClient(ctx, c)
}

func (s *Store) LastHumanCode(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.lastHumanCode(ctx)
}

func (s *Store) GetPlan(ctx context.Context, id gym.PlanID) (*gym.MembershipPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.getPlan(ctx, id)
}

func (s *Store) ListPlans(ctx context.Context) ([]gym.MembershipPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listPlans(ctx)
}

func (s *Store) SavePlan(ctx context.Context, p *gym.MembershipPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.savePlan(ctx, p)
}

func (s *Store) DeletePlan(ctx context.Context, id gym.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.deletePlan(ctx, id)
}

func (s *Store) GetProduct(ctx context.Context, id gym.ProductID) (*gym.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.getProduct(ctx, id)
}

func (s *Store) ListProducts(ctx context.Context) ([]gym.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listProducts(ctx)
}

func (s *Store) SaveProduct(ctx context.Context, p *gym.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.saveProduct(ctx, p)
}

func (s *Store) DeleteProduct(ctx context.Context, id gym.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.deleteProduct(ctx, id)
}

func (s *Store) InsertTransaction(ctx context.Context, tx *gym.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.insertTransaction(ctx, tx)
}

func (s *Store) ListTransactions(ctx context.Context, limit int) ([]gym.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listTransactions(ctx, limit)
}

func (s *Store) InsertInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.insertInstallmentPlan(ctx, p)
}

func (s *Store) GetInstallmentPlan(ctx context.Context, id gym.InstallmentPlanID) (*gym.InstallmentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.getInstallmentPlan(ctx, id)
}

func (s *Store) UpdateInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.updateInstallmentPlan(ctx, p)
}

func (s *Store) ListInstallmentPlansByClient(ctx context.Context, clientID gym.ClientID) ([]gym.InstallmentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listInstallmentPlansByClient(ctx, clientID)
}

func (s *Store) InsertInstallments(ctx context.Context, list []gym.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.insertInstallments(ctx, list)
}

func (s *Store) GetInstallment(ctx context.Context, id gym.InstallmentID) (*gym.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.getInstallment(ctx, id)
}

func (s *Store) UpdateInstallment(ctx context.Context, i *gym.Installment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.updateInstallment(ctx, i)
}

func (s *Store) ListInstallmentsByPlan(ctx context.Context, planID gym.InstallmentPlanID) ([]gym.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listInstallmentsByPlan(ctx, planID)
}

func (s *Store) ListPendingInstallmentsDueBefore(ctx context.Context, day gym.Date) ([]gym.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listPendingInstallmentsDueBefore(ctx, day)
}

func (s *Store) InsertAttendanceLog(ctx context.Context, log *gym.AttendanceLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.insertAttendanceLog(ctx, log)
}

func (s *Store) ListAttendanceLogs(ctx context.Context, limit int) ([]gym.AttendanceLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listAttendanceLogs(ctx, limit)
}

func (s *Store) InsertMeasurement(ctx context.Context, m *gym.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.insertMeasurement(ctx, m)
}

func (s *Store) ListMeasurementsByClient(ctx context.Context, clientID gym.ClientID) ([]gym.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.listMeasurementsByClient(ctx, clientID)
}

func (s *Store) GetSettings(ctx context.Context) (*gym.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.getSettings(ctx)
}

func (s *Store) SaveSettings(ctx context.Context, set *gym.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.saveSettings(ctx, set)
}

// ---- txStore delegation (already inside the store mutex) ----

func (ts *txStore) GetClient(ctx context.Context, id gym.ClientID) (*gym.Client, error) {
	return ts.q.getClient(ctx, id)
}
func (ts *txStore) FindClientByHumanCode(ctx context.Context, code string) (*gym.Client, error) {
	return ts.q.findClientByHumanCode(ctx, code)
}
func (ts *txStore) ListClients(ctx context.Context) ([]gym.Client, error) {
	return ts.q.listClients(ctx)
}
func (ts *txStore) CreateClient(ctx context.Context, c *gym.Client) error {
	return ts.q.createClient(ctx, c)
}
func (ts *txStore) UpdateClient(ctx context.Context, c *gym.Client) error {
	return ts.q.updateClient(ctx, c)
}
func (ts *txStore) LastHumanCode(ctx context.Context) (string, error) {
	return ts.q.lastHumanCode(ctx)
}
func (ts *txStore) GetPlan(ctx context.Context, id gym.PlanID) (*gym.MembershipPlan, error) {
	return ts.q.getPlan(ctx, id)
}
func (ts *txStore) ListPlans(ctx context.Context) ([]gym.MembershipPlan, error) {
	return ts.q.listPlans(ctx)
}
func (ts *txStore) SavePlan(ctx context.Context, p *gym.MembershipPlan) error {
	return ts.q.savePlan(ctx, p)
}
func (ts *txStore) DeletePlan(ctx context.Context, id gym.PlanID) error {
	return ts.q.deletePlan(ctx, id)
}
func (ts *txStore) GetProduct(ctx context.Context, id gym.ProductID) (*gym.Product, error) {
	return ts.q.getProduct(ctx, id)
}
func (ts *txStore) ListProducts(ctx context.Context) ([]gym.Product, error) {
	return ts.q.listProducts(ctx)
}
func (ts *txStore) SaveProduct(ctx context.Context, p *gym.Product) error {
	return ts.q.saveProduct(ctx, p)
}
func (ts *txStore) DeleteProduct(ctx context.Context, id gym.ProductID) error {
	return ts.q.deleteProduct(ctx, id)
}
func (ts *txStore) InsertTransaction(ctx context.Context, tx *gym.Transaction) error {
	return ts.q.insertTransaction(ctx, tx)
}
func (ts *txStore) ListTransactions(ctx context.Context, limit int) ([]gym.Transaction, error) {
	return ts.q.listTransactions(ctx, limit)
}
func (ts *txStore) InsertInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	return ts.q.insertInstallmentPlan(ctx, p)
}
func (ts *txStore) GetInstallmentPlan(ctx context.Context, id gym.InstallmentPlanID) (*gym.InstallmentPlan, error) {
	return ts.q.getInstallmentPlan(ctx, id)
}
func (ts *txStore) UpdateInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	return ts.q.updateInstallmentPlan(ctx, p)
}
func (ts *txStore) ListInstallmentPlansByClient(ctx context.Context, clientID gym.ClientID) ([]gym.InstallmentPlan, error) {
	return ts.q.listInstallmentPlansByClient(ctx, clientID)
}
func (ts *txStore) InsertInstallments(ctx context.Context, list []gym.Installment) error {
	return ts.q.insertInstallments(ctx, list)
}
func (ts *txStore) GetInstallment(ctx context.Context, id gym.InstallmentID) (*gym.Installment, error) {
	return ts.q.getInstallment(ctx, id)
}
func (ts *txStore) UpdateInstallment(ctx context.Context, i *gym.Installment) error {
	return ts.q.updateInstallment(ctx, i)
}
func (ts *txStore) ListInstallmentsByPlan(ctx context.Context, planID gym.InstallmentPlanID) ([]gym.Installment, error) {
	return ts.q.listInstallmentsByPlan(ctx, planID)
}
func (ts *txStore) ListPendingInstallmentsDueBefore(ctx context.Context, day gym.Date) ([]gym.Installment, error) {
	return ts.q.listPendingInstallmentsDueBefore(ctx, day)
}
func (ts *txStore) InsertAttendanceLog(ctx context.Context, log *gym.AttendanceLog) error {
	return ts.q.insertAttendanceLog(ctx, log)
}
func (ts *txStore) ListAttendanceLogs(ctx context.Context, limit int) ([]gym.AttendanceLog, error) {
	return ts.q.listAttendanceLogs(ctx, limit)
}
func (ts *txStore) InsertMeasurement(ctx context.Context, m *gym.Measurement) error {
	return ts.q.insertMeasurement(ctx, m)
}
func (ts *txStore) ListMeasurementsByClient(ctx context.Context, clientID gym.ClientID) ([]gym.Measurement, error) {
	return ts.q.listMeasurementsByClient(ctx, clientID)
}
func (ts *txStore) GetSettings(ctx context.Context) (*gym.Settings, error) {
	return ts.q.getSettings(ctx)
}
func (ts *txStore) SaveSettings(ctx context.Context, set *gym.Settings) error {
	return ts.q.saveSettings(ctx, set)
}

// =============================================================================
// SHARED QUERIES - one implementation for both *sql.DB and *sql.Tx
// =============================================================================

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

// ---- clients ----

const clientColumns = `id, human_code, first_name, last_name, phone, dni, email,
	active_membership_id, membership_start, membership_expiry, registered_at, status`

func (q queries) getClient(ctx context.Context, id gym.ClientID) (*gym.Client, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, string(id))
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, gym.ErrClientNotFound
	}
	return c, err
}

func (q queries) findClientByHumanCode(ctx context.Context, code string) (*gym.Client, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE human_code = ? COLLATE NOCASE`, code)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (q queries) listClients(ctx context.Context) ([]gym.Client, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY registered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []gym.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (q queries) createClient(ctx context.Context, c *gym.Client) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(c.ID), c.HumanCode, c.FirstName, c.LastName, c.Phone, c.DNI, c.Email,
		nullPlanID(c.ActiveMembershipID),
		nullDate(c.MembershipStart),
		nullDate(c.MembershipExpiry),
		c.RegisteredAt.UTC().Format(time.RFC3339),
		string(c.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

func (q queries) updateClient(ctx context.Context, c *gym.Client) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE clients SET
			human_code = ?, first_name = ?, last_name = ?, phone = ?, dni = ?, email = ?,
			active_membership_id = ?, membership_start = ?, membership_expiry = ?, status = ?
		WHERE id = ?`,
		c.HumanCode, c.FirstName, c.LastName, c.Phone, c.DNI, c.Email,
		nullPlanID(c.ActiveMembershipID),
		nullDate(c.MembershipStart),
		nullDate(c.MembershipExpiry),
		string(c.Status),
		string(c.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return gym.ErrClientNotFound
	}
	return nil
}

func (q queries) lastHumanCode(ctx context.Context) (string, error) {
	// human_code is numeric-plus-suffix; ordering by length first keeps
	// "10001a" after "9999a".
	var code string
	err := q.db.QueryRowContext(ctx, `
		SELECT human_code FROM clients
		ORDER BY LENGTH(human_code) DESC, human_code DESC
		LIMIT 1`).Scan(&code)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return code, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*gym.Client, error) {
	var (
		c                  gym.Client
		id, status         string
		activeMembershipID sql.NullString
		start, expiry      sql.NullString
		registeredAt       string
	)
	err := row.Scan(&id, &c.HumanCode, &c.FirstName, &c.LastName, &c.Phone, &c.DNI, &c.Email,
		&activeMembershipID, &start, &expiry, &registeredAt, &status)
	if err != nil {
		return nil, err
	}

	c.ID = gym.ClientID(id)
	c.Status = gym.ClientStatus(status)
	if activeMembershipID.Valid {
		pid := gym.PlanID(activeMembershipID.String)
		c.ActiveMembershipID = &pid
	}
	c.MembershipStart = parseNullDate(start)
	c.MembershipExpiry = parseNullDate(expiry)
	c.RegisteredAt, _ = time.Parse(time.RFC3339, registeredAt)
	return &c, nil
}

// ---- membership plans ----

func (q queries) getPlan(ctx context.Context, id gym.PlanID) (*gym.MembershipPlan, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, description, cost, duration_days, is_promotion, beneficiaries_count
		FROM membership_plans WHERE id = ?`, string(id))

	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, gym.ErrPlanNotFound
	}
	return p, err
}

func (q queries) listPlans(ctx context.Context) ([]gym.MembershipPlan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, description, cost, duration_days, is_promotion, beneficiaries_count
		FROM membership_plans ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []gym.MembershipPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (q queries) savePlan(ctx context.Context, p *gym.MembershipPlan) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO membership_plans
			(id, name, description, cost, duration_days, is_promotion, beneficiaries_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			cost = excluded.cost,
			duration_days = excluded.duration_days,
			is_promotion = excluded.is_promotion,
			beneficiaries_count = excluded.beneficiaries_count`,
		string(p.ID), p.Name, p.Description, p.Cost.String(),
		p.DurationDays, p.IsPromotion, p.BeneficiariesCount,
	)
	return err
}

func (q queries) deletePlan(ctx context.Context, id gym.PlanID) error {
	// Null out references first: no client may point at a missing plan.
	if _, err := q.db.ExecContext(ctx,
		`UPDATE clients SET active_membership_id = NULL WHERE active_membership_id = ?`,
		string(id)); err != nil {
		return fmt.Errorf("failed to clear plan references: %w", err)
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM membership_plans WHERE id = ?`, string(id))
	return err
}

func scanPlan(row rowScanner) (*gym.MembershipPlan, error) {
	var (
		p        gym.MembershipPlan
		id, cost string
	)
	err := row.Scan(&id, &p.Name, &p.Description, &cost, &p.DurationDays,
		&p.IsPromotion, &p.BeneficiariesCount)
	if err != nil {
		return nil, err
	}
	p.ID = gym.PlanID(id)
	p.Cost = gym.MoneyFromString(cost)
	return &p, nil
}

// ---- products ----

func (q queries) getProduct(ctx context.Context, id gym.ProductID) (*gym.Product, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, name, price, stock, category FROM products WHERE id = ?`, string(id))

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, gym.ErrProductNotFound
	}
	return p, err
}

func (q queries) listProducts(ctx context.Context) ([]gym.Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, price, stock, category FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []gym.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (q queries) saveProduct(ctx context.Context, p *gym.Product) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			stock = excluded.stock,
			category = excluded.category`,
		string(p.ID), p.Name, p.Price.String(), p.Stock, string(p.Category),
	)
	return err
}

func (q queries) deleteProduct(ctx context.Context, id gym.ProductID) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, string(id))
	return err
}

func scanProduct(row rowScanner) (*gym.Product, error) {
	var (
		p                   gym.Product
		id, price, category string
	)
	if err := row.Scan(&id, &p.Name, &price, &p.Stock, &category); err != nil {
		return nil, err
	}
	p.ID = gym.ProductID(id)
	p.Price = gym.MoneyFromString(price)
	p.Category = gym.ProductCategory(category)
	return &p, nil
}

// ---- transactions ----

func (q queries) insertTransaction(ctx context.Context, tx *gym.Transaction) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (id, client_id, client_name, item_description, amount, date, type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(tx.ID),
		nullClientID(tx.ClientID),
		tx.ClientName,
		tx.ItemDescription,
		tx.Amount.String(),
		tx.Date.UTC().Format(time.RFC3339),
		string(tx.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (q queries) listTransactions(ctx context.Context, limit int) ([]gym.Transaction, error) {
	query := `
		SELECT id, client_id, client_name, item_description, amount, date, type
		FROM transactions ORDER BY date DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []gym.Transaction
	for rows.Next() {
		var (
			tx                       gym.Transaction
			id, amount, date, txType string
			clientID                 sql.NullString
		)
		if err := rows.Scan(&id, &clientID, &tx.ClientName, &tx.ItemDescription,
			&amount, &date, &txType); err != nil {
			return nil, err
		}
		tx.ID = gym.TransactionID(id)
		if clientID.Valid {
			cid := gym.ClientID(clientID.String)
			tx.ClientID = &cid
		}
		tx.Amount = gym.MoneyFromString(amount)
		tx.Date, _ = time.Parse(time.RFC3339, date)
		tx.Type = gym.TransactionType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// ---- installment plans ----

func (q queries) insertInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO installment_plans
			(id, client_id, membership_id, total_amount, installment_count,
			 installment_amount, interest_rate, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.ID), string(p.ClientID), string(p.MembershipID),
		p.TotalAmount.String(), p.InstallmentCount, p.InstallmentAmount.String(),
		p.InterestRate, string(p.Status),
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert installment plan: %w", err)
	}
	return nil
}

func (q queries) getInstallmentPlan(ctx context.Context, id gym.InstallmentPlanID) (*gym.InstallmentPlan, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, client_id, membership_id, total_amount, installment_count,
		       installment_amount, interest_rate, status, created_at
		FROM installment_plans WHERE id = ?`, string(id))

	p, err := scanInstallmentPlan(row)
	if err == sql.ErrNoRows {
		return nil, gym.ErrInstallmentPlanNotFound
	}
	return p, err
}

func (q queries) updateInstallmentPlan(ctx context.Context, p *gym.InstallmentPlan) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE installment_plans SET status = ? WHERE id = ?`,
		string(p.Status), string(p.ID))
	if err != nil {
		return fmt.Errorf("failed to update installment plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return gym.ErrInstallmentPlanNotFound
	}
	return nil
}

func (q queries) listInstallmentPlansByClient(ctx context.Context, clientID gym.ClientID) ([]gym.InstallmentPlan, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, client_id, membership_id, total_amount, installment_count,
		       installment_amount, interest_rate, status, created_at
		FROM installment_plans
		WHERE client_id = ?
		ORDER BY created_at DESC`, string(clientID))
	if err != nil {
		return nil, fmt.Errorf("failed to query installment plans: %w", err)
	}
	defer rows.Close()

	var plans []gym.InstallmentPlan
	for rows.Next() {
		p, err := scanInstallmentPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func scanInstallmentPlan(row rowScanner) (*gym.InstallmentPlan, error) {
	var (
		p                                  gym.InstallmentPlan
		id, clientID, membershipID         string
		totalAmount, instAmount            string
		status, createdAt                  string
	)
	err := row.Scan(&id, &clientID, &membershipID, &totalAmount, &p.InstallmentCount,
		&instAmount, &p.InterestRate, &status, &createdAt)
	if err != nil {
		return nil, err
	}
	p.ID = gym.InstallmentPlanID(id)
	p.ClientID = gym.ClientID(clientID)
	p.MembershipID = gym.PlanID(membershipID)
	p.TotalAmount = gym.MoneyFromString(totalAmount)
	p.InstallmentAmount = gym.MoneyFromString(instAmount)
	p.Status = gym.InstallmentPlanStatus(status)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// ---- installments ----

const installmentColumns = `id, plan_id, sequence, amount, due_date, status,
	paid_date, payment_method, note`

func (q queries) insertInstallments(ctx context.Context, list []gym.Installment) error {
	for i := range list {
		inst := &list[i]
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO installments (`+installmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(inst.ID), string(inst.PlanID), inst.Sequence,
			inst.Amount.String(), inst.DueDate.String(), string(inst.Status),
			nullDate(inst.PaidDate), string(inst.PaymentMethod), inst.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert installment %d: %w", inst.Sequence, err)
		}
	}
	return nil
}

func (q queries) getInstallment(ctx context.Context, id gym.InstallmentID) (*gym.Installment, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE id = ?`, string(id))

	inst, err := scanInstallment(row)
	if err == sql.ErrNoRows {
		return nil, gym.ErrInstallmentNotFound
	}
	return inst, err
}

func (q queries) updateInstallment(ctx context.Context, inst *gym.Installment) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE installments SET
			status = ?, paid_date = ?, payment_method = ?, note = ?
		WHERE id = ?`,
		string(inst.Status), nullDate(inst.PaidDate),
		string(inst.PaymentMethod), inst.Note, string(inst.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return gym.ErrInstallmentNotFound
	}
	return nil
}

func (q queries) listInstallmentsByPlan(ctx context.Context, planID gym.InstallmentPlanID) ([]gym.Installment, error) {
	return q.queryInstallments(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE plan_id = ? ORDER BY sequence`, string(planID))
}

func (q queries) listPendingInstallmentsDueBefore(ctx context.Context, day gym.Date) ([]gym.Installment, error) {
	return q.queryInstallments(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE status = ? AND due_date < ?
		ORDER BY due_date`, string(gym.InstallmentPending), day.String())
}

func (q queries) queryInstallments(ctx context.Context, query string, args ...any) ([]gym.Installment, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var list []gym.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *inst)
	}
	return list, rows.Err()
}

func scanInstallment(row rowScanner) (*gym.Installment, error) {
	var (
		inst                    gym.Installment
		id, planID              string
		amount, dueDate, status string
		paidDate                sql.NullString
		method                  string
	)
	err := row.Scan(&id, &planID, &inst.Sequence, &amount, &dueDate, &status,
		&paidDate, &method, &inst.Note)
	if err != nil {
		return nil, err
	}
	inst.ID = gym.InstallmentID(id)
	inst.PlanID = gym.InstallmentPlanID(planID)
	inst.Amount = gym.MoneyFromString(amount)
	inst.DueDate, _ = gym.ParseDate(dueDate)
	inst.Status = gym.InstallmentStatus(status)
	inst.PaidDate = parseNullDate(paidDate)
	inst.PaymentMethod = gym.PaymentMethod(method)
	return &inst, nil
}

// ---- attendance logs ----

func (q queries) insertAttendanceLog(ctx context.Context, log *gym.AttendanceLog) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (id, client_id, client_name, timestamp, success, message, is_warning)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(log.ID),
		nullClientID(log.ClientID),
		log.ClientName,
		log.Timestamp.UTC().Format(time.RFC3339),
		log.Success,
		log.Message,
		log.IsWarning,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attendance log: %w", err)
	}
	return nil
}

func (q queries) listAttendanceLogs(ctx context.Context, limit int) ([]gym.AttendanceLog, error) {
	query := `
		SELECT id, client_id, client_name, timestamp, success, message, is_warning
		FROM attendance_logs ORDER BY timestamp DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance logs: %w", err)
	}
	defer rows.Close()

	var logs []gym.AttendanceLog
	for rows.Next() {
		var (
			log           gym.AttendanceLog
			id, timestamp string
			clientID      sql.NullString
		)
		if err := rows.Scan(&id, &clientID, &log.ClientName, &timestamp,
			&log.Success, &log.Message, &log.IsWarning); err != nil {
			return nil, err
		}
		log.ID = gym.LogID(id)
		if clientID.Valid {
			cid := gym.ClientID(clientID.String)
			log.ClientID = &cid
		}
		log.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// ---- measurements ----

func (q queries) insertMeasurement(ctx context.Context, m *gym.Measurement) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO measurements (id, client_id, date, weight, height, chest, waist, arm, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(m.ID), string(m.ClientID),
		m.Date.UTC().Format(time.RFC3339),
		m.Weight,
		nullFloat(m.Height), nullFloat(m.Chest), nullFloat(m.Waist), nullFloat(m.Arm),
		m.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert measurement: %w", err)
	}
	return nil
}

func (q queries) listMeasurementsByClient(ctx context.Context, clientID gym.ClientID) ([]gym.Measurement, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, client_id, date, weight, height, chest, waist, arm, notes
		FROM measurements WHERE client_id = ? ORDER BY date DESC`, string(clientID))
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var list []gym.Measurement
	for rows.Next() {
		var (
			m                         gym.Measurement
			id, cid, date             string
			height, chest, waist, arm sql.NullFloat64
		)
		if err := rows.Scan(&id, &cid, &date, &m.Weight,
			&height, &chest, &waist, &arm, &m.Notes); err != nil {
			return nil, err
		}
		m.ID = gym.MeasurementID(id)
		m.ClientID = gym.ClientID(cid)
		m.Date, _ = time.Parse(time.RFC3339, date)
		m.Height = parseNullFloat(height)
		m.Chest = parseNullFloat(chest)
		m.Waist = parseNullFloat(waist)
		m.Arm = parseNullFloat(arm)
		list = append(list, m)
	}
	return list, rows.Err()
}

// ---- settings ----

func (q queries) getSettings(ctx context.Context) (*gym.Settings, error) {
	var (
		s       gym.Settings
		logoURL sql.NullString
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT gym_name, primary_color, logo_url, dark_mode, business_name, ruc, address, phone
		FROM settings WHERE id = 1`).Scan(
		&s.GymName, &s.PrimaryColor, &logoURL, &s.DarkMode,
		&s.BusinessName, &s.RUC, &s.Address, &s.Phone)

	if err == sql.ErrNoRows {
		return &gym.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	if logoURL.Valid {
		s.LogoURL = &logoURL.String
	}
	return &s, nil
}

func (q queries) saveSettings(ctx context.Context, s *gym.Settings) error {
	var logoURL any
	if s.LogoURL != nil {
		logoURL = *s.LogoURL
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (id, gym_name, primary_color, logo_url, dark_mode, business_name, ruc, address, phone)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			gym_name = excluded.gym_name,
			primary_color = excluded.primary_color,
			logo_url = excluded.logo_url,
			dark_mode = excluded.dark_mode,
			business_name = excluded.business_name,
			ruc = excluded.ruc,
			address = excluded.address,
			phone = excluded.phone`,
		s.GymName, s.PrimaryColor, logoURL, s.DarkMode,
		s.BusinessName, s.RUC, s.Address, s.Phone,
	)
	return err
}

// =============================================================================
// NULLABLE HELPERS
// =============================================================================

func nullPlanID(id *gym.PlanID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func nullClientID(id *gym.ClientID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func nullDate(d *gym.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func parseNullDate(s sql.NullString) *gym.Date {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := gym.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func parseNullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
