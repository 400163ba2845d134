package scheduling

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, date, time, patient_name, status, ficha, procedures, notes, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Date, &a.Time, &a.PatientName, &a.Status, &a.Ficha,
		&a.Procedures, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func procedures(a *Appointment) []string {
	if a.Procedures == nil {
		return []string{}
	}
	return a.Procedures
}

func (r *repoPG) Insert(ctx context.Context, a *Appointment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (date, time, patient_name, status, ficha, procedures, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		a.Date, a.Time, a.PatientName, a.Status, a.Ficha, procedures(a), a.Notes,
		a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	return db.Wrap("insert appointment", err)
}

func (r *repoPG) Put(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, date, time, patient_name, status, ficha, procedures, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date, time = EXCLUDED.time,
			patient_name = EXCLUDED.patient_name, status = EXCLUDED.status, ficha = EXCLUDED.ficha,
			procedures = EXCLUDED.procedures, notes = EXCLUDED.notes,
			created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at`,
		a.ID, a.Date, a.Time, a.PatientName, a.Status, a.Ficha, procedures(a), a.Notes,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return db.Wrap("put appointment", err)
	}
	_, err = r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('appointments', 'id'),
		GREATEST((SELECT MAX(id) FROM appointments), 1))`)
	return db.Wrap("put appointment", err)
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return db.Wrap("delete appointment", err)
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		return nil, db.Wrap("get appointment", err)
	}
	return a, nil
}

func (r *repoPG) List(ctx context.Context) ([]*Appointment, error) {
	return r.query(ctx, "list appointments", `SELECT `+apptCols+` FROM appointments`)
}

func (r *repoPG) ListByDate(ctx context.Context, date string) ([]*Appointment, error) {
	return r.query(ctx, "list appointments by date",
		`SELECT `+apptCols+` FROM appointments WHERE date = $1`, date)
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to string) ([]*Appointment, error) {
	return r.query(ctx, "list appointments by date range",
		`SELECT `+apptCols+` FROM appointments WHERE date >= $1 AND date <= $2`, from, to)
}

func (r *repoPG) ListByPatientName(ctx context.Context, name string) ([]*Appointment, error) {
	return r.query(ctx, "list appointments by patient",
		`SELECT `+apptCols+` FROM appointments WHERE patient_name = $1`, name)
}

func (r *repoPG) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM appointments`)
	return db.Wrap("clear appointments", err)
}

func (r *repoPG) query(ctx context.Context, op, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.Wrap(op, err)
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, db.Wrap(op, err)
		}
		items = append(items, a)
	}
	return items, db.Wrap(op, rows.Err())
}
