package patient

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, name, contact, notes, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Contact, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Insert(ctx context.Context, p *Patient) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, contact, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Name, p.Contact, p.Notes, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	return db.Wrap("insert patient", err)
}

func (r *repoPG) Put(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, contact, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, contact = EXCLUDED.contact,
			notes = EXCLUDED.notes, created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Contact, p.Notes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return db.Wrap("put patient", err)
	}
	// explicit ids (backup import) must not collide with later inserts
	_, err = r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('patients', 'id'),
		GREATEST((SELECT MAX(id) FROM patients), 1))`)
	return db.Wrap("put patient", err)
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return db.Wrap("delete patient", err)
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, db.Wrap("get patient", err)
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	return r.query(ctx, "list patients", `SELECT `+patientCols+` FROM patients`)
}

func (r *repoPG) ListByName(ctx context.Context, name string) ([]*Patient, error) {
	return r.query(ctx, "list patients by name", `SELECT `+patientCols+` FROM patients WHERE name = $1`, name)
}

func (r *repoPG) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patients`)
	return db.Wrap("clear patients", err)
}

func (r *repoPG) query(ctx context.Context, op, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.Wrap(op, err)
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, db.Wrap(op, err)
		}
		items = append(items, p)
	}
	return items, db.Wrap(op, rows.Err())
}
