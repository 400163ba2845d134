package documents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const docCols = `id, type, status, appointment_id, date, patient_name, body, snapshot,
	created_at, updated_at, trashed_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	var snap []byte
	err := row.Scan(&d.ID, &d.Type, &d.Status, &d.AppointmentID, &d.Date, &d.PatientName,
		&d.Body, &snap, &d.CreatedAt, &d.UpdatedAt, &d.TrashedAt)
	if err != nil {
		return nil, err
	}
	if len(snap) > 0 {
		if err := json.Unmarshal(snap, &d.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot of document %d: %w", d.ID, err)
		}
	}
	return &d, nil
}

func (r *repoPG) Insert(ctx context.Context, d *Document) error {
	snap, err := json.Marshal(d.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO documents (type, status, appointment_id, date, patient_name, body, snapshot,
			created_at, updated_at, trashed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		d.Type, d.Status, d.AppointmentID, d.Date, d.PatientName, d.Body, snap,
		d.CreatedAt, d.UpdatedAt, d.TrashedAt).Scan(&d.ID)
	return db.Wrap("insert document", err)
}

func (r *repoPG) Put(ctx context.Context, d *Document) error {
	snap, err := json.Marshal(d.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO documents (id, type, status, appointment_id, date, patient_name, body, snapshot,
			created_at, updated_at, trashed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, status = EXCLUDED.status,
			appointment_id = EXCLUDED.appointment_id, date = EXCLUDED.date,
			patient_name = EXCLUDED.patient_name, body = EXCLUDED.body, snapshot = EXCLUDED.snapshot,
			created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at,
			trashed_at = EXCLUDED.trashed_at`,
		d.ID, d.Type, d.Status, d.AppointmentID, d.Date, d.PatientName, d.Body, snap,
		d.CreatedAt, d.UpdatedAt, d.TrashedAt)
	if err != nil {
		return db.Wrap("put document", err)
	}
	_, err = r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('documents', 'id'),
		GREATEST((SELECT MAX(id) FROM documents), 1))`)
	return db.Wrap("put document", err)
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return db.Wrap("delete document", err)
}

func (r *repoPG) Get(ctx context.Context, id int64) (*Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+docCols+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return nil, db.Wrap("get document", err)
	}
	return d, nil
}

func (r *repoPG) List(ctx context.Context) ([]*Document, error) {
	return r.query(ctx, "list documents", `SELECT `+docCols+` FROM documents`)
}

func (r *repoPG) ListByStatus(ctx context.Context, status string) ([]*Document, error) {
	return r.query(ctx, "list documents by status",
		`SELECT `+docCols+` FROM documents WHERE status = $1`, status)
}

func (r *repoPG) ListByType(ctx context.Context, docType string) ([]*Document, error) {
	return r.query(ctx, "list documents by type",
		`SELECT `+docCols+` FROM documents WHERE type = $1`, docType)
}

func (r *repoPG) ListByPatientName(ctx context.Context, name string) ([]*Document, error) {
	return r.query(ctx, "list documents by patient",
		`SELECT `+docCols+` FROM documents WHERE patient_name = $1`, name)
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to string) ([]*Document, error) {
	return r.query(ctx, "list documents by date range",
		`SELECT `+docCols+` FROM documents WHERE date >= $1 AND date <= $2`, from, to)
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID int64, status string) ([]*Document, error) {
	return r.query(ctx, "list documents by appointment",
		`SELECT `+docCols+` FROM documents WHERE appointment_id = $1 AND status = $2`, appointmentID, status)
}

func (r *repoPG) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM documents`)
	return db.Wrap("clear documents", err)
}

func (r *repoPG) query(ctx context.Context, op, sql string, args ...interface{}) ([]*Document, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.Wrap(op, err)
	}
	defer rows.Close()
	var items []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, db.Wrap(op, err)
		}
		items = append(items, d)
	}
	return items, db.Wrap(op, rows.Err())
}
