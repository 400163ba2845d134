package documents

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

type repoSQLite struct{ db *gorm.DB }

func NewRepoSQLite(gdb *gorm.DB) Repository { return &repoSQLite{db: gdb} }

func (r *repoSQLite) Insert(ctx context.Context, d *Document) error {
	d.ID = 0
	return db.Wrap("insert document", r.db.WithContext(ctx).Create(d).Error)
}

func (r *repoSQLite) Put(ctx context.Context, d *Document) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(d).Error
	return db.Wrap("put document", err)
}

func (r *repoSQLite) Delete(ctx context.Context, id int64) error {
	return db.Wrap("delete document", r.db.WithContext(ctx).Delete(&Document{}, id).Error)
}

func (r *repoSQLite) Get(ctx context.Context, id int64) (*Document, error) {
	var d Document
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, db.Wrap("get document", err)
	}
	return &d, nil
}

func (r *repoSQLite) find(ctx context.Context, op string, query interface{}, args ...interface{}) ([]*Document, error) {
	var items []*Document
	tx := r.db.WithContext(ctx)
	if query != nil {
		tx = tx.Where(query, args...)
	}
	return items, db.Wrap(op, tx.Find(&items).Error)
}

func (r *repoSQLite) List(ctx context.Context) ([]*Document, error) {
	return r.find(ctx, "list documents", nil)
}

func (r *repoSQLite) ListByStatus(ctx context.Context, status string) ([]*Document, error) {
	return r.find(ctx, "list documents by status", "status = ?", status)
}

func (r *repoSQLite) ListByType(ctx context.Context, docType string) ([]*Document, error) {
	return r.find(ctx, "list documents by type", "type = ?", docType)
}

func (r *repoSQLite) ListByPatientName(ctx context.Context, name string) ([]*Document, error) {
	return r.find(ctx, "list documents by patient", "patient_name = ?", name)
}

func (r *repoSQLite) ListByDateRange(ctx context.Context, from, to string) ([]*Document, error) {
	return r.find(ctx, "list documents by date range", "date >= ? AND date <= ?", from, to)
}

func (r *repoSQLite) ListByAppointment(ctx context.Context, appointmentID int64, status string) ([]*Document, error) {
	return r.find(ctx, "list documents by appointment", "appointment_id = ? AND status = ?", appointmentID, status)
}

func (r *repoSQLite) Clear(ctx context.Context) error {
	return db.Wrap("clear documents", r.db.WithContext(ctx).Where("1 = 1").Delete(&Document{}).Error)
}
