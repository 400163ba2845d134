package scheduling

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

type repoSQLite struct{ db *gorm.DB }

func NewRepoSQLite(gdb *gorm.DB) Repository { return &repoSQLite{db: gdb} }

func (r *repoSQLite) Insert(ctx context.Context, a *Appointment) error {
	a.ID = 0
	return db.Wrap("insert appointment", r.db.WithContext(ctx).Create(a).Error)
}

func (r *repoSQLite) Put(ctx context.Context, a *Appointment) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(a).Error
	return db.Wrap("put appointment", err)
}

func (r *repoSQLite) Delete(ctx context.Context, id int64) error {
	return db.Wrap("delete appointment", r.db.WithContext(ctx).Delete(&Appointment{}, id).Error)
}

func (r *repoSQLite) Get(ctx context.Context, id int64) (*Appointment, error) {
	var a Appointment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, db.Wrap("get appointment", err)
	}
	return &a, nil
}

func (r *repoSQLite) List(ctx context.Context) ([]*Appointment, error) {
	var items []*Appointment
	return items, db.Wrap("list appointments", r.db.WithContext(ctx).Find(&items).Error)
}

func (r *repoSQLite) ListByDate(ctx context.Context, date string) ([]*Appointment, error) {
	var items []*Appointment
	err := r.db.WithContext(ctx).Where("date = ?", date).Find(&items).Error
	return items, db.Wrap("list appointments by date", err)
}

func (r *repoSQLite) ListByDateRange(ctx context.Context, from, to string) ([]*Appointment, error) {
	var items []*Appointment
	err := r.db.WithContext(ctx).Where("date >= ? AND date <= ?", from, to).Find(&items).Error
	return items, db.Wrap("list appointments by date range", err)
}

func (r *repoSQLite) ListByPatientName(ctx context.Context, name string) ([]*Appointment, error) {
	var items []*Appointment
	err := r.db.WithContext(ctx).Where("patient_name = ?", name).Find(&items).Error
	return items, db.Wrap("list appointments by patient", err)
}

func (r *repoSQLite) Clear(ctx context.Context) error {
	return db.Wrap("clear appointments", r.db.WithContext(ctx).Where("1 = 1").Delete(&Appointment{}).Error)
}
