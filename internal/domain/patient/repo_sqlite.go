package patient

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

type repoSQLite struct{ db *gorm.DB }

func NewRepoSQLite(gdb *gorm.DB) Repository { return &repoSQLite{db: gdb} }

func (r *repoSQLite) Insert(ctx context.Context, p *Patient) error {
	p.ID = 0
	return db.Wrap("insert patient", r.db.WithContext(ctx).Create(p).Error)
}

func (r *repoSQLite) Put(ctx context.Context, p *Patient) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error
	return db.Wrap("put patient", err)
}

func (r *repoSQLite) Delete(ctx context.Context, id int64) error {
	return db.Wrap("delete patient", r.db.WithContext(ctx).Delete(&Patient{}, id).Error)
}

func (r *repoSQLite) Get(ctx context.Context, id int64) (*Patient, error) {
	var p Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, db.Wrap("get patient", err)
	}
	return &p, nil
}

func (r *repoSQLite) List(ctx context.Context) ([]*Patient, error) {
	var items []*Patient
	err := r.db.WithContext(ctx).Find(&items).Error
	return items, db.Wrap("list patients", err)
}

func (r *repoSQLite) ListByName(ctx context.Context, name string) ([]*Patient, error) {
	var items []*Patient
	err := r.db.WithContext(ctx).Where("name = ?", name).Find(&items).Error
	return items, db.Wrap("list patients by name", err)
}

func (r *repoSQLite) Clear(ctx context.Context) error {
	return db.Wrap("clear patients", r.db.WithContext(ctx).Where("1 = 1").Delete(&Patient{}).Error)
}
