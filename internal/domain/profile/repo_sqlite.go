package profile

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicdesk/agenda/internal/platform/db"
)

// Setting is the gorm row of the local settings collection.
type Setting struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

type settingsRepoSQLite struct{ db *gorm.DB }

func NewSettingsRepoSQLite(gdb *gorm.DB) SettingsRepository {
	return &settingsRepoSQLite{db: gdb}
}

func (r *settingsRepoSQLite) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var s Setting
	if err := r.db.WithContext(ctx).Where(&Setting{Key: key}).First(&s).Error; err != nil {
		return nil, db.Wrap("get setting "+key, err)
	}
	return json.RawMessage(s.Value), nil
}

func (r *settingsRepoSQLite) Put(ctx context.Context, key string, value json.RawMessage) error {
	s := Setting{Key: key, Value: string(value)}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&s).Error
	return db.Wrap("put setting "+key, err)
}
