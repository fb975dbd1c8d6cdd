package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type slotRow struct {
	Name      string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (slotRow) TableName() string {
	return "slots"
}

// SQLite keeps the slot as one row of the slots table, keyed by name.
type SQLite struct {
	db  *gorm.DB
	key string
}

func NewSQLite(db *gorm.DB, key string) (*SQLite, error) {
	if err := db.AutoMigrate(&slotRow{}); err != nil {
		return nil, errors.Wrap(err, "migrating slots table")
	}
	return &SQLite{db: db, key: key}, nil
}

func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	var row slotRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", s.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading slot %q", s.key)
	}
	return row.Value, nil
}

func (s *SQLite) Save(ctx context.Context, data []byte) error {
	row := slotRow{Name: s.key, Value: data}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errors.Wrapf(err, "saving slot %q", s.key)
	}
	return nil
}
