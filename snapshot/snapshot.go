// Package snapshot persists and reloads poolcore.Pool state via GORM:
// each pool gets one row, overwritten on every Save, keyed by its pool
// id.
package snapshot

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/concentrated-go/poolcore"
)

// poolBlob wraps a *poolcore.Pool so it can be stored as a single
// LONGTEXT column via GORM's Scanner/Valuer interfaces.
type poolBlob struct {
	pool *poolcore.Pool
}

func (b *poolBlob) GormDataType() string {
	return "LONGTEXT"
}

func (b *poolBlob) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("snapshot: unsupported scan source %T", value)
	}
	b.pool = new(poolcore.Pool)
	return json.Unmarshal(raw, b.pool)
}

func (b *poolBlob) Value() (driver.Value, error) {
	if b.pool == nil {
		return nil, nil
	}
	bs, err := json.Marshal(b.pool)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

// Row is the GORM model of a stored snapshot. It has no TableName
// method, so GORM stores it in its default table, "rows".
type Row struct {
	gorm.Model
	PoolID string `gorm:"uniqueIndex;size:66"`
	Blob   poolBlob
}

// Store opens (creating if necessary) a sqlite-backed snapshot store
// at dsn and migrates the schema.
type Store struct {
	db *gorm.DB
}

// Open returns a Store backed by the sqlite file at dsn.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("snapshot: opening %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("snapshot: migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save overwrites the persisted snapshot for pool's identity.
func (s *Store) Save(pool *poolcore.Pool) error {
	id := fmt.Sprintf("%x", pool.Key().ID())
	row := Row{PoolID: id, Blob: poolBlob{pool: pool}}

	var existing Row
	err := s.db.Where("pool_id = ?", id).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(&row).Error; err != nil {
			return fmt.Errorf("snapshot: creating row for %s: %w", id, err)
		}
	case err != nil:
		return fmt.Errorf("snapshot: looking up %s: %w", id, err)
	default:
		existing.Blob = row.Blob
		if err := s.db.Save(&existing).Error; err != nil {
			return fmt.Errorf("snapshot: updating row for %s: %w", id, err)
		}
	}

	logrus.WithField("poolID", id).Debug("pool snapshot saved")
	return nil
}

// Load reconstructs the pool previously saved under key's identity.
// Returns gorm.ErrRecordNotFound if no snapshot exists.
func (s *Store) Load(key poolcore.PoolKey) (*poolcore.Pool, error) {
	id := fmt.Sprintf("%x", key.ID())
	var row Row
	if err := s.db.Where("pool_id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	if row.Blob.pool == nil {
		return nil, fmt.Errorf("snapshot: row %s has no payload", id)
	}
	return row.Blob.pool, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
