package persist

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRow is one key/value cell.
type slotRow struct {
	SlotKey   string `gorm:"primarykey;size:64"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (slotRow) TableName() string {
	return "slots"
}

// SQLiteSlot keeps values in a "slots" table of a SQLite database.
type SQLiteSlot struct {
	db *gorm.DB
}

// OpenSQLiteSlot opens (creating if needed) the database at path.
// Pass ":memory:" for a throwaway database.
func OpenSQLiteSlot(path string) (*SQLiteSlot, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return NewSQLiteSlot(db)
}

// NewSQLiteSlot uses an existing GORM handle and migrates the slots table.
func NewSQLiteSlot(db *gorm.DB) (*SQLiteSlot, error) {
	if err := db.AutoMigrate(&slotRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slots table: %w", err)
	}
	return &SQLiteSlot{db: db}, nil
}

func (s *SQLiteSlot) Load(key string) ([]byte, error) {
	var row slotRow
	if err := s.db.First(&row, "slot_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("failed to load slot %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *SQLiteSlot) Save(key string, data []byte) error {
	row := slotRow{SlotKey: key, Value: data, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
