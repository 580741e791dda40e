package history

import (
	"context"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LoadRecord is the metadata of one load attempt.
type LoadRecord struct {
	ID          uint   `gorm:"primaryKey"`
	SessionKey  string `gorm:"size:64;index"`
	Source      string `gorm:"size:255"`
	FileName    string `gorm:"size:255"`
	Strategy    string `gorm:"size:32"`
	Attempt     int
	Rows        int
	SkippedRows int
	Valid       bool
	Message     string `gorm:"size:1024"`
	Revenue     float64
	CreatedAt   time.Time
}

// Recorder persists load attempts.
type Recorder interface {
	Record(ctx context.Context, rec LoadRecord) error
	Recent(ctx context.Context, sessionKey string, limit int) ([]LoadRecord, error)
}

// Nop is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, LoadRecord) error { return nil }

func (Nop) Recent(context.Context, string, int) ([]LoadRecord, error) { return nil, nil }

type GormRecorder struct {
	db *gorm.DB
}

// Open connects to MySQL and migrates the load_records table.
func Open(dsn string) (*GormRecorder, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&LoadRecord{}); err != nil {
		return nil, err
	}
	return NewGormRecorder(db), nil
}

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (g *GormRecorder) Record(ctx context.Context, rec LoadRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return g.db.WithContext(ctx).Create(&rec).Error
}

func (g *GormRecorder) Recent(ctx context.Context, sessionKey string, limit int) ([]LoadRecord, error) {
	var out []LoadRecord
	err := g.db.WithContext(ctx).
		Where("session_key = ?", sessionKey).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
