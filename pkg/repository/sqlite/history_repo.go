package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/artem13815/finadvice/pkg/history"
)

var _ history.Repository = (*HistoryRepository)(nil)

// HistoryRepository keeps advice history in a local SQLite file through gorm.
type HistoryRepository struct {
	db *gorm.DB
}

type recordModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	Query      string `gorm:"not null"`
	UserData   *string
	Prompt     string `gorm:"not null"`
	Response   string `gorm:"not null"`
	Model      string `gorm:"not null"`
	DurationMs int64
	CreatedAt  time.Time `gorm:"index"`
}

func (recordModel) TableName() string { return "advice_history" }

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string) (*HistoryRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&recordModel{}); err != nil {
		return nil, err
	}
	return &HistoryRepository{db: db}, nil
}

func (r *HistoryRepository) Create(ctx context.Context, rec history.Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m := recordModel{
		ID:         rec.ID.String(),
		Query:      rec.Query,
		Prompt:     rec.Prompt,
		Response:   rec.Response,
		Model:      rec.Model,
		DurationMs: rec.DurationMs,
		CreatedAt:  rec.CreatedAt,
	}
	if len(rec.UserData) > 0 {
		s := string(rec.UserData)
		m.UserData = &s
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (history.Record, error) {
	var m recordModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return history.Record{}, history.ErrNotFound
	}
	if err != nil {
		return history.Record{}, err
	}
	return m.toRecord()
}

func (r *HistoryRepository) List(ctx context.Context, limit, offset int) ([]history.Record, error) {
	var models []recordModel
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]history.Record, 0, len(models))
	for _, m := range models {
		rec, err := m.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *HistoryRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *HistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (m recordModel) toRecord() (history.Record, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return history.Record{}, err
	}
	rec := history.Record{
		ID:         id,
		Query:      m.Query,
		Prompt:     m.Prompt,
		Response:   m.Response,
		Model:      m.Model,
		DurationMs: m.DurationMs,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.UserData != nil {
		rec.UserData = []byte(*m.UserData)
	}
	return rec, nil
}
