package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yonledger/core/events"
)

// Entry is one persisted event.
type Entry struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Type       string    `gorm:"index;not null"`
	Module     string    `gorm:"index;not null"`
	Instance   string    `gorm:"index"`
	Attributes string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
}

// TableName pins the table regardless of gorm naming strategy.
func (Entry) TableName() string { return "journal_entries" }

// Record decodes the stored attributes back into an event record.
func (e Entry) Record() (*events.Record, error) {
	attrs := map[string]string{}
	if e.Attributes != "" {
		if err := json.Unmarshal([]byte(e.Attributes), &attrs); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return &events.Record{Type: e.Type, Attributes: attrs}, nil
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Type     string
	Module   string
	Instance string
	Since    time.Time
	Limit    int
}

// Store is an append-only audit journal of ledger events.
type Store struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// Open connects to the journal database. postgres:// and postgresql:// DSNs
// use the postgres driver; anything else is treated as a sqlite path.
func Open(dsn string) (*Store, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, errors.New("journal: dsn required")
	}
	var dialector gorm.Dialector
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		dialector = postgres.Open(trimmed)
	} else {
		dialector = sqlite.Open(trimmed)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("journal: nil database")
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return &Store{db: db, nowFn: time.Now}, nil
}

// SetNowFunc overrides the timestamp source. Nil restores time.Now.
func (s *Store) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.nowFn = now
}

// Append persists records in a single transaction.
func (s *Store) Append(ctx context.Context, records ...*events.Record) error {
	entries := make([]Entry, 0, len(records))
	now := s.nowFn().UTC()
	for _, rec := range records {
		if rec == nil {
			continue
		}
		attrs, err := json.Marshal(rec.Attributes)
		if err != nil {
			return fmt.Errorf("journal: encode attributes: %w", err)
		}
		entries = append(entries, Entry{
			ID:         uuid.New(),
			Type:       rec.Type,
			Module:     moduleOf(rec.Type),
			Instance:   rec.Attributes["id"],
			Attributes: string(attrs),
			CreatedAt:  now,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("journal: append: %w", err)
	}
	return nil
}

// Emit implements events.Emitter. Write failures are logged since emitters
// cannot report errors.
func (s *Store) Emit(evt events.Event) {
	rec := events.RecordOf(evt)
	if rec == nil {
		return
	}
	if err := s.Append(context.Background(), rec); err != nil {
		slog.Default().Error("journal append failed", slog.String("type", rec.Type), slog.Any("error", err))
	}
}

// List returns entries in insertion order.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := s.db.WithContext(ctx).Model(&Entry{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}
	if filter.Instance != "" {
		query = query.Where("instance = ?", filter.Instance)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var entries []Entry
	if err := query.Order("seq ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	return entries, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func moduleOf(eventType string) string {
	module, _, found := strings.Cut(eventType, ".")
	if !found {
		return "unknown"
	}
	return module
}
