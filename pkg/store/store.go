// Package store persists outcome records in a relational database.
// Persistence is a thin shell around the core: a failed write never
// fails the run that produced the record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/webtrailhq/webtrail/pkg/errors"
	"github.com/webtrailhq/webtrail/pkg/logging"
	"github.com/webtrailhq/webtrail/pkg/types"
)

// ErrNotFound is returned when no record exists for the requested run.
var ErrNotFound = errors.New("outcome record not found")

// OutcomeRecord is the database row for one run outcome. Graph and
// screenshot collections are stored as JSON text columns.
type OutcomeRecord struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	TestID        string `gorm:"size:64;index"`
	Status        string `gorm:"size:16"`
	ExecutionTime float64
	StepsExecuted int
	AgentOutput   string `gorm:"type:text"`
	Pages         string `gorm:"type:text"`
	Edges         string `gorm:"type:text"`
	Screenshots   string `gorm:"type:text"`
	ErrorMessage  string `gorm:"type:text"`
	ExecutedAt    time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// TableName fixes the table name independent of gorm pluralization.
func (OutcomeRecord) TableName() string { return "outcome_records" }

// Store persists and retrieves outcome records.
type Store struct {
	db     *gorm.DB
	logger *logging.Logger
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path.
func NewSQLiteStore(path string, logger *logging.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, apperrors.NewDatabase("open", err)
	}
	return newStore(db, logger)
}

// NewMySQLStore opens a MySQL-backed store with the given DSN.
func NewMySQLStore(dsn string, logger *logging.Logger) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, apperrors.NewDatabase("open", err)
	}
	return newStore(db, logger)
}

func newStore(db *gorm.DB, logger *logging.Logger) (*Store, error) {
	if err := db.AutoMigrate(&OutcomeRecord{}); err != nil {
		return nil, apperrors.NewDatabase("migrate", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save persists one outcome and returns the stored record ID.
func (s *Store) Save(ctx context.Context, outcome *types.Outcome) (uint, error) {
	record, err := toRecord(outcome)
	if err != nil {
		return 0, apperrors.NewDatabase("encode", err)
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if s.logger != nil {
			s.logger.Errorf("failed to save outcome for %s: %v", outcome.TestID, err)
		}
		return 0, apperrors.NewDatabase("save", err)
	}

	if s.logger != nil {
		s.logger.Infof("outcome saved: id=%d test_id=%s status=%s", record.ID, record.TestID, record.Status)
	}
	return record.ID, nil
}

// Get returns one stored outcome by record ID.
func (s *Store) Get(ctx context.Context, id uint) (*types.Outcome, error) {
	var record OutcomeRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, apperrors.NewDatabase("get", err)
	}
	return fromRecord(&record)
}

// ListByTestID returns all stored outcomes for a test, newest first.
func (s *Store) ListByTestID(ctx context.Context, testID string) ([]*types.Outcome, error) {
	var records []OutcomeRecord
	err := s.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("id desc").
		Find(&records).Error
	if err != nil {
		return nil, apperrors.NewDatabase("list", err)
	}

	outcomes := make([]*types.Outcome, 0, len(records))
	for i := range records {
		outcome, err := fromRecord(&records[i])
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// List returns the most recent stored outcomes up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]*types.Outcome, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []OutcomeRecord
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, apperrors.NewDatabase("list", err)
	}

	outcomes := make([]*types.Outcome, 0, len(records))
	for i := range records {
		outcome, err := fromRecord(&records[i])
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func toRecord(outcome *types.Outcome) (*OutcomeRecord, error) {
	pages, err := json.Marshal(outcome.Pages)
	if err != nil {
		return nil, err
	}
	edges, err := json.Marshal(outcome.Edges)
	if err != nil {
		return nil, err
	}
	shots, err := json.Marshal(outcome.Screenshots)
	if err != nil {
		return nil, err
	}

	return &OutcomeRecord{
		TestID:        outcome.TestID,
		Status:        string(outcome.Status),
		ExecutionTime: outcome.ExecutionTime,
		StepsExecuted: outcome.StepsExecuted,
		AgentOutput:   outcome.AgentOutput,
		Pages:         string(pages),
		Edges:         string(edges),
		Screenshots:   string(shots),
		ErrorMessage:  outcome.ErrorMessage,
		ExecutedAt:    outcome.ExecutedAt,
	}, nil
}

func fromRecord(record *OutcomeRecord) (*types.Outcome, error) {
	outcome := &types.Outcome{
		TestID:        record.TestID,
		Status:        types.RunStatus(record.Status),
		ExecutionTime: record.ExecutionTime,
		StepsExecuted: record.StepsExecuted,
		AgentOutput:   record.AgentOutput,
		ErrorMessage:  record.ErrorMessage,
		ExecutedAt:    record.ExecutedAt,
	}

	if record.Pages != "" {
		if err := json.Unmarshal([]byte(record.Pages), &outcome.Pages); err != nil {
			return nil, apperrors.NewDatabase("decode", err)
		}
	}
	if record.Edges != "" {
		if err := json.Unmarshal([]byte(record.Edges), &outcome.Edges); err != nil {
			return nil, apperrors.NewDatabase("decode", err)
		}
	}
	if record.Screenshots != "" {
		if err := json.Unmarshal([]byte(record.Screenshots), &outcome.Screenshots); err != nil {
			return nil, apperrors.NewDatabase("decode", err)
		}
	}
	return outcome, nil
}
