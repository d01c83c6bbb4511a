package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no verdict matches a lookup.
var ErrNotFound = errors.New("verdict not found")

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&VerdictRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveVerdict inserts a verdict row.
func (d *Database) SaveVerdict(r *VerdictRecord) error {
	if d == nil {
		return errors.New("database is nil")
	}
	if r == nil {
		return errors.New("verdict is nil")
	}
	r.CaseID = strings.TrimSpace(r.CaseID)
	if r.CaseID == "" {
		return errors.New("verdict case id is required")
	}
	return d.gorm.Create(r).Error
}

// LatestVerdict returns the most recent verdict stored under caseID.
func (d *Database) LatestVerdict(caseID string) (*VerdictRecord, error) {
	var record VerdictRecord
	err := d.gorm.Where("case_id = ?", strings.TrimSpace(caseID)).
		Order("id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// VerdictQuery encapsulates filters and pagination for listing verdicts.
type VerdictQuery struct {
	Responsibility string
	DisputeType    string
	Offset         int
	Limit          int
}

// ListVerdicts returns verdicts newest first, applying optional filters.
func (d *Database) ListVerdicts(opts VerdictQuery) ([]VerdictRecord, int64, error) {
	base := d.gorm.Model(&VerdictRecord{})
	if v := strings.TrimSpace(opts.Responsibility); v != "" {
		base = base.Where("responsibility = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(opts.DisputeType); v != "" {
		base = base.Where("dispute_type = ?", strings.ToLower(v))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("id DESC").Offset(opts.Offset)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var rows []VerdictRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ResponsibilityCount is one bucket of the responsibility breakdown.
type ResponsibilityCount struct {
	Responsibility string `json:"responsibility"`
	Total          int64  `json:"total"`
}

// CountByResponsibility groups stored verdicts by responsibility.
func (d *Database) CountByResponsibility() ([]ResponsibilityCount, error) {
	var rows []ResponsibilityCount
	err := d.gorm.Model(&VerdictRecord{}).
		Select("responsibility, COUNT(*) AS total").
		Group("responsibility").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by responsibility: %w", err)
	}
	return rows, nil
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_verdicts_case_id_id ON verdict_records(case_id, id)",
		"CREATE INDEX IF NOT EXISTS idx_verdicts_decided_at ON verdict_records(decided_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
