package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"tradepulse/internal/settings"
	"tradepulse/internal/store"
	"tradepulse/internal/trader"
)

const settingsDocID = "main_settings"

// documentModel holds one JSON document per row, keyed by a stable ID. The
// portfolio and settings documents both use this shape so their wire format
// round-trips unchanged.
type documentModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	Doc       datatypes.JSON `gorm:"column:doc;type:TEXT"`
	UpdatedAt int64          `gorm:"column:updated_at;autoUpdateTime"`
}

type portfolioModel documentModel

func (portfolioModel) TableName() string { return "portfolios" }

type settingsModel documentModel

func (settingsModel) TableName() string { return "app_settings" }

// GormStore persists the portfolio and settings documents in SQLite via gorm.
type GormStore struct {
	db *gorm.DB
}

var _ store.Docs = (*GormStore)(nil)

// NewGormStore opens (and migrates) the document database.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&portfolioModel{}, &settingsModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep contention low, the trading loop is single-writer.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LoadPortfolio reads the portfolio document, seeding a fresh default one the
// first time the store is used.
func (s *GormStore) LoadPortfolio(ctx context.Context) (*trader.Portfolio, error) {
	var row portfolioModel
	err := s.db.WithContext(ctx).First(&row, "id = ?", trader.DefaultPortfolioID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p := trader.NewPortfolio()
		if serr := s.SavePortfolio(ctx, p); serr != nil {
			return nil, serr
		}
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading portfolio: %w", err)
	}
	var p trader.Portfolio
	if err := json.Unmarshal(row.Doc, &p); err != nil {
		return nil, fmt.Errorf("decoding portfolio document: %w", err)
	}
	if p.ID == "" {
		p.ID = trader.DefaultPortfolioID
	}
	if p.Holdings == nil {
		p.Holdings = make(map[string]trader.Position)
	}
	return &p, nil
}

// SavePortfolio upserts the portfolio document.
func (s *GormStore) SavePortfolio(ctx context.Context, p *trader.Portfolio) error {
	if p == nil {
		return fmt.Errorf("nil portfolio")
	}
	if p.ID == "" {
		p.ID = trader.DefaultPortfolioID
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding portfolio document: %w", err)
	}
	row := portfolioModel{ID: p.ID, Doc: doc}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
	}).Create(&row).Error
}

// LoadSettings reads the settings document, seeding the defaults on first use.
func (s *GormStore) LoadSettings(ctx context.Context) (settings.Settings, error) {
	var row settingsModel
	err := s.db.WithContext(ctx).First(&row, "id = ?", settingsDocID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := settings.Defaults()
		if serr := s.SaveSettings(ctx, def); serr != nil {
			return settings.Settings{}, serr
		}
		return def, nil
	}
	if err != nil {
		return settings.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	var cfg settings.Settings
	if err := json.Unmarshal(row.Doc, &cfg); err != nil {
		return settings.Settings{}, fmt.Errorf("decoding settings document: %w", err)
	}
	return cfg, nil
}

// SaveSettings upserts the settings document.
func (s *GormStore) SaveSettings(ctx context.Context, cfg settings.Settings) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding settings document: %w", err)
	}
	row := settingsModel{ID: settingsDocID, Doc: doc}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"doc", "updated_at"}),
	}).Create(&row).Error
}
