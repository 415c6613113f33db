package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/shared/logger"
)

// Strategy defines how the schema is brought up to date.
type Strategy interface {
	Migrate(db *gorm.DB, models ...interface{}) error
	GetName() string
}

// GormAutoMigrateStrategy derives the schema from the gorm models, which keeps
// mysql, postgres and sqlite in step without per-dialect scripts.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.WithComponent("migration.gorm"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	s.logger.Infow("running gorm auto migrate", "models_count", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migrate failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

// DryRunStrategy reports which tables would change without touching them.
type DryRunStrategy struct {
	logger logger.Interface
}

func NewDryRunStrategy() Strategy {
	return &DryRunStrategy{logger: logger.WithComponent("migration.dry_run")}
}

func (s *DryRunStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	migrator := db.Migrator()
	for _, m := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("failed to parse model: %w", err)
		}
		s.logger.Infow("table status", "table", stmt.Schema.Table, "exists", migrator.HasTable(m))
	}
	return nil
}

func (s *DryRunStrategy) GetName() string {
	return "dry_run"
}
