package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/shared/logger"
)

// Manager runs a migration strategy over the model list.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

func NewManager(dryRun bool) *Manager {
	strategy := NewGormAutoMigrateStrategy()
	if dryRun {
		strategy = NewDryRunStrategy()
	}
	return NewManagerWithStrategy(strategy)
}

func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName(),
		"models_count", len(models))

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
