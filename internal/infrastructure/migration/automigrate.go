package migration

import "github.com/orris-inc/passage/internal/infrastructure/persistence/models"

func AutoMigrateModels() []interface{} {
	return models.All()
}
