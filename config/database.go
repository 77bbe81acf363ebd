package config

import (
	"time"

	"github.com/farellandr/museum-tickets/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and the fixed roles.
func Migrate(db *gorm.DB) error {
	if err := enableUUIDExtension(db); err != nil {
		return err
	}

	err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Event{}, &models.Ticket{}, &models.Payment{})
	if err != nil {
		return err
	}

	return seedRoles(db)
}

func seedRoles(db *gorm.DB) error {
	for _, name := range []string{models.RoleUser, models.RoleAdmin} {
		role := models.Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	return nil
}
