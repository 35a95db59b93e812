package database

import (
	"errors"
	"os"

	"github.com/campushub/chat-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	d.db = db

	return nil
}

// Migrate настраивает join таблицу чтений и мигрирует схему
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Message{}, "ReadBy", &models.MessageRead{}); err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Message{},
		&models.MessageRead{},
	)
}
