package storage

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New initializes the database connection and performs migrations.
func New(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.AutoMigrate(&Account{}, &Adversary{}, &Game{}, &Instance{}, &InputEvent{}, &Frame{}); err != nil {
		return nil, errors.Wrap(err, "migrate schema")
	}
	return db, nil
}
