package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/veloxpay/velox/models"
)

// Connect opens the ledger database and makes sure the transactions table
// exists. Schema ownership beyond that lives with the ops migration
// tooling, not this service.
func Connect(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(&models.Transaction{}); err != nil {
		return nil, err
	}

	return database, nil
}
