// Package db opens the backing gorm database and applies schema migrations.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/lmarquezt/chatvault/internal/models"
)

// Connect opens a database for the given DSN. A DSN containing "@tcp(" is
// treated as MySQL; anything else is an SQLite file path (the default
// single-file deployment).
func Connect(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.Contains(dsn, "@tcp(") {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}

// Migrate creates the schema if absent. It is idempotent and safe to run on
// every startup. Callers may pass extra models owned by other packages.
func Migrate(gdb *gorm.DB, extra ...any) error {
	tables := []any{
		&models.User{},
		&models.Message{},
		&models.Profile{},
		&models.Stats{},
	}
	tables = append(tables, extra...)
	return gdb.AutoMigrate(tables...)
}
