package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a GORM *DB backed by SQLite.
func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// OpenMemory opens a named in-memory database. Connections in the pool share
// it; distinct names are isolated from each other.
func OpenMemory(name string) (*gorm.DB, error) {
	return Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
}
