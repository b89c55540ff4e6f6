package db

import (
	"fmt"

	"github.com/kasuganosora/lifeos/config"
	dbmysql "github.com/kasuganosora/lifeos/db/mysql"
	dbsqlite "github.com/kasuganosora/lifeos/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("db: mysql mode requires mysql_dsn")
		}
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
