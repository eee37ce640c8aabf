// Package schema: safe database initialization for the mysql store driver. Creates only
// missing tables, never drops or overwrites.
package schema

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

const tableKVStore = "kv_store"

// InitializeDatabase ensures the kv_store table exists. Checks INFORMATION_SCHEMA.TABLES
// and creates the table only when missing; existing data is never touched.
func InitializeDatabase(db *sql.DB) error {
	exists, err := tableExists(db, tableKVStore)
	if err != nil {
		return fmt.Errorf("failed to check if table %s exists: %w", tableKVStore, err)
	}
	if exists {
		log.Infof("[SCHEMA] %s table exists", tableKVStore)
		return nil
	}
	if err := createKVStoreTable(db); err != nil {
		return err
	}
	log.Infof("[SCHEMA] created %s table", tableKVStore)
	return nil
}

func createKVStoreTable(db *sql.DB) error {
	q := `
CREATE TABLE IF NOT EXISTS kv_store (
    k VARCHAR(255) NOT NULL PRIMARY KEY,
    v MEDIUMBLOB NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`
	if _, err := db.Exec(q); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableKVStore, err)
	}
	return nil
}

func tableExists(db *sql.DB, table string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`,
		table,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
