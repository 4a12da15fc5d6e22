package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion tracks the layout of exported databases.
const SchemaVersion = 1

// CreateSchema creates the export tables and indexes.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"categories", `
			CREATE TABLE IF NOT EXISTS categories (
				name TEXT PRIMARY KEY,
				position INTEGER NOT NULL
			)`},
		{"cards", `
			CREATE TABLE IF NOT EXISTS cards (
				id TEXT PRIMARY KEY,
				category TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				chart_type TEXT NOT NULL,
				FOREIGN KEY (category) REFERENCES categories(name)
			)`},
		{"fields", `
			CREATE TABLE IF NOT EXISTS fields (
				card_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				color TEXT NOT NULL,
				percentage REAL NOT NULL,
				PRIMARY KEY (card_id, position),
				FOREIGN KEY (card_id) REFERENCES cards(id)
			)`},
		{"export_meta", `
			CREATE TABLE IF NOT EXISTS export_meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)`},
		{"idx_cards_category", `CREATE INDEX IF NOT EXISTS idx_cards_category ON cards(category, position)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
