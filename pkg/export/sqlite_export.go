package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/widgetboard/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a dashboard snapshot to a SQLite database.
type SQLiteExporter struct {
	Dashboard model.Dashboard
	Title     string
	Generated string
}

// NewSQLiteExporter creates an exporter for d.
func NewSQLiteExporter(d model.Dashboard) *SQLiteExporter {
	return &SQLiteExporter{Dashboard: d}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insert(db); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	return db.Close()
}

func (e *SQLiteExporter) insert(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	catStmt, err := tx.Prepare(`INSERT INTO categories (name, position) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer catStmt.Close()

	cardStmt, err := tx.Prepare(`
		INSERT INTO cards (id, category, position, name, chart_type)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer cardStmt.Close()

	fieldStmt, err := tx.Prepare(`
		INSERT INTO fields (card_id, position, name, color, percentage)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer fieldStmt.Close()

	for ci, cc := range e.Dashboard.Categories {
		if _, err := catStmt.Exec(string(cc.Category), ci); err != nil {
			return fmt.Errorf("insert category %s: %w", cc.Category, err)
		}
		for pos, card := range cc.Cards {
			if _, err := cardStmt.Exec(card.ID.String(), string(cc.Category), pos, card.Name, string(card.ChartType)); err != nil {
				return fmt.Errorf("insert card %s: %w", card.ID, err)
			}
			for fi, f := range card.Fields {
				if _, err := fieldStmt.Exec(card.ID.String(), fi, f.Name, f.Color, f.Percentage); err != nil {
					return fmt.Errorf("insert field %d of %s: %w", fi, card.ID, err)
				}
			}
		}
	}

	if _, err := tx.Exec(`INSERT INTO export_meta (key, value) VALUES ('title', ?), ('generated', ?), ('schema_version', ?)`,
		e.Title, e.Generated, fmt.Sprint(SchemaVersion)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	return tx.Commit()
}
