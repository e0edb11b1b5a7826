// Package mockapi is a local stand-in for the remote medication lookup
// service. It serves the same wire shapes from a small SQLite product
// catalog so the client can be developed and demoed without network
// access to the real backend.
package mockapi

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Product is one catalog row: a concrete product concept tied to an
// ingredient.
type Product struct {
	Ingredient  string
	Name        string
	RxCUI       string
	GenericName string
	AdultDoseMg float64
	Warning     string
}

// Store wraps the SQLite product catalog.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ingredient TEXT NOT NULL,
	name TEXT NOT NULL UNIQUE,
	rxcui TEXT NOT NULL,
	generic_name TEXT NOT NULL DEFAULT '',
	adult_dose_mg REAL NOT NULL DEFAULT 0,
	warning TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_products_ingredient ON products(ingredient);
`

// Open opens (or creates) the catalog database in dataDir and ensures the
// schema exists. Pass ":memory:" as dataDir for an in-memory database
// (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "catalog.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProduct inserts or replaces one catalog row.
func (s *Store) SaveProduct(p Product) error {
	_, err := s.db.Exec(`
		INSERT INTO products (ingredient, name, rxcui, generic_name, adult_dose_mg, warning)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			ingredient = excluded.ingredient,
			rxcui = excluded.rxcui,
			generic_name = excluded.generic_name,
			adult_dose_mg = excluded.adult_dose_mg,
			warning = excluded.warning`,
		strings.ToLower(p.Ingredient), p.Name, p.RxCUI, p.GenericName, p.AdultDoseMg, p.Warning,
	)
	return err
}

// ProductsFor returns every product for the given ingredient,
// case-insensitively, ordered by name.
func (s *Store) ProductsFor(ingredient string) ([]Product, error) {
	rows, err := s.db.Query(`
		SELECT ingredient, name, rxcui, generic_name, adult_dose_mg, warning
		FROM products WHERE ingredient = ? ORDER BY name ASC`,
		strings.ToLower(ingredient),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Ingredient, &p.Name, &p.RxCUI, &p.GenericName, &p.AdultDoseMg, &p.Warning); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Ingredients returns the distinct ingredient names in the catalog.
func (s *Store) Ingredients() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT ingredient FROM products ORDER BY ingredient ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// SeedDefaults loads a small catalog of common over-the-counter drugs.
// Existing rows with the same product name are overwritten.
func (s *Store) SeedDefaults() error {
	defaults := []Product{
		{Ingredient: "tylenol", Name: "Tylenol 200MG Oral Tablet", RxCUI: "209387", GenericName: "acetaminophen", AdultDoseMg: 650, Warning: "Do not exceed 3000mg per day."},
		{Ingredient: "tylenol", Name: "Tylenol 500MG Oral Tablet", RxCUI: "209459", GenericName: "acetaminophen", AdultDoseMg: 650, Warning: "Do not exceed 3000mg per day."},
		{Ingredient: "tylenol", Name: "Tylenol 160MG Chewable Tablet", RxCUI: "209388", GenericName: "acetaminophen", AdultDoseMg: 650, Warning: "Do not exceed 3000mg per day."},
		{Ingredient: "advil", Name: "Advil 200MG Oral Tablet", RxCUI: "153010", GenericName: "ibuprofen", AdultDoseMg: 400, Warning: "Take with food."},
		{Ingredient: "advil", Name: "Advil 200MG Oral Capsule", RxCUI: "153008", GenericName: "ibuprofen", AdultDoseMg: 400, Warning: "Take with food."},
		{Ingredient: "benadryl", Name: "Benadryl 25MG Oral Tablet", RxCUI: "1049909", GenericName: "diphenhydramine", AdultDoseMg: 50, Warning: "May cause drowsiness."},
		{Ingredient: "aspirin", Name: "Aspirin 325MG Oral Tablet", RxCUI: "243670", GenericName: "aspirin", AdultDoseMg: 650, Warning: "Not for children under 12."},
		{Ingredient: "zyrtec", Name: "Zyrtec 10MG Oral Tablet", RxCUI: "1014678", GenericName: "cetirizine", AdultDoseMg: 10, Warning: ""},
	}
	for _, p := range defaults {
		if err := s.SaveProduct(p); err != nil {
			return fmt.Errorf("seeding %q: %w", p.Name, err)
		}
	}
	return nil
}
