// Package slt provides access primitives for SLT game databases: SQLite
// files whose schema varies across game builds and is therefore discovered
// at runtime rather than assumed.
package slt

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so schema introspection
// and row helpers work inside and outside a transaction.
type Querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// Open opens an existing SLT database read-write. It never creates a new
// file: opening a nonexistent path is an error.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return db, nil
}

// OpenReadOnly opens an existing SLT database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(abs))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s read-only: %w", path, err)
	}
	return db, nil
}

// BuildSourceList returns the ordered source path list for a clone operation:
// MAIN first, then every .slt file found under dlcDir (recursively), sorted
// by filename then full path. MAIN is never listed twice. Order matters:
// earlier sources win ties during de-duplication and dependency searches.
func BuildSourceList(mainPath string, dlcDir string) ([]string, error) {
	mainAbs, err := filepath.Abs(mainPath)
	if err != nil {
		return nil, err
	}
	sources := []string{mainPath}

	if dlcDir == "" {
		return sources, nil
	}
	if _, err := os.Stat(dlcDir); err != nil {
		return sources, nil
	}

	var found []string
	err = filepath.Walk(dlcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".slt") {
			return nil
		}
		abs, aerr := filepath.Abs(p)
		if aerr == nil && abs == mainAbs {
			return nil
		}
		found = append(found, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool {
		ni := strings.ToLower(filepath.Base(found[i]))
		nj := strings.ToLower(filepath.Base(found[j]))
		if ni != nj {
			return ni < nj
		}
		return strings.ToLower(found[i]) < strings.ToLower(found[j])
	})

	return append(sources, found...), nil
}

// Backup copies the database file next to itself with a timestamp suffix and
// returns the backup path. Callers run this before mutating MAIN.
func Backup(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open database for backup: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	ts := time.Now().Format("20060102_150405")
	out := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s_backup_%s%s", stem, ts, ext))

	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return out, nil
}
