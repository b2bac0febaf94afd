package dictionary

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

const wordListSchema = `CREATE TABLE IF NOT EXISTS words (
	word TEXT PRIMARY KEY
) WITHOUT ROWID;`

// WordListSource checks words against a local sqlite word list
type WordListSource struct {
	db *sql.DB
}

// OpenWordList opens (or creates) the sqlite database at path
func OpenWordList(ctx context.Context, path string) (*WordListSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}

	// One connection keeps ":memory:" databases shared and writes serial
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	src, err := NewWordList(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

// NewWordList wraps an open database, creating the schema if needed
func NewWordList(ctx context.Context, db *sql.DB) (*WordListSource, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	if _, err := db.ExecContext(ctx, wordListSchema); err != nil {
		return nil, fmt.Errorf("failed to create words table: %w", err)
	}

	return &WordListSource{db: db}, nil
}

// Check implements Source
func (w *WordListSource) Check(ctx context.Context, word string) (bool, error) {
	var exists bool
	err := w.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM words WHERE word = ?)", word).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query word list: %w", err)
	}
	return exists, nil
}

// Load imports a newline-delimited word list. Words are lowercased;
// blank lines and lines starting with '#' are skipped. Returns the number
// of lines read as words, duplicates included.
func (w *WordListSource) Load(ctx context.Context, r io.Reader) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO words (word) VALUES (?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		if _, err := stmt.ExecContext(ctx, word); err != nil {
			return count, fmt.Errorf("failed to insert %q: %w", word, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read word list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("failed to commit word list: %w", err)
	}
	return count, nil
}

// LoadFile imports a word list file
func (w *WordListSource) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open word list file: %w", err)
	}
	defer f.Close()
	return w.Load(ctx, f)
}

// Count returns the number of distinct words stored
func (w *WordListSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM words").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}

// Close closes the underlying database
func (w *WordListSource) Close() error {
	return w.db.Close()
}
