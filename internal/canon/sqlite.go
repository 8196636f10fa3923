// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canon

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scripture-engine/pkg/types"
)

// SQLiteOracle serves canon lookups from a corpus database. The database is
// a read-only artifact shipped with the tool; the oracle opens it in
// read-only mode and never writes.
type SQLiteOracle struct {
	db    *sql.DB
	books []Book
}

// NewSQLiteOracle opens the corpus database at path and loads the book
// table into memory. Book metadata is small and immutable, so it is read
// once; verse lookups stay in SQL.
func NewSQLiteOracle(path string) (*SQLiteOracle, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro&_query_only=on")
	if err != nil {
		return nil, fmt.Errorf("opening corpus database: %w", err)
	}

	o := &SQLiteOracle{db: db}
	if err := o.loadBooks(); err != nil {
		db.Close()
		return nil, err
	}
	return o, nil
}

// Close releases the database connection.
func (o *SQLiteOracle) Close() error {
	return o.db.Close()
}

// CorpusSchema is the DDL for a corpus database. Exposed so ingest scripts
// and tests can create a database the oracle will accept.
const CorpusSchema = `
CREATE TABLE IF NOT EXISTS books (
	id      INTEGER PRIMARY KEY,
	name    TEXT NOT NULL UNIQUE,
	aliases TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS verses (
	book    INTEGER NOT NULL REFERENCES books(id),
	chapter INTEGER NOT NULL,
	verse   INTEGER NOT NULL,
	text    TEXT NOT NULL,
	PRIMARY KEY (book, chapter, verse)
);
`

func (o *SQLiteOracle) loadBooks() error {
	rows, err := o.db.Query(`SELECT id, name, aliases FROM books ORDER BY id`)
	if err != nil {
		return fmt.Errorf("reading book table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      int
			name    string
			aliases string
		)
		if err := rows.Scan(&id, &name, &aliases); err != nil {
			return fmt.Errorf("scanning book row: %w", err)
		}
		b := Book{ID: types.BookID(id), Name: name}
		for _, a := range strings.Split(aliases, ",") {
			if a = strings.TrimSpace(a); a != "" {
				b.Aliases = append(b.Aliases, a)
			}
		}
		o.books = append(o.books, b)
	}
	return rows.Err()
}

func (o *SQLiteOracle) Books() []Book { return o.books }

func (o *SQLiteOracle) ChapterCount(book types.BookID) int {
	var n int
	err := o.db.QueryRow(
		`SELECT COALESCE(MAX(chapter), 0) FROM verses WHERE book = ?`, int(book),
	).Scan(&n)
	if err != nil {
		return 0
	}
	return n
}

func (o *SQLiteOracle) VerseCount(book types.BookID, chapter int) int {
	var n int
	err := o.db.QueryRow(
		`SELECT COALESCE(MAX(verse), 0) FROM verses WHERE book = ? AND chapter = ?`,
		int(book), chapter,
	).Scan(&n)
	if err != nil {
		return 0
	}
	return n
}

func (o *SQLiteOracle) VerseText(book types.BookID, chapter, verse int) (string, bool) {
	var text string
	err := o.db.QueryRow(
		`SELECT text FROM verses WHERE book = ? AND chapter = ? AND verse = ?`,
		int(book), chapter, verse,
	).Scan(&text)
	if err != nil {
		return "", false
	}
	return text, true
}
