// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canon

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// newTestCorpus writes a small corpus database and returns its path.
func newTestCorpus(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corpus.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("opening database for write: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(CorpusSchema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO books (id, name, aliases) VALUES (?, ?, ?)`, []any{1, "Ruth", ""}},
		{`INSERT INTO books (id, name, aliases) VALUES (?, ?, ?)`, []any{2, "John", "Jn, Gospel of John"}},
		{`INSERT INTO verses (book, chapter, verse, text) VALUES (?, ?, ?, ?)`, []any{1, 1, 1, "Now it came to pass"}},
		{`INSERT INTO verses (book, chapter, verse, text) VALUES (?, ?, ?, ?)`, []any{1, 1, 2, "And the name of the man"}},
		{`INSERT INTO verses (book, chapter, verse, text) VALUES (?, ?, ?, ?)`, []any{1, 2, 1, "And Naomi had a kinsman"}},
		{`INSERT INTO verses (book, chapter, verse, text) VALUES (?, ?, ?, ?)`, []any{2, 3, 16, "For God so loved the world"}},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.query, s.args...); err != nil {
			t.Fatalf("inserting fixture row: %v", err)
		}
	}
	return path
}

func TestSQLiteOracle(t *testing.T) {
	o, err := NewSQLiteOracle(newTestCorpus(t))
	if err != nil {
		t.Fatalf("NewSQLiteOracle: %v", err)
	}
	defer o.Close()

	books := o.Books()
	if len(books) != 2 {
		t.Fatalf("Books() returned %d books, want 2", len(books))
	}
	if books[0].Name != "Ruth" || books[1].Name != "John" {
		t.Errorf("book names = %q, %q; want Ruth, John", books[0].Name, books[1].Name)
	}
	wantAliases := []string{"Jn", "Gospel of John"}
	if len(books[1].Aliases) != 2 || books[1].Aliases[0] != wantAliases[0] || books[1].Aliases[1] != wantAliases[1] {
		t.Errorf("John aliases = %v, want %v", books[1].Aliases, wantAliases)
	}
	if len(books[0].Aliases) != 0 {
		t.Errorf("Ruth aliases = %v, want none", books[0].Aliases)
	}

	if got := o.ChapterCount(1); got != 2 {
		t.Errorf("ChapterCount(Ruth) = %d, want 2", got)
	}
	if got := o.ChapterCount(9); got != 0 {
		t.Errorf("ChapterCount(unknown) = %d, want 0", got)
	}
	if got := o.VerseCount(1, 1); got != 2 {
		t.Errorf("VerseCount(Ruth 1) = %d, want 2", got)
	}
	if got := o.VerseCount(1, 3); got != 0 {
		t.Errorf("VerseCount(Ruth 3) = %d, want 0", got)
	}

	text, ok := o.VerseText(2, 3, 16)
	if !ok || text != "For God so loved the world" {
		t.Errorf("VerseText(John 3:16) = %q, %v; want fixture text, true", text, ok)
	}
	if _, ok := o.VerseText(2, 3, 17); ok {
		t.Error("VerseText(John 3:17) ok = true, want false for absent row")
	}
}

func TestSQLiteOracleWorksWithParser(t *testing.T) {
	o, err := NewSQLiteOracle(newTestCorpus(t))
	if err != nil {
		t.Fatalf("NewSQLiteOracle: %v", err)
	}
	defer o.Close()

	refs := ParseReferences(o, "Gospel of John 3:16")
	if len(refs) != 1 {
		t.Fatalf("ParseReferences returned %d results, want 1", len(refs))
	}
	if refs[0].BookName != "John" || refs[0].StartChapter != 3 || refs[0].StartVerse != 16 {
		t.Errorf("parsed reference = %+v, want John 3:16", refs[0])
	}
}
