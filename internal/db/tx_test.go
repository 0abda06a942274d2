package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(`CREATE TABLE entries (id INTEGER PRIMARY KEY, title TEXT, artist TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return conn
}

func count(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_Commits(t *testing.T) {
	conn := setupTestDB(t)

	err := WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		for _, title := range []string{"Xtal", "Tha"} {
			if _, err := tx.Exec(`INSERT INTO entries (title) VALUES (?)`, title); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if got := count(t, conn); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	conn := setupTestDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO entries (title) VALUES (?)`, "Xtal"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want %v", err, boom)
	}
	if got := count(t, conn); got != 0 {
		t.Errorf("count = %d, want 0 after rollback", got)
	}
}

func TestWithTx_CancelledContext(t *testing.T) {
	conn := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, conn, func(*sql.Tx) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("WithTx() error = nil, want context error")
	}
	if called {
		t.Error("fn ran with a cancelled context")
	}
}

func TestNullString_RoundTrip(t *testing.T) {
	conn := setupTestDB(t)

	for _, artist := range []string{"", "Aphex Twin"} {
		if _, err := conn.Exec(`INSERT INTO entries (title, artist) VALUES (?, ?)`, "t", NullString(artist)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	var nulls int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM entries WHERE artist IS NULL`).Scan(&nulls); err != nil {
		t.Fatalf("query: %v", err)
	}
	if nulls != 1 {
		t.Errorf("NULL artists = %d, want 1", nulls)
	}

	rows, err := conn.Query(`SELECT artist FROM entries ORDER BY id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var n sql.NullString
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, NullStringValue(n))
	}
	if len(got) != 2 || got[0] != "" || got[1] != "Aphex Twin" {
		t.Errorf("artists = %q", got)
	}
}
