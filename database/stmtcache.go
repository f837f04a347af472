// Package database holds the small helpers shared by sqlite backed stores.
package database

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens (or creates) a sqlite file. sqlite allows one writer,
// so the pool is capped at a single connection.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// StmtCache maps a query string to its prepared statement.
type StmtCache struct {
	db *sql.DB
	mu sync.Mutex
	m  map[string]*sql.Stmt
}

func NewStmtCache(db *sql.DB) *StmtCache {
	return &StmtCache{db: db, m: make(map[string]*sql.Stmt)}
}

func (sc *StmtCache) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt, ok := sc.m[query]; ok {
		return stmt, nil
	}
	stmt, err := sc.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	sc.m[query] = stmt
	return stmt, nil
}

func (sc *StmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for k, stmt := range sc.m {
		_ = stmt.Close()
		delete(sc.m, k)
	}
}
