package txjournal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TEENet-io/multiwallet/database"
)

// Store is the sqlite implementation of Journal and Reader.
type Store struct {
	stmtCache *database.StmtCache
	now       func() time.Time
}

var (
	_ Journal = (*Store)(nil)
	_ Reader  = (*Store)(nil)
)

func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(sendTable); err != nil {
		return nil, err
	}
	return &Store{
		stmtCache: database.NewStmtCache(db),
		now:       time.Now,
	}, nil
}

func (st *Store) Close() {
	st.stmtCache.Clear()
}

func (st *Store) Open(ctx context.Context, e Entry) (string, error) {
	query := `INSERT INTO send (` + entryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, 0, '', ?, ?)`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	ts := st.now().UnixMilli()
	if _, err := stmt.ExecContext(ctx, id, e.Asset, e.Network, e.From, e.To, e.Amount, e.Fee, STATUS_PENDING, ts, ts); err != nil {
		return "", err
	}
	return id, nil
}

func (st *Store) MarkBroadcast(ctx context.Context, id string, txID string) error {
	query := `UPDATE send SET txId = ?, status = ?, updatedAt = ? WHERE id = ?`
	return st.update(ctx, query, txID, STATUS_BROADCAST, st.now().UnixMilli(), id)
}

func (st *Store) MarkConfirmed(ctx context.Context, id string, confirmations int64) error {
	query := `UPDATE send SET confirmations = ?, status = ?, updatedAt = ? WHERE id = ?`
	return st.update(ctx, query, confirmations, STATUS_CONFIRMED, st.now().UnixMilli(), id)
}

func (st *Store) MarkFailed(ctx context.Context, id string, reason error) error {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	query := `UPDATE send SET error = ?, status = ?, updatedAt = ? WHERE id = ?`
	return st.update(ctx, query, msg, STATUS_FAILED, st.now().UnixMilli(), id)
}

func (st *Store) update(ctx context.Context, query string, args ...any) error {
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return err
	}
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %v", ErrNotFound, args[len(args)-1])
	}
	return nil
}

func (st *Store) Get(ctx context.Context, id string) (*Entry, error) {
	return st.getOne(ctx, `SELECT`+entryColumns+`FROM send WHERE id = ?`, id)
}

// GetByTxID returns the latest entry carrying txID.
func (st *Store) GetByTxID(ctx context.Context, txID string) (*Entry, error) {
	return st.getOne(ctx, `SELECT`+entryColumns+`FROM send WHERE txId = ? ORDER BY createdAt DESC LIMIT 1`, txID)
}

func (st *Store) getOne(ctx context.Context, query string, arg string) (*Entry, error) {
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	e, err := scanEntry(stmt.QueryRowContext(ctx, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, arg)
		}
		return nil, err
	}
	return e, nil
}

// List returns the newest entries first. An empty asset lists all of them,
// a limit <= 0 means no limit.
func (st *Store) List(ctx context.Context, asset string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT` + entryColumns + `FROM send WHERE (? = '' OR asset = ?) ORDER BY createdAt DESC, rowid DESC LIMIT ?`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, asset, asset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		e       Entry
		txID    sql.NullString
		status  string
		created int64
		updated int64
	)
	err := row.Scan(&e.ID, &e.Asset, &e.Network, &e.From, &e.To, &e.Amount, &e.Fee,
		&txID, &status, &e.Confirmations, &e.Error, &created, &updated)
	if err != nil {
		return nil, err
	}
	e.TxID = txID.String
	e.Status = Status(status)
	e.CreatedAt = time.UnixMilli(created)
	e.UpdatedAt = time.UnixMilli(updated)
	return &e, nil
}
