package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cyberdas/backend/pkg/pg"
)

// Keys is the minimal set of identifying columns for one record, produced by
// a table's key projection from whatever superset the caller supplies.
type Keys map[string]any

// keyedTable is the generic core shared by both session stores: a table
// name, a fixed lifetime and a key projection. The concrete stores wrap it
// with typed methods and record-specific inserts.
type keyedTable[R any] struct {
	name   string
	ttl    time.Duration
	filter func(Keys) Keys
}

// where renders the projected keys as a WHERE clause with positional
// arguments. Columns are sorted so the generated SQL is deterministic.
func (t keyedTable[R]) where(ids Keys) (string, []any) {
	keys := t.filter(ids)

	cols := make([]string, 0, len(keys))
	for col := range keys {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	clauses := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		clauses[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args[i] = keys[col]
	}
	return strings.Join(clauses, " AND "), args
}

// get returns the single matching record or ErrNoSession.
func (t keyedTable[R]) get(ctx context.Context, tx pg.DBTX, ids Keys) (R, error) {
	var zero R

	clause, args := t.where(ids)
	rows, err := tx.Query(ctx, fmt.Sprintf("SELECT * FROM %s WHERE %s", t.name, clause), args...)
	if err != nil {
		return zero, err
	}

	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[R])
	if err != nil {
		if pg.IsNotFoundError(err) {
			return zero, ErrNoSession
		}
		return zero, err
	}
	return rec, nil
}

// prolong resets the record's expiry to now + TTL and returns the new value,
// or ErrNoSession when nothing matched.
func (t keyedTable[R]) prolong(ctx context.Context, tx pg.DBTX, ids Keys) (time.Time, error) {
	clause, args := t.where(ids)
	expires := time.Now().Add(t.ttl)

	sql := fmt.Sprintf("UPDATE %s SET expires = $%d WHERE %s RETURNING expires", t.name, len(args)+1, clause)
	var updated time.Time
	if err := tx.QueryRow(ctx, sql, append(args, expires)...).Scan(&updated); err != nil {
		if pg.IsNotFoundError(err) {
			return time.Time{}, ErrNoSession
		}
		return time.Time{}, err
	}
	return updated, nil
}

// terminate deletes the matching record or fails with ErrNoSession.
func (t keyedTable[R]) terminate(ctx context.Context, tx pg.DBTX, ids Keys) error {
	clause, args := t.where(ids)
	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", t.name, clause), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoSession
	}
	return nil
}

// PGShortStore persists ShortSession rows in the sessions table.
type PGShortStore struct {
	table keyedTable[ShortSession]
}

// NewPGShortStore creates the Postgres-backed short session store.
func NewPGShortStore(ttl time.Duration) *PGShortStore {
	return &PGShortStore{
		table: keyedTable[ShortSession]{
			name: "sessions",
			ttl:  ttl,
			filter: func(ids Keys) Keys {
				return Keys{"sid": ids["sid"]}
			},
		},
	}
}

func (s *PGShortStore) Get(ctx context.Context, tx pg.DBTX, sid string) (ShortSession, error) {
	return s.table.get(ctx, tx, Keys{"sid": sid})
}

func (s *PGShortStore) Create(ctx context.Context, tx pg.DBTX, rec ShortSession) (time.Time, error) {
	expires := time.Now().Add(s.table.ttl)
	_, err := tx.Exec(ctx,
		`INSERT INTO sessions (sid, uid, csrf_token, user_agent, ip, continued, expires, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		rec.SID, rec.UID, rec.CSRFToken, rec.UserAgent, rec.IP, rec.Continued, expires)
	if err != nil {
		return time.Time{}, err
	}
	return expires, nil
}

func (s *PGShortStore) Prolong(ctx context.Context, tx pg.DBTX, sid string) (time.Time, error) {
	return s.table.prolong(ctx, tx, Keys{"sid": sid})
}

func (s *PGShortStore) Terminate(ctx context.Context, tx pg.DBTX, sid string) error {
	return s.table.terminate(ctx, tx, Keys{"sid": sid})
}

// PGLongStore persists LongSession rows in the long_sessions table. Lookups
// with a validator carry its digest, never the plaintext.
type PGLongStore struct {
	table keyedTable[LongSession]
}

// NewPGLongStore creates the Postgres-backed long token store.
func NewPGLongStore(ttl time.Duration) *PGLongStore {
	return &PGLongStore{
		table: keyedTable[LongSession]{
			name: "long_sessions",
			ttl:  ttl,
			filter: func(ids Keys) Keys {
				if v, ok := ids["validator"]; ok {
					return Keys{"selector": ids["selector"], "validator": v}
				}
				return Keys{"selector": ids["selector"]}
			},
		},
	}
}

func (s *PGLongStore) Get(ctx context.Context, tx pg.DBTX, selector, validator string) (LongSession, error) {
	rec, err := s.table.get(ctx, tx, Keys{"selector": selector, "validator": []byte(HashToken(validator))})
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return LongSession{}, err
	}

	// The pair missed. A surviving selector means the presented validator
	// was already rotated away: the theft signal, not an ordinary miss.
	if _, selErr := s.table.get(ctx, tx, Keys{"selector": selector}); selErr == nil {
		return LongSession{}, ErrTokenTheft
	}
	return LongSession{}, ErrNoSession
}

func (s *PGLongStore) FindByAssociatedSID(ctx context.Context, tx pg.DBTX, sid string) (LongSession, error) {
	rows, err := tx.Query(ctx, `SELECT * FROM long_sessions WHERE associated_sid = $1`, sid)
	if err != nil {
		return LongSession{}, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[LongSession])
	if err != nil {
		if pg.IsNotFoundError(err) {
			return LongSession{}, ErrNoSession
		}
		return LongSession{}, err
	}
	return rec, nil
}

func (s *PGLongStore) Create(ctx context.Context, tx pg.DBTX, rec LongSession) (time.Time, error) {
	expires := time.Now().Add(s.table.ttl)
	_, err := tx.Exec(ctx,
		`INSERT INTO long_sessions (selector, validator, associated_sid, uid, user_agent, ip, expires)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Selector, []byte(rec.Validator), rec.AssociatedSID, rec.UID, rec.UserAgent, rec.IP, expires)
	if err != nil {
		return time.Time{}, err
	}
	return expires, nil
}

func (s *PGLongStore) Prolong(ctx context.Context, tx pg.DBTX, selector string) (time.Time, error) {
	return s.table.prolong(ctx, tx, Keys{"selector": selector})
}

func (s *PGLongStore) Rotate(ctx context.Context, tx pg.DBTX, selector string, validator Digest, associatedSID string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE long_sessions SET validator = $1, associated_sid = $2 WHERE selector = $3`,
		[]byte(validator), associatedSID, selector)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoSession
	}
	return nil
}

func (s *PGLongStore) Terminate(ctx context.Context, tx pg.DBTX, selector string) error {
	return s.table.terminate(ctx, tx, Keys{"selector": selector})
}

var (
	_ ShortStore = (*PGShortStore)(nil)
	_ LongStore  = (*PGLongStore)(nil)
)
