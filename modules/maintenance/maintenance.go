// Package maintenance takes in dorm repair requests. Callers authenticate
// with a session cookie or a one-time bearer token; the request is filed
// against the building and room from the user's profile.
package maintenance

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cyberdas/backend/pkg/pg"
)

var (
	// ErrNoResidence indicates the user's profile is missing the building or
	// room needed to file a request.
	ErrNoResidence = errors.New("maintenance.no_residence")

	// ErrUnknownCategory indicates the request names a service nobody offers.
	ErrUnknownCategory = errors.New("maintenance.unknown_category")
)

// Categories are the offered repair services.
var Categories = []string{"plumber", "carpenter", "electrician"}

// Request is one filed repair request.
type Request struct {
	ID        int64     `db:"id" json:"id"`
	UID       int64     `db:"uid" json:"-"`
	Category  string    `db:"category" json:"category"`
	Text      string    `db:"text" json:"text"`
	Building  string    `db:"building" json:"building"`
	Room      string    `db:"room" json:"room"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Storage owns the maintenance table and the residence lookup against the
// users table.
type Storage interface {
	// Residence returns the user's building and room, or ErrNoResidence when
	// either is missing from the profile.
	Residence(ctx context.Context, tx pg.DBTX, uid int64) (building, room string, err error)
	Create(ctx context.Context, tx pg.DBTX, req Request) (int64, error)
	ListByUID(ctx context.Context, tx pg.DBTX, uid int64) ([]Request, error)
}

// PGStorage is the Postgres-backed maintenance store.
type PGStorage struct{}

// NewPGStorage creates the maintenance store.
func NewPGStorage() *PGStorage {
	return &PGStorage{}
}

func (s *PGStorage) Residence(ctx context.Context, tx pg.DBTX, uid int64) (string, string, error) {
	var building, room *string
	err := tx.QueryRow(ctx, `SELECT building, room FROM users WHERE id = $1`, uid).Scan(&building, &room)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", "", ErrNoResidence
		}
		return "", "", err
	}
	if building == nil || room == nil || *building == "" || *room == "" {
		return "", "", ErrNoResidence
	}
	return *building, *room, nil
}

func (s *PGStorage) Create(ctx context.Context, tx pg.DBTX, req Request) (int64, error) {
	if !slices.Contains(Categories, req.Category) {
		return 0, ErrUnknownCategory
	}

	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO maintenance (uid, category, text, building, room)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		req.UID, req.Category, req.Text, req.Building, req.Room).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PGStorage) ListByUID(ctx context.Context, tx pg.DBTX, uid int64) ([]Request, error) {
	rows, err := tx.Query(ctx,
		`SELECT * FROM maintenance WHERE uid = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Request])
}

var _ Storage = (*PGStorage)(nil)
