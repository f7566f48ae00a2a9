// Package feedback lets anyone file an appeal to one of the configured
// recipients (administration, deanery, student union and so on). Recipients
// and their appeal categories are reference data; appeals are plain rows.
package feedback

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cyberdas/backend/pkg/pg"
)

var (
	// ErrRecipientNotFound indicates the named recipient is not configured.
	ErrRecipientNotFound = errors.New("feedback.recipient_not_found")

	// ErrUnknownCategory indicates the recipient does not accept appeals of
	// the given category.
	ErrUnknownCategory = errors.New("feedback.unknown_category")
)

// Recipient is one appeal destination with the categories it accepts. The
// contact email stays server-side and is never rendered to clients.
type Recipient struct {
	Name        string   `db:"name" json:"name"`
	Title       string   `db:"title" json:"title"`
	Description string   `db:"description" json:"description"`
	Categories  []string `db:"categories" json:"categories"`
}

// Appeal is one filed feedback row.
type Appeal struct {
	ID        int64   `db:"id"`
	Recipient string  `db:"recipient_name"`
	Category  string  `db:"category"`
	Text      string  `db:"text"`
	Email     *string `db:"email"`
}

// Storage owns the recipients, categories and feedback tables.
type Storage interface {
	ListRecipients(ctx context.Context, tx pg.DBTX) ([]Recipient, error)
	GetRecipient(ctx context.Context, tx pg.DBTX, name string) (Recipient, error)
	// CreateAppeal validates the category against the recipient's set and
	// inserts the row, returning its id.
	CreateAppeal(ctx context.Context, tx pg.DBTX, a Appeal) (int64, error)
}

// PGStorage is the Postgres-backed feedback store.
type PGStorage struct{}

// NewPGStorage creates the feedback store.
func NewPGStorage() *PGStorage {
	return &PGStorage{}
}

const recipientQuery = `
	SELECT r.name, r.title, r.description,
	       COALESCE(array_agg(c.name) FILTER (WHERE c.name IS NOT NULL), '{}') AS categories
	FROM recipients r
	LEFT JOIN feedback_categories c ON c.recipient_name = r.name`

func (s *PGStorage) ListRecipients(ctx context.Context, tx pg.DBTX) ([]Recipient, error) {
	rows, err := tx.Query(ctx, recipientQuery+` GROUP BY r.name, r.title, r.description ORDER BY r.name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[Recipient])
}

func (s *PGStorage) GetRecipient(ctx context.Context, tx pg.DBTX, name string) (Recipient, error) {
	rows, err := tx.Query(ctx, recipientQuery+` WHERE r.name = $1 GROUP BY r.name, r.title, r.description`, name)
	if err != nil {
		return Recipient{}, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[Recipient])
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Recipient{}, ErrRecipientNotFound
		}
		return Recipient{}, err
	}
	return rec, nil
}

func (s *PGStorage) CreateAppeal(ctx context.Context, tx pg.DBTX, a Appeal) (int64, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM feedback_categories WHERE recipient_name = $1 AND name = $2)`,
		a.Recipient, a.Category).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrUnknownCategory
	}

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO feedback (recipient_name, category, text, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		a.Recipient, a.Category, a.Text, a.Email).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

var _ Storage = (*PGStorage)(nil)
