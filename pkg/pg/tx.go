package pg

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by pgxpool.Pool and pgx.Tx. Every store
// takes it explicitly so that reads and writes belonging to one request run
// on that request's transaction, never on an ambient connection.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txContextKey struct{}

// WithTx stores a transaction handle in the context.
func WithTx(ctx context.Context, tx DBTX) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext retrieves the request transaction from the context.
func TxFromContext(ctx context.Context) (DBTX, error) {
	tx, ok := ctx.Value(txContextKey{}).(DBTX)
	if !ok {
		return nil, ErrNoTransaction
	}
	return tx, nil
}

// statusRecorder captures the response status so the transaction middleware
// can decide between commit and rollback.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// TransactionMiddleware opens one transaction per request and exposes it via
// TxFromContext. The transaction commits unless the handler panicked or
// responded with a server error; client errors (4xx) still commit, matching
// the behavior of handlers that record audit rows before rejecting.
func TransactionMiddleware(pool *pgxpool.Pool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tx, err := pool.Begin(ctx)
			if err != nil {
				log.ErrorContext(ctx, "failed to begin request transaction", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			committed := false
			defer func() {
				if committed {
					return
				}
				_ = tx.Rollback(ctx)
			}()

			next.ServeHTTP(rec, r.WithContext(WithTx(ctx, tx)))

			if rec.status >= http.StatusInternalServerError {
				return
			}

			if err := tx.Commit(ctx); err != nil {
				log.ErrorContext(ctx, "failed to commit request transaction", slog.Any("error", err))
				return
			}
			committed = true
		})
	}
}
