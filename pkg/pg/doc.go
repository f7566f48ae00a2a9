// Package pg wires PostgreSQL connectivity: pool construction with retry,
// goose schema migrations, error classification helpers, and the per-request
// transaction middleware that every store depends on.
//
// The DBTX interface is the package's central seam. Handlers never touch the
// pool directly; they receive a transaction scoped to their request and pass
// it into stores explicitly.
package pg
