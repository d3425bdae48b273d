package repositories

import (
	"context"
)

// Transactor executes a function within a single atomic transaction.
// Repositories called with the returned context route their statements
// through that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
