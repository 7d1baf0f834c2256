package repository

import "context"

// TxManager runs fn inside one storage transaction. Repositories called with the
// ctx passed to fn join that transaction. Nested calls reuse the outer one.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
