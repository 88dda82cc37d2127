package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager groups repository writes.
// The memory store runs fn directly; postgres wraps it in a database transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
