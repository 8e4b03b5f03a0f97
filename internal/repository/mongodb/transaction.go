package mongodb

import (
	"context"

	"storyloom/internal/domain/repositories"
)

// TransactionManager runs functions without a multi-document transaction.
// Standalone servers do not support them; callers that switch the default
// style rely on the unique partial index and the reconciliation read instead.
type TransactionManager struct{}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager() repositories.TransactionManager {
	return TransactionManager{}
}

// ExecTx executes fn directly
func (TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
