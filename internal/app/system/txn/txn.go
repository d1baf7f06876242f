// internal/app/system/txn/txn.go

// Package txn wraps multi-document MongoDB transactions and classifies the
// errors a non-replica-set deployment returns so callers can fall back to
// sequential writes.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes returned when the deployment cannot run transactions
// (standalone servers, old wire versions).
const (
	codeIllegalOperation     = 20
	codeCommandNotSupported  = 51
	codeOperationNotSupInTxn = 263
)

// WithTransaction runs fn inside a session transaction. The context passed
// to fn carries the session; all store calls made with it join the
// transaction. Callers should check IsNotSupported on the returned error
// and retry without a transaction when the deployment lacks support.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// multi-document transactions at all, as opposed to a transaction that
// failed and could be retried.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupInTxn:
			return true
		}
	}

	// Fall back to message sniffing for servers and proxies that do not
	// set a recognizable code.
	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	switch {
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	case hasTxn && strings.Contains(msg, "session"):
		return true
	case hasTxn && strings.Contains(msg, "illegal operation"):
		return true
	}
	return false
}
