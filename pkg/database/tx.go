package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// WithinTx runs fn inside a transaction whose handle travels in the context.
// Repositories pick it up through Conn, so a service can group several
// repository calls into one unit of work without passing *sqlx.Tx around.
//
// A call made while a transaction is already in ctx joins it instead of
// opening a nested one.
func (db *DB) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	if getTx(ctx) != nil {
		return fn(ctx)
	}
	return db.Transaction(ctx, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn returns the transaction carried by ctx, or the pool when there is none.
func (db *DB) Conn(ctx context.Context) Querier {
	if tx := getTx(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	return getTx(ctx) != nil
}

func getTx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}
