// Package postgres provides PostgreSQL implementations of the storage
// interfaces defined in internal/store, together with the embedded goose
// migrations that create their schema.
//
// Verification codes are consumed with a DELETE keyed by primary key whose
// affected-row count decides which of several concurrent redeemers wins.
package postgres
