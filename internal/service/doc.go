// Package service contains the account and avatar use cases. It orchestrates
// the stores defined in internal/store, the credential codec and the
// verification coordinator.
//
// Operations that redeem a one-time code and then change the account run in
// a single transaction: the coordinator and the user store are both bound to
// the same *sql.Tx, so a failed update leaves the code unredeemed.
//
// Services return sentinel errors from this package or wrap store and
// verification errors with %w; the API layer maps them to status codes.
package service
