// Package verification issues and redeems time-bound one-time codes used to
// confirm registration, authorize password resets and approve withdrawals.
//
// A code is six decimal digits, valid for five minutes and scoped to one
// principal and one purpose. Redemption removes the code, and the store's
// delete-by-id is the only arbiter when two requests race for the same code.
package verification
