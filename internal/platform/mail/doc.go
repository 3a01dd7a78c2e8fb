// Package mail implements verification.Notifier over SMTP, plus a
// log-only variant for development.
package mail
