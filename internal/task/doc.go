// Package task runs background housekeeping alongside the HTTP server.
package task
