// Package api holds the HTTP handlers of the marketplace API. Handlers decode
// and validate requests, call the account and avatar services and map their
// errors onto status codes with safe, generic messages.
package api
