// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It provides typed
// access to the settings needed by the server, the credential codec, code
// delivery, rate limiting and avatar storage.
package config
