// Package domain contains the core entities of the marketplace's trust and
// access layer: principals and their roles, one-time verification codes and
// avatars. It has no dependencies on storage or transport.
package domain
