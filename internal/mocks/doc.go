// Package mocks provides hand-written test doubles for the store and service
// interfaces. Each mock has function fields that override the default
// in-memory behavior when set.
package mocks
