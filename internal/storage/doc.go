// Package storage persists the gateway configuration document, the default
// profile, TLS material and boot flags in a bbolt database.
//
// Each namespace is a bucket. Every operation opens the database, runs one
// transaction and closes it again, so callers never share a handle.
package storage
