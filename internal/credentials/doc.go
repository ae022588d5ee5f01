// Package credentials reads the bearer token presented to the instance manager.
//
// Stores are read-only and keyed by a fixed name (token by default). The
// token lifecycle belongs to whatever performs login and logout; this package
// only observes the current value and re-reads it on every request.
package credentials
