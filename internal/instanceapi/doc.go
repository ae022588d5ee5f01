// Package instanceapi implements the authenticated client for the instance
// manager's source control endpoints.
//
// It exposes the RepositoryClient contract with a single canonical Client
// implementation, typed request and result envelopes, base address
// resolution strategies, and the APIError envelope that every failure is
// reported through. Credentials are read through an injected TokenReader on
// each call so rotated tokens take effect without rebuilding the client.
package instanceapi
