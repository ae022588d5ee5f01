// Package connection turns the service section of the instancectl
// configuration into a ready instanceapi.Client: it parses the base address,
// materializes the credential store, and applies the transport timeout.
package connection
