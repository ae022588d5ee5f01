// Package cli constructs the instancectl command-line interface, wiring the
// Cobra command hierarchy, layered configuration, structured logging, and the
// instance manager client shared by the branches, pull, and workflow commands.
package cli
