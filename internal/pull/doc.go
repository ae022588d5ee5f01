// Package pull provides the pull command, which asks the instance manager to
// pull an instance's repository, optionally on a branch chosen by flag or
// from an interactive list.
package pull
