// Package workflow runs declarative sequences of instance manager operations.
//
// A workflow file lists steps, each naming an operation (list-branches or
// pull) and its options. Steps may reference reusable tool definitions. The
// Executor runs steps in order and stops at the first failure.
package workflow
