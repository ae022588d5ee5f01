// Package ui renders instance manager responses for the terminal: branch
// tables, JSON and YAML documents, workflow step events, and the interactive
// branch selector used by the pull command.
package ui
