// Package branches provides the branches command, which lists the branches
// of a managed instance through the instance manager and prints them as a
// table, JSON or YAML.
package branches
