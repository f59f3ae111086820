// Package cli handles locating the agent CLI binary and building its
// command line and environment.
package cli
