// Package subprocess implements the default Transport: it spawns the
// agent CLI and exchanges newline-delimited JSON over its standard
// streams, reading on a dedicated goroutine so stdout consumption and
// stdin writes never block each other.
package subprocess
