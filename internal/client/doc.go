// Package client implements the interactive multi-turn session on top
// of a Transport: a background read loop decodes and classifies output
// while sends are gated on observed turn completion.
package client
